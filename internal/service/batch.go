package service

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/regain3d/regain/internal/report"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchDir is the output directory used next to each input when
// BatchOptions.OutputDir is empty.
const DefaultBatchDir = "optimized"

// ErrNoGCodeFiles is returned by CollectInputs when nothing matched.
var ErrNoGCodeFiles = stderrors.New("no G-code files found")

// BatchOptions controls ProcessBatch.
type BatchOptions struct {
	FileOptions
	OutputDir string
	Parallel  int // <= 0 uses batch.parallel from the config
}

// BatchResult holds one entry per input, in input order.
type BatchResult struct {
	Results []report.BatchEntry `json:"results"`
	Summary report.BatchSummary `json:"summary"`
}

// CollectInputs expands directories into the .gcode files they contain
// (not recursive). Files are kept as given.
func CollectInputs(paths []string) ([]string, error) {
	var inputs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && isGCodePath(entry.Name()) && !isDerived(entry.Name()) {
				found = append(found, filepath.Join(p, entry.Name()))
			}
		}
		sort.Strings(found)
		inputs = append(inputs, found...)
	}

	if len(inputs) == 0 {
		return nil, ErrNoGCodeFiles
	}
	return inputs, nil
}

// isDerived reports whether name is a file regain wrote itself.
func isDerived(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, SuffixOriginal) || strings.HasSuffix(lower, SuffixOptimized)
}

// ProcessBatch runs ProcessFile over inputs concurrently. Per-file failures
// are recorded in the result; only a cancelled context is returned as an
// error.
func (s *Service) ProcessBatch(ctx context.Context, inputs []string, opts BatchOptions) (*BatchResult, error) {
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = s.cfg.Batch.Parallel
	}

	entries := make([]report.BatchEntry, len(inputs))
	names := outputNames(inputs, opts.OutputDir)

	var group errgroup.Group
	group.SetLimit(parallel)

	for i, input := range inputs {
		i, input := i, input
		group.Go(func() error {
			entries[i] = s.batchOne(ctx, input, names[i], opts)
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &BatchResult{
		Results: entries,
		Summary: report.Summarize(entries),
	}, nil
}

func batchDir(input, outputDir string) string {
	if outputDir != "" {
		return outputDir
	}
	return filepath.Join(filepath.Dir(input), DefaultBatchDir)
}

// outputNames picks the file name each input is written under inside its
// output directory. Inputs whose base names collide there (case-insensitive)
// get their parent directory name appended, then a counter if that is still
// not unique.
func outputNames(inputs []string, outputDir string) []string {
	key := func(i int, name string) string {
		return strings.ToLower(filepath.Join(batchDir(inputs[i], outputDir), name))
	}

	counts := make(map[string]int, len(inputs))
	for i, input := range inputs {
		counts[key(i, filepath.Base(input))]++
	}

	names := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		base := filepath.Base(input)
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)

		name := base
		if counts[key(i, base)] > 1 {
			if parent := parentName(input); parent != "" {
				stem += "_" + parent
			}
			name = stem + ext
		}
		for n := 2; used[key(i, name)]; n++ {
			name = stem + "_" + strconv.Itoa(n) + ext
		}
		used[key(i, name)] = true
		names[i] = name
	}
	return names
}

func parentName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	parent := filepath.Base(filepath.Dir(abs))
	if parent == "." || parent == string(filepath.Separator) {
		return ""
	}
	return parent
}

func (s *Service) batchOne(ctx context.Context, input, name string, opts BatchOptions) report.BatchEntry {
	entry := report.BatchEntry{File: input}
	outDir := batchDir(input, opts.OutputDir)

	fileOpts := opts.FileOptions
	fileOpts.OutputPath = filepath.Join(outDir, name)
	fileOpts.ReportPath = filepath.Join(outDir, siblingPath(name, SuffixReport))

	res, err := s.ProcessFile(ctx, input, fileOpts)
	if err != nil {
		s.logger.Warn("batch file failed", "file", input, "error", err)
		entry.Error = err.Error()
		return entry
	}
	entry.Report = res.Report
	return entry
}
