package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/report"
)

// File name suffixes written next to the input.
const (
	SuffixOriginal  = "_original.gcode"
	SuffixOptimized = "_optimized.gcode"
	SuffixReport    = "_report.json"
)

var gcodeExt = regexp.MustCompile(`(?i)\.gcode$`)

func isGCodePath(path string) bool {
	return gcodeExt.MatchString(path)
}

// siblingPath replaces the .gcode extension of path with suffix.
func siblingPath(path, suffix string) string {
	return gcodeExt.ReplaceAllLiteralString(path, suffix)
}

// FileOptions controls ProcessFile. Zero values follow the config.
type FileOptions struct {
	OutputPath      string // default <name>_optimized.gcode
	ReportPath      string // default <name>_report.json
	ProfileID       string
	NoBackup        bool
	NoReport        bool
	DisableESP      bool
	StrictTemplates bool
}

// FileResult is the outcome of ProcessFile.
type FileResult struct {
	Report     *report.Report
	Warnings   []string
	BackupPath string // empty when no backup was written
	ReportPath string // empty when no report was written
}

// ProcessFile optimizes one G-code file on disk.
func (s *Service) ProcessFile(ctx context.Context, input string, opts FileOptions) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	text, err := readGCode(input)
	if err != nil {
		return nil, err
	}

	out := &FileResult{}

	if s.cfg.AutoBackup && !opts.NoBackup {
		out.BackupPath = siblingPath(input, SuffixOriginal)
		if err := os.WriteFile(out.BackupPath, []byte(text), 0644); err != nil {
			return nil, fmt.Errorf("failed to write backup: %w", err)
		}
		s.logger.Debug("backup saved", "path", out.BackupPath)
	}

	res, err := s.ProcessGCode(text, GCodeOptions{
		ProfileID:       opts.ProfileID,
		AddComments:     true,
		DisableESP:      opts.DisableESP,
		StrictTemplates: opts.StrictTemplates,
	})
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, errors.ProcessingFailed(res.Errors)
	}
	out.Warnings = res.Warnings

	output := opts.OutputPath
	if output == "" {
		output = siblingPath(input, SuffixOptimized)
	}
	if res.ModifiedGCode != nil {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(output, []byte(*res.ModifiedGCode), 0644); err != nil {
			return nil, fmt.Errorf("failed to write optimized G-code: %w", err)
		}
		s.logger.Info("optimized G-code saved", "input", input, "output", output, "changes", len(res.Changes))
	}

	out.Report = report.Build(input, output, res, time.Since(start))

	if s.cfg.GenerateReport && !opts.NoReport {
		out.ReportPath = opts.ReportPath
		if out.ReportPath == "" {
			out.ReportPath = siblingPath(input, SuffixReport)
		}
		if err := out.Report.Write(out.ReportPath); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		s.logger.Debug("report saved", "path", out.ReportPath)
	}

	return out, nil
}
