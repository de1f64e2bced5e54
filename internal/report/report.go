// Package report summarizes injection results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/regain3d/regain/internal/inject"
)

// UnknownProfile is reported when a result carries no profile.
const UnknownProfile = "Unknown"

// PurgeDetail describes one rewritten change.
type PurgeDetail struct {
	ChangeNumber int     `json:"changeNumber"`
	FromTool     int     `json:"fromTool"`
	ToTool       int     `json:"toTool"`
	PurePurge    float64 `json:"purePurge"`  // mm
	MixedPurge   float64 `json:"mixedPurge"` // mm
}

// Report is the JSON document written next to an optimized file.
// Waste values are grams.
type Report struct {
	InputFile      string        `json:"inputFile"`
	OutputFile     string        `json:"outputFile"`
	Profile        string        `json:"profile"`
	TotalChanges   int           `json:"totalChanges"`
	OriginalWaste  float64       `json:"originalWaste"`
	OptimizedWaste float64       `json:"optimizedWaste"`
	SavingsPercent float64       `json:"savingsPercent"`
	PurgeDetails   []PurgeDetail `json:"purgeDetails"`
	ExecutionTime  int64         `json:"executionTime"` // ms
}

// Saved returns the grams of filament no longer purged.
func (r *Report) Saved() float64 {
	return r.OriginalWaste - r.OptimizedWaste
}

// Build creates a report from an injection result.
func Build(input, output string, res *inject.Result, elapsed time.Duration) *Report {
	r := &Report{
		InputFile:     input,
		OutputFile:    output,
		TotalChanges:  len(res.Changes),
		PurgeDetails:  make([]PurgeDetail, 0, len(res.Changes)),
		ExecutionTime: elapsed.Milliseconds(),
		Profile:       UnknownProfile,
	}

	if res.Profile != nil {
		r.Profile = res.Profile.Name
	}

	if w := res.WasteEstimate; w != nil {
		r.OriginalWaste = w.OriginalWaste
		r.OptimizedWaste = w.OptimizedWaste()
		r.SavingsPercent = w.SavingsPercent
	}

	for _, change := range res.Changes {
		d := PurgeDetail{
			ChangeNumber: change.Index + 1,
			FromTool:     change.FromTool,
			ToTool:       change.ToTool,
		}
		if change.Calculation != nil {
			d.PurePurge = change.Calculation.PurePurgeLength
			d.MixedPurge = change.Calculation.MixedPurgeLength
		}
		r.PurgeDetails = append(r.PurgeDetails, d)
	}

	return r
}

// Write stores the report as indented JSON.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("invalid report %s: %w", path, err)
	}
	return &r, nil
}

// RenderTable writes the per-change purge split of a report.
func RenderTable(w io.Writer, r *Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Change", "Tools", "Pure (mm)", "Mixed (mm)"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, d := range r.PurgeDetails {
		table.Append([]string{
			fmt.Sprintf("%d", d.ChangeNumber),
			fmt.Sprintf("T%d -> T%d", d.FromTool, d.ToTool),
			fmt.Sprintf("%.2f", d.PurePurge),
			fmt.Sprintf("%.2f", d.MixedPurge),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", r.TotalChanges),
		"",
		fmt.Sprintf("%.2fg", r.OptimizedWaste),
		fmt.Sprintf("%.1f%% saved", r.SavingsPercent),
	})

	table.Render()
}

// BatchEntry is one file of a batch run.
type BatchEntry struct {
	File   string  `json:"file"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total      int     `json:"total"`
	Successful int     `json:"successful"`
	Failed     int     `json:"failed"`
	TotalSaved float64 `json:"totalSaved"` // g
}

// Summarize aggregates batch entries.
func Summarize(entries []BatchEntry) BatchSummary {
	s := BatchSummary{Total: len(entries)}
	for _, e := range entries {
		if e.Report == nil {
			s.Failed++
			continue
		}
		s.Successful++
		s.TotalSaved += e.Report.Saved()
	}
	return s
}

// RenderBatchTable writes one row per batch entry and the summary as footer.
func RenderBatchTable(w io.Writer, entries []BatchEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Profile", "Changes", "Saved", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	for _, e := range entries {
		name := filepath.Base(e.File)
		if e.Report == nil {
			table.Append([]string{name, "-", "-", "-", e.Error})
			continue
		}
		table.Append([]string{
			name,
			e.Report.Profile,
			fmt.Sprintf("%d", e.Report.TotalChanges),
			fmt.Sprintf("%.1f%%", e.Report.SavingsPercent),
			"ok",
		})
	}

	s := Summarize(entries)
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", s.Total),
		"",
		fmt.Sprintf("%d ok", s.Successful),
		fmt.Sprintf("%.2fg", s.TotalSaved),
		fmt.Sprintf("%d failed", s.Failed),
	})

	table.Render()
}
