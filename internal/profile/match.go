package profile

import (
	"log/slog"
	"strings"

	"github.com/regain3d/regain/internal/gcode"
	"golang.org/x/text/cases"
)

// HeaderScanLines is how many leading lines header patterns are tried against.
const HeaderScanLines = 50

// Score weights.
const (
	scoreHeader    = 10
	scoreSignature = 5
	scoreGenerator = 20
	scoreModel     = 30
)

// containsFold reports whether s contains substr, ignoring case.
// A Caser is stateful, so each call builds its own.
func containsFold(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}

// Score rates how well a profile matches a tokenized file. 0 means no match.
func Score(f *gcode.File, p *Profile) float64 {
	score := 0.0
	head := f.Head(HeaderScanLines)

	for _, pattern := range p.Detection.HeaderPatterns {
		re, err := CompilePattern(pattern)
		if err != nil {
			slog.Debug("skipping invalid header pattern", "profile", p.ID, "pattern", pattern, "error", err)
			continue
		}
		for _, line := range head {
			if re.MatchString(line) {
				score += scoreHeader
				break
			}
		}
	}

	for _, signature := range p.Detection.CommandSignatures {
		if f.HasCommand(signature) {
			score += scoreSignature
		}
	}

	if f.Metadata.Generator != "" && p.Manufacturer != "" && containsFold(f.Metadata.Generator, p.Manufacturer) {
		score += scoreGenerator
	}
	if f.Metadata.PrinterModel != "" && p.Model != "" && containsFold(f.Metadata.PrinterModel, p.Model) {
		score += scoreModel
	}

	priority := p.Detection.Priority
	if priority <= 0 {
		priority = DefaultPriority
	}
	return score * priority
}

// Select returns the best scoring profile, or nil when none scores above 0.
// Ties go to the profile that appears first.
func Select(f *gcode.File, profiles []*Profile) (*Profile, float64) {
	var best *Profile
	bestScore := 0.0

	for _, p := range profiles {
		score := Score(f, p)
		slog.Debug("profile score", "profile", p.ID, "score", score)
		if score > bestScore {
			bestScore = score
			best = p
		}
	}

	return best, bestScore
}
