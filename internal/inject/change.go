// Package inject finds filament-change blocks in tokenized G-code and
// rewrites them into a two-stage purge.
package inject

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/regain3d/regain/internal/filament"
	"github.com/regain3d/regain/internal/gcode"
	"github.com/regain3d/regain/internal/profile"
)

// FilamentChange is one detected tool-change block.
type FilamentChange struct {
	Index               int               `json:"index"`
	FromTool            int               `json:"fromTool"`
	ToTool              int               `json:"toTool"`
	FromFilament        *filament.Info    `json:"fromFilament,omitempty"`
	ToFilament          *filament.Info    `json:"toFilament,omitempty"`
	OriginalPurgeLength float64           `json:"originalPurgeLength"` // mm
	Calculation         *PurgeCalculation `json:"calculation,omitempty"`
	StartLine           int               `json:"startLine"`
	EndLine             int               `json:"endLine"`
	Position            profile.Position  `json:"position"`
}

// DetectChanges scans the command stream for change blocks.
//
// A command whose token starts with a start trigger opens a block, even when
// a block is already open; the unterminated block is dropped. A command whose
// token equals an end marker closes the open block.
func DetectChanges(f *gcode.File, p *profile.Profile) []*FilamentChange {
	seq := p.ChangeSequence
	patterns := purgePatterns(p)

	var (
		changes []*FilamentChange
		current *FilamentChange
		block   []*gcode.Command
		pos     profile.Position
	)

	for i := range f.Commands {
		cmd := &f.Commands[i]

		if matchesPrefix(cmd.Token, seq.StartTriggers) {
			from := 0
			if n := len(changes); n > 0 {
				from = changes[n-1].ToTool
			}
			current = &FilamentChange{
				Index:     len(changes),
				FromTool:  from,
				ToTool:    toolNumber(cmd),
				StartLine: cmd.LineNumber,
				Position:  pos,
			}
			block = []*gcode.Command{cmd}
		} else if current != nil {
			block = append(block, cmd)
			if matchesExact(cmd.Token, seq.EndMarkers) {
				current.EndLine = cmd.LineNumber
				current.OriginalPurgeLength = purgeLength(block, patterns)
				current.FromFilament = filamentFor(f.Metadata, current.FromTool, p)
				current.ToFilament = filamentFor(f.Metadata, current.ToTool, p)
				changes = append(changes, current)
				current, block = nil, nil
			}
		}

		if cmd.Token == "G0" || cmd.Token == "G1" {
			trackPosition(&pos, cmd)
		}
	}

	return changes
}

func matchesPrefix(token string, triggers []string) bool {
	if token == "" {
		return false
	}
	for _, t := range triggers {
		if t != "" && strings.HasPrefix(token, t) {
			return true
		}
	}
	return false
}

func matchesExact(token string, markers []string) bool {
	if token == "" {
		return false
	}
	for _, m := range markers {
		if token == m {
			return true
		}
	}
	return false
}

func purgePatterns(p *profile.Profile) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, pattern := range p.ChangeSequence.PurgePatterns {
		re, err := profile.CompilePattern(pattern)
		if err != nil {
			slog.Debug("skipping invalid purge pattern", "profile", p.ID, "pattern", pattern, "error", err)
			continue
		}
		out = append(out, re)
	}
	return out
}

// purgeLength sums E over G1 moves that match a purge pattern.
// Each move counts once even when several patterns match.
func purgeLength(block []*gcode.Command, patterns []*regexp.Regexp) float64 {
	total := 0.0
	for _, cmd := range block {
		if cmd.Token != "G1" || !cmd.Has('E') {
			continue
		}
		e, ok := cmd.Float('E')
		if !ok {
			continue // E given as text
		}
		for _, re := range patterns {
			if re.MatchString(cmd.Raw) {
				total += e
				break
			}
		}
	}
	return total
}

// toolNumber reads the target tool from a trigger command.
// S is preferred; "S1A" style values use their leading digits. Without S a
// T<n> token names the tool. Anything else is tool 0.
func toolNumber(cmd *gcode.Command) int {
	if v, ok := cmd.Param('S'); ok {
		if n, ok := v.Float(); ok {
			return int(n)
		}
		return leadingInt(v.Str)
	}
	if strings.HasPrefix(cmd.Token, "T") {
		return leadingInt(cmd.Token[1:])
	}
	return 0
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func trackPosition(pos *profile.Position, cmd *gcode.Command) {
	if x, ok := cmd.Float('X'); ok {
		pos.X = x
	}
	if y, ok := cmd.Float('Y'); ok {
		pos.Y = y
	}
	if z, ok := cmd.Float('Z'); ok {
		pos.Z = z
	}
}

// filamentFor resolves the filament in a tool from the slicer's filament_type list.
func filamentFor(meta gcode.Metadata, tool int, p *profile.Profile) *filament.Info {
	if tool < 0 || tool >= len(meta.FilamentTypes) {
		return nil
	}
	t := filament.ParseType(meta.FilamentTypes[tool])
	slot := tool
	return &filament.Info{
		ID:       fmt.Sprintf("T%d", tool),
		Type:     t,
		Diameter: p.Hardware.FilamentDiameter,
		Density:  filament.Density(t),
		Slot:     &slot,
	}
}
