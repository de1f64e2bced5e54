package inject

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/regain3d/regain/internal/profile"
)

// placeholderPattern matches {key} in injection templates. Keys are any
// profile variable name without braces or whitespace, so "esp-msg" and
// "fan.speed" work like "purge_length".
var placeholderPattern = regexp.MustCompile(`\{([^{}\s]+)\}`)

func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Variables builds the placeholder values for one change. Profile variables
// come first; computed values override them.
func Variables(change *FilamentChange, calc PurgeCalculation, p *profile.Profile) map[string]string {
	vars := make(map[string]string, len(p.Injection.Variables)+16)
	for k, v := range p.Injection.Variables {
		vars[k] = v
	}

	esp := p.Injection.ESPProtocol
	for name, msg := range map[string]string{
		"change_start":      esp.Messages.ChangeStart,
		"pure_purge_start":  esp.Messages.PurePurgeStart,
		"pure_purge_end":    esp.Messages.PurePurgeEnd,
		"mixed_purge_start": esp.Messages.MixedPurgeStart,
		"mixed_purge_end":   esp.Messages.MixedPurgeEnd,
		"change_end":        esp.Messages.ChangeEnd,
		"valve_switch":      esp.Messages.ValveSwitch,
	} {
		if msg != "" {
			vars["esp_"+name] = msg
		}
	}
	if esp.CommandFormat != "" {
		vars["esp_command"] = esp.CommandFormat
	}

	vars["pure_purge_length"] = formatLength(calc.PurePurgeLength)
	vars["mixed_purge_length"] = formatLength(calc.MixedPurgeLength)
	vars["total_purge_length"] = formatLength(calc.TotalPurgeLength())
	vars["from_tool"] = strconv.Itoa(change.FromTool)
	vars["to_tool"] = strconv.Itoa(change.ToTool)
	vars["change_number"] = strconv.Itoa(change.Index + 1)

	return vars
}

// ExpandTemplate substitutes {name} placeholders and splits the result into
// lines. Unknown placeholders are left as written. An empty template yields
// no lines.
func ExpandTemplate(tmpl string, vars map[string]string) []string {
	if tmpl == "" {
		return nil
	}

	expanded := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := vars[match[1:len(match)-1]]; ok {
			return val
		}
		return match
	})
	return strings.Split(expanded, "\n")
}

// UnresolvedPlaceholders returns the placeholder names still present in
// lines, in order of first appearance.
func UnresolvedPlaceholders(lines []string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range lines {
		for _, match := range placeholderPattern.FindAllStringSubmatch(line, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}
	return names
}

// BlockOptions controls replacement block generation.
type BlockOptions struct {
	AddComments bool
	ESPEnabled  bool
}

// CommentHeader summarizes a rewritten change as G-code comments.
func CommentHeader(change *FilamentChange, calc PurgeCalculation) []string {
	saving := change.OriginalPurgeLength - calc.TotalPurgeLength()
	if math.Abs(saving) < 0.005 {
		saving = 0 // no "-0.00"
	}
	return []string{
		"; === Regain3D Two-Stage Purge ===",
		fmt.Sprintf("; Change %d: Tool %d -> %d", change.Index+1, change.FromTool, change.ToTool),
		fmt.Sprintf("; Pure purge: %smm", formatLength(calc.PurePurgeLength)),
		fmt.Sprintf("; Mixed purge: %smm", formatLength(calc.MixedPurgeLength)),
		fmt.Sprintf("; Total saving: %smm", formatLength(saving)),
	}
}

// RewriteBlock produces the lines that replace a change block: prePurge,
// purgeStage1 with purge_length bound to the pure length, espPause when
// enabled, purgeStage2 with purge_length bound to the mixed length, then
// postPurge.
func RewriteBlock(change *FilamentChange, calc PurgeCalculation, p *profile.Profile, opts BlockOptions) []string {
	t := p.Injection.Templates
	vars := Variables(change, calc, p)

	var block []string
	if opts.AddComments {
		block = append(block, CommentHeader(change, calc)...)
	}

	block = append(block, ExpandTemplate(t.PrePurge, vars)...)

	vars["purge_length"] = formatLength(calc.PurePurgeLength)
	block = append(block, ExpandTemplate(t.PurgeStage1, vars)...)

	if opts.ESPEnabled {
		block = append(block, ExpandTemplate(t.ESPPause, vars)...)
	}

	vars["purge_length"] = formatLength(calc.MixedPurgeLength)
	block = append(block, ExpandTemplate(t.PurgeStage2, vars)...)

	block = append(block, ExpandTemplate(t.PostPurge, vars)...)
	return block
}
