package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// Metadata holds slicer facts recovered from header and config comments.
// Nil pointers mean the value was not present.
type Metadata struct {
	Generator        string    `json:"generator,omitempty"`
	PrinterModel     string    `json:"printerModel,omitempty"`
	FilamentUsed     []float64 `json:"filamentUsed,omitempty"` // mm per extruder
	FilamentTypes    []string  `json:"filamentTypes,omitempty"`
	PrintTime        *float64  `json:"printTime,omitempty"` // seconds
	LayerHeight      *float64  `json:"layerHeight,omitempty"`
	NozzleDiameter   *float64  `json:"nozzleDiameter,omitempty"`
	FilamentDiameter *float64  `json:"filamentDiameter,omitempty"`
	TotalPurgeVolume *float64  `json:"totalPurgeVolume,omitempty"`
}

var (
	generatorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^generated (?:by|with)\s+(.+?)(?:\s+on\s+\d{4}-\d{2}-\d{2}.*)?$`),
		regexp.MustCompile(`(?i)^generator\s*[:=]\s*(.+)$`),
		regexp.MustCompile(`^((?:BambuStudio|OrcaSlicer|PrusaSlicer|SuperSlicer|Cura_SteamEngine)\b.*)$`),
	}

	// estimated printing time (normal mode) = 1d 2h 3m 4s
	// model printing time: 1h 2m; total estimated time: 1h 5m
	printTimePattern = regexp.MustCompile(`(?i)(?:estimated printing time(?: \(normal mode\))?|total estimated time)\s*[:=]\s*((?:\d+\s*[dhms]\s*)+)`)
)

// absorb inspects one comment body and records any recognized value.
// The first occurrence of each value wins.
func (m *Metadata) absorb(comment string) {
	if m.Generator == "" {
		for _, re := range generatorPatterns {
			if match := re.FindStringSubmatch(comment); match != nil {
				m.Generator = strings.TrimSpace(match[1])
				return
			}
		}
	}

	if m.PrintTime == nil {
		if match := printTimePattern.FindStringSubmatch(comment); match != nil {
			secs := float64(parseDuration(match[1]))
			m.PrintTime = &secs
			return
		}
	}

	key, value, ok := splitSetting(comment)
	if !ok || value == "" {
		return
	}

	switch key {
	case "printer_model", "printer model":
		if m.PrinterModel == "" {
			m.PrinterModel = value
		}
	case "filament used [mm]":
		if m.FilamentUsed == nil {
			m.FilamentUsed = parseFloatList(value)
		}
	case "filament_type":
		if m.FilamentTypes == nil {
			m.FilamentTypes = splitList(value)
		}
	case "time":
		setOnce(&m.PrintTime, value)
	case "layer_height", "layer height":
		setOnce(&m.LayerHeight, value)
	case "nozzle_diameter":
		setOnce(&m.NozzleDiameter, firstOf(value))
	case "filament_diameter":
		setOnce(&m.FilamentDiameter, firstOf(value))
	case "total_purge_volume":
		setOnce(&m.TotalPurgeVolume, value)
	}
}

// splitSetting splits "key = value" and "key: value" comments.
func splitSetting(s string) (key, value string, ok bool) {
	i := strings.IndexAny(s, "=:")
	if i <= 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(s[:i]))
	value = strings.TrimSpace(s[i+1:])
	return key, value, true
}

func setOnce(dst **float64, value string) {
	if *dst != nil {
		return
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		*dst = &f
	}
}

// splitList splits slicer multi-extruder values, which use either ';' or ','.
func splitList(s string) []string {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return out
}

func firstOf(s string) string {
	return splitList(s)[0]
}

func parseFloatList(s string) []float64 {
	var out []float64
	for _, p := range splitList(s) {
		if f, err := strconv.ParseFloat(p, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// parseDuration converts "2d 12h 8m 58s" into seconds.
func parseDuration(est string) int {
	est = strings.ReplaceAll(est, " ", "")
	units := map[byte]int{'d': 86400, 'h': 3600, 'm': 60, 's': 1}
	total := 0
	for _, p := range []byte("dhms") {
		if i := strings.IndexByte(est, p); i >= 0 {
			n, _ := strconv.Atoi(est[:i])
			total += n * units[p]
			est = est[i+1:]
		}
	}
	return total
}
