package service

import (
	"github.com/regain3d/regain/internal/gcode"
	"github.com/regain3d/regain/internal/inject"
)

// Spool is the material loaded in one tool.
type Spool struct {
	Tool    int    `json:"tool"`
	Plastic string `json:"plastic"`
}

// Analysis describes a G-code file without modifying it.
// Brand and Printer are empty when no profile matches.
type Analysis struct {
	Brand       string  `json:"brand"`
	Printer     string  `json:"printer"`
	Profile     string  `json:"profile,omitempty"`
	ToolChanges int     `json:"toolChanges"`
	Spools      []Spool `json:"spools"`
}

// Analyze detects the printer and counts filament changes.
func (s *Service) Analyze(text string) *Analysis {
	a := &Analysis{Spools: []Spool{}}

	f := gcode.Tokenize(text)
	p, _ := s.registry.Detect(f)
	if p == nil {
		return a
	}
	a.Brand = p.Manufacturer
	a.Printer = p.Model
	a.Profile = p.ID

	changes := inject.DetectChanges(f, p)
	a.ToolChanges = len(changes)

	// Tools keep the position of their first sighting; later sightings
	// update the material.
	index := map[int]int{}
	set := func(tool int, plastic string) {
		if i, ok := index[tool]; ok {
			a.Spools[i].Plastic = plastic
			return
		}
		index[tool] = len(a.Spools)
		a.Spools = append(a.Spools, Spool{Tool: tool, Plastic: plastic})
	}
	for _, change := range changes {
		if change.FromFilament != nil {
			set(change.FromTool, string(change.FromFilament.Type))
		}
		if change.ToFilament != nil {
			set(change.ToTool, string(change.ToFilament.Type))
		}
	}

	return a
}

// AnalyzeFile reads and analyzes a .gcode file.
func (s *Service) AnalyzeFile(path string) (*Analysis, error) {
	text, err := readGCode(path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(text), nil
}
