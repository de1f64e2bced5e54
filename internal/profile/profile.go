// Package profile defines printer profiles and selects the one that matches
// a G-code file.
package profile

import (
	"fmt"

	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/filament"
)

// Detection controls how a profile is recognized in a G-code file.
type Detection struct {
	HeaderPatterns    []string `json:"headerPatterns" yaml:"headerPatterns"`       // regexes tried against the first lines
	CommandSignatures []string `json:"commandSignatures" yaml:"commandSignatures"` // command tokens that identify the firmware
	Priority          float64  `json:"priority" yaml:"priority"`                   // score multiplier, <= 0 means 1
}

// Position is a point in printer coordinates (mm).
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Hardware holds the physical constants of the printer.
type Hardware struct {
	NozzleDiameters  []float64 `json:"nozzleDiameters" yaml:"nozzleDiameters"`
	NozzleLength     float64   `json:"nozzleLength,omitempty" yaml:"nozzleLength,omitempty"`
	CutterPosition   *Position `json:"cutterPosition,omitempty" yaml:"cutterPosition,omitempty"`
	FilamentDiameter float64   `json:"filamentDiameter" yaml:"filamentDiameter"` // mm
	MeltZoneVolume   float64   `json:"meltZoneVolume" yaml:"meltZoneVolume"`     // mm³
	MaxFlowRate      float64   `json:"maxFlowRate" yaml:"maxFlowRate"`           // mm³/s
	HasCutter        bool      `json:"hasCutter" yaml:"hasCutter"`
	HasAMS           bool      `json:"hasAMS" yaml:"hasAMS"`
}

// ChangeSequence describes the tool-change block the slicer emits.
type ChangeSequence struct {
	StartTriggers    []string `json:"startTriggers" yaml:"startTriggers"` // token prefixes that open a block
	EndMarkers       []string `json:"endMarkers" yaml:"endMarkers"`       // exact tokens that close a block
	PurgePatterns    []string `json:"purgePatterns" yaml:"purgePatterns"` // regexes identifying purge moves
	CutterCommands   []string `json:"cutterCommands,omitempty" yaml:"cutterCommands,omitempty"`
	PreserveCommands []string `json:"preserveCommands" yaml:"preserveCommands"`
}

// Templates are the G-code snippets emitted for each purge stage.
type Templates struct {
	PrePurge     string `json:"prePurge" yaml:"prePurge"`
	PurgeStage1  string `json:"purgeStage1" yaml:"purgeStage1"`
	ESPPause     string `json:"espPause" yaml:"espPause"`
	PurgeStage2  string `json:"purgeStage2" yaml:"purgeStage2"`
	PostPurge    string `json:"postPurge" yaml:"postPurge"`
	Cooldown     string `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
	WipeSequence string `json:"wipeSequence,omitempty" yaml:"wipeSequence,omitempty"`
}

// Command formats understood by the flushing controller.
const (
	FormatM117   = "M117"
	FormatM118   = "M118"
	FormatM73    = "M73"
	FormatCustom = "custom"
)

// ESPMessages are the status strings sent to the flushing controller.
type ESPMessages struct {
	ChangeStart     string `json:"changeStart" yaml:"changeStart"`
	PurePurgeStart  string `json:"purePurgeStart" yaml:"purePurgeStart"`
	PurePurgeEnd    string `json:"purePurgeEnd" yaml:"purePurgeEnd"`
	MixedPurgeStart string `json:"mixedPurgeStart" yaml:"mixedPurgeStart"`
	MixedPurgeEnd   string `json:"mixedPurgeEnd" yaml:"mixedPurgeEnd"`
	ChangeEnd       string `json:"changeEnd" yaml:"changeEnd"`
	ValveSwitch     string `json:"valveSwitch" yaml:"valveSwitch"`
}

// ESPProtocol describes how messages reach the flushing controller.
type ESPProtocol struct {
	CommandFormat string      `json:"commandFormat" yaml:"commandFormat"`
	Messages      ESPMessages `json:"messages" yaml:"messages"`
}

// Injection holds the templates and variables used for rewriting.
type Injection struct {
	Templates   Templates         `json:"templates" yaml:"templates"`
	ESPProtocol ESPProtocol       `json:"espProtocol" yaml:"espProtocol"`
	Variables   map[string]string `json:"variables" yaml:"variables"`
}

// Calculations tunes the purge split.
type Calculations struct {
	SafetyFactor          float64 `json:"safetyFactor" yaml:"safetyFactor"`     // fraction of melt zone purged pure
	MinPurgeLength        float64 `json:"minPurgeLength" yaml:"minPurgeLength"` // mm
	MaxPurgeLength        float64 `json:"maxPurgeLength" yaml:"maxPurgeLength"` // mm, 0 disables the cap
	UsePulsedPurge        bool    `json:"usePulsedPurge" yaml:"usePulsedPurge"`
	PulseInterval         float64 `json:"pulseInterval,omitempty" yaml:"pulseInterval,omitempty"`
	TemperatureAdjustment bool    `json:"temperatureAdjustment" yaml:"temperatureAdjustment"`
}

// Profile is the full hardware and behavior description of one printer model.
// Sub-blocks are values so an absent block reads as its zero value.
type Profile struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Model        string `json:"model" yaml:"model"`
	Version      string `json:"version" yaml:"version"`

	Detection      Detection         `json:"detection" yaml:"detection"`
	Hardware       Hardware          `json:"hardware" yaml:"hardware"`
	ChangeSequence ChangeSequence    `json:"changeSequence" yaml:"changeSequence"`
	Injection      Injection         `json:"injection" yaml:"injection"`
	Calculations   Calculations      `json:"calculations" yaml:"calculations"`
	GCode          map[string]string `json:"gcode,omitempty" yaml:"gcode,omitempty"`

	// Source is where the profile was loaded from (file path or "builtin").
	Source string `json:"-" yaml:"-"`
}

// Default values.
const (
	DefaultPriority      = 1
	DefaultSafetyFactor  = 0.9
	DefaultNozzle        = 0.4
	DefaultCommandFormat = FormatM117
)

// ApplyDefaults fills zero values so detection and calculation code can use
// every field directly.
func (p *Profile) ApplyDefaults() {
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Detection.Priority <= 0 {
		p.Detection.Priority = DefaultPriority
	}
	if len(p.Hardware.NozzleDiameters) == 0 {
		p.Hardware.NozzleDiameters = []float64{DefaultNozzle}
	}
	if p.Hardware.FilamentDiameter <= 0 {
		p.Hardware.FilamentDiameter = filament.DefaultDiameter
	}
	if p.Hardware.MeltZoneVolume <= 0 {
		p.Hardware.MeltZoneVolume = filament.EstimateMeltZoneVolume(p.Hardware.NozzleDiameters[0], filament.HotendStandard)
	}
	if p.Calculations.SafetyFactor <= 0 {
		p.Calculations.SafetyFactor = DefaultSafetyFactor
	}
	if p.Injection.ESPProtocol.CommandFormat == "" {
		p.Injection.ESPProtocol.CommandFormat = DefaultCommandFormat
	}
	if p.Injection.Variables == nil {
		p.Injection.Variables = map[string]string{}
	}
}

// Validate checks that the profile can drive the injection engine.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.ProfileInvalid("(unnamed)", "id is required")
	}
	if p.Hardware.FilamentDiameter <= 0 {
		return errors.ProfileInvalid(p.ID, "hardware.filamentDiameter must be positive")
	}
	if p.Hardware.MeltZoneVolume < 0 {
		return errors.ProfileInvalid(p.ID, "hardware.meltZoneVolume must not be negative")
	}
	if sf := p.Calculations.SafetyFactor; sf <= 0 || sf > 1 {
		return errors.ProfileInvalid(p.ID, fmt.Sprintf("calculations.safetyFactor must be in (0, 1], got %g", sf))
	}
	if p.Calculations.MinPurgeLength < 0 {
		return errors.ProfileInvalid(p.ID, "calculations.minPurgeLength must not be negative")
	}
	if limit := p.Calculations.MaxPurgeLength; limit > 0 && limit < p.Calculations.MinPurgeLength {
		return errors.ProfileInvalid(p.ID, "calculations.maxPurgeLength is below minPurgeLength")
	}
	for _, group := range [][]string{p.Detection.HeaderPatterns, p.ChangeSequence.PurgePatterns} {
		for _, pattern := range group {
			if _, err := CompilePattern(pattern); err != nil {
				return errors.ProfileInvalid(p.ID, fmt.Sprintf("bad pattern %q: %v", pattern, err))
			}
		}
	}
	return nil
}

// Summary is the short identity shown in listings.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// Summary returns the identity fields of the profile.
func (p *Profile) Summary() Summary {
	return Summary{
		ID:           p.ID,
		Name:         p.Name,
		Manufacturer: p.Manufacturer,
		Model:        p.Model,
	}
}
