// Package filament describes filament materials and the length, volume and
// mass conversions used for purge accounting.
package filament

import (
	"math"
	"strings"
)

// Type is a filament material family.
type Type string

const (
	PLA     Type = "PLA"
	PETG    Type = "PETG"
	ABS     Type = "ABS"
	TPU     Type = "TPU"
	NYLON   Type = "NYLON"
	PVA     Type = "PVA"
	PC      Type = "PC"
	ASA     Type = "ASA"
	SUPPORT Type = "SUPPORT"
	UNKNOWN Type = "UNKNOWN"
)

// Types lists every known material in match order. PETG precedes PC so
// that "PETG" is not classified by a shorter substring.
var Types = []Type{PLA, PETG, ABS, TPU, NYLON, PVA, PC, ASA, SUPPORT}

// Default physical constants (mm, g/cm³).
const (
	DefaultDiameter = 1.75
	DefaultDensity  = 1.24
)

var densities = map[Type]float64{
	PLA:     1.24,
	PETG:    1.27,
	ABS:     1.04,
	TPU:     1.21,
	NYLON:   1.15,
	PVA:     1.23,
	PC:      1.20,
	ASA:     1.07,
	SUPPORT: 1.20,
	UNKNOWN: 1.24,
}

// Temperature holds target temperatures in °C.
type Temperature struct {
	Printing float64  `json:"printing" yaml:"printing"`
	Bed      float64  `json:"bed" yaml:"bed"`
	Chamber  *float64 `json:"chamber,omitempty" yaml:"chamber,omitempty"`
}

// Info describes the filament loaded in one tool.
type Info struct {
	ID          string      `json:"id" yaml:"id"`
	Type        Type        `json:"type" yaml:"type"`
	Brand       string      `json:"brand,omitempty" yaml:"brand,omitempty"`
	Color       string      `json:"color,omitempty" yaml:"color,omitempty"`
	Temperature Temperature `json:"temperature" yaml:"temperature"`
	Diameter    float64     `json:"diameter" yaml:"diameter"`
	Density     float64     `json:"density" yaml:"density"`
	Slot        *int        `json:"slot,omitempty" yaml:"slot,omitempty"`
}

// Density returns the density of a material in g/cm³.
func Density(t Type) float64 {
	if d, ok := densities[t]; ok {
		return d
	}
	return DefaultDensity
}

// ParseType classifies free text such as "Generic PETG" or "pla".
func ParseType(text string) Type {
	normalized := strings.ToUpper(text)
	for _, t := range Types {
		if strings.Contains(normalized, string(t)) {
			return t
		}
	}
	return UNKNOWN
}

// CrossSection returns the filament cross-section area in mm².
func CrossSection(diameter float64) float64 {
	r := diameter / 2
	return math.Pi * r * r
}

// LengthToVolume converts a filament length in mm to mm³.
func LengthToVolume(length, diameter float64) float64 {
	return length * CrossSection(diameter)
}

// VolumeToLength converts mm³ of filament to a length in mm.
func VolumeToLength(volume, diameter float64) float64 {
	return volume / CrossSection(diameter)
}

// Mass returns the mass in grams of a filament length.
func Mass(length, diameter, density float64) float64 {
	return LengthToVolume(length, diameter) / 1000 * density
}

// Hotend families with a tabulated melt zone.
const (
	HotendStandard = "standard"
	HotendVolcano  = "volcano"
	HotendDragon   = "dragon"
)

var meltZoneBase = map[string]float64{
	HotendStandard: 65,
	HotendVolcano:  110,
	HotendDragon:   75,
}

// EstimateMeltZoneVolume approximates a hotend melt zone in mm³, scaled
// from the 0.4 mm nozzle baseline. Unknown hotends use the standard base.
func EstimateMeltZoneVolume(nozzleDiameter float64, hotend string) float64 {
	base, ok := meltZoneBase[hotend]
	if !ok {
		base = meltZoneBase[HotendStandard]
	}
	return base * math.Sqrt(nozzleDiameter/0.4)
}

// OptimalPurge returns the purge length in mm that flushes the melt zone
// with the given safety factor applied.
func OptimalPurge(meltZoneVolume, diameter, safetyFactor float64) float64 {
	return VolumeToLength(meltZoneVolume*safetyFactor, diameter)
}
