package inject

import (
	"math"

	"github.com/regain3d/regain/internal/filament"
	"github.com/regain3d/regain/internal/profile"
)

// PurgeCalculation is the pure/mixed split for one change.
// Volumes are mm³, lengths mm.
type PurgeCalculation struct {
	TotalPurgeVolume float64        `json:"totalPurgeVolume"`
	MeltZoneVolume   float64        `json:"meltZoneVolume"`
	SafetyFactor     float64        `json:"safetyFactor"`
	FilamentDiameter float64        `json:"filamentDiameter"`
	PurePurgeVolume  float64        `json:"purePurgeVolume"`
	MixedPurgeVolume float64        `json:"mixedPurgeVolume"`
	PurePurgeLength  float64        `json:"purePurgeLength"`
	MixedPurgeLength float64        `json:"mixedPurgeLength"`
	FromFilament     *filament.Info `json:"fromFilament,omitempty"`
	ToFilament       *filament.Info `json:"toFilament,omitempty"`
	ChangeIndex      int            `json:"changeIndex"`
}

// TotalPurgeLength is the combined length of both stages.
func (c PurgeCalculation) TotalPurgeLength() float64 {
	return c.PurePurgeLength + c.MixedPurgeLength
}

// CalculatePurge splits a change's original purge into a pure stage sized
// to the melt zone and a mixed stage for the remainder.
//
// PurePurgeLength is never below calculations.minPurgeLength and
// MixedPurgeLength is never negative. The mixed stage is always the whole
// remainder; calculations.maxPurgeLength is profile data only.
func CalculatePurge(change *FilamentChange, p *profile.Profile) PurgeCalculation {
	hw := p.Hardware
	calc := p.Calculations

	cross := filament.CrossSection(hw.FilamentDiameter)
	total := change.OriginalPurgeLength * cross
	pure := hw.MeltZoneVolume * calc.SafetyFactor
	mixed := math.Max(0, total-pure)

	pureLength := math.Max(calc.MinPurgeLength, filament.OptimalPurge(hw.MeltZoneVolume, hw.FilamentDiameter, calc.SafetyFactor))
	mixedLength := math.Max(0, mixed/cross)

	return PurgeCalculation{
		TotalPurgeVolume: total,
		MeltZoneVolume:   hw.MeltZoneVolume,
		SafetyFactor:     calc.SafetyFactor,
		FilamentDiameter: hw.FilamentDiameter,
		PurePurgeVolume:  pure,
		MixedPurgeVolume: mixed,
		PurePurgeLength:  pureLength,
		MixedPurgeLength: mixedLength,
		FromFilament:     change.FromFilament,
		ToFilament:       change.ToFilament,
		ChangeIndex:      change.Index,
	}
}
