package inject

import (
	"github.com/regain3d/regain/internal/filament"
)

// Waste accounting uses one filament for every change regardless of the
// profile or the loaded materials.
const (
	WasteFilamentDiameter = 1.75 // mm
	WasteFilamentDensity  = 1.24 // g/cm³
)

// WasteEstimate compares purge mass before and after rewriting, in grams.
type WasteEstimate struct {
	TotalChanges   int                       `json:"totalChanges"`
	PureWaste      map[filament.Type]float64 `json:"pureWaste"`
	MixedWaste     float64                   `json:"mixedWaste"`
	OriginalWaste  float64                   `json:"originalWaste"`
	SavingsPercent float64                   `json:"savingsPercent"`
}

// TotalPureWaste sums the pure waste over all materials.
func (w WasteEstimate) TotalPureWaste() float64 {
	total := 0.0
	for _, g := range w.PureWaste {
		total += g
	}
	return total
}

// OptimizedWaste is the purge mass after rewriting.
func (w WasteEstimate) OptimizedWaste() float64 {
	return w.TotalPureWaste() + w.MixedWaste
}

// Saved is the mass no longer purged.
func (w WasteEstimate) Saved() float64 {
	return w.OriginalWaste - w.OptimizedWaste()
}

func wasteMass(length float64) float64 {
	return filament.Mass(length, WasteFilamentDiameter, WasteFilamentDensity)
}

// EstimateWaste aggregates purge mass over changes and their calculations,
// which are paired by position. Pure waste is keyed by the material being
// purged out.
func EstimateWaste(changes []*FilamentChange, calcs []PurgeCalculation) WasteEstimate {
	est := WasteEstimate{
		TotalChanges: len(changes),
		PureWaste:    make(map[filament.Type]float64),
	}

	for i, calc := range calcs {
		if i >= len(changes) {
			break
		}
		t := filament.UNKNOWN
		if calc.FromFilament != nil {
			t = calc.FromFilament.Type
		}
		est.PureWaste[t] += wasteMass(calc.PurePurgeLength)
		est.MixedWaste += wasteMass(calc.MixedPurgeLength)
		est.OriginalWaste += wasteMass(changes[i].OriginalPurgeLength)
	}

	if est.OriginalWaste != 0 {
		est.SavingsPercent = est.Saved() / est.OriginalWaste * 100
	}
	return est
}
