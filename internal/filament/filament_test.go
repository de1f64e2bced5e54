package filament

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"PLA", PLA},
		{"Generic PETG", PETG},
		{"pc blend", PC},
		{"Bambu Support W", SUPPORT},
		{"asa", ASA},
		{"", UNKNOWN},
		{"wood", UNKNOWN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseType(tt.in), tt.in)
	}
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 1.24, Density(PLA))
	assert.Equal(t, 1.04, Density(ABS))
	assert.Equal(t, DefaultDensity, Density(Type("CARBON")))
}

func TestConversions(t *testing.T) {
	area := CrossSection(1.75)
	assert.InDelta(t, 2.4053, area, 1e-4)

	vol := LengthToVolume(50, 1.75)
	assert.InDelta(t, 120.27, vol, 0.01)
	assert.InDelta(t, 50, VolumeToLength(vol, 1.75), 1e-9)

	// 1000 mm of 1.75 PLA is just under 3 g.
	assert.InDelta(t, 2.98, Mass(1000, 1.75, 1.24), 0.01)
}

func TestEstimateMeltZoneVolume(t *testing.T) {
	assert.InDelta(t, 65, EstimateMeltZoneVolume(0.4, HotendStandard), 1e-9)
	assert.InDelta(t, 110*math.Sqrt(2), EstimateMeltZoneVolume(0.8, HotendVolcano), 1e-9)
	assert.InDelta(t, 65, EstimateMeltZoneVolume(0.4, "mystery"), 1e-9)
}

func TestOptimalPurge(t *testing.T) {
	assert.InDelta(t, 24.32, OptimalPurge(65, 1.75, 0.9), 0.01)
}
