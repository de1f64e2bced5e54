package inject

import (
	"testing"

	"github.com/regain3d/regain/internal/gcode"
	"github.com/regain3d/regain/internal/profile"
	"github.com/stretchr/testify/require"
)

// sampleGCode has two change blocks: lines 4-9 and 11-14.
const sampleGCode = `; generated by BambuStudio 01.08.04.51
; filament_type = PLA;PETG
G28
G1 X10 Y20 Z0.2 F3000
M620 S1A
T1
G1 E30 F300
G1 E20 F300
G1 X5 E2
M621 S1A
G1 X30 Y40
M620 S0A
T0
G1 E50 F300
M621 S0A
G1 X0
`

func testProfile() *profile.Profile {
	p := &profile.Profile{
		ID:           "test-x1",
		Manufacturer: "Bambu",
		Model:        "X1",
		Detection: profile.Detection{
			HeaderPatterns:    []string{`BambuStudio`},
			CommandSignatures: []string{"M620"},
		},
		Hardware: profile.Hardware{
			FilamentDiameter: 1.75,
			MeltZoneVolume:   65,
		},
		ChangeSequence: profile.ChangeSequence{
			StartTriggers: []string{"M620"},
			EndMarkers:    []string{"M621"},
			PurgePatterns: []string{`^G1 E`},
		},
		Injection: profile.Injection{
			Templates: profile.Templates{
				PrePurge:    "M400",
				PurgeStage1: "G1 E{purge_length} F{purge_speed}",
				ESPPause:    "M117 {esp_pure_purge_end}\nM400 U1",
				PurgeStage2: "G1 E{purge_length} F{purge_speed}",
				PostPurge:   "; done T{to_tool}",
			},
			ESPProtocol: profile.ESPProtocol{
				Messages: profile.ESPMessages{PurePurgeEnd: "PURE_DONE"},
			},
			Variables: map[string]string{"purge_speed": "300"},
		},
		Calculations: profile.Calculations{
			SafetyFactor:   0.9,
			MinPurgeLength: 5,
		},
	}
	p.ApplyDefaults()
	return p
}

func sampleChanges(t *testing.T) []*FilamentChange {
	t.Helper()
	changes := DetectChanges(gcode.Tokenize(sampleGCode), testProfile())
	require.Len(t, changes, 2)
	return changes
}
