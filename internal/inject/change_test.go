package inject

import (
	"testing"

	"github.com/regain3d/regain/internal/filament"
	"github.com/regain3d/regain/internal/gcode"
	"github.com/regain3d/regain/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChanges(t *testing.T) {
	changes := DetectChanges(gcode.Tokenize(sampleGCode), testProfile())
	require.Len(t, changes, 2)

	first := changes[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 4, first.StartLine)
	assert.Equal(t, 9, first.EndLine)
	assert.Equal(t, 0, first.FromTool)
	assert.Equal(t, 1, first.ToTool)
	assert.InDelta(t, 50, first.OriginalPurgeLength, 1e-9, "G1 X5 E2 does not match the purge pattern")
	assert.Equal(t, profile.Position{X: 10, Y: 20, Z: 0.2}, first.Position)
	require.NotNil(t, first.FromFilament)
	require.NotNil(t, first.ToFilament)
	assert.Equal(t, filament.PLA, first.FromFilament.Type)
	assert.Equal(t, filament.PETG, first.ToFilament.Type)
	assert.Nil(t, first.Calculation)

	second := changes[1]
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 11, second.StartLine)
	assert.Equal(t, 14, second.EndLine)
	assert.Equal(t, 1, second.FromTool)
	assert.Equal(t, 0, second.ToTool)
	assert.InDelta(t, 50, second.OriginalPurgeLength, 1e-9)
	assert.Equal(t, profile.Position{X: 30, Y: 40, Z: 0.2}, second.Position)
}

func TestDetectChanges_Ordering(t *testing.T) {
	text := "M620 S2\nG1 E5\nM621\nM620 S3\nM621\nM620 S1\nG1 E1\nM621\n"
	changes := DetectChanges(gcode.Tokenize(text), testProfile())
	require.Len(t, changes, 3)

	assert.Equal(t, 0, changes[0].FromTool)
	for i := 1; i < len(changes); i++ {
		assert.Greater(t, changes[i].StartLine, changes[i-1].StartLine)
		assert.Equal(t, changes[i-1].ToTool, changes[i].FromTool)
	}
}

func TestDetectChanges_NestedTriggerRestartsBlock(t *testing.T) {
	text := "M620 S1\nG1 E10\nM620 S2\nG1 E7\nM621\n"
	changes := DetectChanges(gcode.Tokenize(text), testProfile())
	require.Len(t, changes, 1)

	assert.Equal(t, 0, changes[0].Index)
	assert.Equal(t, 2, changes[0].StartLine)
	assert.Equal(t, 4, changes[0].EndLine)
	assert.Equal(t, 2, changes[0].ToTool)
	assert.Equal(t, 0, changes[0].FromTool)
	assert.InDelta(t, 7, changes[0].OriginalPurgeLength, 1e-9)
}

func TestDetectChanges_UnterminatedBlock(t *testing.T) {
	changes := DetectChanges(gcode.Tokenize("M620 S1\nG1 E10\n"), testProfile())
	assert.Empty(t, changes)
}

func TestDetectChanges_EndMarkerOutsideBlock(t *testing.T) {
	changes := DetectChanges(gcode.Tokenize("M621\nG1 E10\nM621\n"), testProfile())
	assert.Empty(t, changes)
}

func TestDetectChanges_PatternCountedOnce(t *testing.T) {
	p := testProfile()
	p.ChangeSequence.PurgePatterns = []string{`^G1`, `E\d+`}

	changes := DetectChanges(gcode.Tokenize("M620 S1\nG1 E10\nG0 E5\nM621\n"), p)
	require.Len(t, changes, 1)
	assert.InDelta(t, 10, changes[0].OriginalPurgeLength, 1e-9, "only G1 moves count, once each")
}

func TestDetectChanges_PrefixTrigger(t *testing.T) {
	p := testProfile()
	p.ChangeSequence.StartTriggers = []string{"T"}
	p.ChangeSequence.EndMarkers = []string{"M400"}

	changes := DetectChanges(gcode.Tokenize("G28\nT3\nG1 E12\nM400\n"), p)
	require.Len(t, changes, 1)
	assert.Equal(t, 3, changes[0].ToTool, "tool number taken from T token without S")
}

func TestDetectChanges_NoSequence(t *testing.T) {
	p := &profile.Profile{ID: "empty"}
	assert.Empty(t, DetectChanges(gcode.Tokenize(sampleGCode), p))
}

func TestToolNumber(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"M620 S1", 1},
		{"M620 S1A", 1},
		{"M620 S12A", 12},
		{"M620 S2.7", 2},
		{"M620 SA", 0},
		{"M620", 0},
		{"T4", 4},
		{"T4 S2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			f := gcode.Tokenize(tt.line)
			assert.Equal(t, tt.want, toolNumber(&f.Commands[0]))
		})
	}
}

func TestDetectChanges_PurgeNeedsNumericE(t *testing.T) {
	p := testProfile()
	p.ChangeSequence.PurgePatterns = []string{`^G1`}

	text := "M620 S1\nG1 X5 F300\nG1 Eabc\nG1 E7.5 F300\nM621\n"
	changes := DetectChanges(gcode.Tokenize(text), p)
	require.Len(t, changes, 1)
	assert.InDelta(t, 7.5, changes[0].OriginalPurgeLength, 1e-9)
}
