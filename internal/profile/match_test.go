package profile

import (
	"testing"

	"github.com/regain3d/regain/internal/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bambuHeader = `; HEADER_BLOCK_START
; BambuStudio 01.08.04.51
; generated by BambuStudio 01.08.04.51
; printer_model = Bambu Lab X1 Carbon
; HEADER_BLOCK_END
G28
M620 S1A
T1
M621 S1A
`

func bambuProfile() *Profile {
	p := &Profile{
		ID:           "bambulab-x1c",
		Manufacturer: "Bambu",
		Model:        "X1 Carbon",
		Detection: Detection{
			HeaderPatterns:    []string{`BambuStudio`, `HEADER_BLOCK_START`},
			CommandSignatures: []string{"M620", "M621"},
		},
	}
	p.ApplyDefaults()
	return p
}

func TestScore(t *testing.T) {
	f := gcode.Tokenize(bambuHeader)

	tests := []struct {
		name    string
		profile *Profile
		want    float64
	}{
		{
			name:    "headers signatures generator and model",
			profile: bambuProfile(),
			want:    10 + 10 + 5 + 5 + 20 + 30,
		},
		{
			name: "signature counted once regardless of occurrences",
			profile: &Profile{
				ID:        "sig",
				Detection: Detection{CommandSignatures: []string{"G28", "M104"}},
			},
			want: 5,
		},
		{
			name: "priority multiplies",
			profile: &Profile{
				ID:        "prio",
				Detection: Detection{HeaderPatterns: []string{`BambuStudio`}, Priority: 2},
			},
			want: 20,
		},
		{
			name: "non-positive priority counts as one",
			profile: &Profile{
				ID:        "neg",
				Detection: Detection{HeaderPatterns: []string{`BambuStudio`}, Priority: -3},
			},
			want: 10,
		},
		{
			name: "invalid regex scores nothing",
			profile: &Profile{
				ID:        "bad",
				Detection: Detection{HeaderPatterns: []string{`([`}},
			},
			want: 0,
		},
		{
			name: "manufacturer match is case-insensitive",
			profile: &Profile{
				ID:           "case",
				Manufacturer: "bambustudio",
			},
			want: 20,
		},
		{
			name: "empty manufacturer and model earn nothing",
			profile: &Profile{
				ID: "empty",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(f, tt.profile), 1e-9)
		})
	}
}

func TestScore_HeaderOnlyInFirstLines(t *testing.T) {
	text := ""
	for i := 0; i < HeaderScanLines; i++ {
		text += "G1 X1\n"
	}
	text += "; PrusaSlicer\n"

	p := &Profile{ID: "late", Detection: Detection{HeaderPatterns: []string{`PrusaSlicer`}}}
	assert.Zero(t, Score(gcode.Tokenize(text), p))
}

func TestSelect_TieGoesToFirst(t *testing.T) {
	f := gcode.Tokenize("; generated by SomeSlicer\nG28\n")

	first := &Profile{ID: "first", Detection: Detection{HeaderPatterns: []string{`SomeSlicer`}, Priority: 1.2}}
	second := &Profile{ID: "second", Detection: Detection{HeaderPatterns: []string{`generated`}, Priority: 1.2}}

	best, score := Select(f, []*Profile{first, second})
	require.NotNil(t, best)
	assert.Equal(t, "first", best.ID)
	assert.InDelta(t, 12, score, 1e-9)

	best, _ = Select(f, []*Profile{second, first})
	assert.Equal(t, "second", best.ID)
}

func TestSelect_HighestWins(t *testing.T) {
	f := gcode.Tokenize(bambuHeader)
	weak := &Profile{ID: "weak", Detection: Detection{CommandSignatures: []string{"G28"}}}

	best, _ := Select(f, []*Profile{weak, bambuProfile()})
	require.NotNil(t, best)
	assert.Equal(t, "bambulab-x1c", best.ID)
}

func TestSelect_NoMatch(t *testing.T) {
	f := gcode.Tokenize("G28\nG1 X10 Y10\n")
	best, score := Select(f, []*Profile{bambuProfile()})
	assert.Nil(t, best)
	assert.Zero(t, score)

	best, _ = Select(f, nil)
	assert.Nil(t, best)
}
