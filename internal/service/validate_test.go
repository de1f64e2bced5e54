package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		strict bool
		want   []string
	}{
		{"blank", "   ", false, nil},
		{"comment", "; layer 2", false, nil},
		{"move", "G1 X10 Y-2.5 E.4 F3000", true, nil},
		{"tool", "T1", true, nil},
		{"inline comment", "G1 X1 ; travel to start", true, nil},
		{"lowercase command", "g1 X1", false, []string{"Invalid command format"}},
		{"unknown letter", "N10 G1 X1", false, []string{"Invalid command format"}},
		{"m620 without S", "M620 A", false, []string{"M620 missing S parameter"}},
		{"m620 with S", "M620 S1A", false, nil},
		{"strict bad parameter", "M620 S1A", true, []string{"Invalid parameter format: S1A"}},
		{"strict text command", "M117 Purging T1", true, nil},
		{"strict esp message", "M118 PURE_DONE", true, nil},
		{"loose bad parameter", "G1 Xabc", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLine(tt.line, tt.strict))
		})
	}
}

func TestValidate(t *testing.T) {
	svc, _ := newTestService(t)

	res := svc.Validate(sampleGCode, false)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 17, res.TotalLines)

	res = svc.Validate("G28\nhello\nM620 A\n", false)
	assert.False(t, res.Valid)
	assert.Equal(t, []LineError{
		{Line: 2, Error: "Invalid command format"},
		{Line: 3, Error: "M620 missing S parameter"},
	}, res.Errors)
	assert.Equal(t, 4, res.TotalLines)

	res = svc.Validate(sampleGCode, true)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 4)
}

func TestValidateFile(t *testing.T) {
	svc, root := newTestService(t)
	input := filepath.Join(root, "v.gcode")
	writeFile(t, input, "G28\n")

	res, err := svc.ValidateFile(input, false)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 2, res.TotalLines)
}
