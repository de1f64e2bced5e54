package inject

import (
	"testing"

	"github.com/regain3d/regain/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	vars := map[string]string{"a": "1", "b": "two", "esp-msg": "VALVE", "fan.speed": "255"}

	tests := []struct {
		name string
		tmpl string
		want []string
	}{
		{name: "empty", tmpl: "", want: nil},
		{name: "no placeholders", tmpl: "G28", want: []string{"G28"}},
		{name: "substitution", tmpl: "G1 E{a} ; {b}", want: []string{"G1 E1 ; two"}},
		{name: "repeated", tmpl: "{a}{a}", want: []string{"11"}},
		{name: "multi-line", tmpl: "M400\nG1 E{a}", want: []string{"M400", "G1 E1"}},
		{name: "unknown left literal", tmpl: "M117 {missing}", want: []string{"M117 {missing}"}},
		{name: "case-sensitive", tmpl: "{A}", want: []string{"{A}"}},
		{name: "values are not re-expanded", tmpl: "{c}", want: []string{"{a}"}},
		{name: "keys with dash and dot", tmpl: "M118 {esp-msg}\nM106 S{fan.speed}", want: []string{"M118 VALVE", "M106 S255"}},
		{name: "nested braces", tmpl: "{{a}}", want: []string{"{1}"}},
		{name: "whitespace is not a key", tmpl: "M117 { a }", want: []string{"M117 { a }"}},
	}

	vars["c"] = "{a}"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandTemplate(tt.tmpl, vars))
		})
	}
}

func TestUnresolvedPlaceholders(t *testing.T) {
	got := UnresolvedPlaceholders([]string{"M117 {x}", "G1 E5", "{y} {x}", "M118 {esp-msg} { z }"})
	assert.Equal(t, []string{"x", "y", "esp-msg"}, got)
	assert.Empty(t, UnresolvedPlaceholders([]string{"G28"}))
}

func TestVariables(t *testing.T) {
	p := testProfile()
	p.Injection.Variables["pure_purge_length"] = "overridden"
	change := &FilamentChange{Index: 1, FromTool: 2, ToTool: 3}
	calc := PurgeCalculation{PurePurgeLength: 24.3215, MixedPurgeLength: 25.6785}

	vars := Variables(change, calc, p)
	assert.Equal(t, "24.32", vars["pure_purge_length"])
	assert.Equal(t, "25.68", vars["mixed_purge_length"])
	assert.Equal(t, "50.00", vars["total_purge_length"])
	assert.Equal(t, "300", vars["purge_speed"])
	assert.Equal(t, "2", vars["from_tool"])
	assert.Equal(t, "3", vars["to_tool"])
	assert.Equal(t, "2", vars["change_number"])
	assert.Equal(t, "PURE_DONE", vars["esp_pure_purge_end"])
	assert.Equal(t, "M117", vars["esp_command"])
	assert.NotContains(t, vars, "esp_change_start")
	assert.NotContains(t, vars, "purge_length")
	assert.Equal(t, "overridden", p.Injection.Variables["pure_purge_length"], "profile map untouched")
}

func TestRewriteBlock(t *testing.T) {
	p := testProfile()
	change := &FilamentChange{Index: 0, FromTool: 0, ToTool: 1, OriginalPurgeLength: 50}
	calc := CalculatePurge(change, p)

	block := RewriteBlock(change, calc, p, BlockOptions{ESPEnabled: true})
	assert.Equal(t, []string{
		"M400",
		"G1 E24.32 F300",
		"M117 PURE_DONE",
		"M400 U1",
		"G1 E25.68 F300",
		"; done T1",
	}, block)
}

func TestRewriteBlock_ESPDisabled(t *testing.T) {
	p := testProfile()
	change := &FilamentChange{ToTool: 1, OriginalPurgeLength: 50}
	block := RewriteBlock(change, CalculatePurge(change, p), p, BlockOptions{})
	assert.NotContains(t, block, "M117 PURE_DONE")
	assert.Len(t, block, 4)
}

func TestRewriteBlock_Comments(t *testing.T) {
	p := testProfile()
	change := &FilamentChange{Index: 1, FromTool: 1, ToTool: 0, OriginalPurgeLength: 40}

	block := RewriteBlock(change, CalculatePurge(change, p), p, BlockOptions{AddComments: true, ESPEnabled: true})
	require.GreaterOrEqual(t, len(block), 5)
	assert.Equal(t, []string{
		"; === Regain3D Two-Stage Purge ===",
		"; Change 2: Tool 1 -> 0",
		"; Pure purge: 24.32mm",
		"; Mixed purge: 15.68mm",
		"; Total saving: 0.00mm",
	}, block[:5])
}

func TestRewriteBlock_EmptyTemplates(t *testing.T) {
	p := testProfile()
	p.Injection.Templates = profile.Templates{}
	change := &FilamentChange{OriginalPurgeLength: 50}
	assert.Empty(t, RewriteBlock(change, CalculatePurge(change, p), p, BlockOptions{ESPEnabled: true}))
}
