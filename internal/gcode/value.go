package gcode

import "strconv"

// ValueKind discriminates the two parameter value shapes.
type ValueKind int

const (
	Numeric ValueKind = iota
	Text
)

// Value is a parameter value: numeric when the token parsed as a float,
// otherwise the literal text.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{Kind: Numeric, Num: f}
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Kind: Text, Str: s}
}

// ParseValue classifies a raw parameter token.
func ParseValue(raw string) Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Number(f)
	}
	return TextValue(raw)
}

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	if v.Kind != Numeric {
		return 0, false
	}
	return v.Num, true
}

// IsNumeric reports whether the value parsed as a number.
func (v Value) IsNumeric() bool {
	return v.Kind == Numeric
}

func (v Value) String() string {
	if v.Kind == Numeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}
