package integration

import (
	"strings"
	"testing"
)

// Asserter provides assertion helpers for optimized G-code.
type Asserter struct {
	t       *testing.T
	content string
}

// NewAsserter creates an asserter for the given content.
func NewAsserter(t *testing.T, content string) *Asserter {
	return &Asserter{t: t, content: content}
}

// ContainsText checks if the content contains a substring.
func (a *Asserter) ContainsText(text string) bool {
	return strings.Contains(a.content, text)
}

// Count returns how many lines equal line after trimming.
func (a *Asserter) Count(line string) int {
	n := 0
	for _, l := range strings.Split(a.content, "\n") {
		if strings.TrimSpace(l) == line {
			n++
		}
	}
	return n
}

// InOrder reports whether every text occurs after the previous one.
func (a *Asserter) InOrder(texts ...string) bool {
	rest := a.content
	for _, text := range texts {
		i := strings.Index(rest, text)
		if i < 0 {
			return false
		}
		rest = rest[i+len(text):]
	}
	return true
}

// RunAssertions runs the output assertions of a fixture definition.
func (a *Asserter) RunAssertions(assertions FixtureAssertions) {
	a.t.Helper()

	for _, text := range assertions.Contains {
		if !a.ContainsText(text) {
			a.t.Errorf("expected output to contain %q", text)
		}
	}

	for _, text := range assertions.NotContains {
		if a.ContainsText(text) {
			a.t.Errorf("expected output NOT to contain %q", text)
		}
	}

	if len(assertions.Order) > 0 && !a.InOrder(assertions.Order...) {
		a.t.Errorf("expected output to contain %q in order", assertions.Order)
	}

	for line, want := range assertions.LineCounts {
		if got := a.Count(line); got != want {
			a.t.Errorf("expected %d lines equal to %q, got %d", want, line, got)
		}
	}
}
