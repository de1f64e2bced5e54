package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	commandPattern   = regexp.MustCompile(`^[GMTF]\d+`)
	parameterPattern = regexp.MustCompile(`^[A-Z][\d.\-]+$`)
)

// textCommands take free text after the command word.
var textCommands = map[string]bool{
	"M117": true,
	"M118": true,
}

// LineError is a syntax problem on a 1-based line.
type LineError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Errors     []LineError `json:"errors"`
	TotalLines int         `json:"totalLines"`
}

// ValidateLine checks one G-code line and returns every problem found.
// Blank lines and comments are valid. Strict mode also requires every
// parameter to be a letter followed by a number; anything after ';' is
// ignored and M117/M118 take free text.
func ValidateLine(line string, strict bool) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ";") {
		return nil
	}

	var problems []string
	if !commandPattern.MatchString(trimmed) {
		problems = append(problems, "Invalid command format")
	}
	if strings.Contains(trimmed, "M620") && !strings.Contains(trimmed, "S") {
		problems = append(problems, "M620 missing S parameter")
	}
	if strict && len(problems) == 0 {
		if err := checkParameters(trimmed); err != nil {
			problems = append(problems, err.Error())
		}
	}
	return problems
}

func checkParameters(trimmed string) error {
	if i := strings.IndexByte(trimmed, ';'); i >= 0 {
		trimmed = trimmed[:i]
	}
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 || textCommands[tokens[0]] {
		return nil
	}
	for _, token := range tokens[1:] {
		if !parameterPattern.MatchString(token) {
			return fmt.Errorf("Invalid parameter format: %s", token)
		}
	}
	return nil
}

// Validate checks every line of text.
func (s *Service) Validate(text string, strict bool) *ValidationResult {
	lines := strings.Split(text, "\n")
	res := &ValidationResult{
		Errors:     []LineError{},
		TotalLines: len(lines),
	}

	for i, line := range lines {
		for _, problem := range ValidateLine(line, strict) {
			res.Errors = append(res.Errors, LineError{Line: i + 1, Error: problem})
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateFile reads and validates a .gcode file.
func (s *Service) ValidateFile(path string, strict bool) (*ValidationResult, error) {
	text, err := readGCode(path)
	if err != nil {
		return nil, err
	}
	return s.Validate(text, strict), nil
}
