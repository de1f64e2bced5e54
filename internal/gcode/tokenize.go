// Package gcode turns raw G-code text into a structured command stream.
package gcode

import (
	"regexp"
	"strings"
)

// commandPattern matches command tokens such as G1, M620, T0 or G29.1.
var commandPattern = regexp.MustCompile(`^[GMTF]\d+(\.\d+)?$`)

// Command is one line of a G-code program.
type Command struct {
	LineNumber int    // 0-based index into File.Lines
	Raw        string // verbatim line text
	Token      string // command token, empty when the line has none
	Params     map[byte]Value
	Comment    string // text after the first ';', trimmed
	IsComment  bool   // blank or comment-only line
}

// Param returns the value of a parameter letter.
func (c *Command) Param(letter byte) (Value, bool) {
	v, ok := c.Params[letter]
	return v, ok
}

// Has reports whether the command carries a parameter letter.
func (c *Command) Has(letter byte) bool {
	_, ok := c.Params[letter]
	return ok
}

// Float returns a numeric parameter. The second result is false when the
// parameter is absent or not numeric.
func (c *Command) Float(letter byte) (float64, bool) {
	v, ok := c.Params[letter]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// File is a tokenized G-code program.
type File struct {
	Commands []Command // one per line, same indexes as Lines
	Metadata Metadata
	Lines    []string // verbatim split of the input on "\n"
}

// Tokenize splits text into lines and parses each one.
// strings.Join(f.Lines, "\n") always reproduces text exactly.
func Tokenize(text string) *File {
	lines := strings.Split(text, "\n")
	f := &File{
		Commands: make([]Command, len(lines)),
		Lines:    lines,
	}

	for i, line := range lines {
		cmd := parseLine(i, line)
		if cmd.IsComment && cmd.Comment != "" {
			f.Metadata.absorb(cmd.Comment)
		}
		f.Commands[i] = cmd
	}

	return f
}

// String rejoins the lines.
func (f *File) String() string {
	return strings.Join(f.Lines, "\n")
}

// Head returns at most the first n lines.
func (f *File) Head(n int) []string {
	if n > len(f.Lines) {
		n = len(f.Lines)
	}
	return f.Lines[:n]
}

// HasCommand reports whether any line uses the given command token.
func (f *File) HasCommand(token string) bool {
	for i := range f.Commands {
		if f.Commands[i].Token == token {
			return true
		}
	}
	return false
}

func parseLine(n int, line string) Command {
	cmd := Command{
		LineNumber: n,
		Raw:        line,
		Params:     map[byte]Value{},
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		cmd.IsComment = true
		return cmd
	}
	if strings.HasPrefix(trimmed, ";") {
		cmd.IsComment = true
		cmd.Comment = strings.TrimSpace(trimmed[1:])
		return cmd
	}

	body := trimmed
	if i := strings.IndexByte(body, ';'); i >= 0 {
		cmd.Comment = strings.TrimSpace(body[i+1:])
		body = strings.TrimSpace(body[:i])
	}

	fields := strings.Fields(body)
	if len(fields) == 0 || !commandPattern.MatchString(fields[0]) {
		return cmd
	}
	cmd.Token = fields[0]

	for _, field := range fields[1:] {
		letter := field[0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		if letter < 'A' || letter > 'Z' {
			continue
		}
		cmd.Params[letter] = ParseValue(field[1:])
	}

	return cmd
}
