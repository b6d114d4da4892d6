// Package indent computes the indentation inserted after a line break.
//
// The policy is a heuristic, not a parser: the new line copies the current
// line's leading whitespace verbatim and gains one extra unit when the
// current line's trimmed text ends with a colon. It never dedents and does
// not look at brackets.
package indent

import (
	"strings"
	"unicode"
)

// DefaultUnit is the unit appended after a line ending in ':'.
const DefaultUnit = "    "

// Engine computes break indentation with a configurable unit.
type Engine struct {
	unit string
}

// New creates an engine. An empty unit selects DefaultUnit.
func New(unit string) *Engine {
	if unit == "" {
		unit = DefaultUnit
	}
	return &Engine{unit: unit}
}

// Unit returns the indent unit.
func (e *Engine) Unit() string {
	return e.unit
}

// ComputeBreakIndent returns the indentation for the line following line.
func (e *Engine) ComputeBreakIndent(line string) string {
	indent := LeadingWhitespace(line)
	if strings.HasSuffix(strings.TrimSpace(line), ":") {
		indent += e.unit
	}
	return indent
}

// BreakText returns the text inserted for a line break typed on line.
func (e *Engine) BreakText(line string) string {
	return "\n" + e.ComputeBreakIndent(line)
}

// ComputeBreakIndent uses DefaultUnit.
func ComputeBreakIndent(line string) string {
	return New(DefaultUnit).ComputeBreakIndent(line)
}

// LeadingWhitespace returns the whitespace prefix of line, unchanged.
func LeadingWhitespace(line string) string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	return line[:len(line)-len(rest)]
}
