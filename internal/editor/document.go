package editor

import (
	"fmt"
	"strings"

	"github.com/dshills/mcode/internal/engine/history"
)

// Position is a 0-based line and byte column.
type Position struct {
	Line int
	Col  int
}

// LineChange describes which lines a replacement touched. Lines
// [First, First+OldCount) were replaced by [First, First+NewCount).
type LineChange struct {
	First    int
	OldCount int
	NewCount int
}

// Delta returns the change in line count.
func (c LineChange) Delta() int {
	return c.NewCount - c.OldCount
}

// Document is a line-based text store. Lines never contain '\n'; a
// document always has at least one line.
type Document struct {
	lines []string
	size  int
}

// NewDocument creates a document holding text.
func NewDocument(text string) *Document {
	d := &Document{}
	d.SetText(text)
	return d
}

// SetText replaces the whole content.
func (d *Document) SetText(text string) {
	d.lines = strings.Split(text, "\n")
	d.size = len(text)
}

// Text returns the whole content.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// Len returns the content length in bytes.
func (d *Document) Len() int {
	return d.size
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns line i, or "" when out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// LineStart returns the offset of the first byte of line i.
func (d *Document) LineStart(i int) int {
	i = min(max(i, 0), len(d.lines)-1)
	off := 0
	for l := 0; l < i; l++ {
		off += len(d.lines[l]) + 1
	}
	return off
}

// OffsetOf converts a position to a byte offset, clamping out of range
// values.
func (d *Document) OffsetOf(pos Position) int {
	line := min(max(pos.Line, 0), len(d.lines)-1)
	col := min(max(pos.Col, 0), len(d.lines[line]))
	return d.LineStart(line) + col
}

// PositionOf converts a byte offset to a position.
func (d *Document) PositionOf(offset int) Position {
	offset = min(max(offset, 0), d.size)
	for i, l := range d.lines {
		if offset <= len(l) {
			return Position{Line: i, Col: offset}
		}
		offset -= len(l) + 1
	}
	last := len(d.lines) - 1
	return Position{Line: last, Col: len(d.lines[last])}
}

// TextRange returns the text in [start, end).
func (d *Document) TextRange(start, end int) string {
	if start >= end {
		return ""
	}
	a := d.PositionOf(start)
	b := d.PositionOf(end)
	if a.Line == b.Line {
		return d.lines[a.Line][a.Col:b.Col]
	}

	var sb strings.Builder
	sb.WriteString(d.lines[a.Line][a.Col:])
	for l := a.Line + 1; l < b.Line; l++ {
		sb.WriteByte('\n')
		sb.WriteString(d.lines[l])
	}
	sb.WriteByte('\n')
	sb.WriteString(d.lines[b.Line][:b.Col])
	return sb.String()
}

// Replace replaces [start, end) with text.
func (d *Document) Replace(start, end int, text string) (LineChange, error) {
	if start < 0 || end < start || end > d.size {
		return LineChange{}, fmt.Errorf("%w: [%d,%d) in document of %d bytes", history.ErrInvalidRange, start, end, d.size)
	}

	a := d.PositionOf(start)
	b := d.PositionOf(end)
	joined := d.lines[a.Line][:a.Col] + text + d.lines[b.Line][b.Col:]
	repl := strings.Split(joined, "\n")

	lines := make([]string, 0, len(d.lines)-(b.Line-a.Line+1)+len(repl))
	lines = append(lines, d.lines[:a.Line]...)
	lines = append(lines, repl...)
	lines = append(lines, d.lines[b.Line+1:]...)
	d.lines = lines
	d.size += len(text) - (end - start)

	return LineChange{
		First:    a.Line,
		OldCount: b.Line - a.Line + 1,
		NewCount: len(repl),
	}, nil
}
