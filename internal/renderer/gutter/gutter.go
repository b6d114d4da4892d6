// Package gutter provides the line number gutter model for the editor.
//
// The gutter is the area to the left of the text content that displays
// line numbers. Its width follows the number of decimal digits in the
// largest line number; Layout maps visible lines to label positions.
package gutter

import (
	"sync"

	"github.com/dshills/mcode/internal/renderer/core"
)

// Config holds gutter configuration.
type Config struct {
	// ShowLineNumbers enables line number display. A hidden gutter has
	// zero width.
	ShowLineNumbers bool

	// Margin is the fixed extra width added to the digit columns.
	Margin int

	// RightPadding is the space kept between the labels and the text.
	RightPadding int

	// GlyphAdvance is the width of one digit. Terminal cells are 1.
	GlyphAdvance int
}

// DefaultConfig returns the default gutter configuration.
func DefaultConfig() Config {
	return Config{
		ShowLineNumbers: true,
		Margin:          2,
		RightPadding:    1,
		GlyphAdvance:    1,
	}
}

// State is the derived gutter geometry.
type State struct {
	Digits int
	Width  int
}

// HeightFunc returns the height of a line in rows.
type HeightFunc func(line int) int

// Geometry describes where lines sit relative to the gutter rectangle.
type Geometry struct {
	// LineCount is the number of lines in the document.
	LineCount int

	// FirstLine is the 0-based index of the first line whose extent may
	// intersect the rectangle.
	FirstLine int

	// FirstTop is the top of FirstLine relative to the rectangle top.
	// It is negative when the line is partially scrolled out.
	FirstTop int

	// Height supplies line heights. Nil means every line is one row.
	Height HeightFunc
}

// Label is one visible line number.
type Label struct {
	// Number is the 1-based line number.
	Number int

	// Top is the screen row of the line's first row.
	Top int

	// Height is the line height in rows.
	Height int

	// Current marks the line holding the caret.
	Current bool
}

// Gutter manages the line number area.
type Gutter struct {
	mu sync.RWMutex

	config Config

	lineCount   int
	currentLine int
	state       State

	onMarginChange func(width int)

	// Labels from the last Layout, kept valid across Scroll while the
	// line count does not change.
	labels     []Label
	labelsRect core.ScreenRect
	labelCount int
	valid      bool
}

// New creates a new gutter with the given configuration.
func New(config Config) *Gutter {
	if config.GlyphAdvance < 1 {
		config.GlyphAdvance = 1
	}
	g := &Gutter{config: config, lineCount: 1}
	g.state = calculateState(config, 1)
	return g
}

// Digits returns the number of decimal digits of max(1, n).
func Digits(n int) int {
	if n < 1 {
		n = 1
	}
	return countDigits(n)
}

// WidthFor returns margin + advance*Digits(lineCount).
func WidthFor(lineCount, advance, margin int) int {
	return margin + advance*Digits(lineCount)
}

// Width returns the current gutter width.
func (g *Gutter) Width() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.Width
}

// State returns the derived digit count and width.
func (g *Gutter) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Config returns the current configuration.
func (g *Gutter) Config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// OnMarginChange registers fn to be called with the new width whenever
// the gutter width changes. It replaces any earlier callback.
func (g *Gutter) OnMarginChange(fn func(width int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onMarginChange = fn
}

// SetConfig updates the gutter configuration.
func (g *Gutter) SetConfig(config Config) {
	if config.GlyphAdvance < 1 {
		config.GlyphAdvance = 1
	}
	g.update(func() {
		g.config = config
		g.valid = false
	})
}

// SetGlyphAdvance updates the digit width.
func (g *Gutter) SetGlyphAdvance(advance int) {
	if advance < 1 {
		advance = 1
	}
	g.update(func() {
		g.config.GlyphAdvance = advance
	})
}

// SetLineCount updates the total line count.
func (g *Gutter) SetLineCount(count int) {
	if count < 1 {
		count = 1
	}
	g.update(func() {
		if count != g.lineCount {
			g.valid = false
		}
		g.lineCount = count
	})
}

// LineCount returns the line count the width was derived from.
func (g *Gutter) LineCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lineCount
}

// SetCurrentLine updates the 0-based caret line.
func (g *Gutter) SetCurrentLine(line int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentLine = line
	for i := range g.labels {
		g.labels[i].Current = g.labels[i].Number-1 == line
	}
}

// update applies fn and recomputes the state, firing the margin callback
// outside the lock when the width changed.
func (g *Gutter) update(fn func()) {
	g.mu.Lock()
	old := g.state.Width
	fn()
	g.state = calculateState(g.config, g.lineCount)
	cb := g.onMarginChange
	width := g.state.Width
	g.mu.Unlock()

	if width != old && cb != nil {
		cb(width)
	}
}

// Layout computes the labels for the lines intersecting rect, top to
// bottom, and caches them.
func (g *Gutter) Layout(geom Geometry, rect core.ScreenRect) []Label {
	g.mu.Lock()
	defer g.mu.Unlock()

	height := geom.Height
	if height == nil {
		height = func(int) int { return 1 }
	}

	var labels []Label
	top := rect.Top + geom.FirstTop
	for line := max(geom.FirstLine, 0); line < geom.LineCount; line++ {
		if top >= rect.Bottom {
			break
		}
		h := max(height(line), 1)
		if top+h > rect.Top {
			labels = append(labels, Label{
				Number:  line + 1,
				Top:     top,
				Height:  h,
				Current: line == g.currentLine,
			})
		}
		top += h
	}

	g.labels = labels
	g.labelsRect = rect
	g.labelCount = geom.LineCount
	g.valid = true
	return append([]Label(nil), labels...)
}

// Scroll shifts the cached labels by dy rows. It returns false, and the
// cache becomes invalid, when the line count changed since the last Layout
// or the shifted labels no longer cover the rectangle.
func (g *Gutter) Scroll(dy int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.valid || g.labelCount != g.lineCount {
		g.valid = false
		return false
	}

	rect := g.labelsRect
	kept := g.labels[:0]
	for _, l := range g.labels {
		l.Top += dy
		if l.Top < rect.Bottom && l.Top+l.Height > rect.Top {
			kept = append(kept, l)
		}
	}
	g.labels = kept
	g.valid = g.covers()
	return g.valid
}

// covers reports whether the cached labels fill the rectangle, allowing
// for the document ending or starting inside it.
func (g *Gutter) covers() bool {
	rect := g.labelsRect
	if len(g.labels) == 0 {
		return false
	}
	first := g.labels[0]
	last := g.labels[len(g.labels)-1]
	if first.Top > rect.Top && first.Number != 1 {
		return false
	}
	if last.Top+last.Height < rect.Bottom && last.Number != g.lineCount {
		return false
	}
	return true
}

// Labels returns the cached labels and whether they are valid.
func (g *Gutter) Labels() ([]Label, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Label(nil), g.labels...), g.valid
}

// Invalidate forces the next render to call Layout.
func (g *Gutter) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.valid = false
}

// Valid reports whether the cached labels can be drawn as is.
func (g *Gutter) Valid() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.valid
}

// FormatLabel returns the gutter text for a line number: the number right
// aligned inside Width-RightPadding, followed by the padding.
func (g *Gutter) FormatLabel(number int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.state.Width == 0 {
		return ""
	}
	area := max(g.state.Width-g.config.RightPadding, 0)
	s := PadLeft(FormatNumber(max(number, 0)), area)
	return PadRight(s, g.state.Width)
}

func calculateState(config Config, lineCount int) State {
	digits := Digits(lineCount)
	if !config.ShowLineNumbers {
		return State{Digits: digits}
	}
	return State{
		Digits: digits,
		Width:  WidthFor(lineCount, config.GlyphAdvance, config.Margin),
	}
}
