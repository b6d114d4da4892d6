// Package viewport tracks which part of a line-based document is visible.
package viewport

import (
	"sync"
)

// Viewport represents the visible portion of a document.
type Viewport struct {
	mu sync.RWMutex

	// Position in document (first visible line and column)
	topLine    int
	leftColumn int

	// Size in screen cells
	width  int
	height int

	margins MarginConfig

	// Document size
	lineCount int
}

// NewViewport creates a viewport with the given size.
// Width and height are clamped to a minimum of 1 to prevent underflow.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:     max(width, 1),
		height:    max(height, 1),
		margins:   DefaultMargins(),
		lineCount: 1,
	}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// LeftColumn returns the first visible column.
func (v *Viewport) LeftColumn() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.leftColumn
}

// Resize updates the viewport size.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = max(width, 1)
	v.height = max(height, 1)
	v.topLine = v.clampTop(v.topLine)
}

// SetMargins sets the scroll margins.
func (v *Viewport) SetMargins(m MarginConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.margins = m
}

// SetLineCount sets the number of lines in the document.
func (v *Viewport) SetLineCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lineCount = max(n, 1)
	v.topLine = v.clampTop(v.topLine)
}

// clampTop keeps the last line reachable at the top of the view.
func (v *Viewport) clampTop(top int) int {
	return min(max(top, 0), v.lineCount-1)
}

// VisibleLineRange returns the first and last visible lines (inclusive).
func (v *Viewport) VisibleLineRange() (start, end int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine, min(v.topLine+v.height, v.lineCount) - 1
}

// BufferToScreen converts a document position to viewport-relative cells.
func (v *Viewport) BufferToScreen(line, col int) (row, screenCol int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return line - v.topLine, col - v.leftColumn
}

// ScreenToBuffer converts viewport-relative cells to a document position.
func (v *Viewport) ScreenToBuffer(row, screenCol int) (line, col int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.clampTop(v.topLine + row), max(v.leftColumn+screenCol, 0)
}

// ScrollTo scrolls to show the given line at the top.
func (v *Viewport) ScrollTo(line int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.topLine = v.clampTop(line)
}

// ScrollBy scrolls by a delta number of lines and returns how many lines
// the view actually moved.
func (v *Viewport) ScrollBy(deltaLines int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.topLine
	v.topLine = v.clampTop(v.topLine + deltaLines)
	return v.topLine - old
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() int {
	return v.ScrollBy(-v.Height())
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() int {
	return v.ScrollBy(v.Height())
}

// ScrollToReveal scrolls minimally to reveal a position, keeping the
// margins around it. Returns true if scrolling occurred.
func (v *Viewport) ScrollToReveal(line, col int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	m := v.clampMargins()
	top, left := v.topLine, v.leftColumn

	// Vertical scroll
	if line < top+m.Top {
		top = line - m.Top
	} else if line > top+v.height-1-m.Bottom {
		top = line - v.height + 1 + m.Bottom
	}
	top = v.clampTop(top)

	// Horizontal scroll
	screenCol := col - left
	if screenCol < m.Left {
		left = max(col-m.Left, 0)
	} else if screenCol > v.width-1-m.Right {
		left = col - v.width + 1 + m.Right
	}

	moved := top != v.topLine || left != v.leftColumn
	v.topLine, v.leftColumn = top, left
	return moved
}
