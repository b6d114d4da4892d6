package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertRange(t *testing.T, v *Viewport, start, end int) {
	t.Helper()
	gotStart, gotEnd := v.VisibleLineRange()
	assert.Equal(t, [2]int{start, end}, [2]int{gotStart, gotEnd}, "visible line range")
}

func TestNewViewport(t *testing.T) {
	v := NewViewport(80, 24)
	assert.Equal(t, 80, v.Width())
	assert.Equal(t, 24, v.Height())
	assert.Zero(t, v.TopLine())
	assert.Zero(t, v.LeftColumn())

	tiny := NewViewport(0, -3)
	assert.Equal(t, 1, tiny.Width(), "size clamps to one cell")
	assert.Equal(t, 1, tiny.Height())
}

func TestViewportVisibleLineRange(t *testing.T) {
	v := NewViewport(80, 24)
	v.SetLineCount(100)
	assertRange(t, v, 0, 23)

	v.ScrollTo(10)
	assertRange(t, v, 10, 33)

	v.SetLineCount(5)
	assertRange(t, v, 4, 4)
}

func TestViewportScrollBy(t *testing.T) {
	v := NewViewport(80, 10)
	v.SetLineCount(30)

	steps := []struct {
		delta   int
		wantTop int
		moved   int
	}{
		{5, 5, 5},
		{-2, 3, -2},
		{-10, 0, -3},
		{100, 29, 29},
	}
	for _, st := range steps {
		moved := v.ScrollBy(st.delta)
		assert.Equal(t, st.moved, moved, "ScrollBy(%d) moved", st.delta)
		assert.Equal(t, st.wantTop, v.TopLine(), "ScrollBy(%d) top", st.delta)
	}
}

func TestViewportScrollToReveal(t *testing.T) {
	v := NewViewport(40, 10)
	v.SetLineCount(100)
	v.SetMargins(NoMargins())

	assert.False(t, v.ScrollToReveal(5, 0), "a visible line does not scroll")
	assert.True(t, v.ScrollToReveal(15, 0))
	assert.Equal(t, 6, v.TopLine())

	v.ScrollToReveal(2, 0)
	assert.Equal(t, 2, v.TopLine())

	v.ScrollToReveal(2, 50)
	assert.Equal(t, 11, v.LeftColumn())
	v.ScrollToReveal(2, 0)
	assert.Zero(t, v.LeftColumn())
}

func TestViewportMargins(t *testing.T) {
	v := NewViewport(40, 9)
	v.SetLineCount(100)
	v.SetMargins(MarginConfig{Top: 10, Bottom: 2})

	m := v.EffectiveMargins()
	assert.Equal(t, 3, m.Top, "clamped to a third of the height")
	assert.Equal(t, 2, m.Bottom)

	// 20 = top + 9 - 1 - 2
	v.ScrollToReveal(20, 0)
	assert.Equal(t, 14, v.TopLine())
}

func TestViewportCoordinates(t *testing.T) {
	v := NewViewport(40, 10)
	v.SetLineCount(100)
	v.ScrollTo(20)

	row, col := v.BufferToScreen(25, 7)
	assert.Equal(t, 5, row)
	assert.Equal(t, 7, col)

	line, c := v.ScreenToBuffer(5, 7)
	assert.Equal(t, 25, line)
	assert.Equal(t, 7, c)

	line, _ = v.ScreenToBuffer(500, 0)
	assert.Equal(t, 99, line, "rows past the end clamp to the last line")
	assertRange(t, v, 20, 29)
}

func TestViewportPaging(t *testing.T) {
	v := NewViewport(40, 10)
	v.SetLineCount(100)

	v.PageDown()
	assert.Equal(t, 10, v.TopLine())
	v.PageUp()
	assert.Zero(t, v.TopLine())
}

func TestScrollMargins(t *testing.T) {
	assert.Equal(t, MarginConfig{Top: 3, Bottom: 3, Left: 6, Right: 6}, ScrollMargins(3))
	assert.Equal(t, NoMargins(), ScrollMargins(-1), "negative margins clamp to zero")
	assert.Equal(t, ScrollMargins(2), DefaultMargins())
}
