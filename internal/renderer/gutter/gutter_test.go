package gutter

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/renderer/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.ShowLineNumbers)
	assert.Equal(t, 2, cfg.Margin)
	assert.Equal(t, 1, cfg.RightPadding)
	assert.Equal(t, 1, cfg.GlyphAdvance)
}

func TestNewGutter(t *testing.T) {
	g := New(DefaultConfig())
	require.NotNil(t, g)
	assert.Equal(t, 3, g.Width(), "margin 2 plus one digit")
}

func TestDigits(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{9, 1},
		{10, 2},
		{99, 2},
		{100, 3},
		{12345, 5},
		{1 << 32, 10},
		{math.MaxInt64, 19},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Digits(tt.n), "Digits(%d)", tt.n)
	}
}

func TestDigitsMatchesLog10(t *testing.T) {
	for n := 1; n <= 100000; n = n*3 + 1 {
		want := int(math.Floor(math.Log10(float64(n)))) + 1
		assert.Equal(t, want, Digits(n), "Digits(%d)", n)
	}
}

func TestDigitsAtPowersOfTen(t *testing.T) {
	p := 1
	for k := 1; k <= 18; k++ {
		p *= 10
		assert.Equal(t, k, Digits(p-1), "Digits(%d)", p-1)
		assert.Equal(t, k+1, Digits(p), "Digits(%d)", p)
	}
}

func TestWidthMonotone(t *testing.T) {
	prev := 0
	for n := 1; n <= 20000; n++ {
		w := WidthFor(n, 7, 10)
		require.GreaterOrEqual(t, w, prev, "width decreased at %d", n)
		prev = w
	}
	// 10 + 7*3
	assert.Equal(t, 31, WidthFor(150, 7, 10))
}

func TestGutterSetLineCount(t *testing.T) {
	g := New(DefaultConfig())

	tests := []struct {
		count int
		want  int
	}{
		{10, 4},
		{1000, 6},
		{100000, 8},
		{0, 3},
	}
	for _, tt := range tests {
		g.SetLineCount(tt.count)
		assert.Equal(t, tt.want, g.Width(), "width for %d lines", tt.count)
	}
}

func TestGutterGlyphAdvance(t *testing.T) {
	g := New(Config{ShowLineNumbers: true, Margin: 10, RightPadding: 5, GlyphAdvance: 7})
	g.SetLineCount(42)
	assert.Equal(t, State{Digits: 2, Width: 24}, g.State())

	g.SetGlyphAdvance(8)
	assert.Equal(t, 26, g.Width())
}

func TestGutterHidden(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowLineNumbers = false
	g := New(cfg)
	g.SetLineCount(500)

	assert.Zero(t, g.Width())
	assert.Empty(t, g.FormatLabel(3))
}

func TestGutterMarginChangeCallback(t *testing.T) {
	g := New(DefaultConfig())

	var calls []int
	g.OnMarginChange(func(width int) {
		calls = append(calls, width)
	})

	for _, n := range []int{9, 10, 11, 99, 100, 5} {
		g.SetLineCount(n)
	}
	assert.Equal(t, []int{4, 5, 3}, calls, "fires only when the width changes")
}

func TestGutterLayout(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(100)
	g.SetCurrentLine(7)

	rect := core.RectFromSize(0, 0, 10, g.Width())
	labels := g.Layout(Geometry{LineCount: 100, FirstLine: 5}, rect)

	require.Len(t, labels, 10)
	for i, l := range labels {
		assert.Equal(t, Label{Number: 6 + i, Top: i, Height: 1, Current: l.Number == 8}, l)
	}
}

func TestGutterLayoutVariableHeight(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(100)

	rect := core.RectFromSize(0, 0, 10, g.Width())
	labels := g.Layout(Geometry{
		LineCount: 100,
		FirstLine: 5,
		FirstTop:  -1,
		Height:    func(int) int { return 2 },
	}, rect)

	require.Len(t, labels, 6)
	assert.Equal(t, 6, labels[0].Number)
	assert.Equal(t, -1, labels[0].Top)
	last := labels[len(labels)-1]
	assert.Equal(t, 11, last.Number)
	assert.Equal(t, 9, last.Top)
}

func TestGutterLayoutDocumentEnd(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(3)

	labels := g.Layout(Geometry{LineCount: 3}, core.RectFromSize(2, 0, 10, 3))
	require.Len(t, labels, 3)
	assert.Equal(t, 2, labels[0].Top, "labels start at the rect top")
	assert.True(t, g.Valid())
}

func TestGutterScroll(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(100)
	rect := core.RectFromSize(0, 0, 10, g.Width())

	g.Layout(Geometry{LineCount: 100}, rect)
	require.True(t, g.Scroll(1), "scrolling down from the first line keeps the cache")

	labels, valid := g.Labels()
	require.True(t, valid)
	require.Len(t, labels, 9)
	assert.Equal(t, 1, labels[0].Number)
	assert.Equal(t, 1, labels[0].Top)

	g.Layout(Geometry{LineCount: 100}, rect)
	assert.False(t, g.Scroll(-1), "exposing an unlabelled row invalidates")
	assert.False(t, g.Valid())
}

func TestGutterScrollAfterLineCountChange(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(100)
	rect := core.RectFromSize(0, 0, 10, g.Width())

	g.Layout(Geometry{LineCount: 100}, rect)
	g.SetLineCount(101)
	assert.False(t, g.Scroll(1), "a line count change invalidates the cache")

	g.Layout(Geometry{LineCount: 101}, rect)
	g.Invalidate()
	assert.False(t, g.Valid())
}

func TestGutterFormatLabel(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(100)

	assert.Equal(t, "  42 ", g.FormatLabel(42))
	assert.Equal(t, " 100 ", g.FormatLabel(100))
}

func TestGutterConcurrency(t *testing.T) {
	g := New(DefaultConfig())
	g.SetLineCount(1000)
	rect := core.RectFromSize(0, 0, 20, 6)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = g.Width()
			_ = g.Config()
			_ = g.FormatLabel(i)
			_, _ = g.Labels()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			g.SetCurrentLine(i % 100)
			g.SetLineCount(500 + i)
			g.Layout(Geometry{LineCount: 500 + i, FirstLine: i}, rect)
		}
	}()
	wg.Wait()
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1000"},
		{1 << 32, "4294967296"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.n))
	}
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "  7", PadLeft("7", 3))
	assert.Equal(t, "7  ", PadRight("7", 3))
	assert.Equal(t, "1234", PadLeft("1234", 3), "no truncation")
	assert.Equal(t, "1:5", FormatPosition(0, 4))
}
