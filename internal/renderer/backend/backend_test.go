package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/renderer/core"
)

func newNull(t *testing.T, w, h int) *NullBackend {
	t.Helper()
	b := NewNullBackend(w, h)
	require.NoError(t, b.Init())
	return b
}

func TestNullBackendInit(t *testing.T) {
	b := newNull(t, 80, 24)
	w, h := b.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}

func TestNullBackendSetGetCell(t *testing.T) {
	b := newNull(t, 80, 24)

	cell := core.NewStyledCell('X', core.NewStyle(core.ColorFromRGB(255, 0, 0)))
	b.SetCell(10, 5, cell)
	assert.Equal(t, cell, b.GetCell(10, 5))

	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)
	assert.Equal(t, core.EmptyCell(), b.GetCell(-1, 0), "out of bounds reads are empty")
}

func TestNullBackendFillAndRow(t *testing.T) {
	b := newNull(t, 10, 3)

	b.Fill(core.RectFromSize(1, 2, 1, 3), core.NewStyledCell('.', core.DefaultStyle()))
	assert.Equal(t, "  ...     ", b.Row(1))
	assert.Equal(t, "          ", b.Row(0))

	b.Clear()
	assert.Equal(t, "          ", b.Row(1))
}

func TestNullBackendCursorAndTitle(t *testing.T) {
	b := newNull(t, 10, 3)

	b.ShowCursor(3, 2)
	x, y, visible := b.CursorPosition()
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)
	assert.True(t, visible)

	b.HideCursor()
	_, _, visible = b.CursorPosition()
	assert.False(t, visible)

	b.SetTitle("mcode")
	assert.Equal(t, "mcode", b.Title())
}

func TestNullBackendEvents(t *testing.T) {
	b := newNull(t, 10, 3)

	b.PostEvent(Event{Type: EventKey, Key: KeyEnter})
	assert.Equal(t, KeyEnter, b.PollEvent().Key)

	b.Resize(20, 5)
	ev := b.PollEvent()
	assert.Equal(t, EventResize, ev.Type)
	assert.Equal(t, 20, ev.Width)
	assert.Equal(t, 5, ev.Height)

	b.Shutdown()
	assert.Equal(t, EventInterrupt, b.PollEvent().Type)
}

func TestModMaskHas(t *testing.T) {
	mod := ModShift | ModCtrl
	assert.True(t, mod.Has(ModShift))
	assert.True(t, mod.Has(ModCtrl))
	assert.False(t, mod.Has(ModAlt))
}

func TestConvertKeyRoundTrip(t *testing.T) {
	for _, k := range []Key{KeyEnter, KeyBackspace, KeyF5, KeyCtrlT, KeyUp} {
		assert.Equal(t, k, convertKey(convertToTcellKey(k)))
	}
	assert.Equal(t, KeyNone, convertKey(tcell.KeyF12), "unmapped keys convert to KeyNone")
}

func TestConvertStyle(t *testing.T) {
	s := core.NewStyle(core.ColorFromRGB(1, 2, 3)).Bold()
	fg, bg, attrs := convertStyle(s).Decompose()

	assert.Equal(t, tcell.NewRGBColor(1, 2, 3), fg)
	assert.Equal(t, tcell.ColorDefault, bg)
	assert.NotZero(t, attrs&tcell.AttrBold, "bold attribute kept")
}

func TestConvertModRoundTrip(t *testing.T) {
	for _, m := range []ModMask{ModNone, ModShift, ModCtrl | ModShift, ModAlt | ModMeta} {
		assert.Equal(t, m, convertMod(convertToTcellMod(m)))
	}
}
