package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/event"
)

func TestPanelAppendsOutputVerbatim(t *testing.T) {
	p := NewPanel(PanelOptions{})
	s, _, _ := startFake(t)
	p.Attach(s)

	p.HandleChildOutput(event.ChildOutput{SessionID: s.ID(), Data: []byte("a")})
	p.HandleChildOutput(event.ChildOutput{SessionID: s.ID(), Data: []byte("b")})
	assert.Equal(t, "ab", p.Text())

	p.HandleChildOutput(event.ChildOutput{SessionID: "other", Data: []byte("x")})
	assert.Equal(t, "ab", p.Text(), "events from other sessions are ignored")

	caret := p.Buffer().Caret()
	assert.Equal(t, 0, caret.Line)
	assert.Equal(t, 2, caret.Col, "read cursor follows the output")
}

func TestPanelDecodesAcrossChunks(t *testing.T) {
	p := NewPanel(PanelOptions{})
	s, _, _ := startFake(t)
	p.Attach(s)

	euro := []byte("€")
	p.HandleChildOutput(event.ChildOutput{SessionID: s.ID(), Data: euro[:1]})
	p.HandleChildOutput(event.ChildOutput{SessionID: s.ID(), Data: append(euro[1:], 0xff)})
	assert.Equal(t, "€�", p.Text())
}

func TestPanelSubmitCurrentLine(t *testing.T) {
	p := NewPanel(PanelOptions{})
	s, child, _ := startFake(t)
	p.Attach(s)

	require.NoError(t, p.Buffer().InsertText("  ls  "))
	require.NoError(t, p.SubmitCurrentLine())
	assert.Equal(t, "ls\n", child.written())
	assert.Equal(t, "  ls  \n", p.Text())

	require.NoError(t, p.SubmitCurrentLine())
	assert.Equal(t, "ls\n\n", child.written(), "empty line sends a bare newline")
}

func TestPanelExit(t *testing.T) {
	p := NewPanel(PanelOptions{})
	s, child, q := startFake(t)
	p.Attach(s)

	child.exit(0)
	ev := next(t, q).(event.ChildExited)
	p.HandleChildExited(ev)

	assert.Equal(t, "\n[Process finished]\n", p.Text())

	require.NoError(t, p.Buffer().InsertText("ls"))
	assert.ErrorIs(t, p.SubmitCurrentLine(), ErrSessionClosed)
	assert.Empty(t, child.written())
	assert.Equal(t, "\n[Process finished]\nls", p.Text(), "nothing is echoed after exit")
}

func TestPanelWithoutSession(t *testing.T) {
	p := NewPanel(PanelOptions{FinishedNotice: "[done]"})
	assert.ErrorIs(t, p.SubmitCurrentLine(), ErrNotStarted)

	p.AppendToScrollback("spawn /nope: no such file\n")
	assert.Equal(t, "spawn /nope: no such file\n", p.Text())
	assert.NotPanics(t, p.Stop)
}

func TestPanelScrollbackLimit(t *testing.T) {
	p := NewPanel(PanelOptions{MaxLines: 3})
	p.AppendToScrollback(strings.Repeat("x\n", 5) + "tail")

	assert.Equal(t, 3, p.Buffer().LineCount())
	assert.Equal(t, "x\nx\ntail", p.Text())
	assert.Equal(t, 2, p.Buffer().Caret().Line)
}

func TestPanelVisibility(t *testing.T) {
	p := NewPanel(PanelOptions{})
	assert.False(t, p.Visible())
	p.Show()
	assert.True(t, p.Visible())
	p.Hide()
	assert.False(t, p.Visible())
}
