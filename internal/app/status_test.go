package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/backend"
	"github.com/dshills/mcode/internal/renderer/core"
)

func typeInto(s *StatusLine, text string) {
	for _, r := range text {
		s.HandleKey(event.Key{Key: backend.KeyRune, Rune: r})
	}
}

func TestStatusNoticeExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewStatusLine()
	s.now = func() time.Time { return now }

	s.Notify("Saved %s", "a.py")
	assert.Equal(t, "Saved a.py", s.Notice())

	now = now.Add(noticeTTL + time.Millisecond)
	assert.Empty(t, s.Notice())
}

func TestStatusPrompt(t *testing.T) {
	s := NewStatusLine()
	assert.False(t, s.HandleKey(event.Key{Key: backend.KeyRune, Rune: 'x'}))

	var got string
	s.Prompt("Open: ", "/tmp/", func(v string) error { got = v; return nil })
	require.True(t, s.Prompting())

	typeInto(s, "a.pyx")
	assert.True(t, s.HandleKey(event.Key{Key: backend.KeyBackspace}))
	assert.Equal(t, "/tmp/a.py", s.Input())

	assert.True(t, s.HandleKey(event.Key{Key: backend.KeyEnter}))
	assert.False(t, s.Prompting())
	assert.Equal(t, "/tmp/a.py", got)
}

func TestStatusPromptCancelAndError(t *testing.T) {
	s := NewStatusLine()
	var reported error
	s.onError = func(err error) { reported = err }

	called := false
	s.Prompt("Open: ", "", func(string) error { called = true; return nil })
	s.HandleKey(event.Key{Key: backend.KeyEscape})
	assert.False(t, s.Prompting())
	assert.False(t, called)

	boom := errors.New("boom")
	s.Prompt("Save as: ", "", func(string) error { return boom })
	s.HandleKey(event.Key{Key: backend.KeyEnter})
	assert.ErrorIs(t, reported, boom)
}

func TestStatusDraw(t *testing.T) {
	b := backend.NewNullBackend(40, 2)
	require.NoError(t, b.Init())
	rect := core.RectFromSize(1, 0, 1, 40)

	s := NewStatusLine()
	s.Notify("Opened")
	s.Draw(b, rect, core.DefaultStyle(), core.DefaultStyle(), "Ln 1, Col 1")
	row := b.Row(1)
	assert.True(t, strings.HasPrefix(row, " Opened"))
	assert.True(t, strings.HasSuffix(strings.TrimRight(row, " "), "Ln 1, Col 1"))

	s.Prompt("Open: ", "x", func(string) error { return nil })
	s.Draw(b, rect, core.DefaultStyle(), core.DefaultStyle(), "Ln 1, Col 1")
	assert.True(t, strings.HasPrefix(b.Row(1), "Open: x"))
	x, y, visible := b.CursorPosition()
	assert.True(t, visible)
	assert.Equal(t, 7, x)
	assert.Equal(t, 1, y)
}
