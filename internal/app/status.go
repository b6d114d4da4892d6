package app

import (
	"fmt"
	"time"

	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/backend"
	"github.com/dshills/mcode/internal/renderer/core"
)

// noticeTTL is how long a status notice stays visible.
const noticeTTL = 5 * time.Second

type prompt struct {
	label    string
	input    []rune
	onSubmit func(string) error
}

// StatusLine is the bottom row: transient notices, the caret position and
// a one-line input prompt used by open and save-as.
type StatusLine struct {
	notice  string
	isError bool
	expires time.Time
	prompt  *prompt
	now     func() time.Time

	// onError receives errors returned by a prompt's submit function.
	onError func(error)
}

// NewStatusLine creates an empty status line.
func NewStatusLine() *StatusLine {
	return &StatusLine{now: time.Now}
}

// Notify shows an informational notice.
func (s *StatusLine) Notify(format string, args ...any) {
	s.notice = fmt.Sprintf(format, args...)
	s.isError = false
	s.expires = s.now().Add(noticeTTL)
}

// Error shows an error notice.
func (s *StatusLine) Error(err error) {
	s.notice = err.Error()
	s.isError = true
	s.expires = s.now().Add(noticeTTL)
}

// Notice returns the visible notice, or "" once it has expired.
func (s *StatusLine) Notice() string {
	if s.notice == "" || s.now().After(s.expires) {
		return ""
	}
	return s.notice
}

// Prompt starts reading a line of input. onSubmit runs when Enter is
// pressed; Escape cancels.
func (s *StatusLine) Prompt(label, initial string, onSubmit func(string) error) {
	s.prompt = &prompt{label: label, input: []rune(initial), onSubmit: onSubmit}
}

// Prompting reports whether a prompt is active.
func (s *StatusLine) Prompting() bool {
	return s.prompt != nil
}

// Input returns the prompt's current input.
func (s *StatusLine) Input() string {
	if s.prompt == nil {
		return ""
	}
	return string(s.prompt.input)
}

// HandleKey edits the prompt. It claims every key while a prompt is
// active.
func (s *StatusLine) HandleKey(ev event.Key) bool {
	p := s.prompt
	if p == nil {
		return false
	}

	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlQ:
		s.prompt = nil
	case backend.KeyEnter:
		s.prompt = nil
		if err := p.onSubmit(string(p.input)); err != nil && s.onError != nil {
			s.onError(err)
		}
	case backend.KeyBackspace:
		if n := len(p.input); n > 0 {
			p.input = p.input[:n-1]
		}
	case backend.KeyRune:
		p.input = append(p.input, ev.Rune)
	}
	return true
}

// Draw renders the status line. position is shown on the right.
func (s *StatusLine) Draw(b backend.Backend, rect core.ScreenRect, style, errStyle core.Style, position string) {
	if rect.IsEmpty() {
		return
	}
	b.Fill(rect, core.Cell{Rune: ' ', Width: 1, Style: style})

	y := rect.Top
	if s.prompt != nil {
		text := s.prompt.label + string(s.prompt.input)
		end := drawString(b, rect.Left, y, rect.Right, text, style)
		b.ShowCursor(min(end, rect.Right-1), y)
		return
	}

	right := rect.Right - core.StringWidth(position) - 1
	if right > rect.Left {
		drawString(b, right, y, rect.Right, position, style)
	} else {
		right = rect.Right
	}

	if notice := s.Notice(); notice != "" {
		st := style
		if s.isError {
			st = errStyle
		}
		drawString(b, rect.Left+1, y, right-1, notice, st)
	}
}

// drawString writes text from x up to limit and returns the column after
// the last cell written.
func drawString(b backend.Backend, x, y, limit int, text string, style core.Style) int {
	for _, r := range text {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		w := core.RuneWidth(r)
		if x+w > limit {
			break
		}
		b.SetCell(x, y, core.Cell{Rune: r, Width: w, Style: style})
		x += w
	}
	return x
}
