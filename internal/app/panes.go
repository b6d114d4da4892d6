package app

import (
	"errors"

	"github.com/dshills/mcode/internal/editor"
	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/integration/shell"
	"github.com/dshills/mcode/internal/renderer/backend"
	"github.com/dshills/mcode/internal/renderer/core"
)

// editorPane routes input to the editor buffer.
type editorPane struct {
	app *Application
}

func (p *editorPane) HandleKey(ev event.Key) bool {
	a := p.app
	if a.focus != FocusEditor {
		return false
	}
	if ev.Key == backend.KeyEnter {
		a.report(a.editor.InsertBreak())
		return true
	}
	return a.editKey(a.editor, ev)
}

func (p *editorPane) HandleMouse(ev event.Mouse) bool {
	a := p.app
	if !contains(a.layout.text, ev.X, ev.Y) {
		return false
	}
	a.setFocus(FocusEditor)
	a.editor.ClickAt(ev.Y-a.layout.text.Top, ev.X-a.layout.text.Left, ev.Mod.Has(backend.ModShift))
	return true
}

func (p *editorPane) HandleScroll(ev event.Scroll) bool {
	a := p.app
	if !contains(a.layout.text, ev.X, ev.Y) && !contains(a.layout.gutter, ev.X, ev.Y) {
		return false
	}
	a.editor.ScrollBy(ev.Delta)
	return true
}

// terminalPane routes input to the terminal panel.
type terminalPane struct {
	app *Application
}

func (p *terminalPane) HandleKey(ev event.Key) bool {
	a := p.app
	if a.focus != FocusTerminal || !a.panel.Visible() {
		return false
	}
	if ev.Key == backend.KeyEnter {
		err := a.panel.SubmitCurrentLine()
		if errors.Is(err, shell.ErrSessionClosed) || errors.Is(err, shell.ErrNotStarted) {
			a.status.Notify("No shell running; Ctrl+T starts a new one")
			return true
		}
		a.report(err)
		return true
	}
	return a.editKey(a.panel.Buffer(), ev)
}

func (p *terminalPane) HandleMouse(ev event.Mouse) bool {
	a := p.app
	if !a.panel.Visible() || !contains(a.layout.panel, ev.X, ev.Y) {
		return false
	}
	a.setFocus(FocusTerminal)
	a.panel.Buffer().ClickAt(ev.Y-a.layout.panel.Top, ev.X-a.layout.panel.Left, ev.Mod.Has(backend.ModShift))
	return true
}

func (p *terminalPane) HandleScroll(ev event.Scroll) bool {
	a := p.app
	if !a.panel.Visible() || !contains(a.layout.panel, ev.X, ev.Y) {
		return false
	}
	a.panel.Buffer().ScrollBy(ev.Delta)
	return true
}

// editKey applies the editing keys shared by both panes.
func (app *Application) editKey(buf *editor.Buffer, ev event.Key) bool {
	shift := ev.Mod.Has(backend.ModShift)

	switch ev.Key {
	case backend.KeyRune:
		if ev.Mod.Has(backend.ModCtrl) || ev.Mod.Has(backend.ModAlt) {
			return false
		}
		app.report(buf.InsertText(string(ev.Rune)))
	case backend.KeyTab:
		app.report(buf.Tab())
	case backend.KeyBacktab:
		start, end := buf.SelectionRange()
		app.report(buf.DedentLines(start.Line, end.Line))
	case backend.KeyBackspace:
		app.report(buf.Backspace())
	case backend.KeyDelete:
		app.report(buf.DeleteForward())
	case backend.KeyLeft:
		buf.MoveLeft(shift)
	case backend.KeyRight:
		buf.MoveRight(shift)
	case backend.KeyUp:
		buf.MoveUp(1, shift)
	case backend.KeyDown:
		buf.MoveDown(1, shift)
	case backend.KeyHome:
		if ev.Mod.Has(backend.ModCtrl) {
			buf.MoveDocumentStart(shift)
		} else {
			buf.MoveLineStart(shift)
		}
	case backend.KeyEnd:
		if ev.Mod.Has(backend.ModCtrl) {
			buf.MoveDocumentEnd(shift)
		} else {
			buf.MoveLineEnd(shift)
		}
	case backend.KeyPageUp:
		buf.PageUp(shift)
	case backend.KeyPageDown:
		buf.PageDown(shift)
	default:
		return false
	}
	return true
}

func (app *Application) report(err error) {
	if err != nil {
		app.notifyError(err)
	}
}

func contains(r core.ScreenRect, x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}
