package app

import (
	"github.com/dshills/mcode/internal/editor"
	"github.com/dshills/mcode/internal/renderer/backend"
	"github.com/dshills/mcode/internal/renderer/core"
	"github.com/dshills/mcode/internal/renderer/gutter"
	"github.com/dshills/mcode/internal/renderer/highlight"
)

// layout holds the screen rectangles of the window parts.
type layout struct {
	gutter core.ScreenRect
	text   core.ScreenRect
	panel  core.ScreenRect
	status core.ScreenRect
}

// relayout recomputes the rectangles from the window size, the gutter
// width and the panel visibility, then resizes the buffers to match.
func (app *Application) relayout() {
	app.stale = false
	w, h := max(app.width, 1), max(app.height, 1)

	body := max(h-1, 0)
	panelH := 0
	if app.panel.Visible() && body > 1 {
		panelH = min(app.cfg.Terminal.Height, body/2)
		panelH = max(panelH, 1)
	}
	editorH := body - panelH
	gw := min(app.editor.Gutter().Width(), w)

	app.layout = layout{
		gutter: core.RectFromSize(0, 0, editorH, gw),
		text:   core.RectFromSize(0, gw, editorH, w-gw),
		panel:  core.RectFromSize(editorH, 0, panelH, w),
		status: core.RectFromSize(h-1, 0, 1, w),
	}

	app.editor.Resize(app.layout.text.Width(), app.layout.text.Height())
	if panelH > 0 {
		app.panel.Buffer().Resize(w, panelH)
	}
}

// render draws the whole window.
func (app *Application) render() {
	b := app.backend
	theme := app.editor.Theme()
	if app.stale {
		app.relayout()
	}

	app.drawGutter(theme)
	drawBuffer(b, app.editor, app.layout.text, theme.TextStyle(), theme)
	if app.panel.Visible() {
		drawBuffer(b, app.panel.Buffer(), app.layout.panel, theme.TerminalStyle(), theme)
	}

	b.HideCursor()
	app.placeCursor()

	status := core.Style{Foreground: theme.Foreground, Background: theme.GutterBackground}
	errStyle := status.WithForeground(core.ColorFromRGB(240, 90, 90))
	caret := app.focused().Caret()
	position := gutter.FormatPosition(caret.Line, caret.Col)
	if app.editor.Modified() {
		position = "* " + position
	}
	position = app.focus.String() + "  " + position
	app.status.Draw(b, app.layout.status, status, errStyle, position)

	b.Show()
}

func (app *Application) drawGutter(theme *highlight.Theme) {
	rect := app.layout.gutter
	if rect.IsEmpty() {
		return
	}
	style := theme.GutterStyle()
	b := app.backend
	b.Fill(rect, core.Cell{Rune: ' ', Width: 1, Style: style})

	g := app.editor.Gutter()
	for _, l := range app.editor.GutterLabels(rect) {
		if l.Top < rect.Top || l.Top >= rect.Bottom {
			continue
		}
		st := style
		if l.Current {
			st = st.WithForeground(theme.Foreground)
		}
		drawString(b, rect.Left, l.Top, rect.Right, g.FormatLabel(l.Number), st)
	}
}

func (app *Application) placeCursor() {
	if app.status.Prompting() {
		return
	}
	buf, rect := app.editor, app.layout.text
	if app.focus == FocusTerminal && app.panel.Visible() {
		buf, rect = app.panel.Buffer(), app.layout.panel
	}
	view := buf.View()
	row, col := view.BufferToScreen(buf.Caret().Line, buf.CaretDisplayColumn())
	if row >= 0 && row < rect.Height() && col >= 0 && col < rect.Width() {
		app.backend.ShowCursor(rect.Left+col, rect.Top+row)
	}
}

// drawBuffer paints the visible lines of buf into rect: the current-line
// decoration first, then the text colored by its spans, then the
// selection.
func drawBuffer(b backend.Backend, buf *editor.Buffer, rect core.ScreenRect, base core.Style, theme *highlight.Theme) {
	if rect.IsEmpty() {
		return
	}

	view := buf.View()
	top, left := view.TopLine(), view.LeftColumn()
	tabWidth := buf.TabWidth()
	current := buf.CurrentLine()

	hasSel := buf.HasSelection()
	selStart, selEnd := buf.SelectionRange()

	for row := 0; row < rect.Height(); row++ {
		y := rect.Top + row
		line := top + row

		bg := base
		if line == current.Line && current.FullWidth {
			bg = bg.WithBackground(current.Style.Background)
		}
		b.Fill(core.ScreenRect{Top: y, Left: rect.Left, Bottom: y + 1, Right: rect.Right},
			core.Cell{Rune: ' ', Width: 1, Style: bg})

		if line >= buf.LineCount() {
			continue
		}

		text := buf.Line(line)
		spans := buf.Spans(line)
		x := 0
		for i, r := range text {
			w := editor.CellWidth(r, x, tabWidth)
			style := bg
			if s, ok := highlight.StyleAt(spans, i); ok {
				style.Foreground = s.Foreground
				style.Attributes = s.Attributes
				if !s.Background.IsDefault() {
					style.Background = s.Background
				}
			}
			if hasSel && inSelection(line, i, selStart, selEnd) {
				style.Background = theme.Selection
			}

			sx := x - left
			x += w
			if sx+w <= 0 {
				continue
			}
			if sx >= rect.Width() {
				break
			}
			if r == '\t' {
				for c := max(sx, 0); c < sx+w && c < rect.Width(); c++ {
					b.SetCell(rect.Left+c, y, core.Cell{Rune: ' ', Width: 1, Style: style})
				}
				continue
			}
			if sx < 0 || sx+w > rect.Width() {
				continue
			}
			b.SetCell(rect.Left+sx, y, core.Cell{Rune: r, Width: w, Style: style})
		}
	}
}

func inSelection(line, col int, start, end editor.Position) bool {
	if line < start.Line || line > end.Line {
		return false
	}
	if line == start.Line && col < start.Col {
		return false
	}
	if line == end.Line && col >= end.Col {
		return false
	}
	return true
}
