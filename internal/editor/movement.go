package editor

import (
	"github.com/dshills/mcode/internal/engine/history"
	"github.com/dshills/mcode/internal/renderer/core"
	"github.com/dshills/mcode/internal/renderer/gutter"
)

// moveTo places the caret at offset. With extend the anchor stays put.
func (b *Buffer) moveTo(offset int, extend bool) {
	head := history.ByteOffset(offset)
	anchor := head
	if extend {
		anchor = b.sel.Anchor
	}
	b.SetSelection(history.Selection{Anchor: anchor, Head: head})
}

// MoveTo places the caret at pos.
func (b *Buffer) MoveTo(pos Position, extend bool) {
	b.goalCol = -1
	b.moveTo(b.doc.OffsetOf(pos), extend)
}

// MoveLeft moves one rune left, or collapses the selection to its start.
func (b *Buffer) MoveLeft(extend bool) {
	b.goalCol = -1
	if !extend && b.HasSelection() {
		b.moveTo(int(b.sel.Start()), false)
		return
	}
	p := b.Caret()
	if p.Col == 0 {
		if p.Line > 0 {
			b.moveTo(b.doc.OffsetOf(Position{Line: p.Line - 1, Col: len(b.doc.Line(p.Line - 1))}), extend)
		}
		return
	}
	p.Col = prevRuneStart(b.doc.Line(p.Line), p.Col)
	b.moveTo(b.doc.OffsetOf(p), extend)
}

// MoveRight moves one rune right, or collapses the selection to its end.
func (b *Buffer) MoveRight(extend bool) {
	b.goalCol = -1
	if !extend && b.HasSelection() {
		b.moveTo(int(b.sel.End()), false)
		return
	}
	p := b.Caret()
	line := b.doc.Line(p.Line)
	if p.Col >= len(line) {
		if p.Line < b.doc.LineCount()-1 {
			b.moveTo(b.doc.LineStart(p.Line+1), extend)
		}
		return
	}
	p.Col = nextRuneEnd(line, p.Col)
	b.moveTo(b.doc.OffsetOf(p), extend)
}

// MoveUp moves n lines up keeping the display column.
func (b *Buffer) MoveUp(n int, extend bool) {
	b.moveVertical(-n, extend)
}

// MoveDown moves n lines down keeping the display column.
func (b *Buffer) MoveDown(n int, extend bool) {
	b.moveVertical(n, extend)
}

func (b *Buffer) moveVertical(delta int, extend bool) {
	p := b.Caret()
	if b.goalCol < 0 {
		b.goalCol = DisplayColumn(b.doc.Line(p.Line), p.Col, b.tabWidth)
	}
	target := min(max(p.Line+delta, 0), b.doc.LineCount()-1)
	switch {
	case target == p.Line && delta < 0:
		p.Col = 0
	case target == p.Line && delta > 0:
		p.Col = len(b.doc.Line(p.Line))
	default:
		p = Position{Line: target, Col: ByteColumn(b.doc.Line(target), b.goalCol, b.tabWidth)}
	}
	goal := b.goalCol
	b.moveTo(b.doc.OffsetOf(p), extend)
	b.goalCol = goal
}

// MoveLineStart moves to the first non-blank character, or to column 0
// when already there.
func (b *Buffer) MoveLineStart(extend bool) {
	b.goalCol = -1
	p := b.Caret()
	line := b.doc.Line(p.Line)
	first := len(line) - len(trimIndent(line))
	if p.Col == first {
		first = 0
	}
	b.moveTo(b.doc.OffsetOf(Position{Line: p.Line, Col: first}), extend)
}

// MoveLineEnd moves to the end of the line.
func (b *Buffer) MoveLineEnd(extend bool) {
	b.goalCol = -1
	p := b.Caret()
	b.moveTo(b.doc.OffsetOf(Position{Line: p.Line, Col: len(b.doc.Line(p.Line))}), extend)
}

// MoveDocumentStart moves to the start of the document.
func (b *Buffer) MoveDocumentStart(extend bool) {
	b.goalCol = -1
	b.moveTo(0, extend)
}

// MoveDocumentEnd moves to the end of the document.
func (b *Buffer) MoveDocumentEnd(extend bool) {
	b.goalCol = -1
	b.moveTo(b.doc.Len(), extend)
}

// PageUp moves the caret and the view one page up.
func (b *Buffer) PageUp(extend bool) {
	h := b.view.Height()
	b.ScrollBy(-h)
	b.MoveUp(h, extend)
}

// PageDown moves the caret and the view one page down.
func (b *Buffer) PageDown(extend bool) {
	h := b.view.Height()
	b.ScrollBy(h)
	b.MoveDown(h, extend)
}

// SelectAll selects the whole document.
func (b *Buffer) SelectAll() {
	b.goalCol = -1
	b.SetSelection(history.Selection{Anchor: 0, Head: history.ByteOffset(b.doc.Len())})
}

// ClickAt places the caret at a viewport-relative cell.
func (b *Buffer) ClickAt(row, x int, extend bool) {
	line, col := b.view.ScreenToBuffer(row, x)
	line = min(line, b.doc.LineCount()-1)
	b.MoveTo(Position{Line: line, Col: ByteColumn(b.doc.Line(line), col, b.tabWidth)}, extend)
}

// View

// Resize sets the text area size in cells.
func (b *Buffer) Resize(width, height int) {
	b.view.Resize(width, height)
	b.gutter.Invalidate()
	b.revealCaret()
}

// ScrollBy scrolls the view by dy lines and shifts the cached gutter
// labels to match. It returns the lines actually moved.
func (b *Buffer) ScrollBy(dy int) int {
	moved := b.view.ScrollBy(dy)
	if moved != 0 {
		b.gutter.Scroll(-moved)
	}
	return moved
}

// GutterLabels returns the labels for rect, reusing the cache when it is
// still valid.
func (b *Buffer) GutterLabels(rect core.ScreenRect) []gutter.Label {
	if labels, ok := b.gutter.Labels(); ok {
		return labels
	}
	return b.gutter.Layout(gutter.Geometry{
		LineCount: b.doc.LineCount(),
		FirstLine: b.view.TopLine(),
	}, rect)
}

func (b *Buffer) revealCaret() {
	before := b.view.TopLine()
	b.view.ScrollToReveal(b.Caret().Line, b.CaretDisplayColumn())
	if moved := b.view.TopLine() - before; moved != 0 {
		b.gutter.Scroll(-moved)
	}
}

func trimIndent(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return s[i:]
		}
	}
	return ""
}
