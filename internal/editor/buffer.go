// Package editor implements the editable text buffer.
//
// A Buffer owns the document, its selection and undo history, and keeps the
// line gutter, the syntax highlighting and the current-line decoration in
// step with the text. Every text mutation runs the same sequence:
//
//  1. compute the line-count delta
//  2. re-derive the gutter when the delta is not zero
//  3. re-highlight the changed lines (or the whole document in block scope)
//  4. move the current-line decoration to the caret line
//
// Caret moves without a text change run only step 4.
package editor

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/engine/history"
	"github.com/dshills/mcode/internal/indent"
	"github.com/dshills/mcode/internal/renderer/core"
	"github.com/dshills/mcode/internal/renderer/gutter"
	"github.com/dshills/mcode/internal/renderer/highlight"
	"github.com/dshills/mcode/internal/renderer/viewport"
)

// Options configures a Buffer.
type Options struct {
	// IndentUnit is appended after lines ending in ':'.
	IndentUnit string

	// TabWidth is the display width of a tab.
	TabWidth int

	// BlockScope re-highlights the whole document on every edit so
	// multi-line rules stay correct.
	BlockScope bool

	// Rules and Theme drive highlighting. Nil selects the Python rules and
	// the reference theme.
	Rules *highlight.RuleSet
	Theme *highlight.Theme

	// Gutter configures the line number area.
	Gutter gutter.Config

	// Clipboard backs Copy, Cut and Paste. Nil selects an in-process
	// register.
	Clipboard Clipboard

	// HistorySize bounds the undo stack.
	HistorySize int

	// Margins is the context kept around the caret when scrolling.
	Margins viewport.MarginConfig

	Logger *zap.Logger
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{
		IndentUnit:  indent.DefaultUnit,
		TabWidth:    4,
		Gutter:      gutter.DefaultConfig(),
		HistorySize: 1000,
		Margins:     viewport.DefaultMargins(),
	}
}

// Decoration is a full-width line background.
type Decoration struct {
	Line      int
	FullWidth bool
	Style     core.Style
}

// ChangeEvent is delivered to change listeners after a mutation.
type ChangeEvent struct {
	Change    LineChange
	LineCount int
}

// Buffer is an editable document with highlighting, gutter and history.
// It is not safe for concurrent use; the app loop owns it.
type Buffer struct {
	doc  *Document
	sel  history.Selection
	hist *history.History

	hl         *highlight.Highlighter
	blockScope bool
	spans      [][]highlight.Span

	gutter *gutter.Gutter
	view   *viewport.Viewport
	indent *indent.Engine

	current Decoration

	// preferred display column for vertical moves, -1 when unset
	goalCol  int
	tabWidth int

	clipboard Clipboard
	modified  bool
	listeners []func(ChangeEvent)
	logger    *zap.Logger
}

// New creates an empty buffer.
func New(opts Options) *Buffer {
	if opts.Rules == nil {
		opts.Rules = highlight.PythonRules()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &Register{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TabWidth < 1 {
		opts.TabWidth = 4
	}

	b := &Buffer{
		doc:        NewDocument(""),
		hist:       history.NewHistory(opts.HistorySize),
		hl:         highlight.New(opts.Rules, opts.Theme),
		blockScope: opts.BlockScope,
		spans:      make([][]highlight.Span, 1),
		gutter:     gutter.New(opts.Gutter),
		view:       viewport.NewViewport(80, 24),
		indent:     indent.New(opts.IndentUnit),
		goalCol:    -1,
		tabWidth:   opts.TabWidth,
		clipboard:  opts.Clipboard,
		logger:     opts.Logger,
	}
	b.view.SetMargins(opts.Margins)
	b.current = Decoration{FullWidth: true, Style: b.lineHighlightStyle()}
	return b
}

// Load replaces the content, clears history and highlights the whole
// document as one block.
func (b *Buffer) Load(text string) {
	text = normalizeNewlines(text)
	old := b.doc.LineCount()
	b.doc.SetText(text)
	b.sel = history.NewCursorSelection(0)
	b.hist.Clear()
	b.modified = false
	b.goalCol = -1
	b.view.ScrollTo(0)

	change := LineChange{First: 0, OldCount: old, NewCount: b.doc.LineCount()}
	b.afterEdit(change, true)
	b.logger.Debug("document loaded",
		zap.Int("bytes", b.doc.Len()),
		zap.Int("lines", b.doc.LineCount()))
}

// Serialize returns the document text.
func (b *Buffer) Serialize() string {
	return b.doc.Text()
}

// afterEdit runs the post-mutation sequence.
func (b *Buffer) afterEdit(change LineChange, block bool) {
	// 1. line-count delta
	delta := change.Delta()

	// 2. gutter
	if delta != 0 {
		b.gutter.SetLineCount(b.doc.LineCount())
		b.view.SetLineCount(b.doc.LineCount())
	}

	// 3. highlight
	b.rehighlight(change, block || b.blockScope)

	// 4. decoration
	b.clampSelection()
	b.updateCurrentLine()

	ev := ChangeEvent{Change: change, LineCount: b.doc.LineCount()}
	for _, fn := range b.listeners {
		fn(ev)
	}
}

func (b *Buffer) rehighlight(change LineChange, block bool) {
	if block {
		b.spans = b.hl.HighlightBlock(b.doc.Text())
		return
	}

	fresh := make([][]highlight.Span, change.NewCount)
	for i := range fresh {
		fresh[i] = b.hl.Highlight(b.doc.Line(change.First + i))
	}

	tail := b.spans[min(change.First+change.OldCount, len(b.spans)):]
	spans := make([][]highlight.Span, 0, b.doc.LineCount())
	spans = append(spans, b.spans[:min(change.First, len(b.spans))]...)
	spans = append(spans, fresh...)
	spans = append(spans, tail...)
	b.spans = spans
}

// RehighlightAll recomputes every line's spans.
func (b *Buffer) RehighlightAll() {
	b.spans = b.hl.HighlightBlock(b.doc.Text())
}

func (b *Buffer) updateCurrentLine() {
	line := b.doc.PositionOf(int(b.sel.Head)).Line
	b.current.Line = line
	b.gutter.SetCurrentLine(line)
}

func (b *Buffer) clampSelection() {
	n := history.ByteOffset(b.doc.Len())
	b.sel.Anchor = min(max(b.sel.Anchor, 0), n)
	b.sel.Head = min(max(b.sel.Head, 0), n)
}

func (b *Buffer) lineHighlightStyle() core.Style {
	return core.DefaultStyle().WithBackground(b.hl.Theme().LineHighlight)
}

// OnChange registers fn to run after every text mutation.
func (b *Buffer) OnChange(fn func(ChangeEvent)) {
	b.listeners = append(b.listeners, fn)
}

// history.Target

// Len returns the document length in bytes.
func (b *Buffer) Len() history.ByteOffset {
	return history.ByteOffset(b.doc.Len())
}

// TextRange returns the text in [start, end).
func (b *Buffer) TextRange(start, end history.ByteOffset) string {
	return b.doc.TextRange(int(start), int(end))
}

// Replace edits the document without recording history and runs the
// post-mutation sequence.
func (b *Buffer) Replace(start, end history.ByteOffset, text string) (history.ByteOffset, error) {
	change, err := b.doc.Replace(int(start), int(end), text)
	if err != nil {
		b.logger.Warn("replace failed", zap.Error(err))
		return 0, err
	}
	b.modified = true
	b.afterEdit(change, false)
	return start + history.ByteOffset(len(text)), nil
}

// Selection returns the current selection.
func (b *Buffer) Selection() history.Selection {
	return b.sel
}

// SetSelection moves the caret. Only the current-line decoration follows.
func (b *Buffer) SetSelection(sel history.Selection) {
	b.sel = sel
	b.clampSelection()
	b.updateCurrentLine()
	b.revealCaret()
}

// Accessors

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return b.doc.LineCount()
}

// Line returns line i without its line break.
func (b *Buffer) Line(i int) string {
	return b.doc.Line(i)
}

// Spans returns the highlight spans of line i in rule order.
func (b *Buffer) Spans(i int) []highlight.Span {
	if i < 0 || i >= len(b.spans) {
		return nil
	}
	return b.spans[i]
}

// Caret returns the caret position.
func (b *Buffer) Caret() Position {
	return b.doc.PositionOf(int(b.sel.Head))
}

// CaretDisplayColumn returns the caret's screen column within its line.
func (b *Buffer) CaretDisplayColumn() int {
	p := b.Caret()
	return DisplayColumn(b.doc.Line(p.Line), p.Col, b.tabWidth)
}

// HasSelection reports whether text is selected.
func (b *Buffer) HasSelection() bool {
	return !b.sel.IsEmpty()
}

// SelectedText returns the selected text.
func (b *Buffer) SelectedText() string {
	r := b.sel.Range()
	return b.doc.TextRange(int(r.Start), int(r.End))
}

// SelectionRange returns the selection as positions.
func (b *Buffer) SelectionRange() (start, end Position) {
	r := b.sel.Range()
	return b.doc.PositionOf(int(r.Start)), b.doc.PositionOf(int(r.End))
}

// Decorations returns the line decorations. The current-line decoration
// is always present, so the result has exactly one entry.
func (b *Buffer) Decorations() []Decoration {
	return []Decoration{b.current}
}

// CurrentLine returns the current-line decoration.
func (b *Buffer) CurrentLine() Decoration {
	return b.current
}

// Modified reports unsaved changes.
func (b *Buffer) Modified() bool {
	return b.modified
}

// MarkSaved clears the modified flag.
func (b *Buffer) MarkSaved() {
	b.modified = false
}

// Gutter returns the gutter model.
func (b *Buffer) Gutter() *gutter.Gutter {
	return b.gutter
}

// View returns the text viewport.
func (b *Buffer) View() *viewport.Viewport {
	return b.view
}

// Theme returns the highlighting theme.
func (b *Buffer) Theme() *highlight.Theme {
	return b.hl.Theme()
}

// TabWidth returns the tab display width.
func (b *Buffer) TabWidth() int {
	return b.tabWidth
}

// History returns the undo history.
func (b *Buffer) History() *history.History {
	return b.hist
}

// Settings

// SetTheme switches the theme and re-highlights.
func (b *Buffer) SetTheme(theme *highlight.Theme) {
	b.hl = highlight.New(b.hl.Rules(), theme)
	b.current.Style = b.lineHighlightStyle()
	b.RehighlightAll()
}

// SetRules switches the rule set and re-highlights.
func (b *Buffer) SetRules(rules *highlight.RuleSet) {
	b.hl = highlight.New(rules, b.hl.Theme())
	b.RehighlightAll()
}

// SetIndentUnit changes the unit used by InsertBreak and Indent.
func (b *Buffer) SetIndentUnit(unit string) {
	b.indent = indent.New(unit)
}

// SetTabWidth changes the tab display width.
func (b *Buffer) SetTabWidth(w int) {
	b.tabWidth = max(w, 1)
}

// SetScrollMargins changes the context kept around the caret.
func (b *Buffer) SetScrollMargins(m viewport.MarginConfig) {
	b.view.SetMargins(m)
	b.revealCaret()
}

// SetBlockScope toggles whole-document re-highlighting.
func (b *Buffer) SetBlockScope(on bool) {
	b.blockScope = on
	b.RehighlightAll()
}

// Editing

// Execute runs cmd through the undo history.
func (b *Buffer) Execute(cmd history.Command) error {
	b.goalCol = -1
	return b.hist.Execute(cmd, b)
}

// InsertText inserts text at the caret, replacing the selection.
func (b *Buffer) InsertText(text string) error {
	if text == "" {
		return nil
	}
	return b.Execute(history.NewInsertCommand(normalizeNewlines(text)))
}

// InsertBreak inserts a line break followed by the indentation computed
// from the caret line, as one undo step.
func (b *Buffer) InsertBreak() error {
	line := b.doc.Line(b.Caret().Line)
	return b.Execute(history.NewInsertCommand(b.indent.BreakText(line)))
}

// Backspace deletes the selection or the rune before the caret.
func (b *Buffer) Backspace() error {
	return b.Execute(history.NewDeleteCommand(history.DeleteBackward))
}

// DeleteForward deletes the selection or the rune after the caret.
func (b *Buffer) DeleteForward() error {
	return b.Execute(history.NewDeleteCommand(history.DeleteForward))
}

// Tab inserts an indent unit, or indents every selected line.
func (b *Buffer) Tab() error {
	start, end := b.SelectionRange()
	if b.HasSelection() && start.Line != end.Line {
		return b.IndentLines(start.Line, end.Line)
	}
	return b.InsertText(b.indent.Unit())
}

// IndentLines prefixes lines [first, last] with one indent unit as one
// undo step.
func (b *Buffer) IndentLines(first, last int) error {
	var cmds []history.Command
	for l := last; l >= first; l-- {
		at := history.ByteOffset(b.doc.LineStart(l))
		cmds = append(cmds, history.NewReplaceCommand(history.Range{Start: at, End: at}, b.indent.Unit()))
	}
	return b.executeLines("Indent", first, last, cmds)
}

// DedentLines removes up to one indent unit of leading whitespace from
// lines [first, last] as one undo step.
func (b *Buffer) DedentLines(first, last int) error {
	var cmds []history.Command
	for l := last; l >= first; l-- {
		lead := indent.LeadingWhitespace(b.doc.Line(l))
		n := min(len(lead), len(b.indent.Unit()))
		if strings.HasPrefix(lead, "\t") {
			n = 1
		}
		if n == 0 {
			continue
		}
		at := history.ByteOffset(b.doc.LineStart(l))
		cmds = append(cmds, history.NewReplaceCommand(history.Range{Start: at, End: at + history.ByteOffset(n)}, ""))
	}
	return b.executeLines("Dedent", first, last, cmds)
}

func (b *Buffer) executeLines(name string, first, last int, cmds []history.Command) error {
	if len(cmds) == 0 {
		return nil
	}
	if err := b.hist.ExecuteGrouped(name, b, cmds...); err != nil {
		return err
	}
	start := b.doc.LineStart(first)
	end := b.doc.LineStart(last) + len(b.doc.Line(last))
	b.SetSelection(history.Selection{Anchor: history.ByteOffset(start), Head: history.ByteOffset(end)})
	return nil
}

// Append adds text at the end of the document without recording history
// and moves the caret after it.
func (b *Buffer) Append(text string) error {
	if text == "" {
		return nil
	}
	end := b.Len()
	if _, err := b.Replace(end, end, normalizeNewlines(text)); err != nil {
		return err
	}
	b.MoveDocumentEnd(false)
	return nil
}

// TrimFront drops the first n lines. History is cleared because its
// offsets no longer apply.
func (b *Buffer) TrimFront(n int) error {
	if n <= 0 {
		return nil
	}
	if n >= b.doc.LineCount() {
		n = b.doc.LineCount() - 1
	}
	cut := history.ByteOffset(b.doc.LineStart(n))
	sel := b.sel
	if _, err := b.Replace(0, cut, ""); err != nil {
		return err
	}
	b.hist.Clear()
	sel.Anchor = max(sel.Anchor-cut, 0)
	sel.Head = max(sel.Head-cut, 0)
	b.SetSelection(sel)
	return nil
}

// Undo reverts the last edit. It reports false when there was nothing to
// undo.
func (b *Buffer) Undo() (bool, error) {
	b.goalCol = -1
	err := b.hist.Undo(b)
	if errors.Is(err, history.ErrNothingToUndo) {
		return false, nil
	}
	return err == nil, err
}

// Redo re-applies the last undone edit.
func (b *Buffer) Redo() (bool, error) {
	b.goalCol = -1
	err := b.hist.Redo(b)
	if errors.Is(err, history.ErrNothingToRedo) {
		return false, nil
	}
	return err == nil, err
}

// Copy writes the selection to the clipboard. Nothing happens without a
// selection.
func (b *Buffer) Copy() error {
	if !b.HasSelection() {
		return nil
	}
	return b.clipboard.WriteAll(b.SelectedText())
}

// Cut copies and deletes the selection.
func (b *Buffer) Cut() error {
	if !b.HasSelection() {
		return nil
	}
	if err := b.Copy(); err != nil {
		return err
	}
	return b.Backspace()
}

// Paste inserts the clipboard text at the caret.
func (b *Buffer) Paste() error {
	text, err := b.clipboard.ReadAll()
	if err != nil {
		return err
	}
	return b.InsertText(text)
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
