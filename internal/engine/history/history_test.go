package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDoc is a string-backed Target.
type testDoc struct {
	text string
	sel  Selection
}

func newTestDoc(text string, caret ByteOffset) *testDoc {
	return &testDoc{text: text, sel: NewCursorSelection(caret)}
}

func (d *testDoc) Len() ByteOffset { return ByteOffset(len(d.text)) }

func (d *testDoc) TextRange(start, end ByteOffset) string { return d.text[start:end] }

func (d *testDoc) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	if start < 0 || end > d.Len() || start > end {
		return 0, errors.New("range out of bounds")
	}
	d.text = d.text[:start] + text + d.text[end:]
	return start + ByteOffset(len(text)), nil
}

func (d *testDoc) Selection() Selection { return d.sel }

func (d *testDoc) SetSelection(sel Selection) { d.sel = sel }

// Operation Tests

func TestOperationIsInsert(t *testing.T) {
	assert.True(t, NewReplaceOperation(Range{Start: 3, End: 3}, "", "abc").IsInsert())
	assert.False(t, NewReplaceOperation(Range{Start: 0, End: 4}, "abcd", "").IsInsert(), "deletion")
	assert.False(t, NewReplaceOperation(Range{Start: 0, End: 1}, "a", "b").IsInsert(), "replacement")
}

func TestOperationInvert(t *testing.T) {
	op := NewReplaceOperation(Range{Start: 2, End: 5}, "abc", "xy")
	op.SelectionBefore = NewCursorSelection(5)
	op.SelectionAfter = NewCursorSelection(4)

	inv := op.Invert()
	assert.Equal(t, Range{Start: 2, End: 4}, inv.Range)
	assert.Equal(t, "xy", inv.OldText)
	assert.Equal(t, "abc", inv.NewText)
	assert.Equal(t, op.SelectionBefore, inv.SelectionAfter, "inverted selection swaps")
}

func TestSelectionRange(t *testing.T) {
	sel := Selection{Anchor: 7, Head: 2}
	assert.Equal(t, ByteOffset(2), sel.Start())
	assert.Equal(t, ByteOffset(7), sel.End())
	assert.False(t, sel.IsEmpty())
	assert.EqualValues(t, 5, sel.Range().Len())
}

// Command Tests

func TestInsertCommand(t *testing.T) {
	doc := newTestDoc("hello", 5)
	cmd := NewInsertCommand(" world")

	require.NoError(t, cmd.Execute(doc))
	assert.Equal(t, "hello world", doc.text)
	assert.Equal(t, ByteOffset(11), doc.sel.Head)

	require.NoError(t, cmd.Undo(doc))
	assert.Equal(t, "hello", doc.text)
	assert.Equal(t, ByteOffset(5), doc.sel.Head)
}

func TestInsertCommandWithSelection(t *testing.T) {
	doc := newTestDoc("hello world", 0)
	doc.sel = Selection{Anchor: 6, Head: 11}

	cmd := NewInsertCommand("there")
	require.NoError(t, cmd.Execute(doc))
	assert.Equal(t, "hello there", doc.text)

	require.NoError(t, cmd.Undo(doc))
	assert.Equal(t, "hello world", doc.text)
	assert.Equal(t, Selection{Anchor: 6, Head: 11}, doc.sel, "selection restored")
}

func TestDeleteCommand(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     ByteOffset
		direction DeleteDirection
		want      string
		wantCaret ByteOffset
	}{
		{"backspace", "hello", 5, DeleteBackward, "hell", 4},
		{"backspace at start", "hello", 0, DeleteBackward, "hello", 0},
		{"forward", "hello", 0, DeleteForward, "ello", 0},
		{"forward at end", "hello", 5, DeleteForward, "hello", 5},
		{"backspace multibyte", "a世", 4, DeleteBackward, "a", 1},
		{"forward multibyte", "世a", 0, DeleteForward, "a", 0},
		{"backspace newline", "a\nb", 2, DeleteBackward, "ab", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newTestDoc(tt.text, tt.caret)
			cmd := NewDeleteCommand(tt.direction)
			require.NoError(t, cmd.Execute(doc))
			assert.Equal(t, tt.want, doc.text)
			assert.Equal(t, tt.wantCaret, doc.sel.Head)

			_ = cmd.Undo(doc)
			assert.Equal(t, tt.text, doc.text, "after undo")
		})
	}
}

func TestDeleteCommandWithSelection(t *testing.T) {
	doc := newTestDoc("hello world", 0)
	doc.sel = Selection{Anchor: 11, Head: 5}

	cmd := NewDeleteCommand(DeleteBackward)
	require.NoError(t, cmd.Execute(doc))
	assert.Equal(t, "hello", doc.text)
	assert.Equal(t, ByteOffset(5), doc.sel.Head)
}

func TestReplaceCommand(t *testing.T) {
	doc := newTestDoc("hello world", 0)
	cmd := NewReplaceCommand(Range{Start: 0, End: 5}, "howdy")

	require.NoError(t, cmd.Execute(doc))
	assert.Equal(t, "howdy world", doc.text)
	assert.Equal(t, "Replace 5 with 5 characters", cmd.Description())

	_ = cmd.Undo(doc)
	assert.Equal(t, "hello world", doc.text)
}

func TestReplaceCommandOutOfRange(t *testing.T) {
	doc := newTestDoc("abc", 0)
	cmd := NewReplaceCommand(Range{Start: 2, End: 1}, "x")
	assert.ErrorIs(t, cmd.Execute(doc), ErrInvalidRange)
}

func TestCompoundCommand(t *testing.T) {
	doc := newTestDoc("a", 1)
	cmd := NewCompoundCommand("two inserts", NewInsertCommand("b"), NewInsertCommand("c"))

	require.NoError(t, cmd.Execute(doc))
	assert.Equal(t, "abc", doc.text)

	require.NoError(t, cmd.Undo(doc))
	assert.Equal(t, "a", doc.text)
	assert.Equal(t, "two inserts", cmd.Description())
}

// History Tests

func TestHistoryUndoRedo(t *testing.T) {
	doc := newTestDoc("hello", 5)
	h := NewHistory(100)

	require.NoError(t, h.Execute(NewInsertCommand(" world"), doc))
	require.NoError(t, h.Undo(doc))
	assert.Equal(t, "hello", doc.text)

	require.NoError(t, h.Redo(doc))
	assert.Equal(t, "hello world", doc.text)
}

func TestHistoryErrors(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(10)

	assert.ErrorIs(t, h.Undo(doc), ErrNothingToUndo)
	assert.ErrorIs(t, h.Redo(doc), ErrNothingToRedo)
}

func TestHistoryRedoClearedOnPush(t *testing.T) {
	doc := newTestDoc("hello", 5)
	h := NewHistory(100)

	_ = h.Execute(NewInsertCommand(" world"), doc)
	_ = h.Undo(doc)
	require.True(t, h.CanRedo())

	_ = h.Execute(NewInsertCommand("!"), doc)
	assert.False(t, h.CanRedo(), "redo cleared after a new command")
}

func TestHistoryMaxEntries(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(3)
	h.SetMergeWindow(0)

	for i := 0; i < 5; i++ {
		_ = h.Execute(NewInsertCommand("x"), doc)
	}
	assert.Equal(t, 3, h.UndoCount())
}

func TestHistoryMergesTyping(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(100)

	for _, s := range []string{"d", "e", "f"} {
		_ = h.Execute(NewInsertCommand(s), doc)
	}
	require.Equal(t, 1, h.UndoCount(), "typing merges")

	_ = h.Undo(doc)
	assert.Empty(t, doc.text)
	assert.Equal(t, ByteOffset(0), doc.sel.Head)

	_ = h.Redo(doc)
	assert.Equal(t, "def", doc.text)
	assert.Equal(t, ByteOffset(3), doc.sel.Head)
}

func TestHistoryLineBreakIsOwnStep(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(100)

	_ = h.Execute(NewInsertCommand("def foo():"), doc)
	_ = h.Execute(NewInsertCommand("\n    "), doc)
	_ = h.Execute(NewInsertCommand("p"), doc)
	require.Equal(t, 3, h.UndoCount())

	_ = h.Undo(doc)
	_ = h.Undo(doc)
	assert.Equal(t, "def foo():", doc.text, "break and indent undo together")
}

func TestHistoryMergeWindowExpires(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(100)

	now := time.Unix(0, 0)
	h.now = func() time.Time { return now }

	_ = h.Execute(NewInsertCommand("a"), doc)
	now = now.Add(2 * DefaultMergeWindow)
	_ = h.Execute(NewInsertCommand("b"), doc)

	assert.Equal(t, 2, h.UndoCount())
}

func TestHistoryNoMergeAfterCaretMove(t *testing.T) {
	doc := newTestDoc("xy", 0)
	h := NewHistory(100)

	_ = h.Execute(NewInsertCommand("a"), doc)
	doc.sel = NewCursorSelection(3)
	_ = h.Execute(NewInsertCommand("b"), doc)

	assert.Equal(t, 2, h.UndoCount())
}

func TestHistoryExecuteGrouped(t *testing.T) {
	doc := newTestDoc("abc", 0)
	h := NewHistory(100)

	err := h.ExecuteGrouped("indent", doc,
		NewReplaceCommand(Range{Start: 0, End: 0}, "  "),
		NewReplaceCommand(Range{Start: 3, End: 3}, "-"),
	)
	require.NoError(t, err)
	assert.Equal(t, "  a-bc", doc.text)

	_ = h.Undo(doc)
	assert.Equal(t, "abc", doc.text)
}

func TestHistoryExecuteGroupedRollsBack(t *testing.T) {
	doc := newTestDoc("abc", 0)
	h := NewHistory(100)

	err := h.ExecuteGrouped("bad", doc,
		NewReplaceCommand(Range{Start: 0, End: 0}, "x"),
		NewReplaceCommand(Range{Start: 10, End: 12}, "y"),
	)
	require.Error(t, err)
	assert.Equal(t, "abc", doc.text, "partial group reverted")
	assert.False(t, h.CanUndo(), "failed group not recorded")
}

func TestHistoryClear(t *testing.T) {
	doc := newTestDoc("", 0)
	h := NewHistory(100)
	_ = h.Execute(NewInsertCommand("a"), doc)
	_ = h.Execute(NewInsertCommand("\n"), doc)
	_ = h.Undo(doc)

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
