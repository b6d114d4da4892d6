// Package history provides undo/redo for the editor buffer.
//
// Commands edit a Target (the document plus its single selection) and
// record an Operation holding the replaced range, the old and new text, and
// the selection before and after, so they can be undone and redone.
//
//	h := NewHistory(1000)
//	h.Execute(NewInsertCommand("x"), doc)
//	h.Undo(doc)
//	h.Redo(doc)
//
// Consecutive single-line inserts at adjacent offsets merge into one undo
// step while they arrive within the merge window. An insert containing a
// line break always starts its own step, so a break plus its indentation
// undoes at once.
//
// ExecuteGrouped records several commands as one step, as the editor does
// when indenting or dedenting a block of lines.
package history
