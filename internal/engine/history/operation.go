package history

import (
	"time"
)

// ByteOffset is a byte position in a document.
type ByteOffset int

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// IsEmpty returns true if the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Len returns the number of bytes in the range.
func (r Range) Len() ByteOffset {
	if r.IsEmpty() {
		return 0
	}
	return r.End - r.Start
}

// Selection is an anchor/head pair. Head is the caret.
type Selection struct {
	Anchor ByteOffset
	Head   ByteOffset
}

// NewCursorSelection returns an empty selection at offset.
func NewCursorSelection(offset ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty returns true if nothing is selected.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() ByteOffset {
	return min(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() ByteOffset {
	return max(s.Anchor, s.Head)
}

// Range returns the selected range.
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// Operation represents a single undoable edit.
// It captures all information needed to undo or redo the edit.
type Operation struct {
	// Edit data
	Range   Range  // Range that was modified (in original document)
	OldText string // Text that was replaced (for undo)
	NewText string // Text that was inserted (for redo)

	// Selection state for restore
	SelectionBefore Selection
	SelectionAfter  Selection

	// Metadata
	Timestamp time.Time // When the operation occurred
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(r Range, oldText, newText string) *Operation {
	return &Operation{
		Range:     r,
		OldText:   oldText,
		NewText:   newText,
		Timestamp: time.Now(),
	}
}

// IsInsert returns true if this operation is a pure insertion.
func (op *Operation) IsInsert() bool {
	return op.Range.IsEmpty() && len(op.NewText) > 0
}

// NewRange returns the range of the text after the operation.
func (op *Operation) NewRange() Range {
	return Range{
		Start: op.Range.Start,
		End:   op.Range.Start + ByteOffset(len(op.NewText)),
	}
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Range:           op.NewRange(),
		OldText:         op.NewText,
		NewText:         op.OldText,
		SelectionBefore: op.SelectionAfter,
		SelectionAfter:  op.SelectionBefore,
		Timestamp:       time.Now(),
	}
}
