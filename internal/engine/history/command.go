package history

import (
	"fmt"
	"unicode/utf8"
)

// Target is the document commands edit. Replace must not record history.
type Target interface {
	// Len returns the document length in bytes.
	Len() ByteOffset

	// TextRange returns the text in [start, end).
	TextRange(start, end ByteOffset) string

	// Replace replaces [start, end) with text and returns the end offset
	// of the inserted text.
	Replace(start, end ByteOffset, text string) (ByteOffset, error)

	// Selection returns the current selection.
	Selection() Selection

	// SetSelection moves the caret and anchor.
	SetSelection(sel Selection)
}

// Command represents a composable edit action that can be executed and undone.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(t Target) error

	// Undo reverses the command and returns an error if it fails.
	Undo(t Target) error

	// Description returns a human-readable description of the command.
	Description() string
}

// applyOp performs op on t and records the selections around it.
func applyOp(t Target, op *Operation, caretAtEnd bool) error {
	op.SelectionBefore = t.Selection()
	newEnd, err := t.Replace(op.Range.Start, op.Range.End, op.NewText)
	if err != nil {
		return fmt.Errorf("replace at range [%d,%d): %w", op.Range.Start, op.Range.End, err)
	}
	if caretAtEnd {
		op.SelectionAfter = NewCursorSelection(newEnd)
	} else {
		op.SelectionAfter = NewCursorSelection(op.Range.Start)
	}
	t.SetSelection(op.SelectionAfter)
	return nil
}

// revertOp undoes op on t and restores the selection it started with.
func revertOp(t Target, op *Operation) error {
	inv := op.Invert()
	if _, err := t.Replace(inv.Range.Start, inv.Range.End, inv.NewText); err != nil {
		return fmt.Errorf("undo range [%d,%d): %w", inv.Range.Start, inv.Range.End, err)
	}
	t.SetSelection(op.SelectionBefore)
	return nil
}

// InsertCommand inserts text at the caret, replacing any selection.
type InsertCommand struct {
	Text string
	op   *Operation
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(text string) *InsertCommand {
	return &InsertCommand{Text: text}
}

// Execute inserts the text and leaves the caret after it.
func (c *InsertCommand) Execute(t Target) error {
	c.op = nil
	if len(c.Text) == 0 {
		return nil
	}
	r := t.Selection().Range()
	op := NewReplaceOperation(r, t.TextRange(r.Start, r.End), c.Text)
	if err := applyOp(t, op, true); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	c.op = op
	return nil
}

// Undo removes the inserted text.
func (c *InsertCommand) Undo(t Target) error {
	if c.op == nil {
		return nil
	}
	return revertOp(t, c.op)
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	n := utf8.RuneCountInString(c.Text)
	if n == 1 {
		return fmt.Sprintf("Insert %q", c.Text)
	}
	return fmt.Sprintf("Insert %d characters", n)
}

// DeleteDirection specifies the direction of deletion.
type DeleteDirection int

const (
	// DeleteBackward deletes backward (like Backspace key).
	DeleteBackward DeleteDirection = iota
	// DeleteForward deletes forward (like Delete key).
	DeleteForward
)

// DeleteCommand deletes the selection, or Count runes next to the caret.
type DeleteCommand struct {
	Direction DeleteDirection
	Count     int
	op        *Operation
}

// NewDeleteCommand creates a new delete command.
func NewDeleteCommand(direction DeleteDirection) *DeleteCommand {
	return &DeleteCommand{
		Direction: direction,
		Count:     1,
	}
}

// Execute deletes text around the caret.
func (c *DeleteCommand) Execute(t Target) error {
	c.op = nil
	sel := t.Selection()

	r := sel.Range()
	if sel.IsEmpty() {
		r = c.runeRange(t, sel.Head)
	}
	if r.IsEmpty() {
		return nil
	}

	op := NewReplaceOperation(r, t.TextRange(r.Start, r.End), "")
	if err := applyOp(t, op, false); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	c.op = op
	return nil
}

// runeRange returns the range of Count runes before or after pos.
func (c *DeleteCommand) runeRange(t Target, pos ByteOffset) Range {
	count := max(c.Count, 1)
	if c.Direction == DeleteBackward {
		before := t.TextRange(0, pos)
		start := ByteOffset(len(before))
		for i := 0; i < count && start > 0; i++ {
			_, size := utf8.DecodeLastRuneInString(before[:start])
			start -= ByteOffset(size)
		}
		return Range{Start: start, End: pos}
	}

	after := t.TextRange(pos, t.Len())
	end := 0
	for i := 0; i < count && end < len(after); i++ {
		_, size := utf8.DecodeRuneInString(after[end:])
		end += size
	}
	return Range{Start: pos, End: pos + ByteOffset(end)}
}

// Undo restores the deleted text.
func (c *DeleteCommand) Undo(t Target) error {
	if c.op == nil {
		return nil
	}
	return revertOp(t, c.op)
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	if c.Direction == DeleteBackward {
		return "Backspace"
	}
	return "Delete"
}

// ReplaceCommand replaces text in a specific range.
type ReplaceCommand struct {
	Range   Range
	NewText string
	op      *Operation
}

// NewReplaceCommand creates a new replace command.
func NewReplaceCommand(r Range, newText string) *ReplaceCommand {
	return &ReplaceCommand{
		Range:   r,
		NewText: newText,
	}
}

// Execute replaces text in the specified range and leaves the caret after
// the new text.
func (c *ReplaceCommand) Execute(t Target) error {
	if c.Range.Start < 0 || c.Range.Start > c.Range.End || c.Range.End > t.Len() {
		return fmt.Errorf("%w: [%d,%d)", ErrInvalidRange, c.Range.Start, c.Range.End)
	}
	op := NewReplaceOperation(c.Range, t.TextRange(c.Range.Start, c.Range.End), c.NewText)
	if err := applyOp(t, op, true); err != nil {
		return err
	}
	c.op = op
	return nil
}

// Undo restores the original text and selection.
func (c *ReplaceCommand) Undo(t Target) error {
	if c.op == nil {
		return nil
	}
	return revertOp(t, c.op)
}

// Description returns a human-readable description.
func (c *ReplaceCommand) Description() string {
	oldLen := c.Range.Len()
	newLen := utf8.RuneCountInString(c.NewText)
	if oldLen == 0 {
		return fmt.Sprintf("Insert %d characters", newLen)
	}
	if newLen == 0 {
		return fmt.Sprintf("Delete %d characters", oldLen)
	}
	return fmt.Sprintf("Replace %d with %d characters", oldLen, newLen)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(t Target) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(t); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(t)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(t Target) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(t); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
