package history

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrInvalidRange  = errors.New("invalid range")
)

// DefaultMergeWindow is how long consecutive typing keeps merging into
// one undo step.
const DefaultMergeWindow = time.Second

// DefaultMaxEntries bounds the undo stack when NewHistory gets zero.
const DefaultMaxEntries = 1000

type entry struct {
	command Command
	// at is when the entry last absorbed typing; zero never merges.
	at time.Time
}

// History holds the undo and redo stacks of one buffer.
type History struct {
	mu sync.Mutex

	undo []*entry
	redo []*entry

	maxEntries  int
	mergeWindow time.Duration
	now         func() time.Time
}

// NewHistory creates a history keeping at most maxEntries undo steps.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries:  maxEntries,
		mergeWindow: DefaultMergeWindow,
		now:         time.Now,
	}
}

// SetMergeWindow sets how long typed characters keep merging. Zero
// disables merging.
func (h *History) SetMergeWindow(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mergeWindow = d
}

// Execute runs cmd on t and records it. The redo stack is dropped.
func (h *History) Execute(cmd Command, t Target) error {
	if err := cmd.Execute(t); err != nil {
		return err
	}
	h.push(cmd)
	return nil
}

// ExecuteGrouped runs cmds as one undo step. If one fails, the ones
// already run are reverted and nothing is recorded.
func (h *History) ExecuteGrouped(name string, t Target, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return h.Execute(cmds[0], t)
	}
	return h.Execute(NewCompoundCommand(name, cmds...), t)
}

func (h *History) push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.redo = nil

	if n := len(h.undo); n > 0 && h.mergeWindow > 0 {
		top := h.undo[n-1]
		if !top.at.IsZero() && now.Sub(top.at) <= h.mergeWindow && mergeInsert(top.command, cmd) {
			top.at = now
			return
		}
	}

	h.undo = append(h.undo, &entry{command: cmd, at: now})
	if excess := len(h.undo) - h.maxEntries; excess > 0 {
		h.undo = h.undo[excess:]
	}
}

// mergeInsert folds next into prev when both are plain typing at
// adjacent positions. Line breaks always start a new undo step.
func mergeInsert(prev, next Command) bool {
	p, ok := prev.(*InsertCommand)
	if !ok || p.op == nil {
		return false
	}
	n, ok := next.(*InsertCommand)
	if !ok || n.op == nil || !n.op.IsInsert() {
		return false
	}
	if strings.Contains(p.Text, "\n") || strings.Contains(n.Text, "\n") {
		return false
	}
	if n.op.Range.Start != p.op.NewRange().End {
		return false
	}

	p.Text += n.Text
	p.op.NewText += n.Text
	p.op.SelectionAfter = n.op.SelectionAfter
	return true
}

// Undo reverts the newest step. The lock is not held while the command
// runs so change listeners on t may query the history.
func (h *History) Undo(t Target) error {
	e, ok := h.pop(&h.undo)
	if !ok {
		return ErrNothingToUndo
	}
	if err := e.command.Undo(t); err != nil {
		h.pushBack(&h.undo, e)
		return err
	}
	h.pushBack(&h.redo, e)
	return nil
}

// Redo re-applies the newest undone step.
func (h *History) Redo(t Target) error {
	e, ok := h.pop(&h.redo)
	if !ok {
		return ErrNothingToRedo
	}
	if err := e.command.Execute(t); err != nil {
		h.pushBack(&h.redo, e)
		return err
	}
	// Redone steps never absorb later typing.
	e.at = time.Time{}
	h.pushBack(&h.undo, e)
	return nil
}

func (h *History) pop(stack *[]*entry) (*entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	e := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return e, true
}

func (h *History) pushBack(stack *[]*entry, e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	*stack = append(*stack, e)
}

// CanUndo reports whether there is a step to undo.
func (h *History) CanUndo() bool {
	return h.UndoCount() > 0
}

// CanRedo reports whether there is a step to redo.
func (h *History) CanRedo() bool {
	return h.RedoCount() > 0
}

// UndoCount returns the number of undo steps.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoCount returns the number of redo steps.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
