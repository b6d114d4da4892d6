package app

import (
	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/renderer/backend"
)

// Action names bound by the default key map.
const (
	ActionUndo           = "edit.undo"
	ActionRedo           = "edit.redo"
	ActionCopy           = "edit.copy"
	ActionCut            = "edit.cut"
	ActionPaste          = "edit.paste"
	ActionSelectAll      = "edit.select_all"
	ActionOpen           = "file.open"
	ActionSave           = "file.save"
	ActionRun            = "file.run"
	ActionToggleTerminal = "terminal.toggle"
	ActionSwitchFocus    = "focus.switch"
	ActionFocusEditor    = "focus.editor"
	ActionQuit           = "app.quit"
)

// Chord is a key with its modifiers.
type Chord struct {
	Key  backend.Key
	Rune rune
	Mod  backend.ModMask
}

// ChordOf normalizes a key event. Control keys already imply Ctrl, and a
// printable rune already carries Shift.
func ChordOf(ev event.Key) Chord {
	c := Chord{Key: ev.Key, Mod: ev.Mod}
	switch {
	case ev.Key == backend.KeyRune:
		c.Rune = ev.Rune
		c.Mod &^= backend.ModShift
	case ev.Key >= backend.KeyCtrlA && ev.Key <= backend.KeyCtrlZ:
		c.Mod &^= backend.ModCtrl
	}
	return c
}

// Keymap binds chords to action names.
type Keymap struct {
	bindings map[Chord]string
}

// NewKeymap creates an empty key map.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[Chord]string)}
}

// DefaultKeymap returns the standard shortcuts.
func DefaultKeymap() *Keymap {
	k := NewKeymap()
	k.Bind(Chord{Key: backend.KeyCtrlZ}, ActionUndo)
	k.Bind(Chord{Key: backend.KeyCtrlZ, Mod: backend.ModShift}, ActionRedo)
	k.Bind(Chord{Key: backend.KeyCtrlY}, ActionRedo)
	k.Bind(Chord{Key: backend.KeyCtrlC}, ActionCopy)
	k.Bind(Chord{Key: backend.KeyCtrlX}, ActionCut)
	k.Bind(Chord{Key: backend.KeyCtrlV}, ActionPaste)
	k.Bind(Chord{Key: backend.KeyCtrlA}, ActionSelectAll)
	k.Bind(Chord{Key: backend.KeyCtrlO}, ActionOpen)
	k.Bind(Chord{Key: backend.KeyCtrlS}, ActionSave)
	k.Bind(Chord{Key: backend.KeyF5}, ActionRun)
	k.Bind(Chord{Key: backend.KeyCtrlT}, ActionToggleTerminal)
	k.Bind(Chord{Key: backend.KeyCtrlW}, ActionSwitchFocus)
	k.Bind(Chord{Key: backend.KeyEscape}, ActionFocusEditor)
	k.Bind(Chord{Key: backend.KeyCtrlQ}, ActionQuit)
	return k
}

// Bind maps c to action, replacing any earlier binding.
func (k *Keymap) Bind(c Chord, action string) {
	k.bindings[c] = action
}

// Unbind removes the binding for c.
func (k *Keymap) Unbind(c Chord) {
	delete(k.bindings, c)
}

// Lookup returns the action bound to ev.
func (k *Keymap) Lookup(ev event.Key) (string, bool) {
	action, ok := k.bindings[ChordOf(ev)]
	return action, ok
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.bindings)
}
