package event

import (
	"time"

	"github.com/dshills/mcode/internal/renderer/backend"
)

// Event is one of the event types declared in this package.
type Event interface {
	// When returns the time the event was created.
	When() time.Time

	sealed()
}

// Header carries the fields common to every event.
type Header struct {
	At time.Time
}

// When returns the creation time.
func (h Header) When() time.Time { return h.At }

func (Header) sealed() {}

// Now returns a header stamped with the current time.
func Now() Header {
	return Header{At: time.Now()}
}

// Key is a key press.
type Key struct {
	Header
	Key  backend.Key
	Rune rune
	Mod  backend.ModMask
}

// Mouse is a button press at a screen cell.
type Mouse struct {
	Header
	X, Y   int
	Button backend.MouseButton
	Mod    backend.ModMask
}

// Resize reports a new window size in cells.
type Resize struct {
	Header
	Width  int
	Height int
}

// Scroll moves a view by Delta lines; positive scrolls toward the end.
type Scroll struct {
	Header
	X, Y  int
	Delta int
}

// Geometry reports that the text area origin moved because the gutter
// changed width.
type Geometry struct {
	Header
	GutterWidth int
}

// ChildOutput is a chunk read from a shell session. Data is owned by the
// receiver.
type ChildOutput struct {
	Header
	SessionID string
	Data      []byte
}

// ChildExited reports that a shell session's process ended.
type ChildExited struct {
	Header
	SessionID string
	ExitCode  int
}

// RunFinished carries the result of running the current file.
type RunFinished struct {
	Header
	Path     string
	Output   string
	ExitCode int
	Err      error
}

// ConfigReloaded reports that the configuration file changed on disk.
// Settings is the freshly loaded configuration; its type belongs to the
// config package.
type ConfigReloaded struct {
	Header
	Settings any
	Err      error
}

// FromBackend converts a backend event. It returns nil for events that
// have no counterpart.
func FromBackend(ev backend.Event) Event {
	h := Now()
	switch ev.Type {
	case backend.EventKey:
		return Key{Header: h, Key: ev.Key, Rune: ev.Rune, Mod: ev.Mod}
	case backend.EventResize:
		return Resize{Header: h, Width: ev.Width, Height: ev.Height}
	case backend.EventMouse:
		switch ev.MouseButton {
		case backend.MouseWheelUp:
			return Scroll{Header: h, X: ev.MouseX, Y: ev.MouseY, Delta: -3}
		case backend.MouseWheelDown:
			return Scroll{Header: h, X: ev.MouseX, Y: ev.MouseY, Delta: 3}
		case backend.MouseLeft:
			return Mouse{Header: h, X: ev.MouseX, Y: ev.MouseY, Button: ev.MouseButton, Mod: ev.Mod}
		}
	}
	return nil
}
