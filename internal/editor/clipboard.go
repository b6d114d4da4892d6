package editor

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard stores copied text.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Register is an in-process clipboard.
type Register struct {
	mu   sync.Mutex
	text string
}

// ReadAll returns the stored text.
func (r *Register) ReadAll() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, nil
}

// WriteAll stores text.
func (r *Register) WriteAll(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	return nil
}

// SystemClipboard uses the desktop clipboard and mirrors every write into
// a local register, which is read back when the system clipboard is not
// available (no display, no xclip/xsel/wl-copy).
type SystemClipboard struct {
	local Register
}

// NewSystemClipboard creates a system clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// ReadAll returns the system clipboard, or the local register on failure.
func (c *SystemClipboard) ReadAll() (string, error) {
	if !clipboard.Unsupported {
		if text, err := clipboard.ReadAll(); err == nil {
			return text, nil
		}
	}
	return c.local.ReadAll()
}

// WriteAll writes text to both the local register and the system clipboard.
// A failing system clipboard is not an error.
func (c *SystemClipboard) WriteAll(text string) error {
	_ = c.local.WriteAll(text)
	if !clipboard.Unsupported {
		_ = clipboard.WriteAll(text)
	}
	return nil
}
