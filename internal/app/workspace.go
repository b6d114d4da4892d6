package app

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Workspace tracks the single open file.
type Workspace struct {
	path       string
	extensions []string
}

// NewWorkspace creates a workspace that opens only files with the given
// extensions. An empty list allows every file.
func NewWorkspace(extensions []string) *Workspace {
	w := &Workspace{}
	w.SetExtensions(extensions)
	return w
}

// SetExtensions replaces the extension filter.
func (w *Workspace) SetExtensions(extensions []string) {
	w.extensions = w.extensions[:0]
	for _, ext := range extensions {
		w.extensions = append(w.extensions, strings.ToLower(ext))
	}
}

// Allowed reports whether path passes the extension filter.
func (w *Workspace) Allowed(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

// Path returns the open file, or "" when nothing is open.
func (w *Workspace) Path() string {
	return w.path
}

// Title returns the window title.
func (w *Workspace) Title() string {
	if w.path == "" {
		return "mcode"
	}
	return "mcode - " + w.path
}

// Open reads path and makes it the current file.
func (w *Workspace) Open(path string) (string, error) {
	abs, err := w.resolve(path)
	if err != nil {
		return "", &FileError{Op: "open", Path: path, Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &FileError{Op: "open", Path: abs, Err: err}
	}
	w.path = abs
	return string(data), nil
}

// Save writes text to the current file.
func (w *Workspace) Save(text string) error {
	if w.path == "" {
		return ErrNoFile
	}
	if err := os.WriteFile(w.path, []byte(text), 0o644); err != nil {
		return &FileError{Op: "save", Path: w.path, Err: err}
	}
	return nil
}

// SaveAs writes text to path and makes it the current file.
func (w *Workspace) SaveAs(path, text string) error {
	abs, err := w.resolve(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return &FileError{Op: "save", Path: abs, Err: err}
	}
	w.path = abs
	return nil
}

func (w *Workspace) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrNoFile
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !w.Allowed(path) {
		return "", fmt.Errorf("%w (allowed: %s)", ErrFileType, strings.Join(w.extensions, " "))
	}
	return filepath.Abs(path)
}
