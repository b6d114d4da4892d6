// Package config loads the mcode configuration.
//
// Settings are resolved in layers, each overriding the one below:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← applied by cmd/mcode
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← MCODE_EDITOR_TAB_WIDTH=2 (MCODE_ only)
//	├─────────────────────────────┤
//	│  2. User Config File        │  ← ~/.config/mcode/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The file may be TOML (.toml) or YAML (.yaml, .yml). Unknown keys are
// rejected with a ParseError carrying the line number.
//
// # Sections
//
//	[editor]     indent_unit, tab_width, history_size, scroll_margin
//	[highlight]  theme, block_scope
//	[gutter]     show, margin, right_padding
//	[terminal]   shell, pty, height, kill_timeout, finished_notice, max_lines
//	[run]        interpreters (extension -> program)
//	[workspace]  extensions
//	[log]        level, path, development
//
// # Live Reload
//
// Watch observes the file's directory with fsnotify and reloads after a
// short debounce:
//
//	w, err := config.Watch(path, func(cfg *config.Config, err error) {
//	    // hand cfg to the event loop
//	})
//	defer w.Close()
package config
