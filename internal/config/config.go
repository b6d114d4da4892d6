package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MCODE_EDITOR_TAB_WIDTH.
const EnvPrefix = "MCODE"

// Config is the complete editor configuration.
type Config struct {
	Editor    EditorConfig    `toml:"editor" yaml:"editor"`
	Highlight HighlightConfig `toml:"highlight" yaml:"highlight"`
	Gutter    GutterConfig    `toml:"gutter" yaml:"gutter"`
	Terminal  TerminalConfig  `toml:"terminal" yaml:"terminal"`
	Run       RunConfig       `toml:"run" yaml:"run"`
	Workspace WorkspaceConfig `toml:"workspace" yaml:"workspace"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// EditorConfig holds text editing settings.
type EditorConfig struct {
	IndentUnit  string `toml:"indent_unit" yaml:"indent_unit" split_words:"true"`
	TabWidth    int    `toml:"tab_width" yaml:"tab_width" split_words:"true"`
	HistorySize int    `toml:"history_size" yaml:"history_size" split_words:"true"`
	// ScrollMargin is the number of lines kept visible above and below
	// the caret.
	ScrollMargin int `toml:"scroll_margin" yaml:"scroll_margin" split_words:"true"`
}

// HighlightConfig holds syntax highlighting settings.
type HighlightConfig struct {
	// Theme is a chroma style name; empty selects the built-in palette.
	Theme      string `toml:"theme" yaml:"theme" split_words:"true"`
	BlockScope bool   `toml:"block_scope" yaml:"block_scope" split_words:"true"`
}

// GutterConfig holds line number gutter settings, in cells.
type GutterConfig struct {
	Show         bool `toml:"show" yaml:"show" split_words:"true"`
	Margin       int  `toml:"margin" yaml:"margin" split_words:"true"`
	RightPadding int  `toml:"right_padding" yaml:"right_padding" split_words:"true"`
}

// TerminalConfig holds shell panel settings.
type TerminalConfig struct {
	// Shell is the program to run; empty uses $SHELL, then /bin/sh.
	Shell          string   `toml:"shell" yaml:"shell" split_words:"true"`
	PTY            bool     `toml:"pty" yaml:"pty" split_words:"true"`
	Height         int      `toml:"height" yaml:"height" split_words:"true"`
	KillTimeout    Duration `toml:"kill_timeout" yaml:"kill_timeout" split_words:"true"`
	FinishedNotice string   `toml:"finished_notice" yaml:"finished_notice" split_words:"true"`
	MaxLines       int      `toml:"max_lines" yaml:"max_lines" split_words:"true"`
}

// RunConfig maps file extensions to interpreters.
type RunConfig struct {
	Interpreters map[string]string `toml:"interpreters" yaml:"interpreters" split_words:"true"`
}

// WorkspaceConfig holds file open/save settings.
type WorkspaceConfig struct {
	// Extensions limits which files can be opened; empty allows all.
	Extensions []string `toml:"extensions" yaml:"extensions" split_words:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `toml:"level" yaml:"level" split_words:"true"`
	Path        string `toml:"path" yaml:"path" split_words:"true"`
	Development bool   `toml:"development" yaml:"development" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			IndentUnit:   "    ",
			TabWidth:     4,
			HistorySize:  1000,
			ScrollMargin: 2,
		},
		Gutter: GutterConfig{
			Show:         true,
			Margin:       2,
			RightPadding: 1,
		},
		Terminal: TerminalConfig{
			Height:         10,
			KillTimeout:    Duration(2 * time.Second),
			FinishedNotice: "[Process finished]",
			MaxLines:       10000,
		},
		Run: RunConfig{
			Interpreters: map[string]string{".py": "python3"},
		},
		Workspace: WorkspaceConfig{
			Extensions: []string{".py", ".txt", ".html"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the user configuration file path. An existing
// config.toml, config.yaml or config.yml is preferred in that order.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir = filepath.Join(dir, "mcode")
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, "config.toml")
}

// Load builds the configuration from the defaults, the file at path and
// the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes the file over the current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.decode(path, data)
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return tomlParseError(path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return yamlParseError(path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, path string, value any, msg string) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
		}
	}

	check(c.Editor.TabWidth >= 1 && c.Editor.TabWidth <= 16, "editor.tab_width", c.Editor.TabWidth, "must be between 1 and 16")
	check(strings.Trim(c.Editor.IndentUnit, " \t") == "", "editor.indent_unit", c.Editor.IndentUnit, "must contain only spaces and tabs")
	check(c.Editor.HistorySize >= 1, "editor.history_size", c.Editor.HistorySize, "must be positive")
	check(c.Editor.ScrollMargin >= 0, "editor.scroll_margin", c.Editor.ScrollMargin, "must not be negative")
	check(c.Gutter.Margin >= 0, "gutter.margin", c.Gutter.Margin, "must not be negative")
	check(c.Gutter.RightPadding >= 0 && c.Gutter.RightPadding <= c.Gutter.Margin, "gutter.right_padding", c.Gutter.RightPadding, "must be between 0 and gutter.margin")
	check(c.Terminal.Height >= 3, "terminal.height", c.Terminal.Height, "must be at least 3")
	check(c.Terminal.KillTimeout > 0, "terminal.kill_timeout", c.Terminal.KillTimeout.String(), "must be positive")
	check(c.Terminal.MaxLines >= 1, "terminal.max_lines", c.Terminal.MaxLines, "must be positive")
	for ext := range c.Run.Interpreters {
		check(strings.HasPrefix(ext, "."), "run.interpreters", ext, "extensions must start with a dot")
	}
	for _, ext := range c.Workspace.Extensions {
		check(strings.HasPrefix(ext, "."), "workspace.extensions", ext, "extensions must start with a dot")
	}
	_, err := ParseLevel(c.Log.Level)
	check(err == nil, "log.level", c.Log.Level, "must be debug, info, warn or error")

	return errors.Join(errs...)
}

// ParseLevel normalizes a log level name.
func ParseLevel(s string) (string, error) {
	switch l := strings.ToLower(strings.TrimSpace(s)); l {
	case "debug", "info", "warn", "error":
		return l, nil
	case "warning":
		return "warn", nil
	default:
		return "", fmt.Errorf("%w: unknown log level %q", ErrInvalidValue, s)
	}
}

// Duration is a time.Duration written as a string such as "2s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String formats the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
