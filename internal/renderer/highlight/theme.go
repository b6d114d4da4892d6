package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/mcode/internal/renderer/core"
)

// Theme defines colors and styles for syntax highlighting and the editor
// chrome around it.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Background is the editor background color.
	Background core.Color

	// Foreground is the default text color.
	Foreground core.Color

	// Selection is the selection highlight color.
	Selection core.Color

	// LineHighlight is the current line background.
	LineHighlight core.Color

	// GutterBackground and GutterForeground color the line number area.
	GutterBackground core.Color
	GutterForeground core.Color

	// TerminalBackground and TerminalForeground color the shell panel.
	TerminalBackground core.Color
	TerminalForeground core.Color

	// TokenStyles maps token types to their styles.
	TokenStyles map[TokenType]core.Style
}

// StyleForToken returns the style for a given token type.
func (t *Theme) StyleForToken(tokenType TokenType) core.Style {
	if style, ok := t.TokenStyles[tokenType]; ok {
		return style
	}
	return core.Style{
		Foreground: t.Foreground,
		Background: core.ColorDefault,
	}
}

// TextStyle returns the plain editor text style.
func (t *Theme) TextStyle() core.Style {
	return core.Style{Foreground: t.Foreground, Background: t.Background}
}

// GutterStyle returns the line number style.
func (t *Theme) GutterStyle() core.Style {
	return core.Style{Foreground: t.GutterForeground, Background: t.GutterBackground}
}

// TerminalStyle returns the shell panel style.
func (t *Theme) TerminalStyle() core.Style {
	return core.Style{Foreground: t.TerminalForeground, Background: t.TerminalBackground}
}

// ReferenceTheme returns the built-in dark palette.
func ReferenceTheme() *Theme {
	return &Theme{
		Name:               "reference",
		Background:         core.MustHex("#252525"),
		Foreground:         core.MustHex("#d0d0d0"),
		Selection:          core.MustHex("#264f78"),
		LineHighlight:      core.ColorFromRGB(40, 40, 40),
		GutterBackground:   core.ColorFromRGB(30, 30, 30),
		GutterForeground:   core.ColorFromRGB(136, 136, 136),
		TerminalBackground: core.MustHex("#1a1a1a"),
		TerminalForeground: core.MustHex("#d0d0d0"),
		TokenStyles: map[TokenType]core.Style{
			TokenKeyword:        core.NewStyle(core.MustHex("#569cd6")).Bold(),
			TokenKeywordControl: core.NewStyle(core.MustHex("#c586c0")).Bold(),
			TokenString:         core.NewStyle(core.MustHex("#ce9178")),
			TokenComment:        core.NewStyle(core.MustHex("#6a9955")),
			TokenNumber:         core.NewStyle(core.MustHex("#b5cea8")),
			TokenFunction:       core.NewStyle(core.MustHex("#dcdcaa")),
			TokenBuiltin:        core.NewStyle(core.MustHex("#dcdcaa")),
			TokenClass:          core.NewStyle(core.MustHex("#4ec9b0")),
			TokenSelf:           core.NewStyle(core.MustHex("#c586c0")),
			TokenDecorator:      core.NewStyle(core.MustHex("#d4d4aa")),
		},
	}
}

var chromaTokens = map[TokenType]chroma.TokenType{
	TokenKeyword:        chroma.Keyword,
	TokenKeywordControl: chroma.KeywordReserved,
	TokenString:         chroma.LiteralString,
	TokenComment:        chroma.Comment,
	TokenNumber:         chroma.LiteralNumber,
	TokenFunction:       chroma.NameFunction,
	TokenBuiltin:        chroma.NameBuiltin,
	TokenClass:          chroma.NameClass,
	TokenSelf:           chroma.NameBuiltinPseudo,
	TokenDecorator:      chroma.NameDecorator,
}

// LoadTheme returns the named theme. "reference" or "" selects the built-in
// palette; any other name is looked up among the chroma styles.
func LoadTheme(name string) (*Theme, error) {
	if name == "" || name == "reference" {
		return ReferenceTheme(), nil
	}
	return ThemeFromChroma(name)
}

// ThemeFromChroma derives a theme from a registered chroma style. Colors
// the style leaves unset keep their reference values.
func ThemeFromChroma(name string) (*Theme, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", name)
	}

	theme := ReferenceTheme()
	theme.Name = name

	bg := style.Get(chroma.Background)
	if c, ok := chromaColor(bg.Background); ok {
		theme.Background = c
		theme.TerminalBackground = c.Blend(core.ColorFromRGB(0, 0, 0), 0.3)
		theme.GutterBackground = c.Blend(core.ColorFromRGB(0, 0, 0), 0.15)
		theme.LineHighlight = c.Blend(core.ColorFromRGB(255, 255, 255), 0.06)
	}
	if c, ok := chromaColor(bg.Colour); ok {
		theme.Foreground = c
		theme.TerminalForeground = c
		theme.GutterForeground = c.Blend(theme.Background, 0.45)
	}
	if lh := style.Get(chroma.LineHighlight); lh.Background.IsSet() {
		theme.LineHighlight, _ = chromaColor(lh.Background)
	}

	for tt, ct := range chromaTokens {
		entry := style.Get(ct)
		c, ok := chromaColor(entry.Colour)
		if !ok {
			continue
		}
		s := core.NewStyle(c)
		if entry.Bold == chroma.Yes {
			s = s.Bold()
		}
		if entry.Italic == chroma.Yes {
			s.Attributes |= core.AttrItalic
		}
		theme.TokenStyles[tt] = s
	}
	return theme, nil
}

func chromaColor(c chroma.Colour) (core.Color, bool) {
	if !c.IsSet() {
		return core.Color{}, false
	}
	return core.ColorFromRGB(c.Red(), c.Green(), c.Blue()), true
}
