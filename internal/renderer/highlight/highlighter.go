package highlight

import (
	"sort"

	"github.com/dshills/mcode/internal/renderer/core"
)

// Span is a styled byte range produced by one rule match.
type Span struct {
	// Start is the byte offset of the span within the highlighted line.
	Start int

	// Length is the span length in bytes.
	Length int

	// TokenType is the type assigned by the rule.
	TokenType TokenType

	// Style is the theme style for TokenType.
	Style core.Style

	// Rule is the index of the producing rule in its RuleSet.
	Rule int
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// Highlighter applies a RuleSet to text. It holds no per-call state, so the
// same input always yields the same spans.
type Highlighter struct {
	rules *RuleSet
	theme *Theme
}

// New creates a highlighter. A nil theme selects the reference theme.
func New(rules *RuleSet, theme *Theme) *Highlighter {
	if theme == nil {
		theme = ReferenceTheme()
	}
	return &Highlighter{rules: rules, theme: theme}
}

// Rules returns the rule set in use.
func (h *Highlighter) Rules() *RuleSet {
	return h.rules
}

// Theme returns the theme in use.
func (h *Highlighter) Theme() *Theme {
	return h.theme
}

// Highlight returns spans for every match of every rule in line, in rule
// declaration order and, within one rule, in match order.
func (h *Highlighter) Highlight(line string) []Span {
	if h.rules == nil || line == "" {
		return nil
	}

	var spans []Span
	for i, rule := range h.rules.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatchIndex(line, -1) {
			start, end := m[0], m[1]
			if rule.Submatch > 0 {
				start, end = m[rule.Submatch*2], m[rule.Submatch*2+1]
			}
			if start < 0 || end <= start {
				continue
			}
			spans = append(spans, Span{
				Start:     start,
				Length:    end - start,
				TokenType: rule.TokenType,
				Style:     h.theme.StyleForToken(rule.TokenType),
				Rule:      i,
			})
		}
	}
	return spans
}

// HighlightBlock highlights a multi-line block as one unit, so rules with
// (?s) may match across line breaks, and splits the result per line.
// The returned slice has one entry per line of block; offsets are relative
// to each line's start.
func (h *Highlighter) HighlightBlock(block string) [][]Span {
	lineStarts := []int{0}
	for i := 0; i < len(block); i++ {
		if block[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	perLine := make([][]Span, len(lineStarts))

	for _, span := range h.Highlight(block) {
		first := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > span.Start }) - 1
		for ln := first; ln < len(lineStarts); ln++ {
			lineStart := lineStarts[ln]
			if lineStart >= span.End() {
				break
			}
			lineEnd := len(block)
			if ln+1 < len(lineStarts) {
				lineEnd = lineStarts[ln+1] - 1 // exclude '\n'
			}
			start := max(span.Start, lineStart)
			end := min(span.End(), lineEnd)
			if end <= start {
				continue
			}
			piece := span
			piece.Start = start - lineStart
			piece.Length = end - start
			perLine[ln] = append(perLine[ln], piece)
		}
	}
	return perLine
}

// Flatten resolves overlapping spans into sorted, non-overlapping runs for a
// line of n bytes. For every byte the last span covering it wins.
func Flatten(spans []Span, n int) []Span {
	if n <= 0 || len(spans) == 0 {
		return nil
	}

	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	for i, s := range spans {
		for p := max(s.Start, 0); p < s.End() && p < n; p++ {
			owner[p] = i
		}
	}

	var runs []Span
	for p := 0; p < n; {
		o := owner[p]
		q := p + 1
		for q < n && owner[q] == o {
			q++
		}
		if o >= 0 {
			run := spans[o]
			run.Start = p
			run.Length = q - p
			runs = append(runs, run)
		}
		p = q
	}
	return runs
}

// StyleAt returns the winning style at byte offset pos, or ok=false when no
// span covers it.
func StyleAt(spans []Span, pos int) (style core.Style, ok bool) {
	for i := len(spans) - 1; i >= 0; i-- {
		if pos >= spans[i].Start && pos < spans[i].End() {
			return spans[i].Style, true
		}
	}
	return core.Style{}, false
}
