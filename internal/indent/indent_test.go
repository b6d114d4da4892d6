package indent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBreakIndent(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"empty", "", ""},
		{"plain", "x = 1", ""},
		{"def", "def foo():", "    "},
		{"nested", "    if x:", "        "},
		{"keeps indent", "        return x", "        "},
		{"no dedent after return", "    return", "    "},
		{"tabs copied verbatim", "\t\tfor i in x:", "\t\t    "},
		{"mixed whitespace", " \t y = 2", " \t "},
		{"trailing space after colon", "else:   ", "    "},
		{"colon inside comment counts", "x = 1  # note:", "    "},
		{"colon mid line", "d = {a: b}", ""},
		{"whitespace only", "    ", "    "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeBreakIndent(tt.line))
		})
	}
}

func TestIndentIsPrefixProperty(t *testing.T) {
	lines := []string{"", "a", "  a:", "\tb", "   c:  ", "if x:\n"}
	for _, line := range lines {
		lead := LeadingWhitespace(line)
		got := ComputeBreakIndent(line)
		assert.True(t, strings.HasPrefix(got, lead), "line %q", line)

		extra := len(got) - len(lead)
		if strings.HasSuffix(strings.TrimSpace(line), ":") {
			assert.Equal(t, len(DefaultUnit), extra, "line %q", line)
		} else {
			assert.Zero(t, extra, "line %q", line)
		}
	}
}

func TestEngineUnit(t *testing.T) {
	e := New("\t")
	assert.Equal(t, "\t", e.Unit())
	assert.Equal(t, "  \t", e.ComputeBreakIndent("  while True:"))
	assert.Equal(t, "\n  \t", e.BreakText("  while True:"))

	assert.Equal(t, DefaultUnit, New("").Unit())
}
