package highlight

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRule is returned when a rule pattern does not compile.
var ErrInvalidRule = errors.New("invalid highlight rule")

// Rule defines a highlighting rule.
type Rule struct {
	// Pattern is the regex pattern to match.
	Pattern *regexp.Regexp

	// TokenType is the type to assign to matches.
	TokenType TokenType

	// Submatch selects the span policy: 0 paints the whole match,
	// n > 0 paints only capture group n.
	Submatch int
}

// Multiline reports whether the rule's pattern lets '.' cross line breaks.
func (r Rule) Multiline() bool {
	return strings.HasPrefix(r.Pattern.String(), "(?s)")
}

// RuleSpec is the uncompiled form of a Rule.
type RuleSpec struct {
	Pattern   string
	TokenType TokenType
	Submatch  int
}

// RuleSet is an ordered list of rules. It is never modified after
// construction and may be shared by any number of highlighters.
type RuleSet struct {
	language   string
	extensions []string
	rules      []Rule
}

// CompileRules builds a RuleSet, failing on the first malformed pattern.
func CompileRules(language string, extensions []string, specs []RuleSpec) (*RuleSet, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%q): %v", ErrInvalidRule, i, spec.Pattern, err)
		}
		if spec.Submatch < 0 || spec.Submatch > re.NumSubexp() {
			return nil, fmt.Errorf("%w: rule %d (%q): submatch %d out of range", ErrInvalidRule, i, spec.Pattern, spec.Submatch)
		}
		rules = append(rules, Rule{Pattern: re, TokenType: spec.TokenType, Submatch: spec.Submatch})
	}
	return &RuleSet{
		language:   language,
		extensions: append([]string(nil), extensions...),
		rules:      rules,
	}, nil
}

// MustCompileRules is CompileRules for built-in rule tables.
func MustCompileRules(language string, extensions []string, specs []RuleSpec) *RuleSet {
	rs, err := CompileRules(language, extensions, specs)
	if err != nil {
		panic(err)
	}
	return rs
}

// Language returns the language name.
func (rs *RuleSet) Language() string {
	return rs.language
}

// FileExtensions returns the file extensions the set applies to.
func (rs *RuleSet) FileExtensions() []string {
	return append([]string(nil), rs.extensions...)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rule returns the i-th rule in declaration order.
func (rs *RuleSet) Rule(i int) Rule {
	return rs.rules[i]
}

// HasMultiline reports whether any rule can match across lines.
func (rs *RuleSet) HasMultiline() bool {
	for _, r := range rs.rules {
		if r.Multiline() {
			return true
		}
	}
	return false
}

// Registry maps file extensions to rule sets.
type Registry struct {
	byExtension map[string]*RuleSet
	fallback    *RuleSet
}

// NewRegistry creates a registry that returns fallback for unknown extensions.
func NewRegistry(fallback *RuleSet) *Registry {
	return &Registry{
		byExtension: make(map[string]*RuleSet),
		fallback:    fallback,
	}
}

// Register adds a rule set under each of its extensions.
func (r *Registry) Register(rs *RuleSet) {
	for _, ext := range rs.extensions {
		r.byExtension[ext] = rs
	}
}

// ForExtension returns the rule set for ext (with or without a leading dot).
func (r *Registry) ForExtension(ext string) *RuleSet {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	if rs, ok := r.byExtension[ext]; ok {
		return rs
	}
	return r.fallback
}

// DefaultRegistry returns a registry with the built-in rule sets.
// Python rules are also the fallback, so .txt and .html files are colored
// with them too.
func DefaultRegistry() *Registry {
	py := PythonRules()
	r := NewRegistry(py)
	r.Register(py)
	return r
}
