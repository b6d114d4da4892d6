package highlight

var pythonKeywords = []string{
	"and", "as", "assert", "break", "class", "continue", "def", "del",
	"elif", "else", "except", "False", "finally", "for", "from", "global",
	"import", "in", "is", "lambda", "None", "nonlocal", "not", "or",
	"pass", "raise", "return", "True", "try", "with", "yield",
}

// PythonRuleSpecs returns the Python rule table in declaration order.
// Order matters: e.g. the later "def" function rule repaints the keyword
// rule's span, and comments repaint strings that precede them.
func PythonRuleSpecs() []RuleSpec {
	specs := make([]RuleSpec, 0, len(pythonKeywords)+16)
	for _, kw := range pythonKeywords {
		specs = append(specs, RuleSpec{Pattern: `\b` + kw + `\b`, TokenType: TokenKeyword})
	}

	specs = append(specs,
		RuleSpec{Pattern: `\bif\b`, TokenType: TokenKeywordControl},
		RuleSpec{Pattern: `\bwhile\b`, TokenType: TokenKeywordControl},

		// Greedy within a line; unbalanced quotes color the rest of it.
		RuleSpec{Pattern: `".*"`, TokenType: TokenString},
		RuleSpec{Pattern: `'.*'`, TokenType: TokenString},

		// Only span lines when highlighted in block scope.
		RuleSpec{Pattern: `(?s)""".*"""`, TokenType: TokenString},
		RuleSpec{Pattern: `(?s)'''.*'''`, TokenType: TokenString},

		RuleSpec{Pattern: `#.*`, TokenType: TokenComment},
		RuleSpec{Pattern: `\b\d+\b`, TokenType: TokenNumber},
		RuleSpec{Pattern: `\bdef\b`, TokenType: TokenFunction},
		RuleSpec{Pattern: `\bprint\b`, TokenType: TokenBuiltin},
		RuleSpec{Pattern: `\bclass\s+(\w+)`, TokenType: TokenClass},
		RuleSpec{Pattern: `\bself\b`, TokenType: TokenSelf},
		RuleSpec{Pattern: `@\w+`, TokenType: TokenDecorator},
	)
	return specs
}

// PythonRules returns the compiled Python rule set.
func PythonRules() *RuleSet {
	return MustCompileRules("python", []string{".py", ".pyw", ".pyi"}, PythonRuleSpecs())
}
