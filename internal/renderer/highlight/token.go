// Package highlight provides regex rule based syntax highlighting.
//
// A RuleSet is an ordered, immutable list of Rules. The Highlighter applies
// every rule in declaration order to a block of text and returns one Span per
// match. Spans are not merged: a later rule's span overrides an earlier one on
// the characters they share, which Flatten resolves for painting.
package highlight

// TokenType represents the semantic class a rule assigns to its matches.
type TokenType uint8

// Token types used by the built-in rule sets.
const (
	TokenNone TokenType = iota
	TokenKeyword
	TokenKeywordControl // if, while
	TokenString
	TokenComment
	TokenNumber
	TokenFunction
	TokenBuiltin
	TokenClass
	TokenSelf
	TokenDecorator
)

var tokenNames = map[TokenType]string{
	TokenNone:           "none",
	TokenKeyword:        "keyword",
	TokenKeywordControl: "keyword.control",
	TokenString:         "string",
	TokenComment:        "comment",
	TokenNumber:         "number",
	TokenFunction:       "function",
	TokenBuiltin:        "builtin",
	TokenClass:          "class",
	TokenSelf:           "self",
	TokenDecorator:      "decorator",
}

// String returns the scope-like name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// TokenTypeFromString parses a name produced by String.
func TokenTypeFromString(s string) TokenType {
	for t, name := range tokenNames {
		if name == s {
			return t
		}
	}
	return TokenNone
}
