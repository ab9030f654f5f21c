package engine

import "fmt"

// tokenType represents the type of a formula token.
type tokenType int

// Formula token types. The grammar is deliberately tiny: numbers,
// identifiers, the four arithmetic operators, and parentheses.
const (
	tokenEOF tokenType = iota
	tokenError

	tokenNumber // integer or decimal literal
	tokenIdent  // column or derived-field reference

	tokenPlus   // +
	tokenMinus  // -
	tokenStar   // *
	tokenSlash  // /
	tokenLParen // (
	tokenRParen // )
)

// token is one lexical token of a formula.
type token struct {
	typ   tokenType
	value string
	pos   int
}

// String returns a readable representation for error messages.
func (t token) String() string {
	switch t.typ {
	case tokenEOF:
		return "EOF"
	case tokenError:
		return fmt.Sprintf("error(%s)", t.value)
	default:
		return t.value
	}
}
