package engine

import (
	"unicode"
	"unicode/utf8"
)

// lexer tokenizes a formula string.
type lexer struct {
	input string
	pos   int // current position in input
	start int // start position of current token
	width int // width of last rune read
}

// newLexer creates a lexer for the given formula.
func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// tokenize lexes the entire input. ok is false when the input contains
// a character outside the formula alphabet; the caller treats that as
// "unevaluated", never as a fatal error.
func (l *lexer) tokenize() (tokens []token, ok bool) {
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF {
			return tokens, true
		}
		if tok.typ == tokenError {
			return tokens, false
		}
	}
}

// nextToken returns the next token from the input.
func (l *lexer) nextToken() token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return l.makeToken(tokenEOF, "")
	}

	l.start = l.pos
	ch := l.next()

	switch {
	case ch == '+':
		return l.makeToken(tokenPlus, "+")
	case ch == '-':
		return l.makeToken(tokenMinus, "-")
	case ch == '*':
		return l.makeToken(tokenStar, "*")
	case ch == '/':
		return l.makeToken(tokenSlash, "/")
	case ch == '(':
		return l.makeToken(tokenLParen, "(")
	case ch == ')':
		return l.makeToken(tokenRParen, ")")
	case isDigit(ch) || ch == '.':
		l.backup()
		return l.scanNumber()
	case isIdentStart(ch):
		l.backup()
		return l.scanIdent()
	default:
		return l.makeToken(tokenError, "unexpected character '"+string(ch)+"'")
	}
}

// scanNumber scans an integer or decimal literal.
func (l *lexer) scanNumber() token {
	for isDigit(l.peek()) {
		l.next()
	}
	if l.peek() == '.' {
		l.next()
		for isDigit(l.peek()) {
			l.next()
		}
	}
	return l.makeToken(tokenNumber, l.input[l.start:l.pos])
}

// scanIdent scans a single identifier word. Multi-word column names
// ("Management Fee") are joined by the parser from consecutive ident
// tokens.
func (l *lexer) scanIdent() token {
	for isIdentPart(l.peek()) {
		l.next()
	}
	return l.makeToken(tokenIdent, l.input[l.start:l.pos])
}

// next returns the next rune and advances the position.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// backup steps back one rune.
func (l *lexer) backup() {
	l.pos -= l.width
}

// peek returns the next rune without advancing.
func (l *lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters.
func (l *lexer) skipWhitespace() {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			l.next()
		} else {
			break
		}
	}
}

// makeToken creates a token with the current position info.
func (l *lexer) makeToken(typ tokenType, value string) token {
	return token{typ: typ, value: value, pos: l.start}
}

// isDigit returns true if the rune is a digit.
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// isIdentStart returns true if the rune can start an identifier word.
func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// isIdentPart returns true if the rune can continue an identifier word.
// Apostrophes appear in real export headers ("Guest's Total").
func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '\''
}
