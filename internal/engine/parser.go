package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// parser parses formula tokens into an expression tree.
//
// Grammar:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := number | ident+ | '(' expr ')' | '-' factor
//
// Consecutive identifier words are joined into one reference so that
// multi-word column headers ("Management Fee * 0.1") parse naturally.
type parser struct {
	tokens  []token
	pos     int
	current token
}

// newParser creates a parser for the given tokens.
func newParser(tokens []token) *parser {
	p := &parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = tokens[0]
	} else {
		p.current = token{typ: tokenEOF}
	}
	return p
}

// parse parses the tokens into an expression tree.
func (p *parser) parse() (exprNode, error) {
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.current.typ != tokenEOF {
		return nil, p.errorf("unexpected token %s", p.current)
	}
	return node, nil
}

// parseExpr parses addition and subtraction.
func (p *parser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current.typ == tokenPlus || p.current.typ == tokenMinus {
		op := p.current.typ
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseTerm parses multiplication and division.
func (p *parser) parseTerm() (exprNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.current.typ == tokenStar || p.current.typ == tokenSlash {
		op := p.current.typ
		p.advance()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseFactor parses a literal, reference, group, or negation.
func (p *parser) parseFactor() (exprNode, error) {
	switch p.current.typ {
	case tokenNumber:
		value, err := strconv.ParseFloat(p.current.value, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", p.current.value)
		}
		p.advance()
		return &numberNode{value: value}, nil

	case tokenIdent:
		// Join consecutive ident words into one reference.
		words := []string{strings.ToLower(p.current.value)}
		p.advance()
		for p.current.typ == tokenIdent {
			words = append(words, strings.ToLower(p.current.value))
			p.advance()
		}
		return &identNode{name: strings.Join(words, " ")}, nil

	case tokenMinus:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil

	case tokenLParen:
		p.advance()
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.current.typ != tokenRParen {
			return nil, p.errorf("expected ')' but got %s", p.current)
		}
		p.advance()
		return node, nil

	default:
		return nil, p.errorf("expected number, reference, or '(' but got %s", p.current)
	}
}

// advance moves to the next token.
func (p *parser) advance() {
	p.pos++
	if p.pos < len(p.tokens) {
		p.current = p.tokens[p.pos]
	} else {
		p.current = token{typ: tokenEOF}
	}
}

// errorf creates a parse error.
func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse error at offset %d: %s", p.current.pos, fmt.Sprintf(format, args...))
}
