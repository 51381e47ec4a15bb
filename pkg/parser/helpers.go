package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

// consumeTerminator accepts an explicit ';' or an implicit terminator: a line
// break before the next token, a closing brace, or the end of input.
func (p *Parser) consumeTerminator(message string) error {
	if p.match(token.Semicolon) {
		return nil
	}
	if p.atImplicitTerminator() {
		return nil
	}
	return p.errorAt(p.peek(), message)
}

func (p *Parser) atImplicitTerminator() bool {
	if p.isAtEnd() || p.check(token.RightBrace) {
		return true
	}
	return p.current > 0 && p.peek().Line > p.previous().Line
}

// matchOnLine is match for tokens that would extend an expression. Outside
// parentheses a line break ends the expression, so a token starting a later
// line is left for the next statement.
func (p *Parser) matchOnLine(kinds ...token.Kind) bool {
	if p.parenDepth == 0 && p.current > 0 && p.peek().Line > p.previous().Line {
		return false
	}
	return p.match(kinds...)
}

// nestedExpression parses an expression enclosed in parentheses, where line
// breaks do not terminate anything.
func (p *Parser) nestedExpression() (ast.Expression, error) {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	return p.expression()
}

// errorAt records a syntax error anchored at tok and returns it so callers
// can unwind to the nearest declaration.
func (p *Parser) errorAt(tok token.Token, message string) *diag.SyntaxError {
	err := diag.NewSyntaxError(tok, message)
	p.errors = append(p.errors, err)
	return err
}

// synchronize discards tokens until a likely statement boundary: after a
// ';', at a line break, or before a statement keyword.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon || p.peek().Line > p.previous().Line {
			return
		}
		switch p.peek().Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return, token.Break:
			return
		}
		p.advance()
	}
}
