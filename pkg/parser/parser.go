// Package parser builds Lox ASTs from scanner tokens by recursive descent.
package parser

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

const maxArguments = 255

// Parser consumes a token stream once. It records every syntax error it
// meets and resynchronises at statement boundaries, so one call to Parse can
// report several independent mistakes.
type Parser struct {
	tokens     []token.Token
	current    int
	loopDepth  int
	parenDepth int
	errors     []*diag.SyntaxError
}

// New constructs a parser over tokens produced by the scanner. The slice must
// end with an EOF token.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.New(token.EOF, "", nil, line))
	}
	return &Parser{tokens: tokens}
}

// Parse returns every statement that parsed cleanly together with the syntax
// errors found. Both may be non-empty.
func (p *Parser) Parse() ([]ast.Statement, []*diag.SyntaxError) {
	statements := make([]ast.Statement, 0)
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements, p.errors
}

// IsIncomplete reports whether the errors only say that input ended too
// early, which is how the REPL decides to keep reading lines.
func IsIncomplete(errs []*diag.SyntaxError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if err.Token == nil || err.Token.Kind != token.EOF {
			return false
		}
	}
	return true
}

func (p *Parser) declaration() ast.Statement {
	var (
		stmt ast.Statement
		err  error
	)
	switch {
	case p.match(token.Class):
		stmt, err = p.classDeclaration()
	case p.match(token.Fun):
		stmt, err = p.function("function")
	case p.match(token.Var):
		stmt, err = p.varDeclaration()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}
