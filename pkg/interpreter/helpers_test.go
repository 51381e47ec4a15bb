package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
)

// compile runs the static phases and fails the test on any diagnostic.
func compile(t *testing.T, source string) ([]ast.Statement, map[ast.NodeID]int) {
	t.Helper()
	tokens, lexErrs := scanner.New(source).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lexical errors: %v", lexErrs)
	}
	stmts, synErrs := parser.New(tokens).Parse()
	if len(synErrs) != 0 {
		t.Fatalf("unexpected syntax errors: %v", synErrs)
	}
	locals, resErrs := resolver.Resolve(stmts)
	if len(resErrs) != 0 {
		t.Fatalf("unexpected resolution errors: %v", resErrs)
	}
	return stmts, locals
}

// runSource interprets source in a fresh interpreter and returns what it
// printed alongside any runtime error.
func runSource(t *testing.T, source string, opts ...Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New(append([]Option{WithOutput(&out)}, opts...)...)
	stmts, locals := compile(t, source)
	err := interp.Interpret(stmts, locals)
	return out.String(), err
}

func mustRun(t *testing.T, source string, opts ...Option) string {
	t.Helper()
	out, err := runSource(t, source, opts...)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return out
}

func lines(ls ...string) string {
	if len(ls) == 0 {
		return ""
	}
	return strings.Join(ls, "\n") + "\n"
}
