package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
)

func parseProgram(t *testing.T, source string) []ast.Statement {
	t.Helper()
	tokens, lexErrs := scanner.New(source).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lexical errors: %v", lexErrs)
	}
	stmts, errs := parser.New(tokens).Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected syntax errors: %v", errs)
	}
	return stmts
}

func resolveMessages(t *testing.T, source string) []string {
	t.Helper()
	_, errs := Resolve(parseProgram(t, source))
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func returnedExpression(t *testing.T, method *ast.FunctionDeclaration) ast.Expression {
	t.Helper()
	ret, ok := method.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected return statement, got %T", method.Body[0])
	}
	return ret.Value
}

func TestResolveBlockDistances(t *testing.T) {
	stmts := parseProgram(t, "{ var a = 1; { print a; } }")
	locals, errs := Resolve(stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	outer := stmts[0].(*ast.Block)
	inner := outer.Statements[1].(*ast.Block)
	ref := inner.Statements[0].(*ast.PrintStatement).Expression
	if got, ok := locals[ref.ID()]; !ok || got != 1 {
		t.Fatalf("expected distance 1, got %d (present=%v)", got, ok)
	}
}

func TestResolveLeavesGlobalsUnresolved(t *testing.T) {
	stmts := parseProgram(t, "var g = 1;\nprint g;\nfun f() { return g; }")
	locals, errs := Resolve(stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(locals) != 0 {
		t.Fatalf("expected no local entries for globals, got %v", locals)
	}
}

func TestResolveClosureCapturesDeclaringScope(t *testing.T) {
	source := `
fun outer() {
  var x = 1;
  fun inner() { return x; }
  return inner;
}`
	stmts := parseProgram(t, source)
	locals, errs := Resolve(stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	outer := stmts[0].(*ast.FunctionDeclaration)
	inner := outer.Body[1].(*ast.FunctionDeclaration)
	ref := returnedExpression(t, inner)
	if got := locals[ref.ID()]; got != 1 {
		t.Fatalf("expected x one scope out from inner's body, got %d", got)
	}
	innerRef := outer.Body[2].(*ast.ReturnStatement).Value
	if got := locals[innerRef.ID()]; got != 0 {
		t.Fatalf("expected inner in the current scope, got %d", got)
	}
}

func TestResolveThisAndSuperDistances(t *testing.T) {
	source := `
class A { m() { return this; } }
class B < A { m() { return super.m; } }`
	stmts := parseProgram(t, source)
	locals, errs := Resolve(stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	thisExpr := returnedExpression(t, stmts[0].(*ast.ClassDeclaration).Methods[0])
	if got := locals[thisExpr.ID()]; got != 1 {
		t.Fatalf("expected this at distance 1, got %d", got)
	}

	get := returnedExpression(t, stmts[1].(*ast.ClassDeclaration).Methods[0])
	superExpr, ok := get.(*ast.Super)
	if !ok {
		t.Fatalf("expected super expression, got %T", get)
	}
	if got := locals[superExpr.ID()]; got != 2 {
		t.Fatalf("expected super at distance 2, got %d", got)
	}
}

func TestResolveStaticErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "own initializer",
			source: "{ var a = a; }",
			want:   []string{"[line 1] Error at 'a': Can't read local variable in its own initializer."},
		},
		{
			name:   "redeclaration",
			source: "{ var a = 1; var a = 2; }",
			want:   []string{"[line 1] Error at 'a': Already a variable with this name in this scope."},
		},
		{
			name:   "duplicate parameter",
			source: "fun f(a, a) {}",
			want:   []string{"[line 1] Error at 'a': Already a variable with this name in this scope."},
		},
		{
			name:   "top-level return",
			source: "return 1;",
			want:   []string{"[line 1] Error at 'return': Can't return from top-level code."},
		},
		{
			name:   "initializer value",
			source: "class A { init() { return 1; } }",
			want:   []string{"[line 1] Error at 'return': Can't return a value from an initializer."},
		},
		{
			name:   "this outside class",
			source: "print this;",
			want:   []string{"[line 1] Error at 'this': Can't use 'this' outside of a class."},
		},
		{
			name:   "this in plain function",
			source: "fun f() { return this; }",
			want:   []string{"[line 1] Error at 'this': Can't use 'this' outside of a class."},
		},
		{
			name:   "super outside class",
			source: "print super.m;",
			want:   []string{"[line 1] Error at 'super': Can't use 'super' outside of a class."},
		},
		{
			name:   "super without superclass",
			source: "class A { m() { return super.m; } }",
			want:   []string{"[line 1] Error at 'super': Can't use 'super' in a class with no superclass."},
		},
		{
			name:   "self inheritance",
			source: "class A < A {}",
			want:   []string{"[line 1] Error at 'A': A class can't inherit from itself."},
		},
		{
			name:   "several at once",
			source: "return;\nprint this;",
			want: []string{
				"[line 1] Error at 'return': Can't return from top-level code.",
				"[line 2] Error at 'this': Can't use 'this' outside of a class.",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, resolveMessages(t, tc.source)); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveAllowsGlobalRedeclarationAndSelfReference(t *testing.T) {
	if msgs := resolveMessages(t, "var a = 1;\nvar a = a;\nclass A { init() { return; } }"); len(msgs) != 0 {
		t.Fatalf("expected no errors, got %v", msgs)
	}
}

func TestResolutionErrorsCarryCategory(t *testing.T) {
	_, errs := Resolve(parseProgram(t, "return;"))
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	var d diag.Diagnostic = errs[0]
	if d.Category() != diag.Resolution || d.SourceLine() != 1 {
		t.Fatalf("unexpected diagnostic %v (category %s)", d, d.Category())
	}
}

func TestRedeclarationErrorRecordsDeclaringNode(t *testing.T) {
	stmts := parseProgram(t, "{ var a = 1; var a = 2; }\nfun f(b, b) {}")
	_, errs := Resolve(stmts)
	if len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
	block := stmts[0].(*ast.Block)
	if got, want := errs[0].Node, block.Statements[1].ID(); got != want {
		t.Fatalf("redeclared variable recorded node %d, want %d", got, want)
	}
	if got, want := errs[1].Node, stmts[1].ID(); got != want {
		t.Fatalf("duplicate parameter recorded node %d, want %d", got, want)
	}
}
