package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/scanner"
)

func parseSource(t *testing.T, source string) ([]ast.Statement, []*diag.SyntaxError) {
	t.Helper()
	tokens, lexErrs := scanner.New(source).Scan()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lexical errors: %v", lexErrs)
	}
	return New(tokens).Parse()
}

func mustParse(t *testing.T, source string) []ast.Statement {
	t.Helper()
	stmts, errs := parseSource(t, source)
	if len(errs) != 0 {
		t.Fatalf("unexpected syntax errors: %v", errs)
	}
	return stmts
}

func errorMessages(errs []*diag.SyntaxError) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3;", "(expr (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(expr (* (group (+ 1 2)) 3))"},
		{"1 - 2 - 3;", "(expr (- (- 1 2) 3))"},
		{"-a.b(c);", "(expr (- (call (. a b) c)))"},
		{"!!true == false;", "(expr (== (! (! true)) false))"},
		{"a < b == c >= d;", "(expr (== (< a b) (>= c d)))"},
		{"a or b and c;", "(expr (or a (and b c)))"},
		{"a = b = c;", "(expr (= a (= b c)))"},
		{"obj.field = 1 + 2;", "(expr (set obj field (+ 1 2)))"},
		{`print "hi";`, `(print "hi")`},
		{"print(1 + 2)", "(print (group (+ 1 2)))"},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.source)
		if got := ast.PrintProgram(stmts); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.source, got, tc.want)
		}
	}
}

func TestParseLogicalProducesLogicalNodes(t *testing.T) {
	stmts := mustParse(t, "a and b;")
	exprStmt, ok := stmts[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", stmts[0])
	}
	if _, ok := exprStmt.Expression.(*ast.LogicalExpression); !ok {
		t.Fatalf("expected logical expression, got %T", exprStmt.Expression)
	}
}

func TestParseDeclarations(t *testing.T) {
	source := `
var a = 1;
var b;
fun add(x, y) { return x + y; }
class Cat < Animal {
  init(name) { this.name = name; }
  speak() { return super.speak(); }
}
`
	stmts := mustParse(t, source)
	want := strings.Join([]string{
		"(var a 1)",
		"(var b)",
		"(fun add (x y) (return (+ x y)))",
		"(class Cat < Animal (method init (name) (expr (set this name name))) (method speak () (return (call (super speak)))))",
	}, "\n")
	if diff := cmp.Diff(want, ast.PrintProgram(stmts)); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseForDesugarsToWhile(t *testing.T) {
	stmts := mustParse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	want := "(block (var i 0) (while (< i 3) (block (print i) (expr (= i (+ i 1))))))"
	if got := ast.PrintProgram(stmts); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	stmts = mustParse(t, "for (;;) break;")
	if got := ast.PrintProgram(stmts); got != "(while true (break))" {
		t.Fatalf("unexpected infinite loop shape %s", got)
	}
}

func TestParseDanglingElseBindsToNearestIf(t *testing.T) {
	stmts := mustParse(t, "if (a) if (b) print 1; else print 2;")
	want := "(if a (if b (print 1) (print 2)))"
	if got := ast.PrintProgram(stmts); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseImplicitTerminators(t *testing.T) {
	source := "fun makeCounter(){ var i=0; fun inc(){ i=i+1; return i } return inc }\nvar c = makeCounter()\nprint c()"
	stmts := mustParse(t, source)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	want := "(fun makeCounter () (var i 0) (fun inc () (expr (= i (+ i 1))) (return i)) (return inc))"
	if got := ast.Print(stmts[0]); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseLineBreakEndsExpression(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"print 1\n-2", "(print 1)\n(expr (- 2))"},
		{"var f = clock\n(1)", "(var f clock)\n(expr (group 1))"},
		{"var a = b\n!c", "(var a b)\n(expr (! c))"},
	}
	for _, tc := range cases {
		if got := ast.PrintProgram(mustParse(t, tc.source)); got != tc.want {
			t.Fatalf("%q parsed as\n%s\nwant\n%s", tc.source, got, tc.want)
		}
	}

	_, errs := parseSource(t, "var a = b\n.c")
	want := []string{"[line 2] Error at '.': Expect expression."}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseContinuesAcrossLines(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"print 1 +\n2", "(print (+ 1 2))"},
		{"print a or\nb", "(print (or a b))"},
		{"print (1\n- 2)", "(print (group (- 1 2)))"},
		{"f(a\n-1,\nb\n.c)", "(expr (call f (- a 1) (. b c)))"},
		{"print (f\n(1))", "(print (group (call f 1)))"},
		{"if (a\nand b) print 1", "(if (and a b) (print 1))"},
		{"while (i\n< 3) i = i + 1", "(while (< i 3) (expr (= i (+ i 1))))"},
	}
	for _, tc := range cases {
		if got := ast.PrintProgram(mustParse(t, tc.source)); got != tc.want {
			t.Fatalf("%q parsed as\n%s\nwant\n%s", tc.source, got, tc.want)
		}
	}
}

func TestParseBareReturn(t *testing.T) {
	stmts := mustParse(t, "fun f() {\n  return\n}")
	want := "(fun f () (return))"
	if got := ast.Print(stmts[0]); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseReportsMultipleErrors(t *testing.T) {
	source := "var = 1;\nprint 2;\nvar x = (3;\nprint 4;"
	stmts, errs := parseSource(t, source)
	want := []string{
		"[line 1] Error at '=': Expect variable name.",
		"[line 3] Error at ';': Expect ')' after expression.",
	}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if got := ast.PrintProgram(stmts); got != "(print 2)\n(print 4)" {
		t.Fatalf("expected surviving statements, got %s", got)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, errs := parseSource(t, "a + b = c;")
	want := []string{"[line 1] Error at '=': Invalid assignment target."}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMissingTerminatorOnSameLine(t *testing.T) {
	_, errs := parseSource(t, "var a = 1 print a;")
	want := []string{"[line 1] Error at 'print': Expect ';' after variable declaration."}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrorAtEnd(t *testing.T) {
	_, errs := parseSource(t, "print (1 +")
	want := []string{"[line 1] Error at end: Expect expression."}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if !IsIncomplete(errs) {
		t.Fatalf("expected errors at EOF to be treated as incomplete input")
	}
}

func TestParseBreakOutsideLoop(t *testing.T) {
	_, errs := parseSource(t, "break;\nwhile (true) { fun f() { break; } }")
	want := []string{
		"[line 1] Error at 'break': Can't use 'break' outside of a loop.",
		"[line 2] Error at 'break': Can't use 'break' outside of a loop.",
	}
	if diff := cmp.Diff(want, errorMessages(errs)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if IsIncomplete(errs) {
		t.Fatalf("break errors must not look like incomplete input")
	}
}

func TestParseTooManyArguments(t *testing.T) {
	args := make([]string, 256)
	for i := range args {
		args[i] = "1"
	}
	_, errs := parseSource(t, "f("+strings.Join(args, ", ")+");")
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "more than 255 arguments") {
		t.Fatalf("expected a single argument-limit error, got %v", errs)
	}
}

func TestNodeIDsAreUnique(t *testing.T) {
	stmts := mustParse(t, "a; a; a;")
	seen := make(map[ast.NodeID]bool)
	for _, stmt := range stmts {
		expr := stmt.(*ast.ExpressionStatement).Expression
		if seen[expr.ID()] {
			t.Fatalf("duplicate node id %d for structurally equal nodes", expr.ID())
		}
		seen[expr.ID()] = true
	}
}
