package driver

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
)

func TestSessionRunPrints(t *testing.T) {
	var out bytes.Buffer
	result := NewSession(WithOutput(&out)).Run("print(1 + 2)\nprint(nil)\nvar x = 10; print(x / 2)")
	if result.Err != nil || result.Diagnostics.HasErrors() {
		t.Fatalf("unexpected failure: %v %v", result.Err, result.Diagnostics)
	}
	if diff := cmp.Diff("3\nnil\n5\n", out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if result.ExitCode() != ExitOK {
		t.Fatalf("expected exit 0, got %d", result.ExitCode())
	}
}

func TestSessionStaticErrorsBlockExecution(t *testing.T) {
	var out bytes.Buffer
	result := NewSession(WithOutput(&out)).Run("print \"side effect\";\nvar a = \"outer\";\n{ var a = a; }")
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
	if !result.Diagnostics.Has(diag.Resolution) {
		t.Fatalf("expected a resolution error, got %v", result.Diagnostics)
	}
	if result.ExitCode() != ExitDataErr {
		t.Fatalf("expected exit 65, got %d", result.ExitCode())
	}
}

func TestSessionCollectsLexicalAndSyntaxErrors(t *testing.T) {
	result := NewSession(WithOutput(&bytes.Buffer{})).Run("var = 1;\n#\nprint (;")
	want := []string{
		"[line 2] Error: Unexpected character '#'.",
		"[line 1] Error at '=': Expect variable name.",
		"[line 3] Error at ';': Expect expression.",
	}
	if diff := cmp.Diff(want, result.Diagnostics.Messages()); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRuntimeErrorLeavesEarlierOutput(t *testing.T) {
	var out bytes.Buffer
	result := NewSession(WithOutput(&out)).Run("print \"before\";\nprint(\"a\" + 1)\nprint \"after\";")
	if out.String() != "before\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	var rtErr *diag.RuntimeError
	if !errors.As(result.Err, &rtErr) {
		t.Fatalf("expected runtime error, got %v", result.Err)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0] != diag.Diagnostic(rtErr) {
		t.Fatalf("expected the runtime error as the only diagnostic, got %v", result.Diagnostics)
	}
	if result.ExitCode() != ExitSoftware {
		t.Fatalf("expected exit 70, got %d", result.ExitCode())
	}
}

func TestSessionArityErrorSkipsBody(t *testing.T) {
	var out bytes.Buffer
	result := NewSession(WithOutput(&out)).Run("fun f(a, b) { print \"ran\"; }\nf(1, 2, 3);")
	if out.Len() != 0 {
		t.Fatalf("body must not run, got %q", out.String())
	}
	if result.Err == nil || !strings.Contains(result.Err.Error(), "Expected 2 arguments but got 3") {
		t.Fatalf("unexpected error %v", result.Err)
	}
}

func TestSessionKeepsGlobalsBetweenRuns(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(WithOutput(&out))
	steps := []string{
		"var total = 0;",
		"fun add(n) { total = total + n; }",
		"add(2);",
		"add(3)",
		"print total;",
	}
	for _, step := range steps {
		if result := session.Run(step); result.Err != nil || result.Diagnostics.HasErrors() {
			t.Fatalf("%q failed: %v %v", step, result.Err, result.Diagnostics)
		}
	}
	if out.String() != "5\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSessionSurvivesRuntimeErrorBetweenRuns(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(WithOutput(&out))
	session.Run("var a = 1;")
	if result := session.Run("a = a + nil;"); result.Err == nil {
		t.Fatalf("expected runtime error")
	}
	session.Run("print a;")
	if out.String() != "1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFreshSessionsAreIndependent(t *testing.T) {
	source := "var seen = 0;\nfun bump() { seen = seen + 1; return seen; }\nprint bump();\nprint bump();"
	var first, second bytes.Buffer
	NewSession(WithOutput(&first)).Run(source)
	NewSession(WithOutput(&second)).Run(source)
	if first.String() != second.String() || first.String() != "1\n2\n" {
		t.Fatalf("runs differ: %q vs %q", first.String(), second.String())
	}
}

func TestSessionIncomplete(t *testing.T) {
	session := NewSession(WithOutput(&bytes.Buffer{}))
	cases := []struct {
		source string
		want   bool
	}{
		{"fun f() {", true},
		{"print (1 +", true},
		{"var s = \"open", true},
		{"print 1;", false},
		{"print );", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := session.Incomplete(tc.source); got != tc.want {
			t.Fatalf("Incomplete(%q) = %v, want %v", tc.source, got, tc.want)
		}
	}
}

func TestSessionParseDumpsAST(t *testing.T) {
	stmts, diags := NewSession().Parse("print 1 + 2;")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if got := ast.PrintProgram(stmts); got != "(print (+ 1 2))" {
		t.Fatalf("unexpected AST %s", got)
	}
}

func TestSessionMaxCallDepthFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCallDepth = 10
	result := NewSession(WithOutput(&bytes.Buffer{}), WithConfig(cfg)).Run("fun down(n) { return down(n + 1); }\ndown(0);")
	var rtErr *diag.RuntimeError
	if !errors.As(result.Err, &rtErr) || rtErr.Message != "Stack overflow." {
		t.Fatalf("expected stack overflow, got %v", result.Err)
	}
	if len(rtErr.CallStack) != 11 {
		t.Fatalf("expected 10 frames plus script, got %d", len(rtErr.CallStack))
	}
}

func TestSessionLogsPhases(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewSession(WithOutput(&bytes.Buffer{}), WithLogger(logger)).Run("print 1;")
	for _, phase := range []string{"name=scan", "name=parse", "name=resolve", "name=interpret"} {
		if !strings.Contains(logs.String(), phase) {
			t.Fatalf("missing %s in trace:\n%s", phase, logs.String())
		}
	}
}
