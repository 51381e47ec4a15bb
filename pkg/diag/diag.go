// Package diag defines the diagnostics produced by each interpreter phase and
// their textual rendering.
package diag

import (
	"fmt"
	"io"
	"strings"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

// Category separates the four independent diagnostic families.
type Category int

const (
	Lexical Category = iota
	Syntax
	Resolution
	Runtime
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Resolution:
		return "resolution"
	case Runtime:
		return "runtime"
	default:
		return fmt.Sprintf("unknown_category_%d", int(c))
	}
}

// Diagnostic is implemented by every error a run can report.
type Diagnostic interface {
	error
	Category() Category
	SourceLine() int
}

// LexicalError reports a character the scanner could not consume. Char is
// zero when the problem is not a single character (unterminated strings).
type LexicalError struct {
	Char    rune
	Line    int
	Message string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

func (e *LexicalError) Category() Category { return Lexical }
func (e *LexicalError) SourceLine() int    { return e.Line }

// SyntaxError reports a parse failure. Token is nil for messages that are not
// anchored to a particular lexeme.
type SyntaxError struct {
	Token   *token.Token
	Line    int
	Message string
}

func NewSyntaxError(tok token.Token, message string) *SyntaxError {
	return &SyntaxError{Token: &tok, Line: tok.Line, Message: message}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, where(e.Token), e.Message)
}

func (e *SyntaxError) Category() Category { return Syntax }
func (e *SyntaxError) SourceLine() int    { return e.Line }

// ResolutionError reports a static scoping violation found by the resolver.
type ResolutionError struct {
	Node    ast.NodeID
	Token   token.Token
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Token.Line, where(&e.Token), e.Message)
}

func (e *ResolutionError) Category() Category { return Resolution }
func (e *ResolutionError) SourceLine() int    { return e.Token.Line }

// Frame is one entry of a runtime call stack.
type Frame struct {
	Function string
	Line     int
}

// RuntimeError aborts the current run. CallStack is ordered innermost first
// and always ends with the top-level "script" frame.
type RuntimeError struct {
	Message   string
	Line      int
	CallStack []Frame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.CallStack) == 0 {
		fmt.Fprintf(&b, "\n[line %d]", e.Line)
		return b.String()
	}
	for _, frame := range e.CallStack {
		fmt.Fprintf(&b, "\n[line %d] in %s", frame.Line, frame.Function)
	}
	return b.String()
}

func (e *RuntimeError) Category() Category { return Runtime }
func (e *RuntimeError) SourceLine() int    { return e.Line }

func where(tok *token.Token) string {
	if tok == nil {
		return ""
	}
	if tok.Kind == token.EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

// List aggregates the diagnostics of one run in the order they were found.
type List []Diagnostic

func (l List) Error() string {
	return strings.Join(l.Messages(), "\n")
}

// HasErrors reports whether any diagnostic was collected.
func (l List) HasErrors() bool {
	return len(l) > 0
}

// Has reports whether a diagnostic of the given category is present.
func (l List) Has(category Category) bool {
	for _, d := range l {
		if d.Category() == category {
			return true
		}
	}
	return false
}

// Static reports whether the list holds any diagnostic that blocks execution.
func (l List) Static() bool {
	return l.Has(Lexical) || l.Has(Syntax) || l.Has(Resolution)
}

// Messages renders every diagnostic.
func (l List) Messages() []string {
	out := make([]string, 0, len(l))
	for _, d := range l {
		out = append(out, d.Error())
	}
	return out
}

// Format writes one diagnostic per line.
func (l List) Format(w io.Writer) error {
	for _, d := range l {
		if _, err := fmt.Fprintln(w, d.Error()); err != nil {
			return err
		}
	}
	return nil
}
