package interpreter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested calls before "Stack overflow." is raised.
const DefaultMaxCallDepth = 1024

// Interpreter evaluates resolved Lox programs against a persistent global
// environment. It is not safe for concurrent use.
type Interpreter struct {
	global       *runtime.Environment
	locals       map[ast.NodeID]int
	out          io.Writer
	logger       *slog.Logger
	clock        func() time.Time
	maxCallDepth int
	frames       []callFrame
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the sink for `print`. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// WithLogger enables debug tracing of calls and returns.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock replaces the time source behind the clock() native.
func WithClock(clock func() time.Time) Option {
	return func(i *Interpreter) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// WithMaxCallDepth overrides DefaultMaxCallDepth. Non-positive values keep
// the default.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

// New returns an interpreter whose global environment holds the natives.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global:       runtime.NewEnvironment(nil),
		locals:       make(map[ast.NodeID]int),
		out:          os.Stdout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:        time.Now,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.defineNatives()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Interpret executes top-level statements. Resolution results accumulate so
// functions declared by earlier calls keep their scope distances. The first
// runtime error stops execution and is returned as *diag.RuntimeError;
// effects that happened before it remain.
func (i *Interpreter) Interpret(stmts []ast.Statement, locals map[ast.NodeID]int) error {
	for id, depth := range locals {
		i.locals[id] = depth
	}
	i.frames = i.frames[:0]
	for _, stmt := range stmts {
		sig, err := i.execute(stmt, i.global)
		if err != nil {
			return err
		}
		if sig.kind != signalNormal {
			return fmt.Errorf("interpreter: %s escaped top-level code at line %d", sig.kind, stmt.Line())
		}
	}
	return nil
}

// runtimeError builds a diagnostic carrying the current call stack.
func (i *Interpreter) runtimeError(line int, format string, args ...any) *diag.RuntimeError {
	return &diag.RuntimeError{
		Message:   fmt.Sprintf(format, args...),
		Line:      line,
		CallStack: i.callStack(line),
	}
}
