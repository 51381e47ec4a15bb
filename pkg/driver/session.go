// Package driver wires the interpreter phases into runnable sessions and
// hosts the YAML configuration and fixture suites used by the CLI.
package driver

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
)

// Exit codes follow sysexits(3).
const (
	ExitOK       = 0
	ExitDataErr  = 65
	ExitSoftware = 70
)

// Session owns one global environment. File mode uses a fresh session per
// script; the REPL reuses one across lines.
type Session struct {
	interp *interpreter.Interpreter
	logger *slog.Logger
}

type sessionOptions struct {
	out          io.Writer
	logger       *slog.Logger
	clock        func() time.Time
	maxCallDepth int
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithOutput sets where `print` writes.
func WithOutput(w io.Writer) Option {
	return func(o *sessionOptions) { o.out = w }
}

// WithLogger routes phase and call tracing to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = logger }
}

// WithClock sets the time source for clock().
func WithClock(clock func() time.Time) Option {
	return func(o *sessionOptions) { o.clock = clock }
}

// WithConfig applies the runtime settings of a loaded lox.yml.
func WithConfig(cfg *Config) Option {
	return func(o *sessionOptions) {
		if cfg != nil {
			o.maxCallDepth = cfg.MaxCallDepth
		}
	}
}

// NewSession creates a session with an empty global environment.
func NewSession(opts ...Option) *Session {
	o := sessionOptions{
		out:    os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		interp: interpreter.New(
			interpreter.WithOutput(o.out),
			interpreter.WithLogger(o.logger),
			interpreter.WithClock(o.clock),
			interpreter.WithMaxCallDepth(o.maxCallDepth),
		),
		logger: o.logger,
	}
}

// Result is the outcome of one Run. Err is set when execution failed; a
// runtime error is also the single entry of Diagnostics.
type Result struct {
	Diagnostics diag.List
	Err         error
}

// ExitCode maps the result onto the CLI's process status.
func (r Result) ExitCode() int {
	switch {
	case r.Diagnostics.Static():
		return ExitDataErr
	case r.Err != nil:
		return ExitSoftware
	default:
		return ExitOK
	}
}

// Parse runs the scanner and parser only.
func (s *Session) Parse(source string) ([]ast.Statement, diag.List) {
	var diags diag.List
	start := time.Now()
	tokens, lexErrs := scanner.New(source).Scan()
	for _, err := range lexErrs {
		diags = append(diags, err)
	}
	s.logger.Debug("phase", "name", "scan", "tokens", len(tokens), "duration", time.Since(start))

	start = time.Now()
	stmts, synErrs := parser.New(tokens).Parse()
	for _, err := range synErrs {
		diags = append(diags, err)
	}
	s.logger.Debug("phase", "name", "parse", "statements", len(stmts), "duration", time.Since(start))
	return stmts, diags
}

// Incomplete reports whether source only fails because it ends too early,
// which the REPL takes as a request for another line.
func (s *Session) Incomplete(source string) bool {
	tokens, lexErrs := scanner.New(source).Scan()
	for _, err := range lexErrs {
		if err.Message == "Unterminated string." {
			return true
		}
	}
	if len(lexErrs) != 0 {
		return false
	}
	_, synErrs := parser.New(tokens).Parse()
	return parser.IsIncomplete(synErrs)
}

// Run scans, parses, resolves and, when no static diagnostic was found,
// executes source against the session's globals.
func (s *Session) Run(source string) Result {
	stmts, diags := s.Parse(source)
	if diags.HasErrors() {
		return Result{Diagnostics: diags}
	}

	start := time.Now()
	locals, resErrs := resolver.Resolve(stmts)
	for _, err := range resErrs {
		diags = append(diags, err)
	}
	s.logger.Debug("phase", "name", "resolve", "locals", len(locals), "duration", time.Since(start))
	if diags.HasErrors() {
		return Result{Diagnostics: diags}
	}

	start = time.Now()
	err := s.interp.Interpret(stmts, locals)
	s.logger.Debug("phase", "name", "interpret", "duration", time.Since(start), "failed", err != nil)
	if err != nil {
		var rtErr *diag.RuntimeError
		if errors.As(err, &rtErr) {
			return Result{Diagnostics: diag.List{rtErr}, Err: err}
		}
		return Result{Err: err}
	}
	return Result{}
}
