package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/driver"
)

const cliToolVersion = "lox 0.1.0-dev"

// Extra sysexits codes used by the CLI itself.
const (
	exitUsage   = 64
	exitNoInput = 66
)

const defaultHistoryFile = ".lox_history"

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

func run(args []string, s streams) int {
	if len(args) > 0 {
		switch args[0] {
		case "--help", "-h", "help":
			printUsage(s.out)
			return 0
		case "--version", "-V", "version":
			fmt.Fprintln(s.out, cliToolVersion)
			return 0
		case "test":
			return runTests(args[1:], s)
		case "run":
			args = args[1:]
		}
	}

	var (
		dumpAST bool
		trace   bool
		rest    []string
	)
	for _, arg := range args {
		switch arg {
		case "--ast":
			dumpAST = true
		case "--trace":
			trace = true
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(s.err, "unknown flag: %s\n", arg)
				printUsage(s.err)
				return exitUsage
			}
			rest = append(rest, arg)
		}
	}
	if len(rest) > 1 {
		fmt.Fprintf(s.err, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		printUsage(s.err)
		return exitUsage
	}

	cfg, err := driver.ResolveConfig(".")
	if err != nil {
		fmt.Fprintf(s.err, "failed to load config: %v\n", err)
		return 1
	}
	opts := []driver.Option{driver.WithOutput(s.out), driver.WithConfig(cfg)}
	if trace || cfg.Trace {
		opts = append(opts, driver.WithLogger(newTraceLogger(s.err)))
	}

	if len(rest) == 1 {
		return runFile(rest[0], dumpAST, opts, s)
	}
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runInteractive(cfg, opts, s)
	}
	// Piped input is treated as one script.
	source, err := io.ReadAll(s.in)
	if err != nil {
		fmt.Fprintf(s.err, "failed to read stdin: %v\n", err)
		return exitNoInput
	}
	return runSource(string(source), dumpAST, opts, s)
}

func newTraceLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runFile(path string, dumpAST bool, opts []driver.Option, s streams) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.err, "failed to read %s: %v\n", path, err)
		return exitNoInput
	}
	return runSource(string(source), dumpAST, opts, s)
}

func runSource(source string, dumpAST bool, opts []driver.Option, s streams) int {
	session := driver.NewSession(opts...)
	if dumpAST {
		stmts, diags := session.Parse(source)
		if diags.HasErrors() {
			_ = diags.Format(s.err)
			return driver.ExitDataErr
		}
		fmt.Fprintln(s.out, ast.PrintProgram(stmts))
		return 0
	}
	result := session.Run(source)
	report(result, s.err)
	return result.ExitCode()
}

func report(result driver.Result, w io.Writer) {
	if result.Diagnostics.HasErrors() {
		_ = result.Diagnostics.Format(w)
		return
	}
	if result.Err != nil {
		fmt.Fprintf(w, "internal error: %v\n", result.Err)
	}
}

// prompter is the part of liner.State the REPL loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func runInteractive(cfg *driver.Config, opts []driver.Option, s streams) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryFile
	if histPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, defaultHistoryFile)
		}
	}
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(s.out, "%s (type :quit or Ctrl-D to exit)\n", cliToolVersion)
	repl(driver.NewSession(opts...), ln, ln.AppendHistory, cfg, s)
	return 0
}

// repl reads complete inputs and runs each against one session, so globals
// persist between entries. Errors are reported and the loop continues.
func repl(session *driver.Session, p prompter, remember func(string), cfg *driver.Config, s streams) {
	for {
		code, ok := readByParseProbe(p, session, cfg.Prompt, cfg.ContinuationPrompt)
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return
		}
		remember(strings.ReplaceAll(code, "\n", " "))
		report(session.Run(code), s.err)
	}
}

// readByParseProbe keeps prompting while the accumulated input only fails
// because it ends early (an open block or a dangling operator).
func readByParseProbe(p prompter, session *driver.Session, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" || !session.Incomplete(src) {
			return src, true
		}
	}
}

func runTests(args []string, s streams) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(s.err)
	jobs := fs.Int("j", 4, "number of cases to run concurrently")
	verbose := fs.Bool("v", false, "list every case, not only failures")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	var suites []*driver.Suite
	for _, dir := range dirs {
		loaded, err := driver.LoadSuites(dir)
		if err != nil {
			fmt.Fprintf(s.err, "%v\n", err)
			return exitNoInput
		}
		suites = append(suites, loaded...)
	}

	results, err := driver.RunSuites(context.Background(), suites, *jobs)
	if err != nil {
		fmt.Fprintf(s.err, "test run failed: %v\n", err)
		return 1
	}
	failed := 0
	for _, res := range results {
		if res.Passed() {
			if *verbose {
				fmt.Fprintf(s.out, "ok   %s/%s\n", res.Suite, res.Case)
			}
			continue
		}
		failed++
		fmt.Fprintf(s.out, "FAIL %s/%s\n%s\n", res.Suite, res.Case, indent(res.Failure))
	}
	fmt.Fprintf(s.out, "%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  lox [--ast] [--trace] [run] [script.lox]   run a script, or start a REPL")
	fmt.Fprintln(w, "  lox test [-j N] [-v] [dir...]              run YAML fixture suites")
	fmt.Fprintln(w, "  lox --version")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Settings are read from %s (searched upward) or $%s.\n", driver.ConfigFileName, driver.ConfigEnv)
}
