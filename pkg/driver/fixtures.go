package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Suite is one YAML fixture file: a list of Lox programs with the output,
// diagnostics and exit code each must produce.
type Suite struct {
	Path  string
	Name  string
	Cases []Case
}

// Case is a single program. Errors lists rendered diagnostics in order.
type Case struct {
	Name     string   `yaml:"name"`
	Source   string   `yaml:"source"`
	Stdout   string   `yaml:"stdout"`
	Errors   []string `yaml:"errors"`
	ExitCode int      `yaml:"exit_code"`
}

type suiteFile struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// fixtureEpoch pins clock() so fixture output is reproducible.
var fixtureEpoch = time.Unix(1_000_000, 0)

// LoadSuite reads and validates a fixture file.
func LoadSuite(path string) (*Suite, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw suiteFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fixtures: %s is empty", path)
		}
		return nil, fmt.Errorf("fixtures: parse %s: %w", path, err)
	}

	suite := &Suite{Path: path, Name: raw.Name, Cases: raw.Cases}
	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := suite.validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

func (s *Suite) validate() error {
	errs := ValidationError{Subject: "fixture suite " + s.Path}
	if len(s.Cases) == 0 {
		errs.Issues = append(errs.Issues, "cases must not be empty")
	}
	seen := make(map[string]bool, len(s.Cases))
	for idx, c := range s.Cases {
		switch {
		case c.Name == "":
			errs.Issues = append(errs.Issues, fmt.Sprintf("cases[%d] missing name", idx))
		case seen[c.Name]:
			errs.Issues = append(errs.Issues, fmt.Sprintf("cases[%d] duplicates name %q", idx, c.Name))
		}
		seen[c.Name] = true
		switch c.ExitCode {
		case ExitOK, ExitDataErr, ExitSoftware:
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("case %q has unsupported exit_code %d", c.Name, c.ExitCode))
		}
		if c.ExitCode == ExitOK && len(c.Errors) > 0 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("case %q expects errors but exit_code 0", c.Name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// LoadSuites loads every *.yml file in dir, sorted by name.
func LoadSuites(dir string) ([]*Suite, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("fixtures: glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("fixtures: no *.yml suites in %s", dir)
	}
	sort.Strings(paths)
	suites := make([]*Suite, 0, len(paths))
	for _, path := range paths {
		suite, err := LoadSuite(path)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

// CaseResult records what a case produced. Failure is empty when it passed.
type CaseResult struct {
	Suite    string
	Case     string
	Stdout   string
	Errors   []string
	ExitCode int
	Failure  string
}

// Passed reports whether the case matched its expectations.
func (r CaseResult) Passed() bool {
	return r.Failure == ""
}

// Run executes the case in a fresh session.
func (c Case) Run(opts ...Option) CaseResult {
	var out bytes.Buffer
	base := []Option{WithOutput(&out), WithClock(func() time.Time { return fixtureEpoch })}
	result := NewSession(append(base, opts...)...).Run(c.Source)

	got := CaseResult{
		Case:     c.Name,
		Stdout:   out.String(),
		Errors:   result.Diagnostics.Messages(),
		ExitCode: result.ExitCode(),
	}
	if result.Err != nil && len(result.Diagnostics) == 0 {
		got.Errors = append(got.Errors, result.Err.Error())
	}

	var failures []string
	if diff := cmp.Diff(c.Stdout, got.Stdout); diff != "" {
		failures = append(failures, "stdout mismatch (-want +got):\n"+diff)
	}
	wantErrors := c.Errors
	if wantErrors == nil {
		wantErrors = []string{}
	}
	if diff := cmp.Diff(wantErrors, got.Errors, trimmedStrings); diff != "" {
		failures = append(failures, "errors mismatch (-want +got):\n"+diff)
	}
	if c.ExitCode != got.ExitCode {
		failures = append(failures, fmt.Sprintf("exit code = %d, want %d", got.ExitCode, c.ExitCode))
	}
	got.Failure = strings.Join(failures, "\n")
	return got
}

// YAML block scalars end with a newline that rendered diagnostics lack.
var trimmedStrings = cmp.Transformer("trim", func(s string) string {
	return strings.TrimRight(s, "\n")
})

// RunSuites executes every case concurrently, at most limit at a time
// (unlimited when limit <= 0). Results keep suite and case order. Sessions
// share no state, so cases are independent.
func RunSuites(ctx context.Context, suites []*Suite, limit int, opts ...Option) ([]CaseResult, error) {
	type job struct {
		suite string
		c     Case
	}
	var jobs []job
	for _, suite := range suites {
		for _, c := range suite.Cases {
			jobs = append(jobs, job{suite: suite.Name, c: c})
		}
	}

	results := make([]CaseResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for idx, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := j.c.Run(opts...)
			res.Suite = j.suite
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
