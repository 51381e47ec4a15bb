package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up from the working directory upward.
const ConfigFileName = "lox.yml"

// ConfigEnv names a config file explicitly, bypassing the upward search.
const ConfigEnv = "LOX_CONFIG"

// Config holds the CLI and session settings read from lox.yml.
type Config struct {
	Path               string
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string
	Trace              bool
	MaxCallDepth       int
}

type configFile struct {
	Prompt             *string `yaml:"prompt"`
	ContinuationPrompt *string `yaml:"continuation_prompt"`
	HistoryFile        string  `yaml:"history_file"`
	Trace              bool    `yaml:"trace"`
	MaxCallDepth       int     `yaml:"max_call_depth"`
}

// DefaultConfig is used when no lox.yml is found.
func DefaultConfig() *Config {
	return &Config{
		Prompt:             "> ",
		ContinuationPrompt: ". ",
	}
}

// ValidationError aggregates config and fixture validation failures.
type ValidationError struct {
	Subject string
	Issues  []string
}

func (e *ValidationError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "config"
	}
	if len(e.Issues) == 0 {
		return subject + ": invalid configuration"
	}
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString(" validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig parses lox.yml from disk, returning a validated config. Unknown
// keys are rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file means "all defaults".
			cfg := DefaultConfig()
			cfg.Path = absPath
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg, err := raw.toConfig(absPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (raw configFile) toConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.Trace = raw.Trace
	cfg.MaxCallDepth = raw.MaxCallDepth

	errs := ValidationError{Subject: "config " + path}
	if raw.Prompt != nil {
		if *raw.Prompt == "" {
			errs.Issues = append(errs.Issues, "prompt must not be empty")
		}
		cfg.Prompt = *raw.Prompt
	}
	if raw.ContinuationPrompt != nil {
		if *raw.ContinuationPrompt == "" {
			errs.Issues = append(errs.Issues, "continuation_prompt must not be empty")
		}
		cfg.ContinuationPrompt = *raw.ContinuationPrompt
	}
	if raw.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative (got %d)", raw.MaxCallDepth))
	}
	if raw.HistoryFile != "" {
		history, err := expandPath(raw.HistoryFile, filepath.Dir(path))
		if err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("history_file: %v", err))
		}
		cfg.HistoryFile = history
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

// expandPath resolves "~/" against the home directory and relative paths
// against base.
func expandPath(path, base string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(base, path), nil
}

// FindConfig walks from start up to the filesystem root looking for lox.yml.
func FindConfig(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolveConfig loads the config named by LOX_CONFIG, else the nearest
// lox.yml above dir, else the defaults.
func ResolveConfig(dir string) (*Config, error) {
	if path := os.Getenv(ConfigEnv); path != "" {
		return LoadConfig(path)
	}
	if path, ok := FindConfig(dir); ok {
		return LoadConfig(path)
	}
	return DefaultConfig(), nil
}
