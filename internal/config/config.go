// Package config loads matchsort command configuration from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File holds settings read from a configuration file. Zero values mean
// "not set" and leave the command-line defaults in place.
type File struct {
	// Keys lists extraction paths applied to each input line.
	Keys []string `toml:"keys" yaml:"keys"`
	// LuaKey is a path to a Lua script defining extract(item).
	LuaKey string `toml:"lua_key" yaml:"lua_key"`
	// Threshold is the minimum rank name, e.g. "MATCHES" or "ACRONYM".
	Threshold string `toml:"threshold" yaml:"threshold"`
	// KeepDiacritics disables diacritic stripping during ranking.
	KeepDiacritics bool `toml:"keep_diacritics" yaml:"keep_diacritics"`
	// BaseSort breaks rank ties: "alpha" (default) or "index".
	BaseSort string `toml:"base_sort" yaml:"base_sort"`
	// Limit caps the number of results. Zero means unlimited.
	Limit int `toml:"limit" yaml:"limit"`
	// JSON emits results as JSON instead of raw lines.
	JSON bool `toml:"json" yaml:"json"`
	// Pretty reformats JSON output for reading.
	Pretty bool `toml:"pretty" yaml:"pretty"`
	// Color colorizes pretty JSON output.
	Color bool `toml:"color" yaml:"color"`
	// Annotate injects match metadata into each JSON result.
	Annotate bool `toml:"annotate" yaml:"annotate"`
	// Output is a file path results are written to. Empty means stdout.
	Output string `toml:"output" yaml:"output"`
	// LogLevel sets the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Load reads the configuration file at path. A missing file is not an
// error and yields a nil File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return parse(path, data)
}

// parse decodes data according to the file extension.
func parse(path string, data []byte) (*File, error) {
	var cfg File

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return &cfg, nil
}

// DefaultPath returns the conventional location of the config file, or
// an empty string when the user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matchsort", "config.toml")
}

// ApplyEnv overlays MATCHSORT_* environment variables onto cfg.
// Allocates a File when cfg is nil and any variable is set.
func ApplyEnv(cfg *File) *File {
	overrides := []struct {
		env   string
		apply func(*File, string)
	}{
		{"MATCHSORT_THRESHOLD", func(f *File, v string) { f.Threshold = v }},
		{"MATCHSORT_LOG_LEVEL", func(f *File, v string) { f.LogLevel = v }},
		{"MATCHSORT_OUTPUT", func(f *File, v string) { f.Output = v }},
	}

	for _, o := range overrides {
		val, ok := os.LookupEnv(o.env)
		if !ok {
			continue
		}
		if cfg == nil {
			cfg = &File{}
		}
		o.apply(cfg, val)
	}

	// NO_COLOR is the conventional opt-out and wins over file settings.
	if _, ok := os.LookupEnv("NO_COLOR"); ok && cfg != nil {
		cfg.Color = false
	}

	return cfg
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
