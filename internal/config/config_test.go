package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
keys = ["name", "aliases.*"]
lua_key = "extract.lua"
threshold = "ACRONYM"
keep_diacritics = true
base_sort = "index"
limit = 10
json = true
pretty = true
annotate = true
output = "out.json"
log_level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}

	if len(cfg.Keys) != 2 || cfg.Keys[0] != "name" || cfg.Keys[1] != "aliases.*" {
		t.Errorf("Keys = %v, want [name aliases.*]", cfg.Keys)
	}
	if cfg.LuaKey != "extract.lua" {
		t.Errorf("LuaKey = %q, want extract.lua", cfg.LuaKey)
	}
	if cfg.Threshold != "ACRONYM" {
		t.Errorf("Threshold = %q, want ACRONYM", cfg.Threshold)
	}
	if !cfg.KeepDiacritics {
		t.Error("KeepDiacritics = false, want true")
	}
	if cfg.BaseSort != "index" {
		t.Errorf("BaseSort = %q, want index", cfg.BaseSort)
	}
	if cfg.Limit != 10 {
		t.Errorf("Limit = %d, want 10", cfg.Limit)
	}
	if !cfg.JSON || !cfg.Pretty || !cfg.Annotate {
		t.Errorf("JSON/Pretty/Annotate = %v/%v/%v, want all true", cfg.JSON, cfg.Pretty, cfg.Annotate)
	}
	if cfg.Output != "out.json" {
		t.Errorf("Output = %q, want out.json", cfg.Output)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
keys:
  - name
  - aliases.*
threshold: CONTAINS
limit: 5
color: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}

	if len(cfg.Keys) != 2 || cfg.Keys[0] != "name" {
		t.Errorf("Keys = %v, want [name aliases.*]", cfg.Keys)
	}
	if cfg.Threshold != "CONTAINS" {
		t.Errorf("Threshold = %q, want CONTAINS", cfg.Threshold)
	}
	if cfg.Limit != 5 {
		t.Errorf("Limit = %d, want 5", cfg.Limit)
	}
	if !cfg.Color {
		t.Error("Color = false, want true")
	}
}

func TestLoadFormatsAgree(t *testing.T) {
	tomlCfg, err := Load(writeConfig(t, "a.toml", "threshold = \"WORD_STARTS_WITH\"\nlimit = 3\n"))
	if err != nil {
		t.Fatalf("Load toml: %v", err)
	}
	yamlCfg, err := Load(writeConfig(t, "a.yml", "threshold: WORD_STARTS_WITH\nlimit: 3\n"))
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}

	if !reflect.DeepEqual(tomlCfg, yamlCfg) {
		t.Errorf("toml %+v and yaml %+v configs differ", *tomlCfg, *yamlCfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if cfg != nil {
		t.Errorf("Load = %+v, want nil for missing file", cfg)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeConfig(t, "bad.toml", "keys = [unclosed\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not a ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not mention the file", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.ini", "[section]\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestParseErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  ParseError
		want string
	}{
		{
			name: "path only",
			err:  ParseError{Path: "c.toml", Message: "boom"},
			want: "parse error in c.toml: boom",
		},
		{
			name: "with line",
			err:  ParseError{Path: "c.toml", Line: 3, Message: "boom"},
			want: "parse error in c.toml at line 3: boom",
		},
		{
			name: "with line and column",
			err:  ParseError{Path: "c.toml", Line: 3, Column: 7, Message: "boom"},
			want: "parse error in c.toml at line 3, column 7: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MATCHSORT_THRESHOLD", "EQUAL")
	t.Setenv("MATCHSORT_LOG_LEVEL", "debug")

	cfg := ApplyEnv(&File{Threshold: "MATCHES", Output: "keep.json"})

	if cfg.Threshold != "EQUAL" {
		t.Errorf("Threshold = %q, want EQUAL", cfg.Threshold)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Output != "keep.json" {
		t.Errorf("Output = %q, want keep.json", cfg.Output)
	}
}

func TestApplyEnvAllocates(t *testing.T) {
	t.Setenv("MATCHSORT_THRESHOLD", "ACRONYM")

	cfg := ApplyEnv(nil)
	if cfg == nil {
		t.Fatal("ApplyEnv returned nil with variable set")
	}
	if cfg.Threshold != "ACRONYM" {
		t.Errorf("Threshold = %q, want ACRONYM", cfg.Threshold)
	}
}

func TestApplyEnvNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	cfg := ApplyEnv(&File{Color: true})
	if cfg.Color {
		t.Error("Color = true, want false under NO_COLOR")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := DefaultPath()
	if path == "" {
		t.Fatal("DefaultPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("DefaultPath = %q, want a config.toml path", path)
	}
}
