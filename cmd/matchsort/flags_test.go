package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/matchsort"
	"github.com/dshills/matchsort/internal/config"
)

func TestParseArgsQueryOnly(t *testing.T) {
	opts, err := parseArgs([]string{"hey"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if opts.query != "hey" || opts.file != "" {
		t.Errorf("query/file = %q/%q, want hey/empty", opts.query, opts.file)
	}
}

func TestParseArgsQueryAndFile(t *testing.T) {
	opts, err := parseArgs([]string{"-limit", "5", "hey", "words.txt"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if opts.query != "hey" || opts.file != "words.txt" {
		t.Errorf("query/file = %q/%q, want hey/words.txt", opts.query, opts.file)
	}
	if opts.limit != 5 {
		t.Errorf("limit = %d, want 5", opts.limit)
	}
	if !opts.set["limit"] {
		t.Error("set map does not record the limit flag")
	}
}

func TestParseArgsRepeatableKeys(t *testing.T) {
	opts, err := parseArgs([]string{"-key", "name", "-key", "aliases.*", "q"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if len(opts.keys) != 2 || opts.keys[0] != "name" || opts.keys[1] != "aliases.*" {
		t.Errorf("keys = %v, want [name aliases.*]", opts.keys)
	}
}

func TestParseArgsInteractiveTakesFile(t *testing.T) {
	opts, err := parseArgs([]string{"-i", "data.txt"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if !opts.interactive {
		t.Error("interactive = false, want true")
	}
	if opts.file != "data.txt" || opts.query != "" {
		t.Errorf("file/query = %q/%q, want data.txt/empty", opts.file, opts.query)
	}
}

func TestParseArgsMissingQuery(t *testing.T) {
	if _, err := parseArgs(nil); err == nil {
		t.Error("expected error for missing query")
	}
}

func TestParseArgsTooMany(t *testing.T) {
	if _, err := parseArgs([]string{"a", "b", "c"}); err == nil {
		t.Error("expected error for extra arguments")
	}
}

func TestParseArgsVersion(t *testing.T) {
	opts, err := parseArgs([]string{"-version"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if !opts.showVersion {
		t.Error("showVersion = false, want true")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		spec          string
		wantPath      string
		wantThreshold matchsort.Rank
	}{
		{"name", "name", 0},
		{"user.name:ACRONYM", "user.name", matchsort.RankAcronym},
		{"code:contains", "code", matchsort.RankContains},
		{"host:port", "host:port", 0},
		{"trailing:", "trailing:", 0},
	}

	for _, tt := range tests {
		ks := parseKey(tt.spec)
		if ks.Path != tt.wantPath || ks.Threshold != tt.wantThreshold {
			t.Errorf("parseKey(%q) = {%q, %v}, want {%q, %v}",
				tt.spec, ks.Path, ks.Threshold, tt.wantPath, tt.wantThreshold)
		}
	}
}

func TestApplyConfigFillsUnsetOnly(t *testing.T) {
	opts := &options{
		threshold: "MATCHES",
		set:       map[string]bool{"threshold": true},
	}
	opts.applyConfig(&config.File{
		Threshold: "EQUAL",
		Limit:     7,
		Keys:      []string{"name"},
		Annotate:  true,
	})

	if opts.threshold != "MATCHES" {
		t.Errorf("threshold = %q, flag value should win", opts.threshold)
	}
	if opts.limit != 7 {
		t.Errorf("limit = %d, want 7 from config", opts.limit)
	}
	if len(opts.keys) != 1 || opts.keys[0] != "name" {
		t.Errorf("keys = %v, want [name] from config", opts.keys)
	}
	if !opts.annotate {
		t.Error("annotate = false, want true from config")
	}
}

func TestApplyConfigNil(t *testing.T) {
	opts := &options{set: map[string]bool{}}
	opts.applyConfig(nil)
	if opts.limit != 0 || len(opts.keys) != 0 {
		t.Errorf("options changed by nil config: %+v", opts)
	}
}

func TestNormalizeImpliesJSON(t *testing.T) {
	opts := &options{annotate: true}
	if err := opts.normalize(); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if !opts.jsonOut {
		t.Error("jsonOut = false, annotate should imply JSON output")
	}
	if opts.logLevel != "info" {
		t.Errorf("logLevel = %q, want info default", opts.logLevel)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	if err := (&options{logLevel: "loud"}).normalize(); err == nil {
		t.Error("expected error for bad log level")
	}
	if err := (&options{baseSort: "random"}).normalize(); err == nil {
		t.Error("expected error for bad base sort")
	}
}

func TestBuildOptions(t *testing.T) {
	opts := &options{
		keys:      keyList{"name", "email:CONTAINS"},
		threshold: "ACRONYM",
		baseSort:  "index",
	}

	so, cleanup, err := buildOptions(opts)
	defer cleanup()
	if err != nil {
		t.Fatalf("buildOptions returned error: %v", err)
	}

	if len(so.Keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(so.Keys))
	}
	if so.Keys[0].Path != "name" {
		t.Errorf("Keys[0].Path = %q, want name", so.Keys[0].Path)
	}
	if so.Keys[1].Threshold != matchsort.RankContains {
		t.Errorf("Keys[1].Threshold = %v, want CONTAINS", so.Keys[1].Threshold)
	}
	if so.Threshold != matchsort.RankAcronym {
		t.Errorf("Threshold = %v, want ACRONYM", so.Threshold)
	}
	if so.BaseSort == nil {
		t.Error("BaseSort = nil, want original-order comparator")
	}
}

func TestBuildOptionsThresholdAll(t *testing.T) {
	so, cleanup, err := buildOptions(&options{threshold: "all"})
	defer cleanup()
	if err != nil {
		t.Fatalf("buildOptions returned error: %v", err)
	}
	if so.Threshold != matchsort.ThresholdAll {
		t.Errorf("Threshold = %v, want ThresholdAll", so.Threshold)
	}
}

func TestBuildOptionsBadThreshold(t *testing.T) {
	_, cleanup, err := buildOptions(&options{threshold: "SOMETIMES"})
	defer cleanup()
	if err == nil {
		t.Error("expected error for unknown threshold")
	}
}

func TestBuildOptionsLuaKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.lua")
	src := `function extract(item) return item end`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	so, cleanup, err := buildOptions(&options{luaKey: path})
	if err != nil {
		t.Fatalf("buildOptions returned error: %v", err)
	}
	defer cleanup()

	if len(so.Keys) != 1 || so.Keys[0].Func == nil {
		t.Fatalf("expected one callback key, got %+v", so.Keys)
	}
	if got := so.Keys[0].Func("hello"); len(got) != 1 || got[0] != "hello" {
		t.Errorf("lua key returned %v, want [hello]", got)
	}
}
