// Package main is the entry point for the matchsort command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dshills/matchsort"
	"github.com/dshills/matchsort/internal/config"
	"github.com/dshills/matchsort/internal/log"
	"github.com/dshills/matchsort/internal/picker"
	"github.com/dshills/matchsort/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.showVersion {
		fmt.Printf("matchsort %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	var cfg *config.File
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	opts.applyConfig(config.ApplyEnv(cfg))

	if err := opts.normalize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(opts.logLevel),
		Output: os.Stderr,
		Prefix: "matchsort",
	})

	sortOpts, cleanup, err := buildOptions(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	if opts.interactive {
		return runPicker(opts, sortOpts, logger)
	}
	return runFilter(opts, sortOpts, logger)
}

// buildOptions turns command options into ranking options. The returned
// cleanup releases the Lua extractor, if one was loaded.
func buildOptions(opts *options) (matchsort.Options[string], func(), error) {
	var so matchsort.Options[string]
	cleanup := func() {}

	for _, spec := range opts.keys {
		so.Keys = append(so.Keys, parseKey(spec))
	}
	if opts.luaKey != "" {
		ext, err := script.Load(opts.luaKey)
		if err != nil {
			return so, cleanup, err
		}
		so.Keys = append(so.Keys, script.KeyFor[string](ext))
		cleanup = func() { ext.Close() }
	}
	if opts.threshold != "" {
		rank, err := matchsort.ParseRank(opts.threshold)
		if err != nil {
			return so, cleanup, err
		}
		so.Threshold = rank
	}
	so.KeepDiacritics = opts.keepDiacritics
	if opts.baseSort == "index" {
		so.BaseSort = matchsort.CompareOriginalIndex[string]
	}

	return so, cleanup, nil
}

func runFilter(opts *options, sortOpts matchsort.Options[string], logger *log.Logger) int {
	if opts.file == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: no input; provide FILE or pipe lines to stdin")
		return 2
	}

	lines, err := readLines(opts.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Debug("read %d lines", len(lines))

	ranked := matchsort.SortRanked(lines, opts.query, sortOpts)
	logger.Debug("ranked %d matches for %q", len(ranked), opts.query)
	if opts.limit > 0 && len(ranked) > opts.limit {
		ranked = ranked[:opts.limit]
	}

	out := os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := writeResults(out, ranked, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(ranked) == 0 {
		return 1
	}
	return 0
}

func runPicker(opts *options, sortOpts matchsort.Options[string], logger *log.Logger) int {
	if opts.file == "" {
		fmt.Fprintln(os.Stderr, "Error: interactive mode requires an input file")
		return 2
	}

	picked, err := picker.Run(picker.Config{
		Load: func() ([]string, error) { return readLines(opts.file) },
		Rank: func(lines []string, query string) []matchsort.RankedItem[string] {
			return matchsort.SortRanked(lines, query, sortOpts)
		},
		Watch:  opts.file,
		Query:  opts.query,
		Logger: logger.WithComponent("picker"),
	})
	if err != nil {
		if errors.Is(err, picker.ErrCanceled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(picked)
	return 0
}
