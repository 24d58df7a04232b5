package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/matchsort"
	"github.com/dshills/matchsort/internal/config"
)

// options holds the resolved command configuration.
type options struct {
	keys           keyList
	luaKey         string
	threshold      string
	keepDiacritics bool
	baseSort       string
	limit          int
	jsonOut        bool
	pretty         bool
	color          bool
	annotate       bool
	output         string
	configPath     string
	interactive    bool
	logLevel       string
	showVersion    bool

	query string
	file  string

	// set records which flags appeared on the command line, so file and
	// environment settings only fill the gaps.
	set map[string]bool
}

// keyList collects repeated -key flags.
type keyList []string

func (k *keyList) String() string { return strings.Join(*k, ",") }

func (k *keyList) Set(v string) error {
	*k = append(*k, v)
	return nil
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("matchsort", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.Var(&opts.keys, "key", "Extraction path ranked per item; repeatable. Append :RANK for a per-key threshold")
	fs.StringVar(&opts.luaKey, "key-lua", "", "Lua script defining extract(item), ranked as an extra key")
	fs.StringVar(&opts.threshold, "threshold", "", "Minimum rank to include (e.g. MATCHES, ACRONYM, ALL)")
	fs.BoolVar(&opts.keepDiacritics, "keep-diacritics", false, "Rank accented characters verbatim")
	fs.StringVar(&opts.baseSort, "base-sort", "", "Tie-break order: alpha (default) or index")
	fs.IntVar(&opts.limit, "limit", 0, "Maximum number of results (0 = unlimited)")
	fs.BoolVar(&opts.jsonOut, "json", false, "Emit JSON results")
	fs.BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON results (implies -json)")
	fs.BoolVar(&opts.color, "color", false, "Colorize JSON results (implies -json)")
	fs.BoolVar(&opts.annotate, "annotate", false, "Add match metadata to JSON results (implies -json)")
	fs.StringVar(&opts.output, "output", "", "Write results to a file instead of stdout")
	fs.StringVar(&opts.output, "o", "", "Write results to a file instead of stdout (shorthand)")
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.BoolVar(&opts.interactive, "interactive", false, "Open the interactive picker")
	fs.BoolVar(&opts.interactive, "i", false, "Open the interactive picker (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "matchsort - rank and filter lines by match quality\n\n")
		fmt.Fprintf(os.Stderr, "Usage: matchsort [options] QUERY [FILE]\n")
		fmt.Fprintf(os.Stderr, "       matchsort -i [QUERY] FILE\n\n")
		fmt.Fprintf(os.Stderr, "Ranks input lines (FILE or stdin) against QUERY and prints matches\n")
		fmt.Fprintf(os.Stderr, "best-first. With -i, opens an interactive picker instead. Lines that\n")
		fmt.Fprintf(os.Stderr, "hold JSON documents can be ranked by field with -key.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  matchsort hey words.txt                      Filter a file\n")
		fmt.Fprintf(os.Stderr, "  cat words.txt | matchsort hey                Filter stdin\n")
		fmt.Fprintf(os.Stderr, "  matchsort -key user.name ada users.ndjson    Rank JSON lines by field\n")
		fmt.Fprintf(os.Stderr, "  matchsort -annotate -pretty ada users.ndjson Show match metadata\n")
		fmt.Fprintf(os.Stderr, "  matchsort -i users.ndjson                    Interactive picker\n")
		fmt.Fprintf(os.Stderr, "\nExit status is 0 when at least one line matched, 1 when none did,\n")
		fmt.Fprintf(os.Stderr, "and 130 when the picker was canceled.\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if opts.showVersion {
		return opts, nil
	}
	if err := resolveArgs(opts, fs.Args()); err != nil {
		return nil, err
	}
	return opts, nil
}

// resolveArgs assigns the positional arguments. A single argument is a
// query, unless it names a readable file and stdin is a terminal, in
// which case the picker opens on it.
func resolveArgs(opts *options, args []string) error {
	switch len(args) {
	case 0:
		if opts.interactive {
			return errors.New("interactive mode requires an input file")
		}
		return errors.New("missing query (run with -h for usage)")
	case 1:
		if opts.interactive {
			opts.file = args[0]
			return nil
		}
		if autoInteractive(args[0]) {
			opts.interactive = true
			opts.file = args[0]
			return nil
		}
		opts.query = args[0]
		return nil
	case 2:
		opts.query = args[0]
		opts.file = args[1]
		return nil
	default:
		return fmt.Errorf("too many arguments: %s", strings.Join(args[2:], " "))
	}
}

func autoInteractive(arg string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// parseKey builds a key specification from a -key flag value. A :RANK
// suffix that names a rank becomes the key's threshold; anything else
// stays part of the path.
func parseKey(spec string) matchsort.KeySpec[string] {
	if i := strings.LastIndexByte(spec, ':'); i >= 0 {
		if rank, err := matchsort.ParseRank(spec[i+1:]); err == nil {
			ks := matchsort.Key[string](spec[:i])
			ks.Threshold = rank
			return ks
		}
	}
	return matchsort.Key[string](spec)
}

// applyConfig fills options the command line left unset.
func (o *options) applyConfig(cfg *config.File) {
	if cfg == nil {
		return
	}
	if !o.set["key"] && len(cfg.Keys) > 0 {
		o.keys = append(o.keys, cfg.Keys...)
	}
	if !o.set["key-lua"] && cfg.LuaKey != "" {
		o.luaKey = cfg.LuaKey
	}
	if !o.set["threshold"] && cfg.Threshold != "" {
		o.threshold = cfg.Threshold
	}
	if !o.set["keep-diacritics"] && cfg.KeepDiacritics {
		o.keepDiacritics = true
	}
	if !o.set["base-sort"] && cfg.BaseSort != "" {
		o.baseSort = cfg.BaseSort
	}
	if !o.set["limit"] && cfg.Limit > 0 {
		o.limit = cfg.Limit
	}
	if !o.set["json"] && cfg.JSON {
		o.jsonOut = true
	}
	if !o.set["pretty"] && cfg.Pretty {
		o.pretty = true
	}
	if !o.set["color"] && cfg.Color {
		o.color = true
	}
	if !o.set["annotate"] && cfg.Annotate {
		o.annotate = true
	}
	if !o.set["output"] && !o.set["o"] && cfg.Output != "" {
		o.output = cfg.Output
	}
	if !o.set["log-level"] && cfg.LogLevel != "" {
		o.logLevel = cfg.LogLevel
	}
}

// normalize applies implied settings and validates enumerations.
func (o *options) normalize() error {
	if o.annotate || o.pretty || o.color {
		o.jsonOut = true
	}
	if o.logLevel == "" {
		o.logLevel = "info"
	}
	switch o.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", o.logLevel)
	}
	switch o.baseSort {
	case "", "alpha", "index":
	default:
		return fmt.Errorf("invalid base sort %q (must be alpha or index)", o.baseSort)
	}
	return nil
}
