package main

import (
	"bufio"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/matchsort"
)

// readLines reads input lines from path, or stdin when path is empty.
// Blank lines are dropped.
func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// writeResults prints ranked matches to w, one per line, honoring the
// JSON, pretty, and color settings.
func writeResults(w io.Writer, ranked []matchsort.RankedItem[string], opts *options) error {
	bw := bufio.NewWriter(w)

	for _, r := range ranked {
		line := r.Item
		if opts.jsonOut {
			var err error
			line, err = jsonResult(r, opts.annotate)
			if err != nil {
				return err
			}
		}

		buf := []byte(line)
		if opts.pretty {
			buf = pretty.Pretty(buf)
		}
		if opts.color {
			buf = pretty.Color(buf, nil)
		}

		if _, err := bw.Write(buf); err != nil {
			return err
		}
		if len(buf) == 0 || buf[len(buf)-1] != '\n' {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// jsonResult renders one match as a JSON document. Lines already holding
// a JSON object pass through; everything else is wrapped under "value".
func jsonResult(r matchsort.RankedItem[string], annotate bool) (string, error) {
	doc := r.Item
	switch parsed := gjson.Parse(doc); {
	case !gjson.Valid(doc):
		var err error
		doc, err = sjson.Set("", "value", doc)
		if err != nil {
			return "", err
		}
	case parsed.IsObject():
		// Keep the document as the result body.
	default:
		// Arrays and scalars cannot carry metadata fields directly.
		var err error
		doc, err = sjson.SetRaw("", "value", doc)
		if err != nil {
			return "", err
		}
	}

	if !annotate {
		return doc, nil
	}

	fields := []struct {
		path  string
		value any
	}{
		{"match.rank", float64(r.Rank)},
		{"match.rank_name", r.Rank.String()},
		{"match.key", r.KeyIndex},
		{"match.value", r.RankedValue},
		{"match.index", r.Index},
	}
	for _, f := range fields {
		var err error
		doc, err = sjson.Set(doc, f.path, f.value)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}
