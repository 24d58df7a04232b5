// Package normalize prepares arbitrary values for string comparison.
//
// Ranking compares strings with combining diacritical marks stripped, so
// "café" and "cafe" grade identically unless the caller asks to keep the
// marks. Stringify renders non-string values the way ranking compares them.
package normalize

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// marks removes combining diacritical marks after decomposition.
var marks = runes.Remove(runes.In(unicode.Mn))

// Normalize returns value ready for comparison. Unless keepDiacritics is
// set, the value is decomposed, combining marks are removed, and the rest
// is recomposed. A value the transform cannot process comes back unchanged.
func Normalize(value string, keepDiacritics bool) string {
	if keepDiacritics || ascii(value) {
		return value
	}
	// Chained transformers carry state, so the chain is built per call.
	out, _, err := transform.String(transform.Chain(norm.NFD, marks, norm.NFC), value)
	if err != nil {
		return value
	}
	return out
}

func ascii(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Stringify renders v as a candidate string. Strings pass through, byte
// slices convert, fmt.Stringer is honored, and anything else takes its
// default formatted form. Nil renders empty.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
