package matchsort

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/matchsort/normalize"
)

// Rank grades how well a candidate string matches a query. Higher is
// better. The whole-number grades form a strict hierarchy; values between
// RankMatches and RankAcronym grade loose in-order matches by tightness.
type Rank float64

const (
	// RankNoMatch excludes a candidate at any usable threshold.
	RankNoMatch Rank = 0
	// RankMatches is the floor for loose in-order character matches and
	// the default inclusion threshold.
	RankMatches Rank = 1
	// RankAcronym marks queries found inside the candidate's acronym.
	RankAcronym Rank = 2
	// RankContains marks candidates containing the query.
	RankContains Rank = 3
	// RankWordStartsWith marks candidates where a word after the first
	// starts with the query.
	RankWordStartsWith Rank = 4
	// RankStartsWith marks candidates starting with the query.
	RankStartsWith Rank = 5
	// RankEqual marks case-insensitive equality.
	RankEqual Rank = 6
	// RankCaseSensitiveEqual marks exact equality.
	RankCaseSensitiveEqual Rank = 7
)

// ThresholdAll admits every item regardless of rank. It is a threshold
// sentinel, never a grade RankOf returns.
const ThresholdAll Rank = -1

// String returns the grade's name. Closeness values render with their
// offset above MATCHES.
func (r Rank) String() string {
	switch r {
	case RankNoMatch:
		return "NO_MATCH"
	case RankMatches:
		return "MATCHES"
	case RankAcronym:
		return "ACRONYM"
	case RankContains:
		return "CONTAINS"
	case RankWordStartsWith:
		return "WORD_STARTS_WITH"
	case RankStartsWith:
		return "STARTS_WITH"
	case RankEqual:
		return "EQUAL"
	case RankCaseSensitiveEqual:
		return "CASE_SENSITIVE_EQUAL"
	case ThresholdAll:
		return "ALL"
	}
	if r > RankMatches && r < RankAcronym {
		return fmt.Sprintf("MATCHES+%.2f", float64(r-RankMatches))
	}
	return fmt.Sprintf("RANK(%g)", float64(r))
}

// ParseRank resolves a grade name to its value. Names match
// case-insensitively; "ALL" resolves to ThresholdAll.
func ParseRank(name string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NO_MATCH":
		return RankNoMatch, nil
	case "MATCHES":
		return RankMatches, nil
	case "ACRONYM":
		return RankAcronym, nil
	case "CONTAINS":
		return RankContains, nil
	case "WORD_STARTS_WITH":
		return RankWordStartsWith, nil
	case "STARTS_WITH":
		return RankStartsWith, nil
	case "EQUAL":
		return RankEqual, nil
	case "CASE_SENSITIVE_EQUAL":
		return RankCaseSensitiveEqual, nil
	case "ALL":
		return ThresholdAll, nil
	}
	return RankNoMatch, fmt.Errorf("unknown rank: %s", name)
}

// Normalizer prepares a value for comparison. The flag reports whether
// diacritical marks should be preserved.
type Normalizer func(value string, keepDiacritics bool) string

// RankOptions controls how individual strings are graded.
type RankOptions struct {
	// KeepDiacritics preserves combining marks instead of stripping them
	// before comparison.
	KeepDiacritics bool

	// Normalize overrides the normalization step. Nil means
	// normalize.Normalize.
	Normalize Normalizer
}

func (o RankOptions) normalizer() Normalizer {
	if o.Normalize != nil {
		return o.Normalize
	}
	return normalize.Normalize
}

// RankOf grades candidate against query. Grades are tried from best to
// worst and the first that applies wins.
func RankOf(candidate, query string, opts RankOptions) Rank {
	prep := opts.normalizer()
	candidate = prep(candidate, opts.KeepDiacritics)
	query = prep(query, opts.KeepDiacritics)

	// A query longer than the candidate can never match.
	if utf8.RuneCountInString(query) > utf8.RuneCountInString(candidate) {
		return RankNoMatch
	}

	if candidate == query {
		return RankCaseSensitiveEqual
	}

	candidate = strings.ToLower(candidate)
	query = strings.ToLower(query)
	if candidate == query {
		return RankEqual
	}
	if strings.HasPrefix(candidate, query) {
		return RankStartsWith
	}
	if strings.Contains(candidate, " "+query) {
		return RankWordStartsWith
	}
	if strings.Contains(candidate, query) {
		return RankContains
	}

	// One-character queries match verbatim or not at all.
	if utf8.RuneCountInString(query) == 1 {
		return RankNoMatch
	}

	if strings.Contains(acronym(candidate), query) {
		return RankAcronym
	}
	return closeness(candidate, query)
}

// acronym concatenates the first character of every space- or
// hyphen-separated fragment of s.
func acronym(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, " ") {
		for _, part := range strings.Split(word, "-") {
			if part == "" {
				continue
			}
			first, _, _, _ := uniseg.FirstGraphemeClusterInString(part, -1)
			b.WriteString(first)
		}
	}
	return b.String()
}

// closeness grades query characters found left to right inside candidate
// by how tightly they cluster. Results stay strictly between RankMatches
// and RankAcronym.
func closeness(candidate, query string) Rank {
	text := []rune(candidate)
	chars := []rune(query)

	matched := 0
	find := func(ch rune, from int) int {
		for j := from; j < len(text); j++ {
			if text[j] == ch {
				matched++
				return j + 1
			}
		}
		return -1
	}

	first := find(chars[0], 0)
	if first < 0 {
		return RankNoMatch
	}
	cursor := first
	for i := 1; i < len(chars); i++ {
		cursor = find(chars[i], cursor)
		if cursor < 0 {
			return RankNoMatch
		}
	}

	spread := cursor - first
	inOrder := float64(matched) / float64(len(chars))
	return RankMatches + Rank(inOrder/float64(spread))
}
