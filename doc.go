// Package matchsort ranks and sorts collections against a query string.
//
// The package replaces edit-distance fuzzy matching with a deterministic,
// human-intuitive hierarchy of match qualities. Every candidate string is
// graded on a fixed scale and items are ordered best match first, with
// explicit tie-breaking at every level.
//
// # Ranking
//
// Grades are tried from best to worst; the first that applies wins:
//
//   - Case-sensitive equality
//   - Case-insensitive equality
//   - Query is a prefix of the candidate
//   - Query is a prefix of a later word
//   - Candidate contains the query
//   - The candidate's acronym contains the query
//   - Query characters appear in order, graded by tightness
//
// Diacritical marks are stripped before comparison unless
// RankOptions.KeepDiacritics is set, so "café" and "cafe" grade the same.
//
// # Usage
//
// Plain strings:
//
//	matchsort.Strings([]string{"hi", "hey", "hello", "sup"}, "h")
//	// [hello hey hi]
//
// Structured items rank through keys:
//
//	type Contact struct{ Name, Email string }
//	out := matchsort.Sort(contacts, "jo", matchsort.Options[Contact]{
//	    Keys: []matchsort.KeySpec[Contact]{
//	        matchsort.KeyFn(func(c Contact) []string { return []string{c.Name} }),
//	        matchsort.KeyFn(func(c Contact) []string { return []string{c.Email} }),
//	    },
//	})
//
// Map- and JSON-shaped items can use dotted paths instead, including "*"
// segments that fan out across arrays:
//
//	matchsort.Sort(rows, "twain", matchsort.Options[map[string]any]{
//	    Keys: []matchsort.KeySpec[map[string]any]{
//	        matchsort.Key[map[string]any]("author.name"),
//	        matchsort.Key[map[string]any]("tags.*"),
//	    },
//	})
//
// Items that are strings, byte slices, or json.RawMessage holding valid
// JSON are traversed as documents, so newline-delimited JSON ranks without
// decoding first.
//
// # Ordering
//
// Results sort by rank descending, then by key position (earlier keys
// win), then by the BaseSort comparator. The default comparator orders
// winning values lexicographically; CompareOriginalIndex preserves input
// order instead, and CollateRankedValues builds locale-aware comparators.
// Items a comparator cannot distinguish keep their input order.
//
// # Thread Safety
//
// Sorting never mutates its inputs and keeps no state between calls, so
// all functions are safe for concurrent use as long as injected callbacks
// are too.
package matchsort
