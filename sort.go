package matchsort

import (
	"sort"

	"github.com/dshills/matchsort/normalize"
)

// RankedItem pairs an item with the metadata of its winning match.
type RankedItem[T any] struct {
	// Item is the original collection member, untouched.
	Item T
	// Index is the item's position in the input collection.
	Index int
	// Rank is the winning grade across all keys.
	Rank Rank
	// KeyIndex is the position of the key that produced the winning
	// grade, or -1 when the item itself was ranked.
	KeyIndex int
	// Threshold is the effective inclusion threshold that applied to the
	// winning key.
	Threshold Rank
	// RankedValue is the candidate string the winning grade was given to.
	RankedValue string
}

// Options configures ranking, filtering, and ordering for one call. The
// zero value ranks items as plain strings at the default threshold.
type Options[T any] struct {
	// Keys extracts candidate strings from each item. Empty means the
	// item itself, stringified, is the only candidate.
	Keys []KeySpec[T]

	// Threshold is the minimum grade a winning match needs for its item
	// to stay in the result. Zero means RankMatches; ThresholdAll keeps
	// every item.
	Threshold Rank

	// BaseSort breaks ties among records with equal rank and key index.
	// Nil means CompareRankedValues. Records that also tie under BaseSort
	// keep their input order.
	BaseSort func(a, b *RankedItem[T]) int

	// Sorter replaces the whole ordering step. It receives the filtered
	// records and returns them in final order. Nil means the default
	// rank, key index, BaseSort ordering.
	Sorter func([]RankedItem[T]) []RankedItem[T]

	RankOptions
}

// Sort ranks items against query and returns the ones that match, best
// first. The input slice is never mutated; the result is a fresh slice.
func Sort[T any](items []T, query string, opts Options[T]) []T {
	ranked := SortRanked(items, query, opts)
	out := make([]T, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].Item
	}
	return out
}

// Strings ranks plain strings with default options.
func Strings(items []string, query string) []string {
	return Sort(items, query, Options[string]{})
}

// SortRanked is Sort with the winning-match metadata kept on each record.
//
// An empty query skips ranking and filtering entirely: every item comes
// back, ordered by BaseSort alone.
func SortRanked[T any](items []T, query string, opts Options[T]) []RankedItem[T] {
	for _, k := range opts.Keys {
		k.validate()
	}

	globalThreshold := opts.Threshold
	if globalThreshold == 0 {
		globalThreshold = RankMatches
	}

	ranked := make([]RankedItem[T], 0, len(items))
	if query == "" {
		for i, item := range items {
			ranked = append(ranked, passthrough(item, i, opts))
		}
	} else {
		for i, item := range items {
			r := rankItem(item, i, query, opts)
			if r.Threshold == 0 {
				r.Threshold = globalThreshold
			}
			if r.Rank >= r.Threshold {
				ranked = append(ranked, r)
			}
		}
	}

	if opts.Sorter != nil {
		return opts.Sorter(ranked)
	}
	orderRanked(ranked, opts.BaseSort)
	return ranked
}

// rankItem grades every candidate of item and keeps the single best. Only
// a strictly greater grade replaces the running best, so the first
// candidate of the earliest key wins exact ties.
func rankItem[T any](item T, index int, query string, opts Options[T]) RankedItem[T] {
	best := RankedItem[T]{Item: item, Index: index, KeyIndex: -1}

	if len(opts.Keys) == 0 {
		text := normalize.Stringify(item)
		best.Rank = RankOf(text, query, opts.RankOptions)
		best.RankedValue = text
		return best
	}

	for ki, key := range opts.Keys {
		for _, candidate := range key.candidates(item) {
			rank := RankOf(candidate, query, opts.RankOptions)
			if key.MinRank > 0 && rank < key.MinRank && rank >= RankMatches {
				rank = key.MinRank
			} else if key.MaxRank > 0 && rank > key.MaxRank {
				rank = key.MaxRank
			}
			if rank > best.Rank {
				best.Rank = rank
				best.KeyIndex = ki
				best.Threshold = key.Threshold
				best.RankedValue = candidate
			}
		}
	}
	return best
}

// passthrough builds the record for an item when no ranking happens. The
// ranked value falls back to the first extractable candidate so ordering
// still has something to compare.
func passthrough[T any](item T, index int, opts Options[T]) RankedItem[T] {
	r := RankedItem[T]{Item: item, Index: index, KeyIndex: -1, Threshold: ThresholdAll}
	if len(opts.Keys) == 0 {
		r.RankedValue = normalize.Stringify(item)
		return r
	}
	for _, key := range opts.Keys {
		if vals := key.candidates(item); len(vals) > 0 {
			r.RankedValue = vals[0]
			break
		}
	}
	return r
}

// orderRanked sorts records by rank descending, then key order, then
// BaseSort. The sort is stable, so full ties keep input order.
func orderRanked[T any](ranked []RankedItem[T], baseSort func(a, b *RankedItem[T]) int) {
	if baseSort == nil {
		baseSort = CompareRankedValues[T]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		if a.KeyIndex != b.KeyIndex {
			return a.KeyIndex < b.KeyIndex
		}
		return baseSort(a, b) < 0
	})
}
