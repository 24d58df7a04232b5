package matchsort

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareRankedValues orders records by their winning candidate strings,
// byte-wise lexicographic. It is the default BaseSort.
func CompareRankedValues[T any](a, b *RankedItem[T]) int {
	return strings.Compare(a.RankedValue, b.RankedValue)
}

// CompareOriginalIndex keeps records in input order. Use it as BaseSort
// when equal matches should not be reordered alphabetically.
func CompareOriginalIndex[T any](a, b *RankedItem[T]) int {
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	}
	return 0
}

// CollateRankedValues orders winning candidate strings with the collation
// rules of tag. Collators carry internal buffers, so the returned
// comparator serves one Sort call at a time.
func CollateRankedValues[T any](tag language.Tag) func(a, b *RankedItem[T]) int {
	c := collate.New(tag)
	return func(a, b *RankedItem[T]) int {
		return c.CompareString(a.RankedValue, b.RankedValue)
	}
}
