package matchsort

// KeySpec describes how candidate strings are pulled out of an item and
// how matches found through them are graded.
//
// Exactly one of Path and Func must be set; Sort panics on a spec that
// sets both or neither.
type KeySpec[T any] struct {
	// Path addresses values inside map- or JSON-shaped items, with
	// segments separated by dots. A "*" segment fans out across array
	// elements; other segments containing "*" or "?" match object keys
	// as glob patterns. A literal key spelled like a dotted or glob path
	// wins over the segmented walk.
	Path string

	// Func extracts candidate strings from the item directly.
	Func func(T) []string

	// Threshold overrides the global threshold for matches found through
	// this key. Zero inherits the global value.
	Threshold Rank

	// MinRank raises matching candidates found through this key to at
	// least the given grade. Candidates below RankMatches are never
	// raised. Zero disables the floor.
	MinRank Rank

	// MaxRank caps candidates found through this key at the given grade.
	// Zero disables the cap.
	MaxRank Rank
}

// Key addresses candidate values by path.
func Key[T any](path string) KeySpec[T] { return KeySpec[T]{Path: path} }

// KeyFn extracts candidate values with fn.
func KeyFn[T any](fn func(T) []string) KeySpec[T] { return KeySpec[T]{Func: fn} }

func (k KeySpec[T]) validate() {
	if k.Path != "" && k.Func != nil {
		panic("matchsort: key spec sets both Path and Func")
	}
	if k.Path == "" && k.Func == nil {
		panic("matchsort: key spec sets neither Path nor Func")
	}
}

// candidates returns the strings this key yields for item, in extraction
// order.
func (k KeySpec[T]) candidates(item T) []string {
	if k.Func != nil {
		return k.Func(item)
	}
	return extractPath(item, k.Path)
}
