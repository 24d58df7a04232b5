package matchsort

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"

	"github.com/dshills/matchsort/normalize"
)

// extractPath resolves a dotted path against an item and returns the
// stringified leaf values. Missing or null branches yield nothing.
func extractPath(item any, path string) []string {
	root, ok := nodeOf(item)
	if !ok {
		return nil
	}
	if vals, found := direct(root, path); found {
		return vals
	}
	if !strings.Contains(path, ".") && !strings.ContainsAny(path, "*?") {
		return nil
	}

	nodes := []node{root}
	for _, seg := range strings.Split(path, ".") {
		next := make([]node, 0, len(nodes))
		for _, n := range nodes {
			next = step(n, seg, next)
		}
		nodes = next
		if len(nodes) == 0 {
			return nil
		}
	}

	var out []string
	for _, n := range nodes {
		out = append(out, leafValues(n)...)
	}
	return out
}

// node is one position in an item's value tree: a decoded Go value or a
// spot inside a JSON document.
type node interface {
	// lookup resolves a literal key or array index. found reports whether
	// the container had the key at all; null values report found with no
	// nodes.
	lookup(key string) (nodes []node, found bool)
	// elements returns array members, skipping nulls. ok reports whether
	// the node is an array.
	elements() (elems []node, ok bool)
	// globKeys returns the values of object keys matching pattern.
	globKeys(pattern string) []node
	// leaf renders the node as a candidate string.
	leaf() string
}

// nodeOf roots the walk for an item. Strings, byte slices, and raw
// messages holding valid JSON walk as documents; decoded maps and slices
// walk directly. Anything else yields no values.
func nodeOf(item any) (node, bool) {
	switch v := item.(type) {
	case nil:
		return nil, false
	case gjson.Result:
		return jsonNode{v}, true
	case json.RawMessage:
		if !gjson.ValidBytes(v) {
			return nil, false
		}
		return jsonNode{gjson.ParseBytes(v)}, true
	case []byte:
		if !gjson.ValidBytes(v) {
			return nil, false
		}
		return jsonNode{gjson.ParseBytes(v)}, true
	case string:
		if !gjson.Valid(v) {
			return nil, false
		}
		return jsonNode{gjson.Parse(v)}, true
	case map[string]any, map[string]string, []any, []string:
		return goNode{v}, true
	}
	return nil, false
}

// direct serves the whole path as one literal key, so keys spelled with
// dots or glob characters win over the segmented walk.
func direct(root node, path string) ([]string, bool) {
	nodes, found := root.lookup(path)
	if !found {
		return nil, false
	}
	var out []string
	for _, n := range nodes {
		out = append(out, leafValues(n)...)
	}
	return out, true
}

// step advances one path segment from n, appending results to acc. A "*"
// segment spreads arrays and passes anything else through unchanged.
func step(n node, seg string, acc []node) []node {
	if nodes, found := n.lookup(seg); found {
		return append(acc, nodes...)
	}
	if seg == "*" {
		if elems, ok := n.elements(); ok {
			return append(acc, elems...)
		}
		return append(acc, n)
	}
	if strings.ContainsAny(seg, "*?") {
		return append(acc, n.globKeys(seg)...)
	}
	return acc
}

// leafValues stringifies a terminal node, flattening one level of arrays.
func leafValues(n node) []string {
	if elems, ok := n.elements(); ok {
		out := make([]string, 0, len(elems))
		for _, e := range elems {
			out = append(out, e.leaf())
		}
		return out
	}
	return []string{n.leaf()}
}

// goNode walks decoded Go values: the map and slice shapes produced by
// encoding/json, plus their string-typed variants.
type goNode struct{ v any }

func (n goNode) lookup(key string) ([]node, bool) {
	switch v := n.v.(type) {
	case map[string]any:
		val, ok := v[key]
		if !ok {
			return nil, false
		}
		if val == nil {
			return nil, true
		}
		return []node{goNode{val}}, true
	case map[string]string:
		val, ok := v[key]
		if !ok {
			return nil, false
		}
		return []node{goNode{val}}, true
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		if v[i] == nil {
			return nil, true
		}
		return []node{goNode{v[i]}}, true
	case []string:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return []node{goNode{v[i]}}, true
	}
	return nil, false
}

func (n goNode) elements() ([]node, bool) {
	switch v := n.v.(type) {
	case []any:
		elems := make([]node, 0, len(v))
		for _, el := range v {
			if el == nil {
				continue
			}
			elems = append(elems, goNode{el})
		}
		return elems, true
	case []string:
		elems := make([]node, 0, len(v))
		for _, el := range v {
			elems = append(elems, goNode{el})
		}
		return elems, true
	}
	return nil, false
}

func (n goNode) globKeys(pattern string) []node {
	// Map iteration order is not stable, so matched keys sort first.
	switch v := n.v.(type) {
	case map[string]any:
		var keys []string
		for k := range v {
			if match.Match(k, pattern) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var out []node
		for _, k := range keys {
			if v[k] != nil {
				out = append(out, goNode{v[k]})
			}
		}
		return out
	case map[string]string:
		var keys []string
		for k := range v {
			if match.Match(k, pattern) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var out []node
		for _, k := range keys {
			out = append(out, goNode{v[k]})
		}
		return out
	}
	return nil
}

func (n goNode) leaf() string {
	return normalize.Stringify(n.v)
}

// jsonNode walks positions inside a parsed JSON document.
type jsonNode struct{ r gjson.Result }

func (n jsonNode) lookup(key string) ([]node, bool) {
	if n.r.IsObject() {
		var out []node
		found := false
		n.r.ForEach(func(k, v gjson.Result) bool {
			if k.String() != key {
				return true
			}
			found = true
			if v.Type != gjson.Null {
				out = append(out, jsonNode{v})
			}
			return false
		})
		return out, found
	}
	if n.r.IsArray() {
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil, false
		}
		arr := n.r.Array()
		if i < 0 || i >= len(arr) {
			return nil, false
		}
		if arr[i].Type == gjson.Null {
			return nil, true
		}
		return []node{jsonNode{arr[i]}}, true
	}
	return nil, false
}

func (n jsonNode) elements() ([]node, bool) {
	if !n.r.IsArray() {
		return nil, false
	}
	arr := n.r.Array()
	elems := make([]node, 0, len(arr))
	for _, el := range arr {
		if el.Type == gjson.Null {
			continue
		}
		elems = append(elems, jsonNode{el})
	}
	return elems, true
}

func (n jsonNode) globKeys(pattern string) []node {
	if !n.r.IsObject() {
		return nil
	}
	var out []node
	n.r.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.Null && match.Match(k.String(), pattern) {
			out = append(out, jsonNode{v})
		}
		return true
	})
	return out
}

func (n jsonNode) leaf() string {
	return n.r.String()
}
