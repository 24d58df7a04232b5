// Package script runs user-supplied Lua extractors as ranking keys.
//
// A script defines a global extract(item) function and returns a string,
// an array of strings, or nil for no candidates. Items cross into Lua the
// way ranking sees them: maps and slices become tables, structs flatten
// to tables by field name or json tag, and string items holding JSON
// objects or arrays arrive parsed.
package script

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/matchsort"
)

// Extractor owns a Lua state whose chunk defines extract(item). States
// are not safe for concurrent use, so calls serialize on a mutex.
type Extractor struct {
	mu    sync.Mutex
	state *lua.LState
	fn    *lua.LFunction
}

// Load compiles the Lua file at path.
func Load(path string) (*Extractor, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: %w", err)
	}
	return newExtractor(L)
}

// LoadString compiles src as a Lua chunk.
func LoadString(src string) (*Extractor, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("script: %w", err)
	}
	return newExtractor(L)
}

func newExtractor(L *lua.LState) (*Extractor, error) {
	fn, ok := L.GetGlobal("extract").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script: chunk does not define extract(item)")
	}
	return &Extractor{state: L, fn: fn}, nil
}

// Close releases the Lua state.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Close()
}

// Extract runs extract(item) and returns the candidate strings it yields.
func (e *Extractor) Extract(item any) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.state.CallByParam(lua.P{Fn: e.fn, NRet: 1, Protect: true}, e.toLua(item))
	if err != nil {
		return nil, fmt.Errorf("script: extract: %w", err)
	}
	ret := e.state.Get(-1)
	e.state.Pop(1)
	return fromLua(ret)
}

// KeyFor adapts an extractor into a key specification. Extraction errors
// yield no candidates for the item.
func KeyFor[T any](e *Extractor) matchsort.KeySpec[T] {
	return matchsort.KeyFn(func(item T) []string {
		vals, err := e.Extract(item)
		if err != nil {
			return nil
		}
		return vals
	})
}

func (e *Extractor) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		if doc, ok := parseDocument(val); ok {
			return e.toLua(doc)
		}
		return lua.LString(val)
	case []byte:
		if doc, ok := parseDocument(string(val)); ok {
			return e.toLua(doc)
		}
		return lua.LString(val)
	case json.RawMessage:
		if doc, ok := parseDocument(string(val)); ok {
			return e.toLua(doc)
		}
		return lua.LString(string(val))
	case gjson.Result:
		return e.toLua(val.Value())
	case []any:
		t := e.state.NewTable()
		for i, el := range val {
			t.RawSetInt(i+1, e.toLua(el))
		}
		return t
	case []string:
		t := e.state.NewTable()
		for i, el := range val {
			t.RawSetInt(i+1, lua.LString(el))
		}
		return t
	case map[string]any:
		t := e.state.NewTable()
		for k, el := range val {
			t.RawSetString(k, e.toLua(el))
		}
		return t
	case map[string]string:
		t := e.state.NewTable()
		for k, el := range val {
			t.RawSetString(k, lua.LString(el))
		}
		return t
	}
	return e.reflectToLua(v)
}

// parseDocument decodes s when it holds a JSON object or array. Scalar
// JSON stays a plain string so numeric-looking items survive untouched.
func parseDocument(s string) (any, bool) {
	if !gjson.Valid(s) {
		return nil, false
	}
	r := gjson.Parse(s)
	if !r.IsObject() && !r.IsArray() {
		return nil, false
	}
	return r.Value(), true
}

func (e *Extractor) reflectToLua(v any) lua.LValue {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return lua.LNil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return lua.LNil
		}
		return e.reflectToLua(rv.Elem().Interface())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := e.state.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, e.toLua(rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := e.state.NewTable()
		for _, key := range rv.MapKeys() {
			t.RawSet(e.toLua(key.Interface()), e.toLua(rv.MapIndex(key).Interface()))
		}
		return t
	case reflect.Struct:
		return e.structToTable(rv)
	}
	return lua.LString(fmt.Sprint(v))
}

func (e *Extractor) structToTable(rv reflect.Value) *lua.LTable {
	t := e.state.NewTable()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
			if c := strings.IndexByte(tag, ','); c >= 0 {
				tag = tag[:c]
			}
			if tag != "" {
				name = tag
			}
		}
		t.RawSetString(name, e.toLua(rv.Field(i).Interface()))
	}
	return t
}

// fromLua turns the script's return value into candidate strings. Nested
// tables flatten; nils inside tables are skipped.
func fromLua(lv lua.LValue) ([]string, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case lua.LNumber:
		return []string{numberString(float64(v))}, nil
	case lua.LBool:
		if v {
			return []string{"true"}, nil
		}
		return []string{"false"}, nil
	case *lua.LTable:
		var out []string
		n := v.Len()
		for i := 1; i <= n; i++ {
			el := v.RawGetInt(i)
			if el == lua.LNil {
				continue
			}
			vals, err := fromLua(el)
			if err != nil {
				return nil, err
			}
			out = append(out, vals...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("script: extract returned %s, want string, table, or nil", lv.Type())
}

func numberString(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
