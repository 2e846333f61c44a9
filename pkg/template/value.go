package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNone is the null value, also produced by unresolved variables.
	KindNone Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindFloat is a 64-bit float.
	KindFloat
	// KindString is a UTF-8 string.
	KindString
	// KindList is an ordered sequence of values.
	KindList
	// KindMap is a string-keyed mapping with stable insertion order.
	KindMap
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value is the tagged union all engine computation operates on. Values are
// immutable by convention: builtins construct new Values instead of mutating
// their inputs.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Map
}

// None is the null value.
var None = Value{kind: KindNone}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list value holding the given items.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// MapValue returns a map value. A nil map is treated as empty.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Map is a string-keyed mapping that preserves insertion order for
// serialization. Key order is not semantically significant.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Set stores v under key, preserving the position of an existing key.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the null value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Truth applies the truthiness rule: None is false, booleans are themselves,
// numeric zero is false, and empty strings/lists/maps are false.
func (v Value) Truth() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return v.m.Len() > 0
	}
	return false
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// AsInt returns the integer payload. Floats with an integral value and
// numeric strings convert.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), true
		}
	case KindString:
		if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return n, true
		}
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat returns the float payload, converting ints and numeric strings.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// AsString returns the string payload. Only string values convert; use
// String for canonical formatting of other kinds.
func (v Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

// AsList returns the list payload.
func (v Value) AsList() ([]Value, bool) {
	if v.kind == KindList {
		return v.list, true
	}
	return nil, false
}

// AsMap returns the map payload.
func (v Value) AsMap() (*Map, bool) {
	if v.kind == KindMap {
		return v.m, true
	}
	return nil, false
}

// Len returns the length of a string (in runes), list, or map.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case KindString:
		return len([]rune(v.s)), true
	case KindList:
		return len(v.list), true
	case KindMap:
		return v.m.Len(), true
	}
	return 0, false
}

// String returns the canonical textual form: booleans as true/false, floats
// without forced trailing zeros, lists and maps in their JSON-like form, and
// None as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindList, KindMap:
		var b strings.Builder
		v.appendJSON(&b, "", "")
		return b.String()
	}
	return ""
}

// JSON returns the compact JSON encoding of v, preserving map insertion
// order. None encodes as null.
func (v Value) JSON() string {
	var b strings.Builder
	v.appendJSON(&b, "", "")
	return b.String()
}

// JSONIndent returns the indented JSON encoding of v.
func (v Value) JSONIndent(indent string) string {
	var b strings.Builder
	v.appendJSON(&b, "", indent)
	return b.String()
}

func (v Value) appendJSON(b *strings.Builder, prefix, indent string) {
	nested := prefix + indent
	nl, sp := "", ""
	if indent != "" {
		nl, sp = "\n", " "
	}
	switch v.kind {
	case KindNone:
		b.WriteString("null")
	case KindBool, KindInt, KindFloat:
		b.WriteString(v.String())
	case KindString:
		b.WriteString(strconv.Quote(v.s))
	case KindList:
		if len(v.list) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[")
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(nl + nested)
			item.appendJSON(b, nested, indent)
		}
		b.WriteString(nl + prefix + "]")
	case KindMap:
		if v.m.Len() == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{")
		for i, key := range v.m.keys {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(nl + nested)
			b.WriteString(strconv.Quote(key))
			b.WriteString(":" + sp)
			v.m.entries[key].appendJSON(b, nested, indent)
		}
		b.WriteString(nl + prefix + "}")
	}
}

// Equal reports deep equality, promoting ints to floats when comparing mixed
// numeric kinds. Values of incomparable kinds are unequal.
func (v Value) Equal(other Value) bool {
	if v.isNumber() && other.isNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.i == other.i
		}
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		return a == b
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if v.m.Len() != other.m.Len() {
			return false
		}
		for key, val := range v.m.entries {
			o, ok := other.m.entries[key]
			if !ok || !val.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values: numbers numerically with Int-to-Float promotion,
// strings lexicographically. Other kind pairings are incomparable.
func (v Value) Compare(other Value) (int, error) {
	if v.isNumber() && other.isNumber() {
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	}
	if v.kind == KindString && other.kind == KindString {
		return strings.Compare(v.s, other.s), nil
	}
	return 0, typeErrorf(-1, "cannot order %s against %s", v.kind, other.kind)
}

func (v Value) isNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// FromAny converts a decoded Go value (as produced by encoding/json or
// yaml.v3) into a Value. Map key order follows a sorted traversal for
// map[string]interface{} inputs, since Go maps have no stable order.
func FromAny(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return None
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case string:
		return StringValue(t)
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return List(items...)
	case []Value:
		return List(t...)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return MapValue(m)
	case map[string]Value:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, t[k])
		}
		return MapValue(m)
	case Value:
		return t
	}
	return StringValue(fmt.Sprintf("%v", v))
}

// ToAny converts a Value back into plain Go types for the JSON/YAML boundary.
func (v Value) ToAny() interface{} {
	switch v.kind {
	case KindNone:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]interface{}, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, item.ToAny())
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, v.m.Len())
		for _, key := range v.m.keys {
			out[key] = v.m.entries[key].ToAny()
		}
		return out
	}
	return nil
}
