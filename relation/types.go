package relation

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid (zero) kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindArray represents an array value.
	KindArray
	// KindObject represents a nested object value.
	KindObject
)

// Value is a small typed value stored in a row field.
//
// The representation is designed to make equality checks fast and
// predictable: no reflection and no fmt-based stringification. Every kind is
// preserved exactly across encode/decode, so strict comparisons behave the
// same before and after a round trip through any codec.
//
// NOTE: This is also the persisted form; keep the field tags stable.
type Value struct {
	Kind Kind             `json:"k" msgpack:"k"`
	I64  int64            `json:"i,omitempty" msgpack:"i,omitempty"`
	F64  float64          `json:"f,omitempty" msgpack:"f,omitempty"`
	S    string           `json:"s,omitempty" msgpack:"s,omitempty"`
	B    bool             `json:"b,omitempty" msgpack:"b,omitempty"`
	A    []Value          `json:"a,omitempty" msgpack:"a,omitempty"`
	O    map[string]Value `json:"o,omitempty" msgpack:"o,omitempty"`
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Array returns an array Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Object returns a nested object Value.
func Object(v map[string]Value) Value { return Value{Kind: KindObject, O: v} }

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsArray returns the array value if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.A, true
}

// AsObject returns the nested object value if Kind is KindObject.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	return v.O, true
}

// Truthy reports whether the value counts as present for projection.
//
// Null, the empty string, integer and float zero, NaN, boolean false and the
// zero Value are all treated as absent. Arrays and objects are always truthy,
// even when empty. This mirrors a truthiness test over scalars and is
// load-bearing: projection silently drops present-but-falsy fields, which is
// observably different from the field being absent.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindInt:
		return v.I64 != 0
	case KindFloat:
		return v.F64 != 0 && !math.IsNaN(v.F64)
	case KindString:
		return v.S != ""
	case KindBool:
		return v.B
	case KindArray, KindObject:
		return true
	default:
		// KindInvalid, KindNull
		return false
	}
}

// Key returns a stable string grouping key for the value. Values that compare
// equal under Equal always share a key. The converse does not hold: string
// content may collide with the separator bytes, and NaNs share a key without
// comparing equal. Duplicate elimination therefore confirms key matches with
// Equal instead of trusting the key alone.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		bits := math.Float64bits(v.F64)
		if v.F64 == 0 {
			// Negative zero compares equal to zero and must share its key.
			bits = 0
		}
		return "f:" + strconv.FormatUint(bits, 16)
	case KindString:
		return "s:" + v.S
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindArray:
		if len(v.A) == 0 {
			return "a:"
		}
		parts := make([]string, len(v.A))
		for i := range v.A {
			parts[i] = v.A[i].Key()
		}
		return "a:" + strings.Join(parts, "\x1f")
	case KindObject:
		if len(v.O) == 0 {
			return "o:"
		}
		names := make([]string, 0, len(v.O))
		for name := range v.O {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + "\x1e" + v.O[name].Key()
		}
		return "o:" + strings.Join(parts, "\x1f")
	default:
		return "invalid"
	}
}

// clone creates a deep copy of a Value, including nested arrays and objects.
func (v Value) clone() Value {
	if v.Kind == KindArray && len(v.A) > 0 {
		arr := make([]Value, len(v.A))
		for i := range v.A {
			arr[i] = v.A[i].clone()
		}
		v.A = arr
		return v
	}
	if v.Kind == KindObject && len(v.O) > 0 {
		obj := make(map[string]Value, len(v.O))
		for k, ov := range v.O {
			obj[k] = ov.clone()
		}
		v.O = obj
		return v
	}
	// Scalars are copied by value semantics.
	return v
}

// Row is one record: a mapping from field name to Value. There is no schema;
// a field may be absent from any given row, and no row is required to share
// its field set with any other row.
type Row map[string]Value

// Clone creates a deep copy of the row.
//
// This is the safe default to prevent external mutation after Insert. Values
// are deep copied, including arrays and nested objects.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	clone := make(Row, len(r))
	for k, v := range r {
		clone[k] = v.clone()
	}
	return clone
}

// Merge returns a new row holding the field union of r and other. Fields from
// other overwrite same-named fields from r. Neither input is modified.
func (r Row) Merge(other Row) Row {
	merged := make(Row, len(r)+len(other))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Equal reports whether r and other are structural duplicates: the same field
// set, with every value strictly equal. This is the duplicate rule applied by
// unions and full joins.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Key returns a stable string grouping key for the row: field names in sorted
// order, each paired with its value key. Duplicate rows always share a key;
// distinct rows may collide on it, so callers confirm matches with Equal.
func (r Row) Key() string {
	if len(r) == 0 {
		return ""
	}
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "\x1e" + r[name].Key()
	}
	return strings.Join(parts, "\x1f")
}

// Table is an ordered sequence of rows. Position is the row's only identity:
// removing row i shifts all subsequent indices down by one, and insertion
// always appends.
type Table []Row

// Clone creates a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	clone := make(Table, len(t))
	for i, r := range t {
		clone[i] = r.Clone()
	}
	return clone
}
