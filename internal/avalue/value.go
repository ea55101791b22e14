// Package avalue implements the shared value model and scalar/quoting
// grammar used by every AGON codec: the tagged Value union, an
// order-preserving object map, and the text<->scalar conversion rules.
package avalue

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value variants. Closed set; no open inheritance is needed (spec §9).
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindArray
	KindObject
)

// Value is the tagged union shared by every codec: Null, Bool, Int,
// Float, Str, Array or Object. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Array []Value
	Obj   *Object
}

// Null is the shared null value.
var Null = Value{Kind: KindNull}

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewInt wraps an int64.
func NewInt(i int64) Value { return Value{Kind: KindInt, Int: i} }

// NewFloat wraps a float64. Non-finite values (NaN, ±Inf) collapse to
// Null per spec §3.
func NewFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return Value{Kind: KindFloat, Float: f}
}

// NewStr wraps a string.
func NewStr(s string) Value { return Value{Kind: KindStr, Str: s} }

// NewArray wraps an array of values.
func NewArray(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }

// NewObject wraps an ordered object.
func NewObject(o *Object) Value { return Value{Kind: KindObject, Obj: o} }

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Object is an insertion-ordered string-keyed map. Object semantics
// require order preservation for rows/columns/struct emission (spec §9);
// a plain Go map cannot provide that, so callers must use this type
// instead of map[string]Value.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewOrderedObject returns an empty ordered object.
func NewOrderedObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or updates key, appending it to Keys() on first insertion.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns keys in insertion order. Callers must not mutate the
// returned slice.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Clone returns a deep-enough copy suitable for independent mutation of
// key order (values are not deep-copied since Value is immutable by
// convention for the duration of a call, per spec §3's Lifecycle note).
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether a and b represent the same JSON value, including
// object key sets (order is not significant for equality, only for
// emission).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		// Int/Float cross-kind numeric equality is not attempted: JSON
		// round-tripping through AGON preserves the distinction between
		// an integral literal and a float literal (spec §8 round-trip
		// invariant operates over values produced by json.Unmarshal,
		// which already makes this distinction via json.Number use in
		// this codebase).
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindStr:
		return a.Str == b.Str
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.Obj.Len() != b.Obj.Len() {
			return false
		}
		for _, k := range a.Obj.Keys() {
			av, _ := a.Obj.Get(k)
			bv, ok := b.Obj.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FormatScalar renders a non-container Value per spec §4.1: null/bool as
// literals, integers as decimal, finite floats with the shortest
// round-trip decimal (with ".0" appended when that decimal has neither a
// '.' nor an exponent, so it reads back as a float, not an integer),
// non-finite floats as "null" (handled already at construction by
// NewFloat, so this never sees NaN/Inf).
func FormatScalar(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	case KindStr:
		return v.Str
	default:
		panic(fmt.Sprintf("avalue: FormatScalar called on container kind %d", v.Kind))
	}
}

// IsScalar reports whether v is a Null/Bool/Int/Float/Str (i.e. not a
// container).
func (v Value) IsScalar() bool {
	return v.Kind != KindArray && v.Kind != KindObject
}
