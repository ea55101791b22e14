package agon

import (
	"encoding/json"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Value is the tagged JSON-shaped value every codec in this module
// encodes and decodes: Null, Bool, Int, Float, Str, Array or Object
// (spec §3). It is a type alias onto the shared internal representation
// so that rows, columns, structfmt and trained all operate on exactly
// the same type without importing one another.
type Value = avalue.Value

// Object is an insertion-ordered string-keyed map, required wherever
// object key order must survive a round trip (spec §9).
type Object = avalue.Object

// Constructors mirroring spec §3's tagged variants.
var (
	Null      = avalue.Null
	Bool      = avalue.NewBool
	Int       = avalue.NewInt
	Float     = avalue.NewFloat
	Str       = avalue.NewStr
	Array     = avalue.NewArray
	ObjectVal = avalue.NewObject
	NewObject = avalue.NewOrderedObject
)

// ValueEqual reports deep structural equality between two Values,
// ignoring object key order (used by the round-trip invariants in
// spec §8).
func ValueEqual(a, b Value) bool { return avalue.Equal(a, b) }

// ParseJSON decodes standard JSON text into a Value, preserving object
// key insertion order.
func ParseJSON(data []byte) (Value, error) {
	v, err := avalue.ParseJSON(data)
	if err != nil {
		return Value{}, newErr(ErrInvalidPayload, "invalid JSON: %v", err)
	}
	return v, nil
}

// MarshalJSON renders v as standard JSON, preserving object key order.
func MarshalJSON(v Value) ([]byte, error) { return avalue.ToJSON(v) }

// FromAny converts an arbitrary Go value (as produced by
// encoding/json.Unmarshal into `any`, or any json.Marshal-able value)
// into a Value. Because Go's map[string]any does not preserve insertion
// order, this round-trips through JSON text; callers that need to
// construct a Value with guaranteed key order should build it directly
// with NewObject/Object.Set or use ParseJSON on raw JSON text instead.
func FromAny(data any) (Value, error) {
	if v, ok := data.(Value); ok {
		return v, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Value{}, newErr(ErrInvalidPayload, "value is not JSON-serializable: %v", err)
	}
	return ParseJSON(b)
}

// ToAny converts a Value into native Go data (map[string]any / []any /
// string / int64 / float64 / bool / nil), suitable for further
// processing with encoding/json or reflection-based code.
func ToAny(v Value) any {
	switch v.Kind {
	case avalue.KindNull:
		return nil
	case avalue.KindBool:
		return v.Bool
	case avalue.KindInt:
		return v.Int
	case avalue.KindFloat:
		return v.Float
	case avalue.KindStr:
		return v.Str
	case avalue.KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = ToAny(e)
		}
		return out
	case avalue.KindObject:
		out := make(map[string]any, v.Obj.Len())
		for _, k := range v.Obj.Keys() {
			val, _ := v.Obj.Get(k)
			out[k] = ToAny(val)
		}
		return out
	default:
		return nil
	}
}
