package agon

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genScalar produces one of the leaf kinds the grammar must round-trip
// byte for byte: bool, int, float, and string (including the
// lookalike-literal and embedded-delimiter boundary cases spec §8 calls
// out).
func genScalar() gopter.Gen {
	return gen.OneGenOf(
		gen.Bool().Map(func(b bool) Value { return Bool(b) }),
		gen.IntRange(-1_000_000, 1_000_000).Map(func(n int) Value { return Int(int64(n)) }),
		gen.Float64Range(-1e6, 1e6).Map(func(f float64) Value { return Float(f) }),
		genLeafString().Map(func(s string) Value { return Str(s) }),
	)
}

// genLeafString mixes plain alpha strings with the quoting-boundary
// cases spec §8 calls out: embedded delimiter/newline/quote and
// lookalike numbers/bools/null.
func genLeafString() gopter.Gen {
	return gen.OneGenOf(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf(
			"true", "false", "null", "123", "-4.5",
			"has\ttab", "has\nnewline", `has"quote`, "leading and trailing ",
		),
	)
}

// genValue builds a Value tree bounded to depth levels of nesting, so
// the generated corpus always terminates.
func genValue(depth int) gopter.Gen {
	if depth <= 0 {
		return genScalar()
	}
	return gen.OneGenOf(
		genScalar(),
		genScalar(),
		genArray(depth-1),
		genObject(depth-1),
	)
}

func genArray(depth int) gopter.Gen {
	return gen.IntRange(0, 4).FlatMap(func(n any) gopter.Gen {
		return gen.SliceOfN(n.(int), genValue(depth)).Map(func(elems []Value) Value {
			return Array(elems)
		})
	}, reflect.TypeOf(Value{}))
}

type fieldPair struct {
	key string
	val Value
}

func genField(depth int) gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		genValue(depth),
	).Map(func(vals []any) fieldPair {
		return fieldPair{key: vals[0].(string), val: vals[1].(Value)}
	})
}

func genObject(depth int) gopter.Gen {
	return gen.IntRange(0, 4).FlatMap(func(n any) gopter.Gen {
		return gen.SliceOfN(n.(int), genField(depth)).Map(func(fields []fieldPair) Value {
			obj := NewObject()
			seen := map[string]bool{}
			for _, f := range fields {
				if seen[f.key] {
					continue
				}
				seen[f.key] = true
				obj.Set(f.key, f.val)
			}
			return ObjectVal(obj)
		})
	}, reflect.TypeOf(Value{}))
}

func defaultProps() *gopter.Properties {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	return gopter.NewProperties(params)
}

// TestRoundTripProperty covers spec §8's central invariant:
// decode(encode(v, F)) == v for every fixed format, for any
// JSON-representable value.
func TestRoundTripProperty(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatRows, FormatColumns, FormatStruct} {
		f := f
		props := defaultProps()
		props.Property("decode(encode(v, "+string(f)+")) == v", prop.ForAll(
			func(v Value) bool {
				res, err := Encode(t.Context(), v, Options{Format: f})
				if err != nil {
					return false
				}
				got, err := Decode(res.Text)
				if err != nil {
					return false
				}
				return ValueEqual(v, got)
			},
			genObject(3),
		))
		props.TestingRun(t)
	}
}

// TestAutoRoundTripWithHeaderProperty covers
// decode(encode(v, "auto").with_header()) == v.
func TestAutoRoundTripWithHeaderProperty(t *testing.T) {
	props := defaultProps()
	props.Property("decode(encode(v, auto).with_header()) == v", prop.ForAll(
		func(v Value) bool {
			res, err := Encode(t.Context(), v, Options{})
			if err != nil {
				return false
			}
			got, err := Decode(res.WithHeader())
			if err != nil {
				return false
			}
			return ValueEqual(v, got)
		},
		genObject(3),
	))
	props.TestingRun(t)
}

// TestAutoNeverCostsMoreThanJSONProperty covers the selector's core
// cost guarantee, unless the min-savings threshold forced JSON back.
func TestAutoNeverCostsMoreThanJSONProperty(t *testing.T) {
	props := defaultProps()
	props.Property("auto candidate cost <= json candidate cost, or format falls back to json", prop.ForAll(
		func(v Value) bool {
			jsonRes, err := Encode(t.Context(), v, Options{Format: FormatJSON})
			if err != nil {
				return false
			}
			autoRes, err := Encode(t.Context(), v, Options{})
			if err != nil {
				return false
			}
			if autoRes.Format == FormatJSON {
				return true
			}
			return autoRes.Len() <= jsonRes.Len()
		},
		genObject(3),
	))
	props.TestingRun(t)
}
