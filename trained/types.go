// Package trained implements the training-time schema-induction variant
// of AGON (spec §4.9): inducing a compact positional schema from sample
// objects, packing records against it with dictionary-encoded strings,
// anchoring the schema with a SHA-256 prefix so encoder and decoder agree
// on its shape, and emitting a JSON Schema / system-prompt pair a model
// can be instructed with directly.
package trained

import "github.com/kestrelfmt/agon/internal/avalue"

// Value is the shared tagged value every AGON codec operates on.
type Value = avalue.Value

// FieldKind tags how a schema key's values are represented in a packed
// row (spec §4.9's {scalar, str, dict, obj, list}).
type FieldKind string

// Field kinds, in the exact vocabulary spec §3's SchemaNode names.
const (
	KindScalar FieldKind = "scalar"
	KindStr    FieldKind = "str"
	KindDict   FieldKind = "dict"
	KindObj    FieldKind = "obj"
	KindList   FieldKind = "list"
)

// SchemaNode is one level of an induced schema (spec §3): keys in
// dense-first order, each key's FieldKind, optional dictionary tables for
// "dict" keys, and optional sub-schemas for "obj"/"list" keys.
type SchemaNode struct {
	Keys  []string
	Types map[string]FieldKind
	Dicts map[string][]string
	Subs  map[string]*SchemaNode
}

// Config binds an induced schema to a caller-chosen correlation id and
// its content anchor (spec §3's "Anchored config"). Config is a plain
// data value; callers may share it read-only across goroutines and
// reuse it for many encode_trained/decode_trained calls.
type Config struct {
	CID    string
	V      string
	Schema *SchemaNode
}
