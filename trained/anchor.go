package trained

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// anchor computes spec §3's "v": the first 16 hex characters (8 bytes)
// of the SHA-256 hash of the schema's canonical JSON. Training identical
// samples twice must yield the same anchor regardless of the order keys
// were first discovered in, so the schema is first rendered as a Value
// and hashed through avalue.CanonicalJSON, which sorts object keys
// recursively; only the dense-first "keys" ordering itself survives
// as-is, and that ordering is already made deterministic by induce's
// stable sort (spec §8's canonical-JSON anchor invariant).
func anchor(node *SchemaNode) string {
	h := sha256.Sum256(avalue.CanonicalJSON(schemaToValue(node)))
	return hex.EncodeToString(h[:8])
}

func schemaToValue(node *SchemaNode) Value {
	obj := avalue.NewOrderedObject()
	obj.Set("keys", stringArray(node.Keys))

	types := avalue.NewOrderedObject()
	for _, k := range node.Keys {
		types.Set(k, avalue.NewStr(string(node.Types[k])))
	}
	obj.Set("types", avalue.NewObject(types))

	dicts := avalue.NewOrderedObject()
	for _, k := range node.Keys {
		if d, ok := node.Dicts[k]; ok {
			dicts.Set(k, stringArray(d))
		}
	}
	obj.Set("dicts", avalue.NewObject(dicts))

	subs := avalue.NewOrderedObject()
	for _, k := range node.Keys {
		if sub, ok := node.Subs[k]; ok {
			subs.Set(k, schemaToValue(sub))
		}
	}
	obj.Set("subs", avalue.NewObject(subs))

	return avalue.NewObject(obj)
}

func stringArray(ss []string) Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = avalue.NewStr(s)
	}
	return avalue.NewArray(out)
}
