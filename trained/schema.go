package trained

import "github.com/google/jsonschema-go/jsonschema"

// JSONSchema renders a strict, OpenAI structured-outputs compatible JSON
// Schema describing every packet EncodeTrained can produce for cfg (spec
// §4.9): "d" is an array of rows, each row a tuple (`prefixItems`) with
// one slot per schema key, each slot accepting the missing sentinel,
// null, or the key's type-specific shape.
func JSONSchema(cfg *Config) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"_f": {Type: "string", Const: constPtr("a")},
			"c":  {Type: "string", Const: constPtr(cfg.CID)},
			"v":  {Type: "string", Const: constPtr(cfg.V)},
			"d":  {Type: "array", Items: rowSchema(cfg.Schema)},
		},
		PropertyOrder:        []string{"_f", "c", "v", "d"},
		Required:             []string{"_f", "c", "v", "d"},
		AdditionalProperties: falseSchema(),
	}
}

func rowSchema(node *SchemaNode) *jsonschema.Schema {
	prefix := make([]*jsonschema.Schema, len(node.Keys))
	for i, k := range node.Keys {
		prefix[i] = fieldSchema(node, k)
	}
	return &jsonschema.Schema{
		Type:        "array",
		PrefixItems: prefix,
		Items:       falseSchema(),
	}
}

// fieldSchema builds one prefix-item slot's schema: always anyOf the
// missing sentinel, null, and the key's type-specific shape, per spec
// §4.9's "each prefix-item is anyOf[ missing_sentinel_schema, null,
// <type-specific schema>, ... ]".
func fieldSchema(node *SchemaNode, key string) *jsonschema.Schema {
	options := []*jsonschema.Schema{missingSentinelSchema(), {Type: "null"}}
	switch node.Types[key] {
	case KindObj:
		options = append(options, rowSchema(node.Subs[key]))
	case KindList:
		options = append(options, &jsonschema.Schema{Type: "array", Items: rowSchema(node.Subs[key])})
	case KindStr:
		options = append(options, &jsonschema.Schema{Type: "string"})
	case KindDict:
		// Either the dictionary hit (a negative pointer) or the raw
		// string, when the value did not hit the dictionary table.
		options = append(options, &jsonschema.Schema{Type: "string"}, &jsonschema.Schema{Type: "integer"})
	default:
		options = append(options, &jsonschema.Schema{})
	}
	return &jsonschema.Schema{AnyOf: options}
}

func missingSentinelSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{"_m": {Const: constPtr(int64(1))}},
		Required:             []string{"_m"},
		AdditionalProperties: falseSchema(),
	}
}

func falseSchema() *jsonschema.Schema { return &jsonschema.Schema{Not: &jsonschema.Schema{}} }

func constPtr[T any](v T) *any {
	a := any(v)
	return &a
}
