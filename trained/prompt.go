package trained

import (
	"fmt"
	"strings"
)

// SystemPrompt renders a compact model-facing description of cfg (spec
// §4.9): the correlation id and anchor, then the key list and any
// dictionary tables for the root schema and every nested sub-schema,
// kept under roughly 200 tokens for typical schemas by listing only
// names, never describing the format's grammar itself (the model is
// assumed to already have been given that separately).
func SystemPrompt(cfg *Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@AGON trained c=%s v=%s\n", cfg.CID, cfg.V)
	writePromptNode(&b, "d", cfg.Schema)
	return b.String()
}

func writePromptNode(b *strings.Builder, path string, node *SchemaNode) {
	fmt.Fprintf(b, "%s: %s\n", path, strings.Join(node.Keys, ", "))
	for _, k := range node.Keys {
		if dict, ok := node.Dicts[k]; ok {
			fmt.Fprintf(b, "dict %s.%s: %s\n", path, k, strings.Join(dict, ", "))
		}
	}
	for _, k := range node.Keys {
		if sub, ok := node.Subs[k]; ok {
			writePromptNode(b, path+"."+k, sub)
		}
	}
}
