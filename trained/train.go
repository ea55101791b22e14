package trained

import (
	"sort"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Option configures Train, mirroring spec §6's
// train(samples, cid, min_gain, amortize, max_dict_per_field,
// enum_like_only, max_enum_len) keyword defaults.
type Option func(*trainSettings)

type trainSettings struct {
	minGain         float64
	amortize        float64
	maxDictPerField int
	enumLikeOnly    bool
	maxEnumLen      int
	encoding        string
}

func defaultSettings() trainSettings {
	return trainSettings{
		minGain:         3.0,
		amortize:        50,
		maxDictPerField: 100,
		enumLikeOnly:    true,
		maxEnumLen:      64,
	}
}

// WithMinGain sets the minimum net token saving (summed per-field
// dictionary savings minus amortized prompt cost) required to upgrade a
// "str" field to "dict". Default 3.0.
func WithMinGain(g float64) Option { return func(s *trainSettings) { s.minGain = g } }

// WithAmortize sets the divisor applied to a dictionary's one-time
// prompt cost, modeling that cost spread across many future calls.
// Default 50.
func WithAmortize(a float64) Option { return func(s *trainSettings) { s.amortize = a } }

// WithMaxDictPerField caps how many distinct values a single field's
// dictionary may hold. Default 100.
func WithMaxDictPerField(n int) Option { return func(s *trainSettings) { s.maxDictPerField = n } }

// WithEnumLikeOnly restricts dictionary candidates to short values with
// no embedded tab/newline/carriage-return, per spec §4.9's safety
// filter. Default true.
func WithEnumLikeOnly(b bool) Option { return func(s *trainSettings) { s.enumLikeOnly = b } }

// WithMaxEnumLen sets the length ceiling enforced by WithEnumLikeOnly.
// Default 64.
func WithMaxEnumLen(n int) Option { return func(s *trainSettings) { s.maxEnumLen = n } }

// WithEncoding names the tokenizer encoding used to cost the dictionary
// upgrade decision; empty (the default) uses the byte-length proxy.
func WithEncoding(encoding string) Option { return func(s *trainSettings) { s.encoding = encoding } }

// Train induces a Config from a set of sample objects (spec §4.9). Every
// sample not representing a JSON object is ignored for key discovery;
// cid is the caller-chosen correlation id stored verbatim in Config and
// every encoded packet.
func Train(samples []Value, cid string, opts ...Option) (*Config, error) {
	settings := defaultSettings()
	for _, o := range opts {
		o(&settings)
	}
	schema, err := induce(samples, settings)
	if err != nil {
		return nil, err
	}
	return &Config{CID: cid, V: anchor(schema), Schema: schema}, nil
}

// induce builds one SchemaNode from a set of sibling sample objects,
// recursing into "obj"/"list" fields on their nested samples.
func induce(samples []Value, settings trainSettings) (*SchemaNode, error) {
	total := 0
	present := map[string]int{}
	valuesByKey := map[string][]Value{}
	var keyOrder []string
	seen := map[string]bool{}
	for _, s := range samples {
		if s.Kind != avalue.KindObject {
			continue
		}
		total++
		for _, k := range s.Obj.Keys() {
			if !seen[k] {
				seen[k] = true
				keyOrder = append(keyOrder, k)
			}
			v, _ := s.Obj.Get(k)
			present[k]++
			valuesByKey[k] = append(valuesByKey[k], v)
		}
	}

	node := &SchemaNode{
		Types: map[string]FieldKind{},
		Dicts: map[string][]string{},
		Subs:  map[string]*SchemaNode{},
	}
	for _, k := range keyOrder {
		kind, sub, dict, err := classify(k, valuesByKey[k], settings)
		if err != nil {
			return nil, err
		}
		node.Types[k] = kind
		if sub != nil {
			node.Subs[k] = sub
		}
		if dict != nil {
			node.Dicts[k] = dict
		}
	}

	// Dense-first ordering (spec §4.9): keys sorted by descending
	// presence fraction, ties broken by first-seen order so repeated
	// training of identical samples is deterministic (needed for the
	// canonical-JSON anchor invariant in spec §8).
	keys := append([]string(nil), keyOrder...)
	denom := total
	if denom == 0 {
		denom = 1
	}
	sort.SliceStable(keys, func(i, j int) bool {
		di := float64(present[keys[i]]) / float64(denom)
		dj := float64(present[keys[j]]) / float64(denom)
		return di > dj
	})
	node.Keys = keys
	return node, nil
}

// classify tags one key's field kind per spec §4.9's induction rule,
// recursing for "obj"/"list" and attempting a dictionary upgrade for
// uniformly-string fields. Explicit nulls are ignored for type
// detection: a null is always a valid occurrence of any field kind.
func classify(key string, vals []Value, settings trainSettings) (FieldKind, *SchemaNode, []string, error) {
	nonNull := make([]Value, 0, len(vals))
	for _, v := range vals {
		if v.Kind != avalue.KindNull {
			nonNull = append(nonNull, v)
		}
	}
	if len(nonNull) == 0 {
		return KindScalar, nil, nil, nil
	}
	if allKind(nonNull, avalue.KindObject) {
		sub, err := induce(nonNull, settings)
		if err != nil {
			return "", nil, nil, err
		}
		return KindObj, sub, nil, nil
	}
	if allArraysOfObjects(nonNull) {
		var concat []Value
		for _, v := range nonNull {
			concat = append(concat, v.Array...)
		}
		sub, err := induce(concat, settings)
		if err != nil {
			return "", nil, nil, err
		}
		return KindList, sub, nil, nil
	}
	if allKind(nonNull, avalue.KindStr) {
		if dict := maybeUpgradeDict(key, nonNull, settings); dict != nil {
			return KindDict, nil, dict, nil
		}
		return KindStr, nil, nil, nil
	}
	return KindScalar, nil, nil, nil
}

func allKind(vals []Value, k avalue.Kind) bool {
	for _, v := range vals {
		if v.Kind != k {
			return false
		}
	}
	return true
}

func allArraysOfObjects(vals []Value) bool {
	for _, v := range vals {
		if v.Kind != avalue.KindArray {
			return false
		}
		for _, e := range v.Array {
			if e.Kind != avalue.KindObject {
				return false
			}
		}
	}
	return true
}
