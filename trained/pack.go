package trained

import (
	"fmt"

	"github.com/kestrelfmt/agon"
	"github.com/kestrelfmt/agon/internal/avalue"
	"github.com/kestrelfmt/agon/tokencount"
)

// missingSentinel is spec §3's reserved {"_m":1} marker for a
// not-present field inside a packed row.
func missingSentinel() Value {
	obj := avalue.NewOrderedObject()
	obj.Set("_m", avalue.NewInt(1))
	return avalue.NewObject(obj)
}

func isMissingSentinel(v Value) bool {
	if v.Kind != avalue.KindObject || v.Obj.Len() != 1 {
		return false
	}
	m, ok := v.Obj.Get("_m")
	return ok && m.Kind == avalue.KindInt && m.Int == 1
}

// Covers reports whether every key of every object in records (applied
// recursively through "obj"/"list" positions) is present in schema's key
// set, the coverage gate that spec §4.9 requires before a value may be
// packed at all.
func Covers(records []Value, schema *SchemaNode) bool {
	keySet := make(map[string]bool, len(schema.Keys))
	for _, k := range schema.Keys {
		keySet[k] = true
	}
	for _, r := range records {
		if r.Kind != avalue.KindObject {
			return false
		}
		for _, k := range r.Obj.Keys() {
			if !keySet[k] {
				return false
			}
			fv, _ := r.Obj.Get(k)
			if fv.Kind == avalue.KindNull {
				continue
			}
			switch schema.Types[k] {
			case KindObj:
				if fv.Kind != avalue.KindObject || !Covers([]Value{fv}, schema.Subs[k]) {
					return false
				}
			case KindList:
				if fv.Kind != avalue.KindArray || !Covers(fv.Array, schema.Subs[k]) {
					return false
				}
			}
		}
	}
	return true
}

// EncodeTrained renders v (an array of records conforming to cfg's root
// schema) as spec §4.9's packed positional packet, falling back to raw
// JSON when the coverage gate fails or, absent forceAGON, when the
// packet is not actually cheaper than JSON under encoding.
func EncodeTrained(v Value, cfg *Config, forceAGON bool, encoding string) (string, error) {
	if v.Kind != avalue.KindArray {
		return "", &agon.Error{Kind: agon.ErrInvalidPayload, Msg: "encode_trained requires an array of records"}
	}
	jsonBytes, err := avalue.ToJSON(v)
	if err != nil {
		return "", &agon.Error{Kind: agon.ErrInvalidPayload, Msg: err.Error()}
	}
	jsonText := string(jsonBytes)

	if !Covers(v.Array, cfg.Schema) {
		return jsonText, nil
	}

	rows := make([]Value, len(v.Array))
	for i, record := range v.Array {
		rows[i] = packRow(record, cfg.Schema)
	}
	packetText, err := buildPacket(cfg, rows)
	if err != nil {
		return "", &agon.Error{Kind: agon.ErrInvalidPayload, Msg: err.Error()}
	}
	if forceAGON {
		return packetText, nil
	}

	packetCost, err := tokencount.Count(packetText, encoding)
	if err != nil {
		return "", &agon.Error{Kind: agon.ErrEncodingUnavailable, Msg: err.Error()}
	}
	jsonCost, err := tokencount.Count(jsonText, encoding)
	if err != nil {
		return "", &agon.Error{Kind: agon.ErrEncodingUnavailable, Msg: err.Error()}
	}
	if packetCost < jsonCost {
		return packetText, nil
	}
	return jsonText, nil
}

func buildPacket(cfg *Config, rows []Value) (string, error) {
	obj := avalue.NewOrderedObject()
	obj.Set("_f", avalue.NewStr("a"))
	obj.Set("c", avalue.NewStr(cfg.CID))
	obj.Set("v", avalue.NewStr(cfg.V))
	obj.Set("d", avalue.NewArray(rows))
	b, err := avalue.ToJSON(avalue.NewObject(obj))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// packRow encodes one record against node per spec §4.9: missing ->
// sentinel, null -> null, "obj" -> a nested packed row, "list" -> an
// array of packed rows, "dict" -> a negative pointer when the string hit
// the dictionary (the raw string otherwise), else the value unchanged.
// Trailing sentinels are truncated, never interior ones.
func packRow(record Value, node *SchemaNode) Value {
	row := make([]Value, len(node.Keys))
	for i, k := range node.Keys {
		fv, present := record.Obj.Get(k)
		switch {
		case !present:
			row[i] = missingSentinel()
		case fv.Kind == avalue.KindNull:
			row[i] = avalue.Null
		default:
			row[i] = packField(fv, node, k)
		}
	}
	end := len(row)
	for end > 0 && isMissingSentinel(row[end-1]) {
		end--
	}
	return avalue.NewArray(row[:end])
}

func packField(fv Value, node *SchemaNode, key string) Value {
	switch node.Types[key] {
	case KindObj:
		return packRow(fv, node.Subs[key])
	case KindList:
		items := make([]Value, len(fv.Array))
		for i, e := range fv.Array {
			items[i] = packRow(e, node.Subs[key])
		}
		return avalue.NewArray(items)
	case KindDict:
		if idx := indexOfDictEntry(node.Dicts[key], fv.Str); idx >= 0 {
			return avalue.NewInt(-int64(idx) - 1)
		}
		return fv
	default:
		return fv
	}
}

func indexOfDictEntry(entries []string, s string) int {
	for i, e := range entries {
		if e == s {
			return i
		}
	}
	return -1
}

// DecodeTrained parses a packed packet produced by EncodeTrained back
// into an array of records. In strict mode a cid/anchor mismatch raises
// SchemaMismatch, an invalid dictionary pointer raises BadReference, and
// any row shape the encoder could not have produced raises
// DriftDetected; in non-strict mode the malformed region is passed
// through unchanged instead (spec §7).
func DecodeTrained(text string, cfg *Config, strict bool) (Value, error) {
	packet, err := avalue.ParseJSON([]byte(text))
	if err != nil {
		return Value{}, &agon.Error{Kind: agon.ErrInvalidPayload, Msg: err.Error()}
	}
	if packet.Kind != avalue.KindObject {
		return Value{}, &agon.Error{Kind: agon.ErrInvalidPayload, Msg: "trained packet must be a JSON object"}
	}
	dField, ok := packet.Obj.Get("d")
	if !ok || dField.Kind != avalue.KindArray {
		return Value{}, &agon.Error{Kind: agon.ErrInvalidPayload, Msg: `trained packet missing "d"`}
	}

	if strict {
		cidField, _ := packet.Obj.Get("c")
		if cidField.Str != cfg.CID {
			return Value{}, &agon.Error{Kind: agon.ErrSchemaMismatch, Msg: "CID Mismatch"}
		}
		vField, _ := packet.Obj.Get("v")
		if vField.Str != cfg.V {
			return Value{}, &agon.Error{Kind: agon.ErrSchemaMismatch, Msg: "Anchor Mismatch"}
		}
	}

	out := make([]Value, len(dField.Array))
	for i, row := range dField.Array {
		rec, err := unpackRow(row, cfg.Schema, strict)
		if err != nil {
			return Value{}, err
		}
		out[i] = rec
	}
	return avalue.NewArray(out), nil
}

func unpackRow(row Value, node *SchemaNode, strict bool) (Value, error) {
	if row.Kind != avalue.KindArray {
		if !strict {
			return row, nil
		}
		return Value{}, &agon.Error{Kind: agon.ErrDriftDetected, Msg: "packed row is not an array"}
	}
	if len(row.Array) > len(node.Keys) {
		if !strict {
			return row, nil
		}
		return Value{}, &agon.Error{Kind: agon.ErrDriftDetected, Msg: "packed row longer than schema key list"}
	}

	obj := avalue.NewOrderedObject()
	for i, k := range node.Keys {
		if i >= len(row.Array) {
			continue // trailing truncation: missing
		}
		elem := row.Array[i]
		if elem.Kind == avalue.KindObject {
			if !isMissingSentinel(elem) {
				if !strict {
					obj.Set(k, elem)
					continue
				}
				return Value{}, &agon.Error{Kind: agon.ErrDriftDetected, Msg: fmt.Sprintf("raw object at key %q inside packed row", k)}
			}
			continue
		}
		if elem.Kind == avalue.KindNull {
			obj.Set(k, avalue.Null)
			continue
		}

		switch node.Types[k] {
		case KindObj:
			sub, ok := node.Subs[k]
			if !ok {
				return Value{}, &agon.Error{Kind: agon.ErrDriftDetected, Msg: fmt.Sprintf("no sub-schema for key %q", k)}
			}
			fv, err := unpackRow(elem, sub, strict)
			if err != nil {
				return Value{}, err
			}
			obj.Set(k, fv)
		case KindList:
			sub, ok := node.Subs[k]
			if !ok || elem.Kind != avalue.KindArray {
				if !strict {
					obj.Set(k, elem)
					continue
				}
				return Value{}, &agon.Error{Kind: agon.ErrDriftDetected, Msg: fmt.Sprintf("invalid list value at key %q", k)}
			}
			items := make([]Value, len(elem.Array))
			for j, subRow := range elem.Array {
				iv, err := unpackRow(subRow, sub, strict)
				if err != nil {
					return Value{}, err
				}
				items[j] = iv
			}
			obj.Set(k, avalue.NewArray(items))
		case KindDict:
			if elem.Kind != avalue.KindInt || elem.Int >= 0 {
				obj.Set(k, elem)
				continue
			}
			entries := node.Dicts[k]
			idx := int(-elem.Int) - 1
			if idx < 0 || idx >= len(entries) {
				if strict {
					return Value{}, &agon.Error{Kind: agon.ErrBadReference, Msg: fmt.Sprintf("invalid dict ref %d for key %q", elem.Int, k)}
				}
				obj.Set(k, elem)
				continue
			}
			obj.Set(k, avalue.NewStr(entries[idx]))
		default:
			obj.Set(k, elem)
		}
	}
	return avalue.NewObject(obj), nil
}
