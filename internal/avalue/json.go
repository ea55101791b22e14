package avalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ParseJSON decodes standard JSON text into a Value, preserving object key
// insertion order (spec §3's Object key order is insertion order from the
// source). encoding/json's map decoding does not preserve order, so this
// walks the token stream directly instead of unmarshalling into map[string]any.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, fmt.Errorf("avalue: trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeValueFromToken(dec, tok)
}

func decodeValueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return numberValue(t), nil
	case string:
		return NewStr(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := []Value{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return NewArray(arr), nil
		case '{':
			obj := NewOrderedObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("avalue: expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return NewObject(obj), nil
		default:
			return Value{}, fmt.Errorf("avalue: unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("avalue: unexpected token %v (%T)", tok, tok)
	}
}

func numberValue(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return NewInt(i)
	}
	f, err := n.Float64()
	if err != nil {
		// Not representable; fall back to string-preserving float parse.
		f, _ = strconv.ParseFloat(n.String(), 64)
	}
	return NewFloat(f)
}

// ToJSON renders v as standard JSON, preserving object key order.
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(FormatScalar(v))
	case KindInt:
		buf.WriteString(FormatScalar(v))
	case KindFloat:
		buf.WriteString(FormatScalar(v))
	case KindStr:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.Obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			val, _ := v.Obj.Get(k)
			if err := writeJSON(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("avalue: unknown kind %d", v.Kind)
	}
	return nil
}

// CanonicalJSON renders v as JSON with object keys sorted recursively,
// used by the trained variant's SHA-256 schema anchor (spec §4.9): training
// the same schema twice must hash identically regardless of field-discovery
// order.
func CanonicalJSON(v Value) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindNull, KindBool, KindInt, KindFloat:
		buf.WriteString(FormatScalar(v))
	case KindStr:
		b, _ := json.Marshal(v.Str)
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case KindObject:
		keys := append([]string(nil), v.Obj.Keys()...)
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			val, _ := v.Obj.Get(k)
			writeCanonical(buf, val)
		}
		buf.WriteByte('}')
	}
}
