// Package rows implements the "@AGON rows" codec (spec §4.3): a
// line-oriented, indentation-significant encoding where each object key
// occupies its own line and arrays pick one of three layouts (primitive
// inline, tabular, or list) depending on their contents.
//
// Grounded on sstraus-toon_go's TOON format (see other_examples) for the
// inline/tabular/list array split, and on the teacher's line-oriented
// header/body parsing idiom.
package rows

import (
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Header is the literal line every rows payload begins with.
const Header = "@AGON rows"

// DefaultDelimiter is used when no @D= modifier line is present.
const DefaultDelimiter = "\t"

const indentUnit = "  "

// Options configures the rows encoder.
type Options struct {
	// Delimiter separates fields in inline/tabular arrays. Defaults to a
	// TAB character.
	Delimiter string
}

func (o Options) delim() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// Encode renders v in the rows format, including the "@AGON rows" header
// (and "@D=" modifier line when a non-default delimiter is configured)
// followed by a blank line and the body.
func Encode(v avalue.Value, opts Options) string {
	delim := opts.delim()
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteByte('\n')
	if delim != DefaultDelimiter {
		sb.WriteString("@D=")
		sb.WriteString(delim)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	writeRoot(&sb, v, delim)
	return sb.String()
}

func writeRoot(sb *strings.Builder, v avalue.Value, delim string) {
	switch v.Kind {
	case avalue.KindObject:
		writeObjectBody(sb, v.Obj, 0, delim)
	case avalue.KindArray:
		writeArray(sb, "", v.Array, 0, delim)
	default:
		// A bare scalar at the root has no key to hang off of; emit it as
		// a single unnamed line so decode can still recover it. A string
		// holding ':' or '[' is quoted so it is not read back as a key.
		tok := avalue.EncodeScalar(v, delim)
		if v.Kind == avalue.KindStr && tok[0] != '"' && strings.ContainsAny(tok, ":[") {
			tok = avalue.QuoteString(v.Str)
		}
		sb.WriteString(tok)
		sb.WriteByte('\n')
	}
}

func indent(depth int) string { return strings.Repeat(indentUnit, depth) }

func writeObjectBody(sb *strings.Builder, obj *avalue.Object, depth int, delim string) {
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		writeKeyedValue(sb, key, val, depth, delim)
	}
}

func writeKeyedValue(sb *strings.Builder, key string, val avalue.Value, depth int, delim string) {
	switch val.Kind {
	case avalue.KindObject:
		sb.WriteString(indent(depth))
		sb.WriteString(keyToken(key, delim))
		sb.WriteString(":\n")
		writeObjectBody(sb, val.Obj, depth+1, delim)
	case avalue.KindArray:
		writeArray(sb, key, val.Array, depth, delim)
	default:
		sb.WriteString(indent(depth))
		sb.WriteString(keyToken(key, delim))
		sb.WriteString(": ")
		sb.WriteString(avalue.EncodeScalar(val, delim))
		sb.WriteByte('\n')
	}
}

func keyToken(key string, delim string) string {
	return avalue.EncodeStringToken(key, delim)
}

// writeArray renders arr (optionally named) at the given depth: its
// header line sits at indent(depth), and any body lines it owns
// (tabular rows or list items) sit at indent(depth+1). Callers that
// need to splice the result elsewhere (e.g. as a list item) can rely on
// this absolute-indent contract rather than re-deriving it.
func writeArray(sb *strings.Builder, name string, arr []avalue.Value, depth int, delim string) {
	namePrefix := name
	if name != "" {
		namePrefix = keyToken(name, delim)
	}
	n := len(arr)
	switch {
	case n == 0:
		sb.WriteString(indent(depth))
		sb.WriteString(namePrefix)
		sb.WriteString("[0]:\n")
	case isPrimitiveArray(arr):
		sb.WriteString(indent(depth))
		sb.WriteString(namePrefix)
		sb.WriteString("[")
		sb.WriteString(itoa(n))
		sb.WriteString("]: ")
		for i, e := range arr {
			if i > 0 {
				sb.WriteString(delim)
			}
			sb.WriteString(avalue.EncodeScalar(e, delim))
		}
		sb.WriteByte('\n')
	case isTabularArray(arr):
		cols := arr[0].Obj.Keys()
		sb.WriteString(indent(depth))
		sb.WriteString(namePrefix)
		sb.WriteString("[")
		sb.WriteString(itoa(n))
		sb.WriteString("]{")
		for i, c := range cols {
			if i > 0 {
				sb.WriteString(delim)
			}
			sb.WriteString(keyToken(c, delim))
		}
		sb.WriteString("}\n")
		rowIndent := indent(depth + 1)
		for _, row := range arr {
			sb.WriteString(rowIndent)
			for i, c := range cols {
				if i > 0 {
					sb.WriteString(delim)
				}
				if fv, ok := row.Obj.Get(c); ok {
					sb.WriteString(avalue.EncodeScalar(fv, delim))
				}
				// absent: empty field denotes missing (spec §4.3)
			}
			sb.WriteByte('\n')
		}
	default:
		sb.WriteString(indent(depth))
		sb.WriteString(namePrefix)
		sb.WriteString("[")
		sb.WriteString(itoa(n))
		sb.WriteString("]:\n")
		itemDepth := depth + 1
		for _, item := range arr {
			writeListItem(sb, item, itemDepth, delim)
		}
	}
}

// writeListItem renders one list-array element at itemDepth, i.e. its
// own "- " marker line sits at indent(itemDepth) and any continuation
// lines it owns sit at indent(itemDepth+1).
func writeListItem(sb *strings.Builder, item avalue.Value, itemDepth int, delim string) {
	itemIndent := indent(itemDepth)
	switch item.Kind {
	case avalue.KindObject:
		keys := item.Obj.Keys()
		if len(keys) == 0 {
			sb.WriteString(itemIndent)
			sb.WriteString("-\n")
			return
		}
		first := keys[0]
		fv, _ := item.Obj.Get(first)
		if fv.IsScalar() {
			sb.WriteString(itemIndent)
			sb.WriteString("- ")
			sb.WriteString(keyToken(first, delim))
			sb.WriteString(": ")
			sb.WriteString(avalue.EncodeScalar(fv, delim))
			sb.WriteByte('\n')
			for _, k := range keys[1:] {
				v, _ := item.Obj.Get(k)
				writeKeyedValue(sb, k, v, itemDepth+1, delim)
			}
			return
		}
		// First field isn't scalar: nothing sane to inline after "-", so
		// open an empty list marker and write every field as a
		// continuation line instead.
		sb.WriteString(itemIndent)
		sb.WriteString("-\n")
		for _, k := range keys {
			v, _ := item.Obj.Get(k)
			writeKeyedValue(sb, k, v, itemDepth+1, delim)
		}
	case avalue.KindArray:
		var tmp strings.Builder
		writeArray(&tmp, "", item.Array, itemDepth, delim)
		lines := strings.SplitAfter(tmp.String(), "\n")
		sb.WriteString(itemIndent)
		sb.WriteString("- ")
		sb.WriteString(strings.TrimPrefix(lines[0], itemIndent))
		for _, l := range lines[1:] {
			sb.WriteString(l)
		}
	default:
		sb.WriteString(itemIndent)
		sb.WriteString("- ")
		sb.WriteString(avalue.EncodeScalar(item, delim))
		sb.WriteByte('\n')
	}
}

func isPrimitiveArray(arr []avalue.Value) bool {
	for _, e := range arr {
		if !e.IsScalar() {
			return false
		}
	}
	return true
}

func isTabularArray(arr []avalue.Value) bool {
	if len(arr) == 0 || arr[0].Kind != avalue.KindObject {
		return false
	}
	first := arr[0].Obj
	firstKeys := first.Keys()
	firstSet := make(map[string]struct{}, len(firstKeys))
	for _, k := range firstKeys {
		firstSet[k] = struct{}{}
	}
	for _, e := range arr {
		if e.Kind != avalue.KindObject {
			return false
		}
		if e.Obj.Len() != len(firstSet) {
			return false
		}
		for _, k := range e.Obj.Keys() {
			if _, ok := firstSet[k]; !ok {
				return false
			}
			v, _ := e.Obj.Get(k)
			if !v.IsScalar() {
				return false
			}
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
