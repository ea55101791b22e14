// Package columns implements the "@AGON columns" codec (spec §4.4):
// uniform object arrays render column-major as a small ASCII/Unicode
// tree instead of row-major, which tends to compress repeated keys
// better than rows for wide, sparse tables.
//
// Grounded on the same line-oriented, indentation-significant style as
// the rows package (itself grounded on sstraus-toon_go's TOON layout
// split and the teacher's header/body parsing idiom); the tree-glyph
// rendering is original to AGON.
package columns

import (
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Header is the literal line every columns payload begins with.
const Header = "@AGON columns"

// DefaultDelimiter separates values within one column's CSV line.
const DefaultDelimiter = ", "

const indentUnit = "  "

// Options configures the columns encoder.
type Options struct {
	// Delimiter separates values within a column line or an inline
	// primitive array. Defaults to ", ".
	Delimiter string
	// UseASCII selects "|"/"`" tree glyphs instead of the Unicode
	// "├"/"└" defaults.
	UseASCII bool
}

func (o Options) delim() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) glyphs() (mid, last string) {
	if o.UseASCII {
		return "| ", "` "
	}
	return "├ ", "└ "
}

// Encode renders v in the columns format.
func Encode(v avalue.Value, opts Options) string {
	delim := opts.delim()
	mid, last := opts.glyphs()
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteByte('\n')
	if delim != DefaultDelimiter {
		sb.WriteString("@D=")
		sb.WriteString(delim)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	writeRoot(&sb, v, delim, mid, last)
	return sb.String()
}

func writeRoot(sb *strings.Builder, v avalue.Value, delim, mid, last string) {
	switch v.Kind {
	case avalue.KindObject:
		writeObjectBody(sb, v.Obj, 0, delim, mid, last)
	case avalue.KindArray:
		writeArray(sb, "", v.Array, 0, delim, mid, last)
	default:
		sb.WriteString(avalue.EncodeScalar(v, delim))
		sb.WriteByte('\n')
	}
}

func indent(depth int) string { return strings.Repeat(indentUnit, depth) }

func keyToken(key, delim string) string { return avalue.EncodeStringToken(key, delim) }

func writeObjectBody(sb *strings.Builder, obj *avalue.Object, depth int, delim, mid, last string) {
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		writeKeyedValue(sb, key, val, depth, delim, mid, last)
	}
}

func writeKeyedValue(sb *strings.Builder, key string, val avalue.Value, depth int, delim, mid, last string) {
	switch val.Kind {
	case avalue.KindObject:
		sb.WriteString(indent(depth))
		sb.WriteString(keyToken(key, delim))
		sb.WriteString(":\n")
		writeObjectBody(sb, val.Obj, depth+1, delim, mid, last)
	case avalue.KindArray:
		writeArray(sb, key, val.Array, depth, delim, mid, last)
	default:
		sb.WriteString(indent(depth))
		sb.WriteString(keyToken(key, delim))
		sb.WriteString(": ")
		sb.WriteString(avalue.EncodeScalar(val, delim))
		sb.WriteByte('\n')
	}
}

func writeArray(sb *strings.Builder, name string, arr []avalue.Value, depth int, delim, mid, last string) {
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
		sb.WriteString("]\n")
		colIndent := indent(depth + 1)
		for ci, col := range cols {
			glyph := mid
			if ci == len(cols)-1 {
				glyph = last
			}
			sb.WriteString(colIndent)
			sb.WriteString(glyph)
			sb.WriteString(keyToken(col, delim))
			sb.WriteString(": ")
			for ri, row := range arr {
				if ri > 0 {
					sb.WriteString(delim)
				}
				if fv, ok := row.Obj.Get(col); ok {
					sb.WriteString(avalue.EncodeScalar(fv, delim))
				}
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
			writeListItem(sb, item, itemDepth, delim, mid, last)
		}
	}
}

func writeListItem(sb *strings.Builder, item avalue.Value, itemDepth int, delim, mid, last string) {
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
				writeKeyedValue(sb, k, v, itemDepth+1, delim, mid, last)
			}
			return
		}
		sb.WriteString(itemIndent)
		sb.WriteString("-\n")
		for _, k := range keys {
			v, _ := item.Obj.Get(k)
			writeKeyedValue(sb, k, v, itemDepth+1, delim, mid, last)
		}
	case avalue.KindArray:
		var tmp strings.Builder
		writeArray(&tmp, "", item.Array, itemDepth, delim, mid, last)
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
	firstKeys := arr[0].Obj.Keys()
	firstSet := make(map[string]struct{}, len(firstKeys))
	for _, k := range firstKeys {
		firstSet[k] = struct{}{}
	}
	for _, e := range arr {
		if e.Kind != avalue.KindObject || e.Obj.Len() != len(firstSet) {
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
