// Package structfmt implements the "@AGON struct" codec (spec §4.5):
// object shapes (sorted key-set fingerprints) that recur at least twice
// are factored into a named positional template declared once in
// a preamble, then referenced by a short `@F<TAG>(v1, v2, ...)` token
// everywhere they occur instead of repeating every key.
//
// Grounded on the teacher's sorted-key-fingerprint idea (no corpus repo
// implements this exact factoring, so the template-table bookkeeping is
// original to AGON) and on the rows package's line-oriented grammar for
// everything outside the template substitution itself.
package structfmt

import (
	"sort"
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Header is the literal line every struct payload begins with.
const Header = "@AGON struct"

// listDelim separates a template's declared keys and a call's
// positional arguments; it is fixed (not configurable via @D=) because
// it also doubles as the array-field delimiter, matching the columns
// package's default.
const listDelim = ", "

const indentUnit = "  "

func indent(depth int) string { return strings.Repeat(indentUnit, depth) }

// template describes one factored object shape.
type template struct {
	tag  string
	keys []string // sorted; also the positional argument order
}

// Encode renders v in the struct format: it first scans the whole tree
// for object shapes appearing at least twice, assigns each a tag, and
// then emits the preamble followed by the body with every matching
// object rewritten as a positional template call.
func Encode(v avalue.Value) string {
	counts := map[string]*shapeInfo{}
	collectShapes(v, counts)

	var fps []string
	for fp, info := range counts {
		if info.count >= 2 {
			fps = append(fps, fp)
		}
	}
	sort.Strings(fps)

	templates := make(map[string]template, len(fps))
	used := map[string]bool{}
	for _, fp := range fps {
		info := counts[fp]
		tag := nextTag(info.keys, used)
		used[tag] = true
		templates[fp] = template{tag: tag, keys: info.keys}
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteByte('\n')
	for _, fp := range fps {
		t := templates[fp]
		sb.WriteString("@F")
		sb.WriteString(t.tag)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(t.keys, listDelim))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	writeRoot(&sb, v, templates, 0)
	return sb.String()
}

type shapeInfo struct {
	keys  []string
	count int
}

// fingerprint returns the sorted-key tuple for obj and true, provided
// every field value is scalar (templates are a flat, positional
// mechanism and cannot hold nested containers).
func fingerprint(obj *avalue.Object) (string, []string, bool) {
	keys := append([]string(nil), obj.Keys()...)
	for _, k := range keys {
		v, _ := obj.Get(k)
		if !v.IsScalar() {
			return "", nil, false
		}
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f"), sorted, true
}

func collectShapes(v avalue.Value, counts map[string]*shapeInfo) {
	switch v.Kind {
	case avalue.KindObject:
		if fp, keys, ok := fingerprint(v.Obj); ok && len(keys) > 0 {
			info, exists := counts[fp]
			if !exists {
				info = &shapeInfo{keys: keys}
				counts[fp] = info
			}
			info.count++
		}
		for _, k := range v.Obj.Keys() {
			fv, _ := v.Obj.Get(k)
			collectShapes(fv, counts)
		}
	case avalue.KindArray:
		for _, e := range v.Array {
			collectShapes(e, counts)
		}
	}
}

// nextTag assigns a deterministic tag for keys: the upper-cased
// initial letter of each key. On collision with an already-used tag,
// it walks forward through the letters of the last key first, then
// (once that key is used up) the one before it, before falling back to
// a numeric suffix on the plain initials, counting up until the tag is
// unused.
func nextTag(keys []string, used map[string]bool) string {
	ptrs := make([]int, len(keys))
	for {
		letters := make([]byte, len(keys))
		for i, k := range keys {
			letters[i] = upper(k[ptrs[i]])
		}
		tag := string(letters)
		if !used[tag] {
			return tag
		}
		advanced := false
		for i := len(ptrs) - 1; i >= 0; i-- {
			if ptrs[i] < len(keys[i])-1 {
				ptrs[i]++
				advanced = true
				break
			}
		}
		if !advanced {
			break
		}
	}
	// Every letter position is exhausted and still colliding: fall back
	// to a numeric suffix on the plain initials.
	base := make([]byte, len(keys))
	for i, k := range keys {
		base[i] = upper(k[0])
	}
	for n := 2; ; n++ {
		tag := string(base) + itoa(n)
		if !used[tag] {
			return tag
		}
	}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func writeRoot(sb *strings.Builder, v avalue.Value, templates map[string]template, depth int) {
	switch v.Kind {
	case avalue.KindObject:
		writeObjectBody(sb, v.Obj, templates, depth)
	case avalue.KindArray:
		writeArrayValue(sb, v.Array, templates, depth)
	default:
		sb.WriteString(avalue.EncodeScalar(v, listDelim))
		sb.WriteByte('\n')
	}
}

func keyToken(key string) string { return avalue.EncodeStringToken(key, listDelim) }

func writeObjectBody(sb *strings.Builder, obj *avalue.Object, templates map[string]template, depth int) {
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		writeKeyedValue(sb, key, val, templates, depth)
	}
}

func writeKeyedValue(sb *strings.Builder, key string, val avalue.Value, templates map[string]template, depth int) {
	sb.WriteString(indent(depth))
	switch val.Kind {
	case avalue.KindObject:
		if t, ok := matchTemplate(val.Obj, templates); ok {
			sb.WriteString(keyToken(key))
			sb.WriteString(" ")
			writeTemplateCall(sb, val.Obj, t)
			sb.WriteByte('\n')
			return
		}
		if isFlatObject(val.Obj) {
			sb.WriteString(keyToken(key))
			sb.WriteString(": ")
			writeInlineBraces(sb, val.Obj)
			sb.WriteByte('\n')
			return
		}
		sb.WriteString(keyToken(key))
		sb.WriteString(":\n")
		writeObjectBody(sb, val.Obj, templates, depth+1)
	case avalue.KindArray:
		sb.WriteString(keyToken(key))
		sb.WriteString(arrayHeaderSuffix(val.Array))
		sb.WriteByte('\n')
		writeArrayBody(sb, val.Array, templates, depth)
		return
	default:
		sb.WriteString(keyToken(key))
		sb.WriteString(": ")
		sb.WriteString(avalue.EncodeScalar(val, listDelim))
		sb.WriteByte('\n')
	}
}

func matchTemplate(obj *avalue.Object, templates map[string]template) (template, bool) {
	fp, _, ok := fingerprint(obj)
	if !ok {
		return template{}, false
	}
	t, found := templates[fp]
	return t, found
}

func writeTemplateCall(sb *strings.Builder, obj *avalue.Object, t template) {
	sb.WriteString("@F")
	sb.WriteString(t.tag)
	sb.WriteString("(")
	for i, k := range t.keys {
		if i > 0 {
			sb.WriteString(listDelim)
		}
		v, _ := obj.Get(k)
		sb.WriteString(avalue.EncodeScalar(v, listDelim))
	}
	sb.WriteString(")")
}

func isFlatObject(obj *avalue.Object) bool {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if !v.IsScalar() {
			return false
		}
	}
	return true
}

func writeInlineBraces(sb *strings.Builder, obj *avalue.Object) {
	sb.WriteString("{")
	for i, k := range obj.Keys() {
		if i > 0 {
			sb.WriteString(listDelim)
		}
		v, _ := obj.Get(k)
		sb.WriteString(keyToken(k))
		sb.WriteString(": ")
		sb.WriteString(avalue.EncodeScalar(v, listDelim))
	}
	sb.WriteString("}")
}

// arrayHeaderSuffix returns "[N]: " for a primitive array (written
// inline on the same line by the caller) or "[N]:" for a list array
// whose items follow on subsequent lines.
func arrayHeaderSuffix(arr []avalue.Value) string {
	n := itoaPlain(len(arr))
	if len(arr) == 0 {
		return "[" + n + "]:"
	}
	if isPrimitiveArray(arr) {
		return "[" + n + "]: " + joinScalars(arr)
	}
	return "[" + n + "]:"
}

func joinScalars(arr []avalue.Value) string {
	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = avalue.EncodeScalar(e, listDelim)
	}
	return strings.Join(parts, listDelim)
}

func isPrimitiveArray(arr []avalue.Value) bool {
	for _, e := range arr {
		if !e.IsScalar() {
			return false
		}
	}
	return true
}

func itoaPlain(n int) string { return itoa(n) }

// writeArrayValue renders an unnamed array (root, or nested inside a
// list item) by writing its own header line followed by its body.
func writeArrayValue(sb *strings.Builder, arr []avalue.Value, templates map[string]template, depth int) {
	sb.WriteString(indent(depth))
	sb.WriteString(arrayHeaderSuffix(arr))
	sb.WriteByte('\n')
	writeArrayBody(sb, arr, templates, depth)
}

// writeArrayBody writes the lines a primitive array's header already
// inlined (nothing) or the list items of a non-primitive array, at
// depth+1.
func writeArrayBody(sb *strings.Builder, arr []avalue.Value, templates map[string]template, depth int) {
	if isPrimitiveArray(arr) {
		return
	}
	itemDepth := depth + 1
	for _, item := range arr {
		writeListItem(sb, item, templates, itemDepth)
	}
}

func writeListItem(sb *strings.Builder, item avalue.Value, templates map[string]template, itemDepth int) {
	itemIndent := indent(itemDepth)
	switch item.Kind {
	case avalue.KindObject:
		if t, ok := matchTemplate(item.Obj, templates); ok {
			sb.WriteString(itemIndent)
			sb.WriteString("- ")
			writeTemplateCall(sb, item.Obj, t)
			sb.WriteByte('\n')
			return
		}
		keys := item.Obj.Keys()
		if len(keys) == 0 {
			sb.WriteString(itemIndent)
			sb.WriteString("-\n")
			return
		}
		if isFlatObject(item.Obj) {
			sb.WriteString(itemIndent)
			sb.WriteString("- ")
			writeInlineBraces(sb, item.Obj)
			sb.WriteByte('\n')
			return
		}
		first := keys[0]
		fv, _ := item.Obj.Get(first)
		if fv.IsScalar() {
			sb.WriteString(itemIndent)
			sb.WriteString("- ")
			sb.WriteString(keyToken(first))
			sb.WriteString(": ")
			sb.WriteString(avalue.EncodeScalar(fv, listDelim))
			sb.WriteByte('\n')
			for _, k := range keys[1:] {
				v, _ := item.Obj.Get(k)
				writeKeyedValue(sb, k, v, templates, itemDepth+1)
			}
			return
		}
		sb.WriteString(itemIndent)
		sb.WriteString("-\n")
		for _, k := range keys {
			v, _ := item.Obj.Get(k)
			writeKeyedValue(sb, k, v, templates, itemDepth+1)
		}
	case avalue.KindArray:
		var tmp strings.Builder
		writeArrayValue(&tmp, item.Array, templates, itemDepth)
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
		sb.WriteString(avalue.EncodeScalar(item, listDelim))
		sb.WriteByte('\n')
	}
}
