package structfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Decode parses text produced by Encode back into a Value.
func Decode(text string) (avalue.Value, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || lines[0] != Header {
		return avalue.Value{}, fmt.Errorf("structfmt: missing %q header", Header)
	}
	pos := 1
	tagTable := map[string][]string{}
	for pos < len(lines) && strings.HasPrefix(lines[pos], "@F") {
		tag, keys, err := parseTemplateDecl(lines[pos])
		if err != nil {
			return avalue.Value{}, err
		}
		tagTable[tag] = keys
		pos++
	}
	if pos < len(lines) && lines[pos] == "" {
		pos++
	}
	end := len(lines)
	for end > pos && lines[end-1] == "" {
		end--
	}
	body := lines[pos:end]
	if len(body) == 0 {
		return avalue.NewObject(avalue.NewOrderedObject()), nil
	}

	dep0, content0 := depthOf(body[0])
	if dep0 != 0 {
		return avalue.Value{}, fmt.Errorf("structfmt: unexpected indent on first line")
	}

	d := &decoder{lines: body, tags: tagTable}
	if content0 != "" && content0[0] == '[' {
		d.pos = 1
		return d.readArrayBody(content0, 0)
	}
	if _, rest, err := extractKey(content0); err != nil || len(rest) == 0 {
		return decodeScalarText(content0)
	}

	obj, err := d.parseObject(0)
	if err != nil {
		return avalue.Value{}, err
	}
	return avalue.NewObject(obj), nil
}

func parseTemplateDecl(line string) (tag string, keys []string, err error) {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return "", nil, fmt.Errorf("structfmt: malformed template declaration %q", line)
	}
	tag = strings.TrimPrefix(line[:idx], "@F")
	keys = avalue.SplitDelimited(line[idx+2:], listDelim)
	return tag, keys, nil
}

type decoder struct {
	lines []string
	pos   int
	tags  map[string][]string
}

func depthOf(line string) (int, string) {
	depth := 0
	for strings.HasPrefix(line, indentUnit) {
		line = line[len(indentUnit):]
		depth++
	}
	return depth, line
}

// extractKey splits content into a key and the remainder starting at
// whichever of ':', '[' or " @" (a template call) introduces the
// value. err is non-nil when none of those markers are present.
func extractKey(content string) (key string, rest string, err error) {
	if content == "" {
		return "", "", fmt.Errorf("structfmt: empty key line")
	}
	if content[0] == '"' {
		s, n, uerr := avalue.UnquoteString(content)
		if uerr != nil {
			return "", "", uerr
		}
		return s, content[n:], nil
	}
	idxMark := strings.IndexAny(content, ":[")
	idxAt := strings.Index(content, " @")
	switch {
	case idxAt >= 0 && (idxMark < 0 || idxAt < idxMark):
		return content[:idxAt], content[idxAt+1:], nil
	case idxMark >= 0:
		return content[:idxMark], content[idxMark:], nil
	default:
		return "", "", fmt.Errorf("structfmt: no key marker")
	}
}

func decodeTemplateCall(rest string, tags map[string][]string) (*avalue.Object, int, error) {
	open := strings.IndexByte(rest, '(')
	if open < 1 || rest[0] != '@' || rest[1] != 'F' {
		return nil, 0, fmt.Errorf("structfmt: malformed template call %q", rest)
	}
	tag := rest[2:open]
	close := strings.IndexByte(rest[open:], ')')
	if close < 0 {
		return nil, 0, fmt.Errorf("structfmt: unterminated template call %q", rest)
	}
	close += open
	keys, ok := tags[tag]
	if !ok {
		return nil, 0, fmt.Errorf("structfmt: undeclared template @F%s", tag)
	}
	var fields []string
	if argStr := rest[open+1 : close]; argStr != "" {
		fields = avalue.SplitDelimited(argStr, listDelim)
	}
	obj := avalue.NewOrderedObject()
	for i, k := range keys {
		if i >= len(fields) {
			break
		}
		v, err := decodeScalarText(fields[i])
		if err != nil {
			return nil, 0, err
		}
		obj.Set(k, v)
	}
	return obj, close + 1, nil
}

func decodeInlineBraces(s string) (*avalue.Object, error) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("structfmt: malformed inline object %q", s)
	}
	inner := s[1 : len(s)-1]
	obj := avalue.NewOrderedObject()
	if inner == "" {
		return obj, nil
	}
	for _, field := range avalue.SplitDelimited(inner, listDelim) {
		idx := strings.Index(field, ": ")
		if idx < 0 {
			return nil, fmt.Errorf("structfmt: malformed inline field %q", field)
		}
		key, _, err := decodeKeyToken(field[:idx])
		if err != nil {
			return nil, err
		}
		val, err := decodeScalarText(field[idx+2:])
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	return obj, nil
}

func decodeKeyToken(tok string) (string, int, error) {
	if tok != "" && tok[0] == '"' {
		return avalue.UnquoteString(tok)
	}
	return tok, len(tok), nil
}

func decodeScalarText(s string) (avalue.Value, error) {
	if s != "" && s[0] == '"' {
		decoded, _, err := avalue.UnquoteString(s)
		if err != nil {
			return avalue.Value{}, err
		}
		return avalue.NewStr(decoded), nil
	}
	return avalue.ParseScalarToken(s), nil
}

type arrayHeader struct {
	n      int
	inline *string
	isList bool
}

func parseArrayHeader(rest string) (arrayHeader, error) {
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return arrayHeader{}, fmt.Errorf("structfmt: unterminated array length")
	}
	n, err := strconv.Atoi(rest[1:end])
	if err != nil {
		return arrayHeader{}, fmt.Errorf("structfmt: bad array length %q: %w", rest[1:end], err)
	}
	after := rest[end+1:]
	if after == "" || after[0] != ':' {
		return arrayHeader{}, fmt.Errorf("structfmt: malformed array header %q", rest)
	}
	remainder := after[1:]
	if n == 0 || remainder == "" {
		return arrayHeader{n: n, isList: n > 0}, nil
	}
	remainder = strings.TrimPrefix(remainder, " ")
	return arrayHeader{n: n, inline: &remainder}, nil
}

func (d *decoder) readArrayBody(rest string, depth int) (avalue.Value, error) {
	hdr, err := parseArrayHeader(rest)
	if err != nil {
		return avalue.Value{}, err
	}
	if hdr.n == 0 {
		return avalue.NewArray(nil), nil
	}
	if hdr.inline != nil {
		fields := avalue.SplitDelimited(*hdr.inline, listDelim)
		elems := make([]avalue.Value, len(fields))
		for i, f := range fields {
			v, ferr := decodeScalarText(f)
			if ferr != nil {
				return avalue.Value{}, ferr
			}
			elems[i] = v
		}
		return avalue.NewArray(elems), nil
	}
	elems := make([]avalue.Value, 0, hdr.n)
	for i := 0; i < hdr.n; i++ {
		v, ierr := d.readListItem(depth + 1)
		if ierr != nil {
			return avalue.Value{}, ierr
		}
		elems = append(elems, v)
	}
	return avalue.NewArray(elems), nil
}

func (d *decoder) readListItem(itemDepth int) (avalue.Value, error) {
	if d.pos >= len(d.lines) {
		return avalue.Value{}, fmt.Errorf("structfmt: truncated list array")
	}
	dep, content := depthOf(d.lines[d.pos])
	if dep != itemDepth {
		return avalue.Value{}, fmt.Errorf("structfmt: bad list item indent")
	}
	if !strings.HasPrefix(content, "-") {
		return avalue.Value{}, fmt.Errorf("structfmt: expected list item, got %q", content)
	}
	rest := strings.TrimPrefix(content[1:], " ")
	d.pos++
	switch {
	case rest == "":
		return avalue.NewObject(avalue.NewOrderedObject()), nil
	case rest[0] == '@':
		obj, _, err := decodeTemplateCall(rest, d.tags)
		if err != nil {
			return avalue.Value{}, err
		}
		return avalue.NewObject(obj), nil
	case rest[0] == '{':
		obj, err := decodeInlineBraces(rest)
		if err != nil {
			return avalue.Value{}, err
		}
		return avalue.NewObject(obj), nil
	case rest[0] == '[':
		return d.readArrayBody(rest, itemDepth)
	}
	if key, krest, err := extractKey(rest); err == nil && len(krest) > 0 && krest[0] == ':' {
		remainder := strings.TrimPrefix(krest[1:], " ")
		fv, ferr := decodeScalarText(remainder)
		if ferr != nil {
			return avalue.Value{}, ferr
		}
		obj := avalue.NewOrderedObject()
		obj.Set(key, fv)
		child, cerr := d.parseObject(itemDepth + 1)
		if cerr != nil {
			return avalue.Value{}, cerr
		}
		for _, k := range child.Keys() {
			v, _ := child.Get(k)
			obj.Set(k, v)
		}
		return avalue.NewObject(obj), nil
	}
	return decodeScalarText(rest)
}

func (d *decoder) parseObject(depth int) (*avalue.Object, error) {
	obj := avalue.NewOrderedObject()
	for d.pos < len(d.lines) {
		if strings.TrimSpace(d.lines[d.pos]) == "" {
			d.pos++
			continue
		}
		dep, content := depthOf(d.lines[d.pos])
		if dep < depth {
			break
		}
		if dep > depth {
			return nil, fmt.Errorf("structfmt: unexpected indent at line %d", d.pos)
		}
		key, rest, err := extractKey(content)
		if err != nil {
			return nil, err
		}
		switch {
		case rest[0] == '@':
			child, _, terr := decodeTemplateCall(rest, d.tags)
			if terr != nil {
				return nil, terr
			}
			obj.Set(key, avalue.NewObject(child))
			d.pos++
		case rest[0] == '[':
			d.pos++
			val, verr := d.readArrayBody(rest, depth)
			if verr != nil {
				return nil, verr
			}
			obj.Set(key, val)
		default: // ':'
			remainder := strings.TrimPrefix(rest[1:], " ")
			if remainder == "" {
				d.pos++
				child, cerr := d.parseObject(depth + 1)
				if cerr != nil {
					return nil, cerr
				}
				obj.Set(key, avalue.NewObject(child))
				continue
			}
			if remainder[0] == '{' {
				child, cerr := decodeInlineBraces(remainder)
				if cerr != nil {
					return nil, cerr
				}
				obj.Set(key, avalue.NewObject(child))
				d.pos++
				continue
			}
			val, verr := decodeScalarText(remainder)
			if verr != nil {
				return nil, verr
			}
			obj.Set(key, val)
			d.pos++
		}
	}
	return obj, nil
}
