package rows

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// Decode parses text produced by Encode (or any hand-written payload
// following the same grammar) back into a Value.
//
// Key lookup is a simple scan for the first unquoted ':' or '[' in a
// line: a key that is written unquoted (see avalue.NeedsQuote) but
// happens to contain one of those characters past its first rune is a
// known ambiguity this grammar does not resolve; quote such keys
// explicitly if you hit it.
func Decode(text string) (avalue.Value, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || lines[0] != Header {
		return avalue.Value{}, fmt.Errorf("rows: missing %q header", Header)
	}
	pos := 1
	delim := DefaultDelimiter
	if pos < len(lines) && strings.HasPrefix(lines[pos], "@D=") {
		delim = strings.TrimPrefix(lines[pos], "@D=")
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
		return avalue.Value{}, fmt.Errorf("rows: unexpected indent on first line")
	}

	d := &decoder{lines: body, delim: delim}
	if content0 != "" && content0[0] == '[' {
		d.pos = 1
		return d.readArrayBody(content0, 0)
	}
	if _, rest, err := extractKey(content0); err != nil || len(rest) == 0 {
		val, err := decodeScalarText(content0)
		if err != nil {
			return avalue.Value{}, err
		}
		return val, nil
	}

	obj, err := d.parseObject(0)
	if err != nil {
		return avalue.Value{}, err
	}
	return avalue.NewObject(obj), nil
}

type decoder struct {
	lines []string
	pos   int
	delim string
}

func depthOf(line string) (int, string) {
	depth := 0
	for strings.HasPrefix(line, indentUnit) {
		line = line[len(indentUnit):]
		depth++
	}
	return depth, line
}

// extractKey splits a key off the front of content, returning the
// remainder starting at the ':' or '[' that follows it. err is non-nil
// when content carries no such marker at all (a bare value line).
func extractKey(content string) (key string, rest string, err error) {
	if content == "" {
		return "", "", fmt.Errorf("rows: empty key line")
	}
	if content[0] == '"' {
		s, n, uerr := avalue.UnquoteString(content)
		if uerr != nil {
			return "", "", uerr
		}
		return s, content[n:], nil
	}
	idx := strings.IndexAny(content, ":[")
	if idx < 0 {
		return "", "", fmt.Errorf("rows: no key marker")
	}
	return content[:idx], content[idx:], nil
}

type arrayHeader struct {
	n           int
	tabularCols []string
	inline      *string
	isList      bool
}

func parseArrayHeader(rest string, delim string) (arrayHeader, error) {
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return arrayHeader{}, fmt.Errorf("rows: unterminated array length")
	}
	n, err := strconv.Atoi(rest[1:end])
	if err != nil {
		return arrayHeader{}, fmt.Errorf("rows: bad array length %q: %w", rest[1:end], err)
	}
	after := rest[end+1:]
	if after == "" {
		return arrayHeader{}, fmt.Errorf("rows: array header missing '{' or ':'")
	}
	switch after[0] {
	case '{':
		close := strings.IndexByte(after, '}')
		if close < 0 {
			return arrayHeader{}, fmt.Errorf("rows: unterminated column list")
		}
		var rawCols []string
		if after[1:close] != "" {
			rawCols = avalue.SplitDelimited(after[1:close], delim)
		}
		cols := make([]string, len(rawCols))
		for i, c := range rawCols {
			col, _, uerr := decodeKeyToken(c)
			if uerr != nil {
				return arrayHeader{}, uerr
			}
			cols[i] = col
		}
		return arrayHeader{n: n, tabularCols: cols}, nil
	case ':':
		remainder := after[1:]
		if remainder == "" {
			return arrayHeader{n: n, isList: true}, nil
		}
		remainder = strings.TrimPrefix(remainder, " ")
		return arrayHeader{n: n, inline: &remainder}, nil
	default:
		return arrayHeader{}, fmt.Errorf("rows: malformed array header %q", rest)
	}
}

func decodeKeyToken(tok string) (string, int, error) {
	if tok != "" && tok[0] == '"' {
		return avalue.UnquoteString(tok)
	}
	return tok, len(tok), nil
}

func (d *decoder) readArrayBody(rest string, depth int) (avalue.Value, error) {
	hdr, err := parseArrayHeader(rest, d.delim)
	if err != nil {
		return avalue.Value{}, err
	}
	switch {
	case hdr.tabularCols != nil:
		elems := make([]avalue.Value, 0, hdr.n)
		for i := 0; i < hdr.n; i++ {
			if d.pos >= len(d.lines) {
				return avalue.Value{}, fmt.Errorf("rows: truncated tabular array")
			}
			dep, content := depthOf(d.lines[d.pos])
			if dep != depth+1 {
				return avalue.Value{}, fmt.Errorf("rows: bad tabular row indent")
			}
			fields := avalue.TrimOneTrailingSpace(avalue.SplitDelimited(content, d.delim))
			row := avalue.NewOrderedObject()
			for ci, col := range hdr.tabularCols {
				if ci >= len(fields) || fields[ci] == "" {
					continue
				}
				fv, ferr := decodeScalarText(fields[ci])
				if ferr != nil {
					return avalue.Value{}, ferr
				}
				row.Set(col, fv)
			}
			elems = append(elems, avalue.NewObject(row))
			d.pos++
		}
		return avalue.NewArray(elems), nil
	case hdr.inline != nil:
		fields := avalue.TrimOneTrailingSpace(avalue.SplitDelimited(*hdr.inline, d.delim))
		elems := make([]avalue.Value, len(fields))
		for i, f := range fields {
			v, ferr := decodeScalarText(f)
			if ferr != nil {
				return avalue.Value{}, ferr
			}
			elems[i] = v
		}
		return avalue.NewArray(elems), nil
	case hdr.isList:
		elems := make([]avalue.Value, 0, hdr.n)
		for i := 0; i < hdr.n; i++ {
			v, ierr := d.readListItem(depth + 1)
			if ierr != nil {
				return avalue.Value{}, ierr
			}
			elems = append(elems, v)
		}
		return avalue.NewArray(elems), nil
	default:
		return avalue.NewArray(nil), nil
	}
}

func (d *decoder) readListItem(itemDepth int) (avalue.Value, error) {
	if d.pos >= len(d.lines) {
		return avalue.Value{}, fmt.Errorf("rows: truncated list array")
	}
	dep, content := depthOf(d.lines[d.pos])
	if dep != itemDepth {
		return avalue.Value{}, fmt.Errorf("rows: bad list item indent")
	}
	if !strings.HasPrefix(content, "-") {
		return avalue.Value{}, fmt.Errorf("rows: expected list item, got %q", content)
	}
	rest := strings.TrimPrefix(content[1:], " ")
	if rest == "" {
		d.pos++
		return avalue.NewObject(avalue.NewOrderedObject()), nil
	}
	if rest[0] == '[' {
		d.pos++
		return d.readArrayBody(rest, itemDepth)
	}
	if key, krest, err := extractKey(rest); err == nil && len(krest) > 0 && krest[0] == ':' {
		remainder := strings.TrimPrefix(krest[1:], " ")
		fv, ferr := decodeScalarText(remainder)
		if ferr != nil {
			return avalue.Value{}, ferr
		}
		d.pos++
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
	d.pos++
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
			return nil, fmt.Errorf("rows: unexpected indent at line %d", d.pos)
		}
		key, rest, err := extractKey(content)
		if err != nil {
			return nil, err
		}
		if rest[0] == '[' {
			d.pos++
			val, verr := d.readArrayBody(rest, depth)
			if verr != nil {
				return nil, verr
			}
			obj.Set(key, val)
			continue
		}
		remainder := rest[1:]
		if remainder == "" {
			d.pos++
			child, cerr := d.parseObject(depth + 1)
			if cerr != nil {
				return nil, cerr
			}
			obj.Set(key, avalue.NewObject(child))
			continue
		}
		remainder = strings.TrimPrefix(remainder, " ")
		val, verr := decodeScalarText(remainder)
		if verr != nil {
			return nil, verr
		}
		obj.Set(key, val)
		d.pos++
	}
	return obj, nil
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
