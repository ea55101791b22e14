package columns

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelfmt/agon/internal/avalue"
)

// glyph prefixes the decoder accepts regardless of which the encoder
// chose (spec §4.4: "Accepts both Unicode and ASCII glyphs").
var glyphPrefixes = []string{"├ ", "└ ", "| ", "` "}

// Decode parses text produced by Encode back into a Value.
func Decode(text string) (avalue.Value, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || lines[0] != Header {
		return avalue.Value{}, fmt.Errorf("columns: missing %q header", Header)
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
		return avalue.Value{}, fmt.Errorf("columns: unexpected indent on first line")
	}

	d := &decoder{lines: body, delim: delim}
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

func extractKey(content string) (key string, rest string, err error) {
	if content == "" {
		return "", "", fmt.Errorf("columns: empty key line")
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
		return "", "", fmt.Errorf("columns: no key marker")
	}
	return content[:idx], content[idx:], nil
}

type arrayHeader struct {
	n       int
	tabular bool
	inline  *string
	isList  bool
}

func parseArrayHeader(rest string) (arrayHeader, error) {
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return arrayHeader{}, fmt.Errorf("columns: unterminated array length")
	}
	n, err := strconv.Atoi(rest[1:end])
	if err != nil {
		return arrayHeader{}, fmt.Errorf("columns: bad array length %q: %w", rest[1:end], err)
	}
	after := rest[end+1:]
	if after == "" {
		return arrayHeader{n: n, tabular: true}, nil
	}
	if after[0] != ':' {
		return arrayHeader{}, fmt.Errorf("columns: malformed array header %q", rest)
	}
	remainder := after[1:]
	if remainder == "" {
		return arrayHeader{n: n, isList: true}, nil
	}
	remainder = strings.TrimPrefix(remainder, " ")
	return arrayHeader{n: n, inline: &remainder}, nil
}

func stripGlyph(content string) (string, bool) {
	for _, g := range glyphPrefixes {
		if strings.HasPrefix(content, g) {
			return strings.TrimPrefix(content, g), true
		}
	}
	return content, false
}

func (d *decoder) readArrayBody(rest string, depth int) (avalue.Value, error) {
	hdr, err := parseArrayHeader(rest)
	if err != nil {
		return avalue.Value{}, err
	}
	switch {
	case hdr.tabular:
		// Read column lines until indentation returns to depth or we run
		// out of input; each line carries one column's full CSV run.
		var order []string
		values := make(map[string][]avalue.Value)
		present := make(map[string][]bool)
		for d.pos < len(d.lines) {
			dep, content := depthOf(d.lines[d.pos])
			if dep != depth+1 {
				break
			}
			rest, ok := stripGlyph(content)
			if !ok {
				break
			}
			idx := strings.Index(rest, ": ")
			if idx < 0 {
				return avalue.Value{}, fmt.Errorf("columns: malformed column line %q", content)
			}
			colTok, csv := rest[:idx], rest[idx+2:]
			col, _, kerr := decodeKeyToken(colTok)
			if kerr != nil {
				return avalue.Value{}, kerr
			}
			fields := avalue.TrimOneTrailingSpace(avalue.SplitDelimited(csv, d.delim))
			vals := make([]avalue.Value, len(fields))
			has := make([]bool, len(fields))
			for i, f := range fields {
				if f == "" {
					continue
				}
				v, verr := decodeScalarText(f)
				if verr != nil {
					return avalue.Value{}, verr
				}
				vals[i] = v
				has[i] = true
			}
			order = append(order, col)
			values[col] = vals
			present[col] = has
			d.pos++
		}
		rows := make([]avalue.Value, hdr.n)
		for i := 0; i < hdr.n; i++ {
			row := avalue.NewOrderedObject()
			for _, col := range order {
				if i < len(present[col]) && present[col][i] {
					row.Set(col, values[col][i])
				}
			}
			rows[i] = avalue.NewObject(row)
		}
		return avalue.NewArray(rows), nil
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
		return avalue.Value{}, fmt.Errorf("columns: truncated list array")
	}
	dep, content := depthOf(d.lines[d.pos])
	if dep != itemDepth {
		return avalue.Value{}, fmt.Errorf("columns: bad list item indent")
	}
	if !strings.HasPrefix(content, "-") {
		return avalue.Value{}, fmt.Errorf("columns: expected list item, got %q", content)
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
			return nil, fmt.Errorf("columns: unexpected indent at line %d", d.pos)
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
