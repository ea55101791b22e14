package avalue

import (
	"strconv"
	"strings"
)

// reservedLead is the set of characters that force quoting when a string
// starts with one of them (spec §4.1), since an unquoted leading
// character from this set would otherwise be read as format syntax
// (array-size marker, tabular header, list item, key separator, ...).
const reservedLead = "@-[{\"#:,}"

// NeedsQuote reports whether s must be rendered as a double-quoted,
// backslash-escaped string under the given active delimiter, per the
// predicate in spec §4.1.
func NeedsQuote(s string, delim string) bool {
	if s == "" {
		return true
	}
	if isASCIISpace(s[0]) || isASCIISpace(s[len(s)-1]) {
		return true
	}
	if delim != "" && strings.Contains(s, delim) {
		return true
	}
	if strings.ContainsAny(s, "\n\r\"") {
		return true
	}
	if strings.IndexByte(reservedLead, s[0]) >= 0 {
		return true
	}
	if looksLikeNumber(s) || looksLikeBoolOrNull(s) {
		return true
	}
	return false
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func looksLikeBoolOrNull(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	default:
		return false
	}
}

func looksLikeNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// QuoteString renders s as a double-quoted, escaped token: backslash and
// double-quote are backslash-escaped, tab and newline become \t and \n.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EncodeStringToken renders s as a bare token if it is safe to, or a
// quoted token otherwise, under the active delimiter.
func EncodeStringToken(s string, delim string) string {
	if NeedsQuote(s, delim) {
		return QuoteString(s)
	}
	return s
}

// UnquoteString decodes a quoted token (the leading '"' must still be
// present at s[0]) and returns the decoded string plus the number of
// input bytes consumed, including both quote characters.
func UnquoteString(s string) (string, int, error) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0, errInvalidQuote("missing opening quote")
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			return b.String(), i + 1, nil
		}
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, errInvalidQuote("unterminated quoted string")
}

type quoteError string

func (e quoteError) Error() string { return "avalue: " + string(e) }

func errInvalidQuote(msg string) error { return quoteError(msg) }

// ParseScalarToken converts a bare (unquoted) token to its scalar Value:
// null/true/false literals, integers, finite floats, else a plain string
// (spec §4.1's "String parsing").
func ParseScalarToken(tok string) Value {
	switch tok {
	case "null":
		return Null
	case "true":
		return NewBool(true)
	case "false":
		return NewBool(false)
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return NewInt(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return NewFloat(f)
	}
	return NewStr(tok)
}

// EncodeScalar renders any scalar Value as an AGON token: quoted if it is
// a string requiring quoting, otherwise the literal form from FormatScalar.
func EncodeScalar(v Value, delim string) string {
	if v.Kind == KindStr {
		return EncodeStringToken(v.Str, delim)
	}
	return FormatScalar(v)
}
