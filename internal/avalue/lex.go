package avalue

import "strings"

// SplitDelimited splits s on occurrences of delim that are not inside a
// double-quoted token, per spec §4.1's quoting grammar. Shared by the
// rows and columns decoders, both of which read delimiter-separated
// scalar fields that may themselves contain the delimiter when quoted.
func SplitDelimited(s string, delim string) []string {
	if s == "" {
		return nil
	}
	if delim == "" {
		delim = "\t"
	}
	var out []string
	i := 0
	for i < len(s) {
		start := i
		if s[i] == '"' {
			_, n, err := UnquoteString(s[i:])
			if err == nil {
				i += n
			} else {
				i++
			}
		}
		// advance to the next delimiter occurrence not inside the token
		// we just skipped (or, if not a quote, scan byte by byte).
		for i < len(s) && !strings.HasPrefix(s[i:], delim) {
			if s[i] == '"' && i == start {
				break
			}
			i++
		}
		out = append(out, s[start:i])
		if i < len(s) && strings.HasPrefix(s[i:], delim) {
			i += len(delim)
			if i == len(s) {
				out = append(out, "")
			}
		}
	}
	return out
}

// TrimOneTrailingSpace removes one leading ASCII space from every field
// after the first, i.e. a single space left trailing after a delimiter
// occurrence. The rows and columns decoders apply it to delimited
// fields, so an optional single space after every delimiter occurrence
// is accepted regardless of which delimiter is configured.
func TrimOneTrailingSpace(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if i > 0 && strings.HasPrefix(f, " ") {
			f = f[1:]
		}
		out[i] = f
	}
	return out
}
