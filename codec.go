package agon

import (
	"strings"

	"github.com/kestrelfmt/agon/columns"
	"github.com/kestrelfmt/agon/rows"
	"github.com/kestrelfmt/agon/structfmt"
)

// Decode parses text produced by Encode (or raw JSON) back into a Value
// (spec §4.7). It trims leading whitespace, dispatches on the header
// line, and falls through to strict JSON when no AGON header matches.
func Decode(text string) (Value, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	switch {
	case strings.HasPrefix(trimmed, rows.Header):
		v, err := rows.Decode(trimmed)
		if err != nil {
			return Value{}, newErr(ErrInvalidPayload, "rows: %v", err)
		}
		return v, nil
	case strings.HasPrefix(trimmed, columns.Header):
		v, err := columns.Decode(trimmed)
		if err != nil {
			return Value{}, newErr(ErrInvalidPayload, "columns: %v", err)
		}
		return v, nil
	case strings.HasPrefix(trimmed, structfmt.Header):
		v, err := structfmt.Decode(trimmed)
		if err != nil {
			return Value{}, newErr(ErrInvalidPayload, "struct: %v", err)
		}
		return v, nil
	default:
		v, err := ParseJSON([]byte(trimmed))
		if err != nil {
			return Value{}, newErr(ErrInvalidPayload, "not valid JSON and no AGON header matched: %v", err)
		}
		return v, nil
	}
}

// DecodeResult decodes r.Text, ignoring r.Format (the header line is
// self-describing, so a mismatched Format field never causes a
// misdecode).
func DecodeResult(r EncodingResult) (Value, error) { return Decode(r.Text) }
