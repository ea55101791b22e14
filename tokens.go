package agon

import "github.com/kestrelfmt/agon/tokencount"

// CountTokens counts text's tokens under encoding, or returns len(text)
// (bytes) when encoding is empty: the same proxy cost Encode uses for
// candidate selection (spec §4.2, §4.6), exposed directly for callers
// that want to cost arbitrary text themselves.
func CountTokens(text string, encoding string) (int, error) {
	n, err := tokencount.Count(text, encoding)
	if err != nil {
		return 0, newErr(ErrEncodingUnavailable, "%v", err)
	}
	return n, nil
}
