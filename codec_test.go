package agon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDispatchesOnHeader(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a":1,"b":[1,2,3]}`))
	require.NoError(t, err)
	for _, f := range []Format{FormatJSON, FormatRows, FormatColumns, FormatStruct} {
		res, err := Encode(t.Context(), v, Options{Format: f})
		require.NoError(t, err)
		got, err := Decode(res.Text)
		require.NoError(t, err, "format %s", f)
		assert.True(t, ValueEqual(v, got), "format %s", f)
	}
}

func TestDecodeLeadingWhitespaceIsTrimmed(t *testing.T) {
	got, err := Decode("\n\n  {\"a\":1}")
	require.NoError(t, err)
	assert.True(t, ValueEqual(Int(1), mustGet(t, got, "a")))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not json and no agon header")
	assert.Error(t, err)
}

func mustGet(t *testing.T, v Value, key string) Value {
	t.Helper()
	fv, ok := v.Obj.Get(key)
	require.True(t, ok)
	return fv
}
