package agon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeExplicitFormatBypassesSelector(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a":1,"b":2}`))
	require.NoError(t, err)
	res, err := Encode(t.Context(), v, Options{Format: FormatRows})
	require.NoError(t, err)
	assert.Equal(t, FormatRows, res.Format)
	assert.Contains(t, res.Text, "@AGON rows")
}

func TestEncodeAutoPicksSmallerTabularFormat(t *testing.T) {
	v, err := ParseJSON([]byte(`[{"id":1,"name":"ada"},{"id":2,"name":"grace"},{"id":3,"name":"lin"}]`))
	require.NoError(t, err)
	res, err := Encode(t.Context(), v, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, FormatJSON, res.Format, "a uniform tabular array should beat raw JSON by more than the default min savings")
}

func TestEncodeFallsBackToJSONWhenSavingsInsufficient(t *testing.T) {
	v, err := ParseJSON([]byte(`1`))
	require.NoError(t, err)
	res, err := Encode(t.Context(), v, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, res.Format)
	assert.Equal(t, "1", res.Text)
}

func TestEncodeForceSkipsJSONFallback(t *testing.T) {
	v, err := ParseJSON([]byte(`1`))
	require.NoError(t, err)
	res, err := Encode(t.Context(), v, Options{Force: true})
	require.NoError(t, err)
	assert.NotEqual(t, FormatJSON, res.Format)
}

func TestEncodeDecodeRoundTripAcrossFormats(t *testing.T) {
	v, err := ParseJSON([]byte(`{"users":[{"id":1,"name":"ada"},{"id":2,"name":"grace"}],"tag":"x"}`))
	require.NoError(t, err)
	for _, f := range []Format{FormatJSON, FormatRows, FormatColumns, FormatStruct} {
		res, err := Encode(t.Context(), v, Options{Format: f})
		require.NoError(t, err, "format %s", f)
		got, err := Decode(res.Text)
		require.NoError(t, err, "format %s:\n%s", f, res.Text)
		assert.True(t, ValueEqual(v, got), "format %s", f)
	}
}
