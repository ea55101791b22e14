package agon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokensUsesByteLengthWithoutEncoding(t *testing.T) {
	n, err := CountTokens("hello", "")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCountTokensRejectsUnknownEncoding(t *testing.T) {
	_, err := CountTokens("hello", "not-a-real-encoding")
	require.Error(t, err)
	assert.True(t, errorIsKindRoot(err, ErrEncodingUnavailable))
}

func errorIsKindRoot(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
