package tokencount

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountEmptyEncodingFallsBackToByteLength(t *testing.T) {
	n, err := Count("hello world", "")
	require.NoError(t, err)
	assert.Equal(t, len("hello world"), n)
}

func TestCountUnknownEncodingIsUnavailable(t *testing.T) {
	_, err := Count("hello", "not-a-real-encoding")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncodingUnavailable))
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := newLRUCache(2)
	ctx := t.Context()
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Set(ctx, "c", 3) // evicts "a"

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	v, ok := c.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = c.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestLRUCacheRefreshesOnGet(t *testing.T) {
	c := newLRUCache(2)
	ctx := t.Context()
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Get(ctx, "a") // "a" now more recently used than "b"
	c.Set(ctx, "c", 3)

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted, not a")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
}

func TestSegmenterMakesProgress(t *testing.T) {
	seg := newSegmenter()
	s := "hello, world!\n\n123456"
	i := 0
	iterations := 0
	for i < len(s) {
		end := seg.Next(s, i)
		require.Greater(t, end, i, "segmenter must always make forward progress")
		i = end
		iterations++
		require.Less(t, iterations, len(s)+1)
	}
}
