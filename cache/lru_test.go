package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRURecency(t *testing.T) {
	var c = NewLRU[int, string](3)

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	_, err := c.Get(1)
	require.NoError(t, err)
	c.Put(4, "d")

	require.ElementsMatch(t, []int{1, 3, 4}, c.Keys())
	require.False(t, c.Contains(2))

	var report = c.Statistics()
	require.EqualValues(t, 1, report.Hits)
	require.EqualValues(t, 0, report.Misses)
	require.EqualValues(t, 1, report.Evictions)
}

func TestLRUGetMiss(t *testing.T) {
	var c = NewLRU[string, int](2)
	_, err := c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualValues(t, 1, c.Statistics().Misses)
}

func TestLRUPinBlocksEviction(t *testing.T) {
	var c = NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Pin("a")
	c.Put("c", 3)

	require.True(t, c.Contains("a"))
	require.False(t, c.Contains("b"))
	require.True(t, c.Contains("c"))
}

func TestLRUAllPinnedExceedsCapacity(t *testing.T) {
	var c = NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Pin("a")
	c.Pin("b")
	c.Put("c", 3)

	require.Equal(t, 3, c.Size())
	require.True(t, c.Contains("a"))
	require.True(t, c.Contains("b"))
	require.True(t, c.Contains("c"))
}

func TestLRUZeroCapacity(t *testing.T) {
	var c = NewLRU[string, int](0)
	c.Put("a", 1)
	require.Equal(t, 0, c.Size())
	_, err := c.Get("a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLRURemoveIdempotent(t *testing.T) {
	var c = NewLRU[string, int](2)
	c.Put("a", 1)
	c.Remove("a")
	c.Remove("a")
	require.Equal(t, 0, c.Size())
}

func TestLRUPrefetchDoesNotCountAsHitOrMiss(t *testing.T) {
	var c = NewLRU[string, int](2)
	c.Prefetch("a", 1)

	var report = c.Statistics()
	require.EqualValues(t, 0, report.Hits)
	require.EqualValues(t, 0, report.Misses)
	require.EqualValues(t, 1, report.Prefetched)
	require.True(t, c.Contains("a"))
}
