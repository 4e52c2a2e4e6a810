package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLFUFrequency(t *testing.T) {
	var c = NewLFU[int, string](2)

	c.Put(1, "a")
	c.Put(2, "b")
	_, _ = c.Get(1)
	_, _ = c.Get(1)
	_, _ = c.Get(2)
	c.Put(3, "c")

	require.ElementsMatch(t, []int{1, 3}, c.Keys())
	require.False(t, c.Contains(2))
}

func TestLFUTieBreakInsertionOrder(t *testing.T) {
	var c = NewLFU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	require.False(t, c.Contains("a"))
	require.True(t, c.Contains("b"))
}

func TestLFUPinBlocksEviction(t *testing.T) {
	var c = NewLFU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Pin("a")
	c.Put("c", 3)

	require.True(t, c.Contains("a"))
	require.False(t, c.Contains("b"))
	require.True(t, c.Contains("c"))
}

func TestLFURemoveIdempotent(t *testing.T) {
	var c = NewLFU[string, int](2)
	c.Put("a", 1)
	c.Remove("a")
	c.Remove("a")
	require.Equal(t, 0, c.Size())
}

func TestLFUGetMiss(t *testing.T) {
	var c = NewLFU[string, int](2)
	_, err := c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
