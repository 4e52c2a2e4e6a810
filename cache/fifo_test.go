package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOInsertionOrder(t *testing.T) {
	var c = NewFIFO[string, int](3)

	c.Put("A", 1)
	c.Put("B", 2)
	c.Put("C", 3)
	_, _ = c.Get("A")
	_, _ = c.Get("A")
	c.Put("D", 4)

	require.ElementsMatch(t, []string{"B", "C", "D"}, c.Keys())
	require.False(t, c.Contains("A"))
}

func TestFIFOPinBlocksEviction(t *testing.T) {
	var c = NewFIFO[string, int](2)
	c.Put("A", 1)
	c.Put("B", 2)
	c.Pin("A")
	c.Put("C", 3)

	require.True(t, c.Contains("A"))
	require.False(t, c.Contains("B"))
	require.True(t, c.Contains("C"))
}

func TestFIFORemoveIdempotent(t *testing.T) {
	var c = NewFIFO[string, int](2)
	c.Put("a", 1)
	c.Remove("a")
	c.Remove("a")
	require.Equal(t, 0, c.Size())
}

func TestFIFOGetMiss(t *testing.T) {
	var c = NewFIFO[string, int](2)
	_, err := c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
