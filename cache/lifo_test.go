package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLIFOStackOrder(t *testing.T) {
	var c = NewLIFO[string, int](3)

	c.Put("A", 1)
	c.Put("B", 2)
	c.Put("C", 3)
	c.Put("D", 4)

	require.ElementsMatch(t, []string{"A", "B", "D"}, c.Keys())
	require.False(t, c.Contains("C"))
}

func TestLIFOPinRestoresToStack(t *testing.T) {
	var c = NewLIFO[string, int](2)
	c.Put("A", 1)
	c.Put("B", 2)
	c.Pin("B")
	c.Put("C", 3)

	require.True(t, c.Contains("B"))
	require.False(t, c.Contains("A"))
	require.True(t, c.Contains("C"))
}

func TestLIFORemoveIdempotent(t *testing.T) {
	var c = NewLIFO[string, int](2)
	c.Put("a", 1)
	c.Remove("a")
	c.Remove("a")
	require.Equal(t, 0, c.Size())
}

func TestLIFOGetMiss(t *testing.T) {
	var c = NewLIFO[string, int](2)
	_, err := c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
