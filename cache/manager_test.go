package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerProxiesPolicy(t *testing.T) {
	var m = NewManager[string, int](KindLRU, 2)
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	require.False(t, m.Contains("a"))
	require.Equal(t, 2, m.Size())
	require.Equal(t, KindLRU, m.Kind())
}

func TestManagerSwitchPolicyDiscardsData(t *testing.T) {
	var m = NewManager[string, int](KindLRU, 4)
	m.Put("a", 1)
	require.Equal(t, 1, m.Size())

	m.SwitchPolicy(KindLFU, 4)
	require.Equal(t, 0, m.Size())
	require.Equal(t, KindLFU, m.Kind())
}

func TestManagerResizeDiscardsData(t *testing.T) {
	var m = NewManager[string, int](KindFIFO, 4)
	m.Put("a", 1)
	m.Resize(2)
	require.Equal(t, 0, m.Size())
	require.Equal(t, 2, m.Capacity())
}

func TestManagerWarmUpUsesPrefetch(t *testing.T) {
	var m = NewManager[string, int](KindLRU, 4)
	m.WarmUp([]KeyValue[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}})

	require.Equal(t, 2, m.Size())
	require.EqualValues(t, 2, m.Statistics().Prefetched)
	require.EqualValues(t, 0, m.Statistics().Hits)
}

func TestManagerHotKeysOrdersByAccessCount(t *testing.T) {
	var m = NewManager[string, int](KindLRU, 4)
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	_, _ = m.Get("c")
	_, _ = m.Get("c")
	_, _ = m.Get("b")

	var hot = m.HotKeys(2)
	require.Equal(t, []string{"c", "b"}, hot)
}

func TestManagerAnalyticsReportIncludesKindAndCapacity(t *testing.T) {
	var m = NewManager[string, int](KindLIFO, 3)
	m.Put("a", 1)

	var report = m.AnalyticsReport()
	require.Contains(t, report, "lifo")
	require.Contains(t, report, "capacity=3")
}
