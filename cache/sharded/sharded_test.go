package sharded

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/worker"
)

func TestShardedPutGet(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[string](4, cache.KindLRU, 8, pool)
	c.Put("a", "1")
	c.Put("b", "2")

	var v, err = c.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", v)
	require.True(t, c.Contains("b"))
}

func TestShardedStatisticsAggregatesAcrossShards(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](8, cache.KindLRU, 8, pool)
	for i := 0; i < 64; i++ {
		var key = "key" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		c.Put(key, i)
		_, _ = c.Get(key)
	}
	var report = c.Statistics()
	require.EqualValues(t, 64, report.Hits)
}

func TestShardedGetAsync(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[string](2, cache.KindLRU, 4, pool)
	c.Put("k", "v")

	var f = c.GetAsync("k")
	var v, err = f.Wait()
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestShardedGetBatchPreservesOrder(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 4)
	defer pool.Stop()

	var c = New[int](4, cache.KindLRU, 8, pool)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	var results = c.GetBatch(context.Background(), []string{"a", "b", "c", "missing"})
	require.Len(t, results, 4)
	require.Equal(t, "a", results[0].Key)
	require.Equal(t, 1, results[0].Value)
	require.Error(t, results[3].Err)
}

func TestShardedClearEmptiesEveryShard(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](4, cache.KindLRU, 8, pool)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	require.False(t, c.Contains("a"))
	require.False(t, c.Contains("b"))
}

func TestShardedOptimizationLoopStartStopIdempotent(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](2, cache.KindLRU, 4, pool)
	c.StartOptimizationLoop(5*time.Millisecond, 3)
	c.StartOptimizationLoop(5*time.Millisecond, 3)
	time.Sleep(20 * time.Millisecond)
	c.StopOptimizationLoop()
	c.StopOptimizationLoop()
}

func TestShardedSwitchPolicyDiscardsData(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](4, cache.KindLRU, 8, pool)
	c.Put("a", 1)
	c.Put("b", 2)

	c.SwitchPolicy(cache.KindLFU, 8)

	require.False(t, c.Contains("a"))
	require.False(t, c.Contains("b"))

	c.Put("c", 3)
	var v, err = c.Get("c")
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestShardedResizeDiscardsData(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](2, cache.KindLRU, 8, pool)
	c.Put("a", 1)

	c.Resize(2)

	require.False(t, c.Contains("a"))
	for _, s := range c.shards {
		require.Equal(t, 2, s.manager.Capacity())
	}
}

func TestShardedCleanupLoopResetsStatistics(t *testing.T) {
	var pool = worker.NewPool(context.Background(), 2)
	defer pool.Stop()

	var c = New[int](1, cache.KindLRU, 4, pool)
	c.Put("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	c.StartCleanupLoop(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	c.StopCleanupLoop()

	require.EqualValues(t, 0, c.Statistics().Hits)
}
