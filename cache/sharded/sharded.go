// Package sharded implements the concurrent cache façade: a fixed-N array
// of independent cache.Manager shards, keyed by an FNV-1a hash of the
// string key, each guarded by its own read/write lock. It turns the
// single-policy cache engine into a thread-safe, asynchronous store
// suitable for high-fanout workloads without ever holding one shard's lock
// across a call into another shard.
package sharded

import (
	"context"
	"hash/fnv"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.cachefs.dev/core/async"
	"go.cachefs.dev/core/cache"
	"go.cachefs.dev/core/worker"
)

type shard[V any] struct {
	mu      sync.RWMutex
	manager *cache.Manager[string, V]
}

// Cache is the sharded concurrent cache façade. Keys route to shards by
// fnv1a(key) % N; operations against the same key are serialized by that
// shard's lock, and operations against different keys may proceed in
// parallel with no cross-shard ordering guarantee.
type Cache[V any] struct {
	shards []*shard[V]
	pool   *worker.Pool

	bgMu    sync.Mutex
	bgState *background
}

// New constructs a Cache with shardCount independent shards, each running
// policy kind at capacityPerShard. pool is the shared worker pool used by
// the *Async operations; the *Batch operations do not submit to it.
func New[V any](shardCount int, kind cache.Kind, capacityPerShard int, pool *worker.Pool) *Cache[V] {
	if shardCount < 1 {
		shardCount = 1
	}
	var shards = make([]*shard[V], shardCount)
	for i := range shards {
		shards[i] = &shard[V]{manager: cache.NewManager[string, V](kind, capacityPerShard)}
	}
	return &Cache[V]{shards: shards, pool: pool}
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	var h = fnv.New64a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum64()%uint64(len(c.shards))]
}

// ShardCount returns the number of shards the Cache was constructed with.
func (c *Cache[V]) ShardCount() int { return len(c.shards) }

// ShardStatistics returns a snapshot of a single shard's Report, for
// callers (e.g. a metrics exporter) that need per-shard counters rather
// than the pool-wide aggregate Statistics returns.
func (c *Cache[V]) ShardStatistics(i int) cache.Report {
	var s = c.shards[i]
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manager.Statistics()
}

func (c *Cache[V]) Put(key string, value V) {
	var s = c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Put(key, value)
}

func (c *Cache[V]) Get(key string) (V, error) {
	var s = c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manager.Get(key)
}

func (c *Cache[V]) Contains(key string) bool {
	var s = c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manager.Contains(key)
}

func (c *Cache[V]) Remove(key string) {
	var s = c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Remove(key)
}

func (c *Cache[V]) Pin(key string) {
	var s = c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Pin(key)
}

func (c *Cache[V]) Unpin(key string) {
	var s = c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Unpin(key)
}

func (c *Cache[V]) Prefetch(key string, value V) {
	var s = c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Prefetch(key, value)
}

// Clear resets every shard. Shards are locked one at a time, in a fixed
// order, never more than one held at once.
func (c *Cache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.manager.Clear()
		s.mu.Unlock()
	}
}

// SwitchPolicy reconstructs every shard's policy cache as kind at
// capacityPerShard, discarding all resident data, the same loses-data-by
// contract as cache.Manager.SwitchPolicy. Shards are locked one at a time,
// in a fixed order, never more than one held at once, matching Clear.
func (c *Cache[V]) SwitchPolicy(kind cache.Kind, capacityPerShard int) {
	for _, s := range c.shards {
		s.mu.Lock()
		s.manager.SwitchPolicy(kind, capacityPerShard)
		s.mu.Unlock()
	}
}

// Resize reconstructs every shard's policy cache at the new capacity,
// keeping each shard's current Kind, again discarding resident data.
func (c *Cache[V]) Resize(capacityPerShard int) {
	for _, s := range c.shards {
		s.mu.Lock()
		s.manager.Resize(capacityPerShard)
		s.mu.Unlock()
	}
}

// Statistics returns a snapshot-sum across every shard. Because each
// shard's counters are read independently, the aggregate may observe
// in-flight counts from other shards (§5, Ordering guarantees).
func (c *Cache[V]) Statistics() cache.Report {
	var agg cache.Report
	for _, s := range c.shards {
		s.mu.RLock()
		var r = s.manager.Statistics()
		s.mu.RUnlock()

		agg.Hits += r.Hits
		agg.Misses += r.Misses
		agg.Evictions += r.Evictions
		agg.Prefetched += r.Prefetched
		agg.TotalAccesses += r.TotalAccesses
		agg.PinnedCount += r.PinnedCount
	}
	if agg.TotalAccesses > 0 {
		agg.HitRate = float64(agg.Hits) / float64(agg.TotalAccesses)
	}
	return agg
}

// PutAsync submits a Put to the shared worker pool and returns a Future
// resolving once it runs.
func (c *Cache[V]) PutAsync(key string, value V) *async.Future[struct{}] {
	var f = async.NewFuture[struct{}]()
	c.pool.Submit(func(ctx context.Context) (interface{}, error) {
		c.Put(key, value)
		return struct{}{}, nil
	}, func(v interface{}, err error) {
		f.Resolve(struct{}{}, err)
	})
	return f
}

// GetAsync submits a Get to the shared worker pool and returns a Future
// resolving to the eventual value or error.
func (c *Cache[V]) GetAsync(key string) *async.Future[V] {
	var f = async.NewFuture[V]()
	c.pool.Submit(func(ctx context.Context) (interface{}, error) {
		return c.Get(key)
	}, func(v interface{}, err error) {
		var value V
		if v != nil {
			value = v.(V)
		}
		f.Resolve(value, err)
	})
	return f
}

// RemoveAsync submits a Remove to the shared worker pool.
func (c *Cache[V]) RemoveAsync(key string) *async.Future[struct{}] {
	var f = async.NewFuture[struct{}]()
	c.pool.Submit(func(ctx context.Context) (interface{}, error) {
		c.Remove(key)
		return struct{}{}, nil
	}, func(v interface{}, err error) {
		f.Resolve(struct{}{}, err)
	})
	return f
}

// BatchResult is a single item's outcome from a *Batch call, in the same
// position as its key in the input slice.
type BatchResult[V any] struct {
	Key   string
	Value V
	Err   error
}

// GetBatch fans a Get out per key, one errgroup goroutine per key,
// collecting results in input order. A per-item error does not abort the
// other items. The items do not run on the shared worker pool and are not
// returned as futures.
func (c *Cache[V]) GetBatch(ctx context.Context, keys []string) []BatchResult[V] {
	var results = make([]BatchResult[V], len(keys))
	var eg, _ = errgroup.WithContext(ctx)

	for i, key := range keys {
		var i, key = i, key
		eg.Go(func() error {
			var v, err = c.Get(key)
			results[i] = BatchResult[V]{Key: key, Value: v, Err: err}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// PutBatch fans a Put out per pair, one errgroup goroutine per pair; like
// GetBatch, it does not use the shared worker pool.
func (c *Cache[V]) PutBatch(ctx context.Context, pairs []cache.KeyValue[string, V]) []BatchResult[V] {
	var results = make([]BatchResult[V], len(pairs))
	var eg, _ = errgroup.WithContext(ctx)

	for i, pair := range pairs {
		var i, pair = i, pair
		eg.Go(func() error {
			c.Put(pair.Key, pair.Value)
			results[i] = BatchResult[V]{Key: pair.Key, Value: pair.Value}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
