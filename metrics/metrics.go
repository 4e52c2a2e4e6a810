// Package metrics defines the prometheus collectors, registered with the
// default registry at package init, served by cmd/cachefsd, and updated by
// the coordinator package and cmd/cachefs-bench. Grounded on broker/stores/stores.go's promauto-registered
// gauge/counter block, adapted to this system's own cache/coordinator
// domain rather than fragment stores.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache hit/miss/eviction counters, labeled by shard index so a per-shard
// hot spot is visible in the same dashboard as the aggregate.
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachefs_cache_hits_total",
		Help: "Cumulative number of cache hits, labeled by shard.",
	}, []string{"shard"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachefs_cache_misses_total",
		Help: "Cumulative number of cache misses, labeled by shard.",
	}, []string{"shard"})

	CacheEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachefs_cache_evictions_total",
		Help: "Cumulative number of cache evictions, labeled by shard.",
	}, []string{"shard"})

	CachePrefetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cachefs_cache_prefetched_total",
		Help: "Cumulative number of cache prefetch insertions, labeled by shard.",
	}, []string{"shard"})
)

// CoordinatorOperationDuration observes the wall-clock duration of each
// coordinator operation, labeled by operation name and outcome.
var CoordinatorOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cachefs_coordinator_operation_duration_seconds",
	Help:    "Duration of filesystem coordinator operations.",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "outcome"})

// BlockStoreFreeBlocks reports the current count of unallocated blocks in
// the block store's bitmap.
var BlockStoreFreeBlocks = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cachefs_blockstore_free_blocks",
	Help: "Number of currently unallocated blocks in the block store.",
})

// ObserveOperation records the duration since start and the outcome ("ok"
// or "error", from *err at call time) against
// CoordinatorOperationDuration. Callers defer it with the error they will
// ultimately return:
//
//	defer metrics.ObserveOperation("ReadFile", time.Now(), &err)
func ObserveOperation(operation string, start time.Time, err *error) {
	var outcome = "ok"
	if err != nil && *err != nil {
		outcome = "error"
	}
	CoordinatorOperationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
