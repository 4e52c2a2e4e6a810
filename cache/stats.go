package cache

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Statistics holds the atomic counters backing a policy cache's live stats,
// per §3: hits, misses, evictions, prefetches, and the timestamp of the
// last reset. Counters are updated with atomic instructions so that readers
// never observe a torn field (§9, Statistics races); derived quantities
// like hit rate are computed at read time from a Report, never stored.
type Statistics struct {
	hits       atomic.Int64
	misses     atomic.Int64
	evictions  atomic.Int64
	prefetched atomic.Int64
	lastReset  atomic.Int64 // unix nanos
}

// Report is a read-copy snapshot of Statistics plus the caller-supplied
// pinned count, suitable for rendering or serialization.
type Report struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	Prefetched    int64
	TotalAccesses int64
	PinnedCount   int
	HitRate       float64
	LastReset     time.Time
}

func newStatistics() *Statistics {
	var s = &Statistics{}
	s.lastReset.Store(time.Now().UnixNano())
	return s
}

func (s *Statistics) recordHit()      { s.hits.Add(1) }
func (s *Statistics) recordMiss()     { s.misses.Add(1) }
func (s *Statistics) recordEviction() { s.evictions.Add(1) }
func (s *Statistics) recordPrefetch() { s.prefetched.Add(1) }

// reset zeros every counter and stamps lastReset, per ResetStatistics.
func (s *Statistics) reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
	s.prefetched.Store(0)
	s.lastReset.Store(time.Now().UnixNano())
}

// report builds a Report snapshot. pinnedCount is supplied by the caller
// since the pinned set is owned by the policy, not by Statistics.
func (s *Statistics) report(pinnedCount int) Report {
	var hits, misses = s.hits.Load(), s.misses.Load()
	var total = hits + misses

	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Report{
		Hits:          hits,
		Misses:        misses,
		Evictions:     s.evictions.Load(),
		Prefetched:    s.prefetched.Load(),
		TotalAccesses: total,
		PinnedCount:   pinnedCount,
		HitRate:       rate,
		LastReset:     time.Unix(0, s.lastReset.Load()),
	}
}

// String renders the Report in the teacher's plain-text analytics style,
// for logs and terminals without a table renderer.
func (r Report) String() string {
	return fmt.Sprintf(
		"hits=%d misses=%d evictions=%d prefetched=%d total=%d pinned=%d hit_rate=%.4f",
		r.Hits, r.Misses, r.Evictions, r.Prefetched, r.TotalAccesses, r.PinnedCount, r.HitRate,
	)
}
