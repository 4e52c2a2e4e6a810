package cache

import "go.cachefs.dev/core/fserr"

// ErrNotFound is returned by Get when key is not resident. It is distinct
// from a present-but-zero-value result: callers distinguish the two with a
// plain nil-error check, never by comparing the returned value to a zero
// value.
var ErrNotFound = fserr.New(fserr.Protocol, "cache.Get", "key not present")

// Policy is the capability set every eviction discipline implements: insert,
// lookup, evict, and introspect. LRU, LFU, FIFO, and LIFO each satisfy this
// interface with their own private ordering structure; there is no shared
// base implementation beyond the entry arena in entry.go.
type Policy[K comparable, V any] interface {
	// Put inserts or updates key. If key is new and the cache is at
	// capacity, one entry is evicted first. A zero-capacity cache treats
	// every Put as a no-op.
	Put(key K, value V)

	// Get returns the value for key and records a hit, applying the
	// policy's re-ordering rule; on a miss it records a miss and returns
	// ErrNotFound.
	Get(key K) (V, error)

	// Contains is a side-effect-free membership test; it does not count
	// as an access.
	Contains(key K) bool

	// Remove evicts key if present, and discards it from the pinned set.
	// Remove on an absent key is a no-op.
	Remove(key K)

	// Clear drops every entry, the pinned set, and the policy ordering.
	Clear()

	// Pin marks a resident key as ineligible for eviction. Pinning a
	// non-resident key is a no-op.
	Pin(key K)

	// Unpin reverses Pin. Unpinning an already-unpinned or non-resident
	// key is a no-op.
	Unpin(key K)

	// Prefetch inserts key if absent (evicting if necessary) or updates
	// it if present, without counting as a hit or a miss.
	Prefetch(key K, value V)

	// Size returns the number of resident entries.
	Size() int

	// Capacity returns the configured maximum resident entry count.
	Capacity() int

	// Keys returns every resident key, in no particular order.
	Keys() []K

	// Statistics returns a snapshot Report of the cache's counters.
	Statistics() Report

	// ResetStatistics zeros every counter and stamps a new reset time.
	ResetStatistics()
}
