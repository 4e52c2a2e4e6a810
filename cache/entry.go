// Package cache implements the polymorphic cache engine: four eviction
// policies (LRU, LFU, FIFO, LIFO) behind a single Policy contract, a manager
// that owns exactly one policy cache at a time, and the statistics both
// track. See the sharded subpackage for the thread-safe, multi-shard façade
// built on top of a single Policy cache.
package cache

import "time"

// Handle addresses an Entry within an arena. alloc issues handles as slot
// indices starting at zero, so a policy that needs a "no entry" sentinel
// uses a negative value (LRU's noHandle is -1).
type Handle int

// Entry is a record per cached key, per §3 of the data model: key, value,
// monotonic access count, last-accessed and created-at timestamps, and a
// pinned flag. Every policy implementation addresses entries exclusively
// through a Handle rather than a pointer, matching the handle-arena
// discipline used in place of the source's manual pointer chasing.
type Entry[K comparable, V any] struct {
	Key          K
	Value        V
	AccessCount  int64
	CreatedAt    time.Time
	LastAccessed time.Time
	Pinned       bool
}

// arena is a dense, reusable store of Entry values addressed by Handle. All
// four policy implementations embed one; none of them chases raw pointers
// between an ordering structure and a map the way a doubly linked list
// normally would.
type arena[K comparable, V any] struct {
	entries []Entry[K, V]
	free    []Handle
}

// alloc returns a Handle for a fresh Entry, reusing a freed slot when one is
// available.
func (a *arena[K, V]) alloc(key K, value V, now time.Time) Handle {
	var e = Entry[K, V]{Key: key, Value: value, CreatedAt: now, LastAccessed: now}

	if n := len(a.free); n > 0 {
		var h = a.free[n-1]
		a.free = a.free[:n-1]
		a.entries[h] = e
		return h
	}
	a.entries = append(a.entries, e)
	return Handle(len(a.entries) - 1)
}

// release returns h to the free list. The caller must have already removed
// every reference to h from its own bookkeeping structures.
func (a *arena[K, V]) release(h Handle) {
	a.free = append(a.free, h)
}

// at returns a pointer to the Entry addressed by h for in-place mutation
// (access count, timestamp, pin flag).
func (a *arena[K, V]) at(h Handle) *Entry[K, V] {
	return &a.entries[h]
}
