package cache

import (
	"fmt"
	"sort"
	"sync"
)

// Kind names one of the four eviction disciplines a Manager can run.
type Kind int

const (
	KindLRU Kind = iota
	KindLFU
	KindFIFO
	KindLIFO
)

func (k Kind) String() string {
	switch k {
	case KindLRU:
		return "lru"
	case KindLFU:
		return "lfu"
	case KindFIFO:
		return "fifo"
	case KindLIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// entryLister is satisfied by every concrete policy, giving the Manager
// access to resident entries for the hot-keys view without widening the
// Policy contract itself.
type entryLister[K comparable, V any] interface {
	Entries() []Entry[K, V]
}

func newPolicy[K comparable, V any](kind Kind, capacity int) Policy[K, V] {
	switch kind {
	case KindLFU:
		return NewLFU[K, V](capacity)
	case KindFIFO:
		return NewFIFO[K, V](capacity)
	case KindLIFO:
		return NewLIFO[K, V](capacity)
	default:
		return NewLRU[K, V](capacity)
	}
}

// Manager owns exactly one policy cache at a time and proxies every
// operation behind an internal mutex, so that a policy switch or a resize
// is atomic with respect to concurrent user operations.
type Manager[K comparable, V any] struct {
	mu       sync.Mutex
	kind     Kind
	capacity int
	policy   Policy[K, V]
}

// NewManager constructs a Manager running the given policy Kind at the
// given capacity.
func NewManager[K comparable, V any](kind Kind, capacity int) *Manager[K, V] {
	return &Manager[K, V]{kind: kind, capacity: capacity, policy: newPolicy[K, V](kind, capacity)}
}

func (m *Manager[K, V]) Put(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Put(key, value)
}

func (m *Manager[K, V]) Get(key K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Get(key)
}

func (m *Manager[K, V]) Contains(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Contains(key)
}

func (m *Manager[K, V]) Remove(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Remove(key)
}

func (m *Manager[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Clear()
}

func (m *Manager[K, V]) Pin(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Pin(key)
}

func (m *Manager[K, V]) Unpin(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Unpin(key)
}

func (m *Manager[K, V]) Prefetch(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.Prefetch(key, value)
}

func (m *Manager[K, V]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Size()
}

func (m *Manager[K, V]) Capacity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Capacity()
}

func (m *Manager[K, V]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Keys()
}

func (m *Manager[K, V]) Statistics() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy.Statistics()
}

func (m *Manager[K, V]) ResetStatistics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy.ResetStatistics()
}

// Kind reports the currently active policy.
func (m *Manager[K, V]) Kind() Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// SwitchPolicy discards the current policy cache and constructs a new one
// of the requested Kind and capacity. This loses resident data by
// contract (§9): callers who want to preserve their working set must
// re-warm with WarmUp after switching.
func (m *Manager[K, V]) SwitchPolicy(kind Kind, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kind, m.capacity = kind, capacity
	m.policy = newPolicy[K, V](kind, capacity)
}

// Resize discards the current policy cache and constructs a new one of the
// same Kind at the new capacity. Like SwitchPolicy, this loses resident
// data by contract.
func (m *Manager[K, V]) Resize(capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacity = capacity
	m.policy = newPolicy[K, V](m.kind, capacity)
}

// WarmUp inserts a batch of (key, value) pairs via Prefetch, so the warm-up
// does not perturb hit/miss statistics.
func (m *Manager[K, V]) WarmUp(pairs []KeyValue[K, V]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairs {
		m.policy.Prefetch(p.Key, p.Value)
	}
}

// KeyValue is a single pair in a WarmUp batch.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// HotKeys returns up to n resident keys ordered by descending access count,
// ties broken by most-recent access.
func (m *Manager[K, V]) HotKeys(n int) []K {
	m.mu.Lock()
	defer m.mu.Unlock()

	lister, ok := m.policy.(entryLister[K, V])
	if !ok {
		return nil
	}
	var entries = lister.Entries()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AccessCount != entries[j].AccessCount {
			return entries[i].AccessCount > entries[j].AccessCount
		}
		return entries[i].LastAccessed.After(entries[j].LastAccessed)
	})

	if n > len(entries) {
		n = len(entries)
	}
	var keys = make([]K, n)
	for i := 0; i < n; i++ {
		keys[i] = entries[i].Key
	}
	return keys
}

// AnalyticsReport renders the manager's statistics as a plain string, for
// logs and terminals without a table renderer. The CLI surface renders the
// same Report as a tablewriter table instead (see cmd/cachefsctl).
func (m *Manager[K, V]) AnalyticsReport() string {
	var report = m.Statistics()
	return fmt.Sprintf("policy=%s capacity=%d size=%d %s", m.Kind(), m.Capacity(), m.Size(), report)
}
