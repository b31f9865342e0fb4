package counter

import (
	"context"
	"sync"
	"time"
)

// entry holds one key's request timestamps and its last access time for cleanup.
type entry struct {
	hits     []time.Time
	lastSeen time.Time
}

// MemoryStore is an in-memory sliding-window counter store. Each key keeps the
// timestamps of requests still inside its window; stale timestamps are pruned
// on every increment. A background goroutine periodically evicts keys that
// have not been accessed within 2x the cleanup interval.
//
// Counts are exact, which makes this the backend of choice for tests, but
// state is per-process: multi-instance deployments need the Redis store.
type MemoryStore struct {
	cleanupInterval time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	done    chan struct{}
	closed  bool
}

// NewMemoryStore creates a memory counter store with the given cleanup
// interval. It starts a background goroutine for eviction.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		cleanupInterval: cleanupInterval,
		entries:         make(map[string]*entry),
		done:            make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Increment records one request under key and returns the window state.
func (m *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (Sample, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entries[key]
	if !exists {
		e = &entry{}
		m.entries[key] = e
	}
	e.lastSeen = now

	// Drop timestamps that have slid out of the window.
	kept := e.hits[:0]
	for _, ts := range e.hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.hits = append(kept, now)

	return Sample{
		Count:   int64(len(e.hits)),
		ResetAt: e.hits[0].Add(window),
	}, nil
}

// Close stops the background cleanup goroutine.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// cleanup periodically evicts entries that have not been accessed within
// 2x the cleanup interval.
func (m *MemoryStore) cleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictStale()
		}
	}
}

// evictStale removes entries older than 2x the cleanup interval.
func (m *MemoryStore) evictStale() {
	cutoff := time.Now().Add(-2 * m.cleanupInterval)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}
