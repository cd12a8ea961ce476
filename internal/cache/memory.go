// Package cache keeps fetched kline series for a bounded time so that
// overlapping scans do not hit the exchange twice for the same data.
package cache

import (
	"context"
	"sync"
	"time"

	"smcSignalBot/internal/domain"
)

type entry struct {
	klines    []*domain.Kline
	expiresAt time.Time
}

// MemoryStore is an in-process ports.CandleStore. Expired entries are never
// returned and are dropped on the next Set or Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]entry), now: now}
}

// Get returns the series under key when it has not expired.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]*domain.Kline, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]*domain.Kline(nil), e.klines...), true, nil
}

// Set stores a copy of the series for ttl. A non-positive ttl removes the key.
func (m *MemoryStore) Set(ctx context.Context, key string, klines []*domain.Kline, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.purgeLocked(now)
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	m.entries[key] = entry{
		klines:    append([]*domain.Kline(nil), klines...),
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Purge drops expired entries and returns how many remain.
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked(m.now())
	return len(m.entries)
}

func (m *MemoryStore) purgeLocked(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
