// Package repo implements the idempotency store backends. This file provides
// the default in-memory backend: a TTL-bounded map guarded by a mutex with
// opportunistic purging of expired entries, suitable for the single-process
// deployment model of this service.
package repo

import (
	"context"
	"sync"
	"time"

	"github.com/tbourn/go-payment-gateway/internal/domain"
)

// memoryEntry holds a stored result and its retention deadline.
type memoryEntry struct {
	result    domain.PaymentResult
	expiresAt time.Time
}

// MemoryStore is a volatile, first-write-wins idempotency store.
//
// Entries expire after the configured TTL. Eviction of a key before a
// duplicate retry arrives reintroduces double-authorization risk, so the TTL
// is a deployment-tunable trade-off (IDEMPOTENCY_TTL), not a safety default.
// A ttl <= 0 disables expiry entirely.
//
// Safe for concurrent use.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]memoryEntry
	puts    uint64

	now func() time.Time // test seam
}

// NewMemoryStore returns an empty store retaining entries for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the stored result for key, or (nil, nil) when no live entry
// exists. The returned value is a copy so stored results stay immutable.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.PaymentResult, error) {
	now := s.now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.expired(e, now) {
		return nil, nil
	}
	res := e.result
	return &res, nil
}

// Put stores result under key. The first write for a key is retained; later
// writes against a live entry are discarded so replays stay stable.
func (s *MemoryStore) Put(_ context.Context, key string, result *domain.PaymentResult) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Opportunistic purge so expired keys do not accumulate forever.
	s.puts++
	if s.puts >= 4096 {
		for k, e := range s.entries {
			if s.expired(e, now) {
				delete(s.entries, k)
			}
		}
		s.puts = 0
	}

	if e, ok := s.entries[key]; ok && !s.expired(e, now) {
		return nil
	}
	s.entries[key] = memoryEntry{result: *result, expiresAt: now.Add(s.ttl)}
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// expired reports whether e is past its retention deadline.
func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return s.ttl > 0 && !now.Before(e.expiresAt)
}
