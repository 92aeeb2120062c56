package memory

import (
	"context"
	"slices"
	"sync"
	"time"
)

type idempotencyItem struct {
	response  []byte
	pending   bool
	expiresAt time.Time
}

// IdempotencyStore implements usecase.IdempotencyStore in memory.
type IdempotencyStore struct {
	mu    sync.Mutex
	items map[string]idempotencyItem
	now   func() time.Time
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		items: make(map[string]idempotencyItem),
		now:   time.Now,
	}
}

func (s *IdempotencyStore) CheckAndSet(_ context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if item, ok := s.items[key]; ok && !expired(item.expiresAt, now) {
		if item.pending {
			return true, nil, nil
		}
		return true, slices.Clone(item.response), nil
	}

	s.items[key] = idempotencyItem{pending: true, expiresAt: expiry(now, ttl)}
	return false, nil, nil
}

func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = idempotencyItem{response: slices.Clone(response), expiresAt: expiry(s.now(), ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Sweep drops expired keys and reports how many were removed.
func (s *IdempotencyStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, item := range s.items {
		if expired(item.expiresAt, now) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}
