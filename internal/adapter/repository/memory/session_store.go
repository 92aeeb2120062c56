package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iho/subledger/internal/domain"
)

type sessionItem struct {
	session   domain.ReconciliationSession
	expiresAt time.Time
}

// SessionStore implements usecase.SessionStore in memory. Sessions are
// copied on every Save and Get, so callers never share state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionItem
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionItem),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session *domain.ReconciliationSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = sessionItem{
		session:   copySession(session),
		expiresAt: expiry(s.now(), ttl),
	}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.ReconciliationSession, error) {
	s.mu.RLock()
	item, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || expired(item.expiresAt, s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	cp := copySession(&item.session)
	return &cp, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, item := range s.sessions {
		if expired(item.expiresAt, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func copySession(src *domain.ReconciliationSession) domain.ReconciliationSession {
	cp := *src
	cp.Selected = slices.Clone(src.Selected)
	cp.Entries = slices.Clone(src.Entries)
	if src.StatementEndingDate != nil {
		d := *src.StatementEndingDate
		cp.StatementEndingDate = &d
	}
	if cp.Selected == nil {
		cp.Selected = []int{}
	}
	return cp
}

// expiry returns the zero time, meaning never, for a non-positive ttl.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
