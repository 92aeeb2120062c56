package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/subledger/internal/domain"
)

// SessionStore implements usecase.SessionStore using Redis. Sessions are
// stored as JSON and expire after the TTL given on each save.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "subledger:reconciliation:",
	}
}

// Save writes the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *domain.ReconciliationSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.Set(ctx, s.prefix+session.ID, data, ttl).Err()
}

// Get loads a session.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.ReconciliationSession, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.ReconciliationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if session.Selected == nil {
		session.Selected = []int{}
	}

	return &session, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
