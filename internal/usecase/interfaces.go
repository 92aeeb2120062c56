package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/subledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// PartyRepository defines data access for parties.
type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	Update(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, id string) (*domain.Party, error)
	List(ctx context.Context, partyType domain.PartyType, limit, offset int) ([]*domain.Party, error)
}

// DocumentRepository defines data access for source documents, one
// collection per kind.
type DocumentRepository interface {
	Save(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, kind domain.DocumentKind, id string) (*domain.Document, error)
	// FindByParty returns the documents of kind whose party foreign key is
	// partyID, in insertion order.
	FindByParty(ctx context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error)
	MarkCleared(ctx context.Context, keys []domain.DocumentKey, at time.Time) error
	// Version changes whenever any document or party is written.
	Version(ctx context.Context) (int64, error)
}

// SessionStore keeps reconciliation sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session *domain.ReconciliationSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.ReconciliationSession, error)
	Delete(ctx context.Context, id string) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore remembers responses to requests carrying an idempotency key.
type IdempotencyStore interface {
	// CheckAndSet returns the stored response when key exists. Otherwise it
	// claims key with a placeholder and reports exists=false.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (exists bool, response []byte, err error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Recorder receives engine measurements. A nil Recorder is allowed.
type Recorder interface {
	LedgerBuilt(duration time.Duration, cached bool)
	DocumentsSkipped(n int)
	ReconciliationOpened()
	ReconciliationFinalized(cleared int)
}

type noopRecorder struct{}

func (noopRecorder) LedgerBuilt(time.Duration, bool) {}
func (noopRecorder) DocumentsSkipped(int)            {}
func (noopRecorder) ReconciliationOpened()           {}
func (noopRecorder) ReconciliationFinalized(int)     {}

func recorderOrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
