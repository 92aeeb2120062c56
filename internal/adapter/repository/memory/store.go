// Package memory provides in-process implementations of the repository,
// session, cache and idempotency interfaces. Everything is lost on restart.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/iho/subledger/internal/domain"
)

// Store holds parties and documents behind one lock so that Version covers
// writes to both.
type Store struct {
	mu        sync.RWMutex
	parties   map[string]*domain.Party
	documents map[domain.DocumentKind][]*domain.Document
	index     map[domain.DocumentKey]int
	version   int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		parties:   make(map[string]*domain.Party),
		documents: make(map[domain.DocumentKind][]*domain.Document),
		index:     make(map[domain.DocumentKey]int),
	}
}

// Parties returns the party repository view of the store.
func (s *Store) Parties() *PartyRepository {
	return &PartyRepository{store: s}
}

// Documents returns the document repository view of the store.
func (s *Store) Documents() *DocumentRepository {
	return &DocumentRepository{store: s}
}

// PartyRepository implements usecase.PartyRepository.
type PartyRepository struct {
	store *Store
}

func (r *PartyRepository) Create(_ context.Context, party *domain.Party) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parties[party.ID]; ok {
		return domain.ErrPartyAlreadyExists
	}
	s.parties[party.ID] = cloneParty(party)
	s.version++
	return nil
}

func (r *PartyRepository) Update(_ context.Context, party *domain.Party) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.parties[party.ID]
	if !ok {
		return domain.ErrPartyNotFound
	}
	existing.Name = party.Name
	existing.UpdatedAt = party.UpdatedAt
	s.version++
	return nil
}

func (r *PartyRepository) GetByID(_ context.Context, id string) (*domain.Party, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.parties[id]; ok {
		return cloneParty(p), nil
	}
	return nil, domain.ErrPartyNotFound
}

func (r *PartyRepository) List(_ context.Context, partyType domain.PartyType, limit, offset int) ([]*domain.Party, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Party
	for _, p := range s.parties {
		if partyType == "" || p.Type == partyType {
			out = append(out, cloneParty(p))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Party) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	if offset >= len(out) {
		return []*domain.Party{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// DocumentRepository implements usecase.DocumentRepository.
type DocumentRepository struct {
	store *Store
}

func (r *DocumentRepository) Save(_ context.Context, doc *domain.Document) error {
	if _, err := domain.AdapterFor(doc.Kind); err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.DocumentKey{Kind: doc.Kind, ID: doc.ID}
	if i, ok := s.index[key]; ok {
		s.documents[doc.Kind][i] = cloneDocument(doc)
	} else {
		s.index[key] = len(s.documents[doc.Kind])
		s.documents[doc.Kind] = append(s.documents[doc.Kind], cloneDocument(doc))
	}
	s.version++
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, kind domain.DocumentKind, id string) (*domain.Document, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[domain.DocumentKey{Kind: kind, ID: id}]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return cloneDocument(s.documents[kind][i]), nil
}

func (r *DocumentRepository) FindByParty(_ context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error) {
	adapter, err := domain.AdapterFor(kind)
	if err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Document
	for _, d := range s.documents[kind] {
		if adapter.ExtractPartyID(d) == partyID {
			out = append(out, cloneDocument(d))
		}
	}
	return out, nil
}

// MarkCleared flags every key it finds; unknown keys are ignored.
func (r *DocumentRepository) MarkCleared(_ context.Context, keys []domain.DocumentKey, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		i, ok := s.index[k]
		if !ok {
			continue
		}
		d := s.documents[k.Kind][i]
		d.Cleared = true
		clearedAt := at
		d.ClearedAt = &clearedAt
	}
	s.version++
	return nil
}

func (r *DocumentRepository) Version(_ context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version, nil
}

func cloneParty(p *domain.Party) *domain.Party {
	cp := *p
	if p.OpeningBalanceDate != nil {
		d := *p.OpeningBalanceDate
		cp.OpeningBalanceDate = &d
	}
	return &cp
}

func cloneDocument(d *domain.Document) *domain.Document {
	cp := *d
	cp.Fields = maps.Clone(d.Fields)
	if d.ClearedAt != nil {
		t := *d.ClearedAt
		cp.ClearedAt = &t
	}
	return &cp
}
