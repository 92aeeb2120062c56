package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/infrastructure/postgres/generated"
)

// DocumentRepository implements usecase.DocumentRepository. Document fields
// are kept as JSONB; the party foreign key is copied into an indexed column.
type DocumentRepository struct {
	queries *generated.Queries
	txm     *TxManager
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, retrier *Retrier) *DocumentRepository {
	return newDocumentRepository(pool, retrier)
}

func newDocumentRepository(pool pgxPool, retrier *Retrier) *DocumentRepository {
	return &DocumentRepository{
		queries: generated.New(pool),
		txm:     newTxManager(pool, retrier),
	}
}

// Save inserts or replaces a document.
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	adapter, err := domain.AdapterFor(doc.Kind)
	if err != nil {
		return err
	}

	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode document fields: %w", err)
	}

	return r.queries.UpsertDocument(ctx, generated.UpsertDocumentParams{
		Kind:      string(doc.Kind),
		ID:        doc.ID,
		PartyID:   adapter.ExtractPartyID(doc),
		Fields:    fields,
		Cleared:   doc.Cleared,
		ClearedAt: optionalTimestamptz(doc.ClearedAt),
		UpdatedAt: timeToPgTimestamptz(doc.UpdatedAt),
	})
}

// GetByID retrieves one document.
func (r *DocumentRepository) GetByID(ctx context.Context, kind domain.DocumentKind, id string) (*domain.Document, error) {
	row, err := r.queries.GetDocument(ctx, generated.GetDocumentParams{Kind: string(kind), ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	return rowToDocument(row)
}

// FindByParty returns the documents of kind posted to partyID in insertion order.
func (r *DocumentRepository) FindByParty(ctx context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error) {
	rows, err := r.queries.ListDocumentsByParty(ctx, generated.ListDocumentsByPartyParams{
		Kind:    string(kind),
		PartyID: partyID,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*domain.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// MarkCleared flags documents as reconciled in one transaction.
func (r *DocumentRepository) MarkCleared(ctx context.Context, keys []domain.DocumentKey, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}

	byKind := make(map[domain.DocumentKind][]string)
	var order []domain.DocumentKind
	for _, k := range keys {
		if _, seen := byKind[k.Kind]; !seen {
			order = append(order, k.Kind)
		}
		byKind[k.Kind] = append(byKind[k.Kind], k.ID)
	}

	return r.txm.RunInTx(ctx, func(q *generated.Queries) error {
		for _, kind := range order {
			if _, err := q.MarkDocumentsCleared(ctx, generated.MarkDocumentsClearedParams{
				Kind:      string(kind),
				Ids:       byKind[kind],
				ClearedAt: timeToPgTimestamptz(at),
			}); err != nil {
				return fmt.Errorf("failed to clear %s documents: %w", kind, err)
			}
		}
		return nil
	})
}

// Version returns the highest revision written to parties or documents.
func (r *DocumentRepository) Version(ctx context.Context) (int64, error) {
	return r.queries.GetStoreRevision(ctx)
}

func rowToDocument(row generated.Document) (*domain.Document, error) {
	fields := map[string]any{}
	if len(row.Fields) > 0 {
		dec := json.NewDecoder(bytes.NewReader(row.Fields))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", row.Kind, row.ID, err)
		}
	}

	return &domain.Document{
		ID:        row.ID,
		Kind:      domain.DocumentKind(row.Kind),
		Fields:    fields,
		Cleared:   row.Cleared,
		ClearedAt: pgTimestamptzToPtr(row.ClearedAt),
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}
