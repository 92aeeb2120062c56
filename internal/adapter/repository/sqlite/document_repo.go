package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/subledger/internal/domain"
)

// DocumentRepository implements usecase.DocumentRepository.
type DocumentRepository struct {
	store *Store
}

const documentColumns = `kind, id, fields_json, cleared, cleared_at, updated_at`

// Save inserts or replaces a document, keeping its original position.
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	adapter, err := domain.AdapterFor(doc.Kind)
	if err != nil {
		return err
	}

	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode document fields: %w", err)
	}

	var clearedAt sql.NullString
	if doc.ClearedAt != nil {
		clearedAt = nullString(doc.ClearedAt.UTC().Format(time.RFC3339))
	}

	return r.store.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (kind, id, party_id, fields_json, cleared, cleared_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (kind, id) DO UPDATE SET
				party_id = excluded.party_id,
				fields_json = excluded.fields_json,
				cleared = excluded.cleared,
				cleared_at = excluded.cleared_at,
				updated_at = excluded.updated_at`,
			string(doc.Kind),
			doc.ID,
			adapter.ExtractPartyID(doc),
			string(fields),
			doc.Cleared,
			clearedAt,
			doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		return nil
	})
}

// GetByID retrieves one document.
func (r *DocumentRepository) GetByID(ctx context.Context, kind domain.DocumentKind, id string) (*domain.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = ? AND id = ?`, string(kind), id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, err
}

// FindByParty returns the documents of kind posted to partyID in insertion order.
func (r *DocumentRepository) FindByParty(ctx context.Context, kind domain.DocumentKind, partyID string) ([]*domain.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE kind = ? AND party_id = ? ORDER BY seq`,
		string(kind), partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// MarkCleared flags documents as reconciled in one transaction.
func (r *DocumentRepository) MarkCleared(ctx context.Context, keys []domain.DocumentKey, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}

	return r.store.write(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`UPDATE documents SET cleared = 1, cleared_at = ? WHERE kind = ? AND id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		ts := at.UTC().Format(time.RFC3339)
		for _, k := range keys {
			if _, err := stmt.ExecContext(ctx, ts, string(k.Kind), k.ID); err != nil {
				return fmt.Errorf("failed to clear %s/%s: %w", k.Kind, k.ID, err)
			}
		}
		return nil
	})
}

// Version returns the store revision.
func (r *DocumentRepository) Version(ctx context.Context) (int64, error) {
	return r.store.revision(ctx)
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		kind, fieldsJSON, updatedAt string
		cleared                     bool
		clearedAt                   sql.NullString
		doc                         domain.Document
	)
	if err := row.Scan(&kind, &doc.ID, &fieldsJSON, &cleared, &clearedAt, &updatedAt); err != nil {
		return nil, err
	}

	doc.Kind = domain.DocumentKind(kind)
	doc.Cleared = cleared
	doc.Fields = map[string]any{}
	dec := json.NewDecoder(bytes.NewReader([]byte(fieldsJSON)))
	dec.UseNumber()
	if err := dec.Decode(&doc.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", kind, doc.ID, err)
	}
	if clearedAt.Valid {
		if t, err := time.Parse(time.RFC3339, clearedAt.String); err == nil {
			doc.ClearedAt = &t
		}
	}
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &doc, nil
}
