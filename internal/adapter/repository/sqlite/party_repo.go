package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
)

// PartyRepository implements usecase.PartyRepository.
type PartyRepository struct {
	store *Store
}

const partyColumns = `id, name, party_type, opening_balance, opening_balance_date, created_at, updated_at`

// Create inserts a party.
func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	return r.store.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO parties (`+partyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			party.ID,
			party.Name,
			string(party.Type),
			party.OpeningBalance.String(),
			nullString(formatDate(party.OpeningBalanceDate)),
			party.CreatedAt.UTC().Format(time.RFC3339Nano),
			party.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return domain.ErrPartyAlreadyExists
			}
			return fmt.Errorf("failed to insert party: %w", err)
		}
		return nil
	})
}

// Update writes the mutable party fields.
func (r *PartyRepository) Update(ctx context.Context, party *domain.Party) error {
	return r.store.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE parties SET name = ?, updated_at = ? WHERE id = ?`,
			party.Name,
			party.UpdatedAt.UTC().Format(time.RFC3339Nano),
			party.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update party: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrPartyNotFound
		}
		return nil
	})
}

// GetByID retrieves a party by ID.
func (r *PartyRepository) GetByID(ctx context.Context, id string) (*domain.Party, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row := r.store.db.QueryRowContext(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = ?`, id)
	party, err := scanParty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPartyNotFound
	}
	return party, err
}

// List lists parties ordered by name, optionally of one type.
func (r *PartyRepository) List(ctx context.Context, partyType domain.PartyType, limit, offset int) ([]*domain.Party, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM parties
		 WHERE (? = '' OR party_type = ?)
		 ORDER BY name, id
		 LIMIT ? OFFSET ?`,
		string(partyType), string(partyType), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()

	parties := []*domain.Party{}
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}

	return parties, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(row rowScanner) (*domain.Party, error) {
	var (
		p                    domain.Party
		partyType, balance   string
		openingDate          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &partyType, &balance, &openingDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Type = domain.PartyType(partyType)
	p.OpeningBalance, _ = decimal.NewFromString(balance)
	if openingDate.Valid {
		if d, err := domain.ParseDate(openingDate.String); err == nil {
			p.OpeningBalanceDate = &d
		}
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &p, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
