package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/infrastructure/postgres/generated"
)

// PartyRepository implements usecase.PartyRepository.
type PartyRepository struct {
	queries *generated.Queries
}

// NewPartyRepository creates a new PartyRepository.
func NewPartyRepository(pool *pgxpool.Pool) *PartyRepository {
	return newPartyRepository(pool)
}

func newPartyRepository(db generated.DBTX) *PartyRepository {
	return &PartyRepository{queries: generated.New(db)}
}

// Create inserts a party.
func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	err := r.queries.CreateParty(ctx, generated.CreatePartyParams{
		ID:                 party.ID,
		Name:               party.Name,
		PartyType:          string(party.Type),
		OpeningBalance:     decimalToNumeric(party.OpeningBalance),
		OpeningBalanceDate: dateToPgDate(party.OpeningBalanceDate),
		CreatedAt:          timeToPgTimestamptz(party.CreatedAt),
		UpdatedAt:          timeToPgTimestamptz(party.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrPartyAlreadyExists
	}

	return err
}

// Update writes the mutable party fields.
func (r *PartyRepository) Update(ctx context.Context, party *domain.Party) error {
	n, err := r.queries.UpdatePartyName(ctx, generated.UpdatePartyNameParams{
		ID:        party.ID,
		Name:      party.Name,
		UpdatedAt: timeToPgTimestamptz(party.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPartyNotFound
	}

	return nil
}

// GetByID retrieves a party by ID.
func (r *PartyRepository) GetByID(ctx context.Context, id string) (*domain.Party, error) {
	row, err := r.queries.GetPartyByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}

		return nil, err
	}

	return rowToParty(row), nil
}

// List lists parties ordered by name, optionally of one type.
func (r *PartyRepository) List(ctx context.Context, partyType domain.PartyType, limit, offset int) ([]*domain.Party, error) {
	rows, err := r.queries.ListParties(ctx, generated.ListPartiesParams{
		PartyType: string(partyType),
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	parties := make([]*domain.Party, 0, len(rows))
	for _, row := range rows {
		parties = append(parties, rowToParty(row))
	}

	return parties, nil
}

func rowToParty(row generated.Party) *domain.Party {
	return &domain.Party{
		ID:                 row.ID,
		Name:               row.Name,
		Type:               domain.PartyType(row.PartyType),
		OpeningBalance:     numericToDecimal(row.OpeningBalance),
		OpeningBalanceDate: pgDateToPtr(row.OpeningBalanceDate),
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}
