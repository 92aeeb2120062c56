package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
)

// PartyUseCase handles customer and vendor records.
type PartyUseCase struct {
	partyRepo PartyRepository
	idGen     IDGenerator
}

// NewPartyUseCase creates a new PartyUseCase.
func NewPartyUseCase(partyRepo PartyRepository, idGen IDGenerator) *PartyUseCase {
	return &PartyUseCase{
		partyRepo: partyRepo,
		idGen:     idGen,
	}
}

// CreatePartyInput represents input for creating a party.
type CreatePartyInput struct {
	ID                 string
	Name               string
	Type               domain.PartyType
	OpeningBalance     decimal.Decimal
	OpeningBalanceDate *time.Time
}

// CreateParty creates a new party.
func (uc *PartyUseCase) CreateParty(ctx context.Context, input CreatePartyInput) (*domain.Party, error) {
	now := time.Now().UTC()

	party := &domain.Party{
		ID:             strings.TrimSpace(input.ID),
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		OpeningBalance: input.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if party.ID == "" {
		party.ID = uc.idGen.Generate()
	}
	if input.OpeningBalanceDate != nil {
		d := domain.TruncateDay(*input.OpeningBalanceDate)
		party.OpeningBalanceDate = &d
	}

	if err := party.Validate(); err != nil {
		return nil, err
	}

	if err := uc.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}

	return party, nil
}

// UpdatePartyInput represents input for editing a party. The opening
// balance fields may be echoed back but must not change.
type UpdatePartyInput struct {
	ID                 string
	Name               string
	OpeningBalance     *decimal.Decimal
	OpeningBalanceDate *time.Time
}

// UpdateParty renames a party.
func (uc *PartyUseCase) UpdateParty(ctx context.Context, input UpdatePartyInput) (*domain.Party, error) {
	party, err := uc.partyRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.OpeningBalance != nil && !input.OpeningBalance.Equal(party.OpeningBalance) {
		return nil, domain.ErrOpeningBalanceImmutable
	}
	if input.OpeningBalanceDate != nil {
		if party.OpeningBalanceDate == nil || !domain.TruncateDay(*input.OpeningBalanceDate).Equal(*party.OpeningBalanceDate) {
			return nil, domain.ErrOpeningBalanceImmutable
		}
	}

	party.Name = strings.TrimSpace(input.Name)
	if err := party.Validate(); err != nil {
		return nil, err
	}
	party.UpdatedAt = time.Now().UTC()

	if err := uc.partyRepo.Update(ctx, party); err != nil {
		return nil, err
	}

	return party, nil
}

// GetParty retrieves a party by ID.
func (uc *PartyUseCase) GetParty(ctx context.Context, id string) (*domain.Party, error) {
	return uc.partyRepo.GetByID(ctx, id)
}

// ListPartiesInput represents input for listing parties.
type ListPartiesInput struct {
	Type   domain.PartyType
	Limit  int
	Offset int
}

// ListParties lists parties with pagination, optionally of one type.
func (uc *PartyUseCase) ListParties(ctx context.Context, input ListPartiesInput) ([]*domain.Party, error) {
	if input.Type != "" && !input.Type.IsValid() {
		return nil, domain.ErrInvalidPartyType
	}
	input.Limit, input.Offset = domain.ClampPagination(input.Limit, input.Offset, DefaultPageSize, MaxPageSize)
	return uc.partyRepo.List(ctx, input.Type, input.Limit, input.Offset)
}
