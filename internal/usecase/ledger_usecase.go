package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
)

// LedgerUseCase builds party sub-ledgers from the document store.
type LedgerUseCase struct {
	partyRepo    PartyRepository
	documentRepo DocumentRepository
	cache        Cache
	cacheTTL     time.Duration
	recorder     Recorder
	logger       zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. cache and recorder may be nil.
func NewLedgerUseCase(
	partyRepo PartyRepository,
	documentRepo DocumentRepository,
	cache Cache,
	cacheTTL time.Duration,
	recorder Recorder,
	logger zerolog.Logger,
) *LedgerUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultLedgerCacheTTL
	}
	return &LedgerUseCase{
		partyRepo:    partyRepo,
		documentRepo: documentRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		recorder:     recorderOrNoop(recorder),
		logger:       logger,
	}
}

// Aggregate collects and normalizes every document that posts to party.
func (uc *LedgerUseCase) Aggregate(ctx context.Context, party *domain.Party) ([]domain.Transaction, error) {
	var docs []*domain.Document
	for _, kind := range domain.KindsFor(party.Type) {
		found, err := uc.documentRepo.FindByParty(ctx, kind, party.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s documents: %w", kind, err)
		}
		docs = append(docs, found...)
	}

	txs, skipped := domain.NormalizeDocuments(party.ID, docs)
	if skipped > 0 {
		uc.recorder.DocumentsSkipped(skipped)
		uc.logger.Warn().
			Str("party_id", party.ID).
			Int("skipped", skipped).
			Msg("skipped documents without a usable date")
	}

	return txs, nil
}

// BuildLedger returns the full running-balance ledger of a party. An unknown
// party yields an empty ledger.
func (uc *LedgerUseCase) BuildLedger(ctx context.Context, partyID string) (*domain.Ledger, error) {
	start := time.Now()

	party, err := uc.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, domain.ErrPartyNotFound) {
			return &domain.Ledger{Entries: []domain.LedgerEntry{}}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	key := uc.cacheKey(ctx, party, now)
	if entries, ok := uc.cached(ctx, key); ok {
		uc.recorder.LedgerBuilt(time.Since(start), true)
		return &domain.Ledger{Party: party, Entries: entries}, nil
	}

	txs, err := uc.Aggregate(ctx, party)
	if err != nil {
		return nil, err
	}

	ledger := &domain.Ledger{Party: party, Entries: domain.Accumulate(party, txs, now)}
	uc.store(ctx, key, ledger.Entries)
	uc.recorder.LedgerBuilt(time.Since(start), false)

	return ledger, nil
}

// StatementInput represents input for a filtered statement.
type StatementInput struct {
	PartyID string
	Filter  domain.LedgerFilter
}

// Statement is a filtered view of a party ledger.
type Statement struct {
	Party        *domain.Party
	Entries      []domain.LedgerEntry
	TotalEntries int
	FinalBalance decimal.Decimal
	BalanceLabel string
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
}

// GetStatement builds the ledger and applies the display filter. Balances
// are those of the full ledger.
func (uc *LedgerUseCase) GetStatement(ctx context.Context, input StatementInput) (*Statement, error) {
	if err := domain.ValidateDateRange(input.Filter.StartDate, input.Filter.EndDate); err != nil {
		return nil, err
	}

	ledger, err := uc.BuildLedger(ctx, input.PartyID)
	if err != nil {
		return nil, err
	}

	visible := input.Filter.Apply(ledger.Entries)
	debit, credit := domain.Totals(visible)

	st := &Statement{
		Party:        ledger.Party,
		Entries:      visible,
		TotalEntries: len(ledger.Entries),
		FinalBalance: domain.FinalBalance(visible),
		TotalDebit:   debit,
		TotalCredit:  credit,
	}
	if ledger.Party != nil {
		st.BalanceLabel = domain.BalanceLabel(ledger.Party.Type, st.FinalBalance)
	}

	return st, nil
}

// cacheKey returns "" when the ledger must not be cached.
func (uc *LedgerUseCase) cacheKey(ctx context.Context, party *domain.Party, now time.Time) string {
	if uc.cache == nil {
		return ""
	}

	version, err := uc.documentRepo.Version(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("document version unavailable, skipping ledger cache")
		return ""
	}

	// The year matters while the opening date defaults to January 1.
	return fmt.Sprintf("ledger:%s:%d:%d:%d", party.ID, party.UpdatedAt.UnixNano(), version, now.Year())
}

func (uc *LedgerUseCase) cached(ctx context.Context, key string) ([]domain.LedgerEntry, bool) {
	if key == "" {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("ledger cache read failed")
		}
		return nil, false
	}

	var entries []domain.LedgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("ledger cache entry corrupt")
		return nil, false
	}

	return entries, true
}

func (uc *LedgerUseCase) store(ctx context.Context, key string, entries []domain.LedgerEntry) {
	if key == "" {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("failed to encode ledger for cache")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("ledger cache write failed")
	}
}
