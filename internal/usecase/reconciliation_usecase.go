package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
)

// LedgerBuilder builds the ledger a reconciliation session works on.
type LedgerBuilder interface {
	BuildLedger(ctx context.Context, partyID string) (*domain.Ledger, error)
}

// ReconciliationConfig holds dependencies for ReconciliationUseCase.
type ReconciliationConfig struct {
	Ledgers      LedgerBuilder
	DocumentRepo DocumentRepository
	Sessions     SessionStore
	IDGen        IDGenerator
	SessionTTL   time.Duration
	// PersistCleared makes Finalize mark the selected source documents as
	// cleared. When false, Finalize only closes the session.
	PersistCleared bool
	Recorder       Recorder
	Logger         zerolog.Logger
}

// ReconciliationUseCase drives statement reconciliation sessions.
type ReconciliationUseCase struct {
	ledgers        LedgerBuilder
	documentRepo   DocumentRepository
	sessions       SessionStore
	idGen          IDGenerator
	sessionTTL     time.Duration
	persistCleared bool
	recorder       Recorder
	logger         zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(cfg ReconciliationConfig) *ReconciliationUseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &ReconciliationUseCase{
		ledgers:        cfg.Ledgers,
		documentRepo:   cfg.DocumentRepo,
		sessions:       cfg.Sessions,
		idGen:          cfg.IDGen,
		sessionTTL:     cfg.SessionTTL,
		persistCleared: cfg.PersistCleared,
		recorder:       recorderOrNoop(cfg.Recorder),
		logger:         cfg.Logger,
	}
}

// Open starts a blank session over the party's current ledger.
func (uc *ReconciliationUseCase) Open(ctx context.Context, partyID string) (*domain.ReconciliationSession, error) {
	ledger, err := uc.ledgers.BuildLedger(ctx, partyID)
	if err != nil {
		return nil, err
	}

	session := domain.NewReconciliationSession(uc.idGen.Generate(), ledger, time.Now().UTC())
	if session.PartyID == "" {
		session.PartyID = partyID
	}

	if err := uc.sessions.Save(ctx, session, uc.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to save reconciliation session: %w", err)
	}

	uc.recorder.ReconciliationOpened()
	uc.logger.Info().
		Str("session_id", session.ID).
		Str("party_id", partyID).
		Int("entries", len(session.Entries)).
		Msg("reconciliation opened")

	return session, nil
}

// Get returns a session by ID.
func (uc *ReconciliationUseCase) Get(ctx context.Context, id string) (*domain.ReconciliationSession, error) {
	return uc.sessions.Get(ctx, id)
}

// StartReconciliationInput represents the statement figures entered by the user.
type StartReconciliationInput struct {
	SessionID              string
	StatementEndingBalance decimal.Decimal
	StatementEndingDate    *time.Time
}

// Start records the statement figures and enables selection.
func (uc *ReconciliationUseCase) Start(ctx context.Context, input StartReconciliationInput) (*domain.ReconciliationSession, error) {
	return uc.mutate(ctx, input.SessionID, func(s *domain.ReconciliationSession) error {
		return s.Start(input.StatementEndingBalance, input.StatementEndingDate)
	})
}

// SelectionInput describes a change to the cleared selection. Clear is
// applied first, then Deselect, Select and Toggle.
type SelectionInput struct {
	SessionID string
	Clear     bool
	Deselect  []int
	Select    []int
	Toggle    []int
}

// UpdateSelection applies a selection change. Nothing is stored when any
// part of the change is invalid.
func (uc *ReconciliationUseCase) UpdateSelection(ctx context.Context, input SelectionInput) (*domain.ReconciliationSession, error) {
	return uc.mutate(ctx, input.SessionID, func(s *domain.ReconciliationSession) error {
		if input.Clear {
			if err := s.ClearSelection(); err != nil {
				return err
			}
		}
		if len(input.Deselect) > 0 {
			if err := s.Deselect(input.Deselect...); err != nil {
				return err
			}
		}
		if len(input.Select) > 0 {
			if err := s.Select(input.Select...); err != nil {
				return err
			}
		}
		for _, i := range input.Toggle {
			if err := s.Toggle(i); err != nil {
				return err
			}
		}
		return nil
	})
}

// FinalizeResult reports a finalized session.
type FinalizeResult struct {
	Session *domain.ReconciliationSession
	Summary domain.ReconciliationSummary
	Cleared []domain.DocumentKey
	// Persisted is true when the cleared flags were written to the documents.
	Persisted bool
}

// Finalize closes a balanced session. With PersistCleared the selected
// documents are marked cleared as of the statement ending date.
func (uc *ReconciliationUseCase) Finalize(ctx context.Context, id string) (*FinalizeResult, error) {
	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := session.Summary()
	entries, err := session.Finalize()
	if err != nil {
		return nil, err
	}

	keys := make([]domain.DocumentKey, 0, len(entries))
	for _, e := range entries {
		if e.DocumentID != "" {
			keys = append(keys, domain.DocumentKey{Kind: e.Kind, ID: e.DocumentID})
		}
	}

	result := &FinalizeResult{Session: session, Summary: summary, Cleared: keys}

	if uc.persistCleared && len(keys) > 0 {
		at := time.Now().UTC()
		if session.StatementEndingDate != nil {
			at = *session.StatementEndingDate
		}
		if err := uc.documentRepo.MarkCleared(ctx, keys, at); err != nil {
			return nil, fmt.Errorf("failed to mark documents cleared: %w", err)
		}
		result.Persisted = true
	}

	if err := uc.sessions.Delete(ctx, id); err != nil {
		uc.logger.Warn().Err(err).Str("session_id", id).Msg("failed to delete finalized session")
	}

	uc.recorder.ReconciliationFinalized(len(keys))
	uc.logger.Info().
		Str("session_id", id).
		Str("party_id", session.PartyID).
		Int("cleared", len(keys)).
		Bool("persisted", result.Persisted).
		Msg("reconciliation finalized")

	return result, nil
}

// Close discards a session.
func (uc *ReconciliationUseCase) Close(ctx context.Context, id string) error {
	if _, err := uc.sessions.Get(ctx, id); err != nil {
		return err
	}
	return uc.sessions.Delete(ctx, id)
}

func (uc *ReconciliationUseCase) mutate(
	ctx context.Context,
	id string,
	fn func(s *domain.ReconciliationSession) error,
) (*domain.ReconciliationSession, error) {
	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	if err := uc.sessions.Save(ctx, session, uc.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to save reconciliation session: %w", err)
	}

	return session, nil
}
