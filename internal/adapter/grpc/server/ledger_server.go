package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcerrors "github.com/iho/subledger/internal/adapter/grpc/errors"
	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// StatementService builds filtered party ledgers.
type StatementService interface {
	GetStatement(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error)
}

// ReconciliationService drives reconciliation sessions.
type ReconciliationService interface {
	Open(ctx context.Context, partyID string) (*domain.ReconciliationSession, error)
	Get(ctx context.Context, id string) (*domain.ReconciliationSession, error)
	Start(ctx context.Context, input usecase.StartReconciliationInput) (*domain.ReconciliationSession, error)
	UpdateSelection(ctx context.Context, input usecase.SelectionInput) (*domain.ReconciliationSession, error)
	Finalize(ctx context.Context, id string) (*usecase.FinalizeResult, error)
	Close(ctx context.Context, id string) error
}

// LedgerServer implements LedgerService.
type LedgerServer struct {
	ledgerUC    StatementService
	reconcileUC ReconciliationService
}

// NewLedgerServer creates a new LedgerServer.
func NewLedgerServer(ledgerUC StatementService, reconcileUC ReconciliationService) *LedgerServer {
	return &LedgerServer{
		ledgerUC:    ledgerUC,
		reconcileUC: reconcileUC,
	}
}

// GetStatement returns the filtered running-balance ledger of a party.
func (s *LedgerServer) GetStatement(ctx context.Context, req *StatementRequest) (*dto.StatementResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	st, err := s.ledgerUC.GetStatement(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.StatementFromUseCase(st), nil
}

// OpenReconciliation opens a session over the current ledger of a party.
func (s *LedgerServer) OpenReconciliation(ctx context.Context, req *OpenReconciliationRequest) (*dto.ReconciliationResponse, error) {
	if req.PartyID == "" {
		return nil, status.Error(codes.InvalidArgument, "party_id is required")
	}

	session, err := s.reconcileUC.Open(ctx, req.PartyID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.ReconciliationFromDomain(session), nil
}

// GetReconciliation returns a session and its figures.
func (s *LedgerServer) GetReconciliation(ctx context.Context, req *SessionRequest) (*dto.ReconciliationResponse, error) {
	session, err := s.reconcileUC.Get(ctx, req.SessionID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.ReconciliationFromDomain(session), nil
}

// StartReconciliation records the statement ending balance and date.
func (s *LedgerServer) StartReconciliation(ctx context.Context, req *StartReconciliationRequest) (*dto.ReconciliationResponse, error) {
	input, err := req.ToUseCaseInput(req.SessionID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	session, err := s.reconcileUC.Start(ctx, input)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.ReconciliationFromDomain(session), nil
}

// UpdateSelection changes the cleared selection.
func (s *LedgerServer) UpdateSelection(ctx context.Context, req *SelectionRequest) (*dto.ReconciliationResponse, error) {
	session, err := s.reconcileUC.UpdateSelection(ctx, req.ToUseCaseInput(req.SessionID))
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.ReconciliationFromDomain(session), nil
}

// FinalizeReconciliation closes a balanced session.
func (s *LedgerServer) FinalizeReconciliation(ctx context.Context, req *SessionRequest) (*dto.FinalizeResponse, error) {
	result, err := s.reconcileUC.Finalize(ctx, req.SessionID)
	if err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return dto.FinalizeFromUseCase(result), nil
}

// CloseReconciliation discards a session.
func (s *LedgerServer) CloseReconciliation(ctx context.Context, req *SessionRequest) (*CloseReconciliationResponse, error) {
	if err := s.reconcileUC.Close(ctx, req.SessionID); err != nil {
		return nil, grpcerrors.MapDomainError(err)
	}

	return &CloseReconciliationResponse{SessionID: req.SessionID, Closed: true}, nil
}
