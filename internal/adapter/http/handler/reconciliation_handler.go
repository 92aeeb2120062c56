package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Open(ctx context.Context, partyID string) (*domain.ReconciliationSession, error)
	Get(ctx context.Context, id string) (*domain.ReconciliationSession, error)
	Start(ctx context.Context, input usecase.StartReconciliationInput) (*domain.ReconciliationSession, error)
	UpdateSelection(ctx context.Context, input usecase.SelectionInput) (*domain.ReconciliationSession, error)
	Finalize(ctx context.Context, id string) (*usecase.FinalizeResult, error)
	Close(ctx context.Context, id string) error
}

// ReconciliationHandler drives reconciliation sessions.
type ReconciliationHandler struct {
	reconcileUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileUC: reconcileUC}
}

// Open opens a session over the ledger of the party in the path.
func (h *ReconciliationHandler) Open(w http.ResponseWriter, r *http.Request) {
	session, err := h.reconcileUC.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to open reconciliation", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReconciliationFromDomain(session))
}

// Get returns a session and its figures.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.reconcileUC.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeDomainError(w, "failed to get reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(session))
}

// Start records the statement ending balance and date.
func (h *ReconciliationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartReconciliationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.reconcileUC.Start(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to start reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(session))
}

// Select changes the cleared selection.
func (h *ReconciliationHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	session, err := h.reconcileUC.UpdateSelection(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "sid")))
	if err != nil {
		writeDomainError(w, "failed to update selection", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(session))
}

// Finalize closes a balanced session.
func (h *ReconciliationHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileUC.Finalize(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeDomainError(w, "failed to finalize reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FinalizeFromUseCase(result))
}

// Close discards a session.
func (h *ReconciliationHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.reconcileUC.Close(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeDomainError(w, "failed to close reconciliation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
