package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// StatementService defines the behavior needed by LedgerHandler.
type StatementService interface {
	GetStatement(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error)
}

// LedgerHandler serves party ledgers.
type LedgerHandler struct {
	ledgerUC StatementService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC StatementService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Statement returns the party ledger filtered by from, to and q.
func (h *LedgerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.LedgerFilter
	if v := q.Get("from"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			writeDomainError(w, "invalid from date", err)
			return
		}
		filter.StartDate = &d
	}
	if v := q.Get("to"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			writeDomainError(w, "invalid to date", err)
			return
		}
		filter.EndDate = &d
	}
	filter.Search = q.Get("q")

	st, err := h.ledgerUC.GetStatement(r.Context(), usecase.StatementInput{
		PartyID: chi.URLParam(r, "id"),
		Filter:  filter,
	})
	if err != nil {
		writeDomainError(w, "failed to build ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromUseCase(st))
}
