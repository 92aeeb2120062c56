package server

import (
	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// StatementRequest selects a party ledger and its display filter.
type StatementRequest struct {
	PartyID string `json:"party_id"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Search  string `json:"search,omitempty"`
}

func (r *StatementRequest) toInput() (usecase.StatementInput, error) {
	input := usecase.StatementInput{PartyID: r.PartyID}
	input.Filter.Search = r.Search

	if r.From != "" {
		d, err := domain.ParseDate(r.From)
		if err != nil {
			return input, err
		}
		input.Filter.StartDate = &d
	}
	if r.To != "" {
		d, err := domain.ParseDate(r.To)
		if err != nil {
			return input, err
		}
		input.Filter.EndDate = &d
	}

	return input, nil
}

// OpenReconciliationRequest names the party to reconcile.
type OpenReconciliationRequest struct {
	PartyID string `json:"party_id"`
}

// SessionRequest names an existing session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// StartReconciliationRequest records the statement figures of a session.
type StartReconciliationRequest struct {
	SessionID string `json:"session_id"`
	dto.StartReconciliationRequest
}

// SelectionRequest changes the cleared selection of a session.
type SelectionRequest struct {
	SessionID string `json:"session_id"`
	dto.SelectionRequest
}

// CloseReconciliationResponse acknowledges a discarded session.
type CloseReconciliationResponse struct {
	SessionID string `json:"session_id"`
	Closed    bool   `json:"closed"`
}
