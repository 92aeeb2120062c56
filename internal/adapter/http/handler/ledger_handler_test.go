package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

type statementServiceFunc func(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error)

func (f statementServiceFunc) GetStatement(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error) {
	return f(ctx, input)
}

func TestLedgerHandler_Statement(t *testing.T) {
	var captured usecase.StatementInput
	handler := NewLedgerHandler(statementServiceFunc(func(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error) {
		captured = input
		return &usecase.Statement{
			Party: &domain.Party{ID: "c1", Type: domain.PartyTypeCustomer},
			Entries: []domain.LedgerEntry{{
				Transaction: domain.Transaction{
					Date:      time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
					Type:      "Sales Invoice",
					Ref:       "inv1",
					Narration: "Sale of 2 items",
					Debit:     decimal.NewFromInt(2000),
					Credit:    decimal.Zero,
				},
				Balance: decimal.NewFromInt(7000),
			}},
			TotalEntries: 3,
			FinalBalance: decimal.NewFromInt(7000),
			BalanceLabel: domain.LabelReceivable,
			TotalDebit:   decimal.NewFromInt(2000),
			TotalCredit:  decimal.Zero,
		}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/parties/c1/ledger?from=2023-01-02&to=2023-01-10&q=sale", nil)
	req = setChiURLParams(req, "id", "c1")
	rec := httptest.NewRecorder()

	handler.Statement(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.PartyID != "c1" || captured.Filter.Search != "sale" {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.Filter.StartDate.Format(domain.DateLayout) != "2023-01-02" ||
		captured.Filter.EndDate.Format(domain.DateLayout) != "2023-01-10" {
		t.Fatalf("unexpected filter dates %+v", captured.Filter)
	}

	var resp dto.StatementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Date != "2023-01-05" || !resp.Entries[0].Balance.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("unexpected entries %+v", resp.Entries)
	}
	if resp.TotalEntries != 3 || resp.BalanceLabel != "Receivable" {
		t.Fatalf("unexpected statement %+v", resp)
	}
}

func TestLedgerHandler_Statement_BadDate(t *testing.T) {
	handler := NewLedgerHandler(statementServiceFunc(func(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error) {
		t.Fatalf("service should not be called")
		return nil, nil
	}))

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/c1/ledger?from=soon", nil), "id", "c1")
	rec := httptest.NewRecorder()

	handler.Statement(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Statement_InvertedRange(t *testing.T) {
	handler := NewLedgerHandler(statementServiceFunc(func(ctx context.Context, input usecase.StatementInput) (*usecase.Statement, error) {
		return nil, domain.ErrInvalidDateRange
	}))

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/c1/ledger?from=2023-02-01&to=2023-01-01", nil), "id", "c1")
	rec := httptest.NewRecorder()

	handler.Statement(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
