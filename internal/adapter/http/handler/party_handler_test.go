package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/adapter/http/dto"
	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

type partyServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error)
	updateFn func(ctx context.Context, input usecase.UpdatePartyInput) (*domain.Party, error)
	getFn    func(ctx context.Context, id string) (*domain.Party, error)
	listFn   func(ctx context.Context, input usecase.ListPartiesInput) ([]*domain.Party, error)
}

func (s *partyServiceStub) CreateParty(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error) {
	return s.createFn(ctx, input)
}

func (s *partyServiceStub) UpdateParty(ctx context.Context, input usecase.UpdatePartyInput) (*domain.Party, error) {
	return s.updateFn(ctx, input)
}

func (s *partyServiceStub) GetParty(ctx context.Context, id string) (*domain.Party, error) {
	return s.getFn(ctx, id)
}

func (s *partyServiceStub) ListParties(ctx context.Context, input usecase.ListPartiesInput) ([]*domain.Party, error) {
	return s.listFn(ctx, input)
}

// setChiURLParams attaches route parameters given as key, value pairs.
func setChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPartyHandler_Create_Success(t *testing.T) {
	var captured usecase.CreatePartyInput
	handler := NewPartyHandler(&partyServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error) {
			captured = input
			return &domain.Party{ID: "c1", Name: input.Name, Type: input.Type, OpeningBalance: input.OpeningBalance,
				OpeningBalanceDate: input.OpeningBalanceDate}, nil
		},
	})

	body, _ := json.Marshal(dto.CreatePartyRequest{
		Name:               "Acme",
		Type:               "customer",
		OpeningBalance:     decimal.NewFromInt(5000),
		OpeningBalanceDate: "2023-01-01",
	})

	req := httptest.NewRequest(http.MethodPost, "/parties", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type != domain.PartyTypeCustomer || !captured.OpeningBalance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.PartyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "c1" || resp.OpeningBalanceDate != "2023-01-01" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPartyHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/parties", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPartyHandler_Create_BadDate(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/parties",
		bytes.NewBufferString(`{"name":"Acme","type":"customer","opening_balance":"1","opening_balance_date":"yesterday"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPartyHandler_Create_Conflict(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePartyInput) (*domain.Party, error) {
			return nil, domain.ErrPartyAlreadyExists
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/parties",
		bytes.NewBufferString(`{"id":"c1","name":"Acme","type":"customer","opening_balance":"0"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPartyHandler_Update_Immutable(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdatePartyInput) (*domain.Party, error) {
			if input.ID != "c1" || input.OpeningBalance == nil {
				t.Fatalf("unexpected input %+v", input)
			}
			return nil, domain.ErrOpeningBalanceImmutable
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/parties/c1",
		bytes.NewBufferString(`{"name":"Acme","opening_balance":"10"}`))
	req = setChiURLParams(req, "id", "c1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPartyHandler_Get(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Party, error) {
			if id != "c1" {
				t.Fatalf("expected id c1, got %s", id)
			}
			return &domain.Party{ID: "c1", Name: "Acme", Type: domain.PartyTypeCustomer}, nil
		},
	})

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/c1", nil), "id", "c1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPartyHandler_Get_NotFound(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Party, error) {
			return nil, domain.ErrPartyNotFound
		},
	})

	req := setChiURLParams(httptest.NewRequest(http.MethodGet, "/parties/x", nil), "id", "x")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPartyHandler_List(t *testing.T) {
	var captured usecase.ListPartiesInput
	handler := NewPartyHandler(&partyServiceStub{
		listFn: func(ctx context.Context, input usecase.ListPartiesInput) ([]*domain.Party, error) {
			captured = input
			return []*domain.Party{{ID: "v1", Type: domain.PartyTypeVendor}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/parties?type=Vendor&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Type != domain.PartyTypeVendor || captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected list input %+v", captured)
	}

	var resp []dto.PartyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp) != 1 {
		t.Fatalf("unexpected response %s (%v)", rec.Body.String(), err)
	}
}

func TestPartyHandler_List_ServiceError(t *testing.T) {
	handler := NewPartyHandler(&partyServiceStub{
		listFn: func(ctx context.Context, input usecase.ListPartiesInput) ([]*domain.Party, error) {
			return nil, errors.New("db down")
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/parties", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
