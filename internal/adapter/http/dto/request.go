package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// CreatePartyRequest represents a request to create a party.
type CreatePartyRequest struct {
	ID                 string          `json:"id,omitempty" jsonschema_description:"Optional party ID, a ULID is assigned when empty"`
	Name               string          `json:"name" jsonschema:"minLength=1,maxLength=255"`
	Type               string          `json:"type" jsonschema:"enum=customer,enum=vendor"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate string          `json:"opening_balance_date,omitempty" jsonschema:"format=date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePartyRequest) ToUseCaseInput() (usecase.CreatePartyInput, error) {
	date, err := optionalDate(r.OpeningBalanceDate)
	if err != nil {
		return usecase.CreatePartyInput{}, err
	}

	return usecase.CreatePartyInput{
		ID:                 r.ID,
		Name:               r.Name,
		Type:               domain.PartyType(strings.ToLower(strings.TrimSpace(r.Type))),
		OpeningBalance:     r.OpeningBalance,
		OpeningBalanceDate: date,
	}, nil
}

// UpdatePartyRequest represents a rename. Opening balance fields may be
// echoed back unchanged.
type UpdatePartyRequest struct {
	Name               string           `json:"name" jsonschema:"minLength=1,maxLength=255"`
	OpeningBalance     *decimal.Decimal `json:"opening_balance,omitempty"`
	OpeningBalanceDate string           `json:"opening_balance_date,omitempty" jsonschema:"format=date"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdatePartyRequest) ToUseCaseInput(id string) (usecase.UpdatePartyInput, error) {
	date, err := optionalDate(r.OpeningBalanceDate)
	if err != nil {
		return usecase.UpdatePartyInput{}, err
	}

	return usecase.UpdatePartyInput{
		ID:                 id,
		Name:               r.Name,
		OpeningBalance:     r.OpeningBalance,
		OpeningBalanceDate: date,
	}, nil
}

// DecodeDocument reads a free-form document body. Numbers are kept as
// json.Number so amounts do not pass through float64. An "id" member is
// lifted out of the fields.
func DecodeDocument(body []byte, kind domain.DocumentKind) (usecase.SaveDocumentInput, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return usecase.SaveDocumentInput{}, err
	}
	if fields == nil {
		fields = map[string]any{}
	}

	id := domain.CoerceString(fields["id"])
	delete(fields, "id")

	return usecase.SaveDocumentInput{Kind: kind, ID: id, Fields: fields}, nil
}

// StartReconciliationRequest carries the statement figures.
type StartReconciliationRequest struct {
	StatementEndingBalance decimal.Decimal `json:"statement_ending_balance"`
	StatementEndingDate    string          `json:"statement_ending_date,omitempty" jsonschema:"format=date"`
}

// ToUseCaseInput converts to use case input.
func (r *StartReconciliationRequest) ToUseCaseInput(sessionID string) (usecase.StartReconciliationInput, error) {
	date, err := optionalDate(r.StatementEndingDate)
	if err != nil {
		return usecase.StartReconciliationInput{}, err
	}

	return usecase.StartReconciliationInput{
		SessionID:              sessionID,
		StatementEndingBalance: r.StatementEndingBalance,
		StatementEndingDate:    date,
	}, nil
}

// SelectionRequest changes the cleared selection. Indices refer to the
// session entries; 0 is the opening balance.
type SelectionRequest struct {
	Toggle   []int `json:"toggle,omitempty"`
	Select   []int `json:"select,omitempty"`
	Deselect []int `json:"deselect,omitempty"`
	Clear    bool  `json:"clear,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SelectionRequest) ToUseCaseInput(sessionID string) usecase.SelectionInput {
	return usecase.SelectionInput{
		SessionID: sessionID,
		Clear:     r.Clear,
		Deselect:  r.Deselect,
		Select:    r.Select,
		Toggle:    r.Toggle,
	}
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
