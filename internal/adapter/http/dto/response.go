package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/subledger/internal/domain"
	"github.com/iho/subledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PartyResponse represents a party in API responses.
type PartyResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate string          `json:"opening_balance_date,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PartyFromDomain converts a domain party to a response.
func PartyFromDomain(p *domain.Party) *PartyResponse {
	if p == nil {
		return nil
	}
	return &PartyResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               string(p.Type),
		OpeningBalance:     p.OpeningBalance,
		OpeningBalanceDate: formatDate(p.OpeningBalanceDate),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// PartiesFromDomain converts domain parties to responses.
func PartiesFromDomain(parties []*domain.Party) []*PartyResponse {
	result := make([]*PartyResponse, len(parties))
	for i, p := range parties {
		result[i] = PartyFromDomain(p)
	}
	return result
}

// DocumentResponse represents a stored source document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Fields    map[string]any `json:"fields"`
	Cleared   bool           `json:"cleared"`
	ClearedAt *time.Time     `json:"cleared_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DocumentFromDomain converts a domain document to a response.
func DocumentFromDomain(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		Kind:      string(d.Kind),
		Fields:    d.Fields,
		Cleared:   d.Cleared,
		ClearedAt: d.ClearedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DocumentsFromDomain converts domain documents to responses.
func DocumentsFromDomain(docs []*domain.Document) []*DocumentResponse {
	result := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		result[i] = DocumentFromDomain(d)
	}
	return result
}

// LedgerEntryResponse is one ledger row.
type LedgerEntryResponse struct {
	Index      int             `json:"index"`
	Date       string          `json:"date"`
	Type       string          `json:"type"`
	Ref        string          `json:"ref"`
	Narration  string          `json:"narration"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Balance    decimal.Decimal `json:"balance"`
	DocumentID string          `json:"document_id,omitempty"`
	Kind       string          `json:"kind,omitempty"`
	Cleared    bool            `json:"cleared"`
}

func entryFromDomain(i int, e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		Index:      i,
		Date:       e.Date.Format(domain.DateLayout),
		Type:       e.Type,
		Ref:        e.Ref,
		Narration:  e.Narration,
		Debit:      e.Debit,
		Credit:     e.Credit,
		Balance:    e.Balance,
		DocumentID: e.DocumentID,
		Kind:       string(e.Kind),
		Cleared:    e.Cleared,
	}
}

// EntriesFromDomain converts ledger entries, numbering them in order.
func EntriesFromDomain(entries []domain.LedgerEntry) []LedgerEntryResponse {
	result := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = entryFromDomain(i, e)
	}
	return result
}

// StatementResponse is a filtered party ledger.
type StatementResponse struct {
	Party        *PartyResponse        `json:"party"`
	Entries      []LedgerEntryResponse `json:"entries"`
	TotalEntries int                   `json:"total_entries"`
	FinalBalance decimal.Decimal       `json:"final_balance"`
	BalanceLabel string                `json:"balance_label,omitempty"`
	TotalDebit   decimal.Decimal       `json:"total_debit"`
	TotalCredit  decimal.Decimal       `json:"total_credit"`
}

// StatementFromUseCase converts a statement to a response.
func StatementFromUseCase(st *usecase.Statement) *StatementResponse {
	return &StatementResponse{
		Party:        PartyFromDomain(st.Party),
		Entries:      EntriesFromDomain(st.Entries),
		TotalEntries: st.TotalEntries,
		FinalBalance: st.FinalBalance,
		BalanceLabel: st.BalanceLabel,
		TotalDebit:   st.TotalDebit,
		TotalCredit:  st.TotalCredit,
	}
}

// SummaryResponse holds the reconciliation figures.
type SummaryResponse struct {
	BeginningBalance       decimal.Decimal `json:"beginning_balance"`
	ClearedPayments        decimal.Decimal `json:"cleared_payments"`
	ClearedDeposits        decimal.Decimal `json:"cleared_deposits"`
	ClearedBalance         decimal.Decimal `json:"cleared_balance"`
	StatementEndingBalance decimal.Decimal `json:"statement_ending_balance"`
	Difference             decimal.Decimal `json:"difference"`
	Reconciled             bool            `json:"reconciled"`
	SelectedCount          int             `json:"selected_count"`
}

// SummaryFromDomain converts reconciliation figures.
func SummaryFromDomain(s domain.ReconciliationSummary) SummaryResponse {
	return SummaryResponse{
		BeginningBalance:       s.BeginningBalance,
		ClearedPayments:        s.ClearedPayments,
		ClearedDeposits:        s.ClearedDeposits,
		ClearedBalance:         s.ClearedBalance,
		StatementEndingBalance: s.StatementEndingBalance,
		Difference:             s.Difference,
		Reconciled:             s.Reconciled,
		SelectedCount:          s.SelectedCount,
	}
}

// ReconciliationResponse represents a reconciliation session.
type ReconciliationResponse struct {
	ID                     string                `json:"id"`
	PartyID                string                `json:"party_id"`
	PartyType              string                `json:"party_type"`
	State                  string                `json:"state"`
	StatementEndingBalance decimal.Decimal       `json:"statement_ending_balance"`
	StatementEndingDate    string                `json:"statement_ending_date,omitempty"`
	Selected               []int                 `json:"selected"`
	Entries                []LedgerEntryResponse `json:"entries"`
	Summary                SummaryResponse       `json:"summary"`
	CanFinalize            bool                  `json:"can_finalize"`
	OpenedAt               time.Time             `json:"opened_at"`
}

// ReconciliationFromDomain converts a session to a response.
func ReconciliationFromDomain(s *domain.ReconciliationSession) *ReconciliationResponse {
	selected := s.Selected
	if selected == nil {
		selected = []int{}
	}
	return &ReconciliationResponse{
		ID:                     s.ID,
		PartyID:                s.PartyID,
		PartyType:              string(s.PartyType),
		State:                  string(s.State),
		StatementEndingBalance: s.StatementEndingBalance,
		StatementEndingDate:    formatDate(s.StatementEndingDate),
		Selected:               selected,
		Entries:                EntriesFromDomain(s.Entries),
		Summary:                SummaryFromDomain(s.Summary()),
		CanFinalize:            s.CanFinalize(),
		OpenedAt:               s.OpenedAt,
	}
}

// DocumentKeyResponse addresses a cleared document.
type DocumentKeyResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// FinalizeResponse reports a finalized reconciliation.
type FinalizeResponse struct {
	SessionID string                `json:"session_id"`
	PartyID   string                `json:"party_id"`
	State     string                `json:"state"`
	Summary   SummaryResponse       `json:"summary"`
	Cleared   []DocumentKeyResponse `json:"cleared"`
	Persisted bool                  `json:"persisted"`
}

// FinalizeFromUseCase converts a finalize result.
func FinalizeFromUseCase(r *usecase.FinalizeResult) *FinalizeResponse {
	cleared := make([]DocumentKeyResponse, len(r.Cleared))
	for i, k := range r.Cleared {
		cleared[i] = DocumentKeyResponse{Kind: string(k.Kind), ID: k.ID}
	}
	return &FinalizeResponse{
		SessionID: r.Session.ID,
		PartyID:   r.Session.PartyID,
		State:     string(r.Session.State),
		Summary:   SummaryFromDomain(r.Summary),
		Cleared:   cleared,
		Persisted: r.Persisted,
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
