package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationState is a step of the reconciliation workflow.
type ReconciliationState string

const (
	ReconciliationClosed        ReconciliationState = "closed"
	ReconciliationAwaitingInput ReconciliationState = "awaiting_input"
	ReconciliationSelecting     ReconciliationState = "selecting"
)

// ReconciliationSession matches a subset of ledger entries against a
// statement ending balance. Indices refer to Entries, captured when the
// session was opened; index 0 is the opening balance and is never selectable.
type ReconciliationSession struct {
	ID                     string
	PartyID                string
	PartyType              PartyType
	State                  ReconciliationState
	StatementEndingBalance decimal.Decimal
	StatementEndingDate    *time.Time
	Selected               []int
	Entries                []LedgerEntry
	OpenedAt               time.Time
}

// ReconciliationSummary holds the derived reconciliation figures.
type ReconciliationSummary struct {
	BeginningBalance       decimal.Decimal
	ClearedPayments        decimal.Decimal
	ClearedDeposits        decimal.Decimal
	ClearedBalance         decimal.Decimal
	StatementEndingBalance decimal.Decimal
	Difference             decimal.Decimal
	Reconciled             bool
	SelectedCount          int
}

// NewReconciliationSession opens a session over ledger in AwaitingInput.
func NewReconciliationSession(id string, ledger *Ledger, now time.Time) *ReconciliationSession {
	s := &ReconciliationSession{
		ID:                     id,
		State:                  ReconciliationAwaitingInput,
		StatementEndingBalance: decimal.Zero,
		Selected:               []int{},
		OpenedAt:               now,
	}
	if ledger != nil {
		s.Entries = slices.Clone(ledger.Entries)
		if ledger.Party != nil {
			s.PartyID = ledger.Party.ID
			s.PartyType = ledger.Party.Type
		}
	}
	return s
}

// Start records the statement figures and moves to Selecting.
func (s *ReconciliationSession) Start(endingBalance decimal.Decimal, endingDate *time.Time) error {
	if s.State != ReconciliationAwaitingInput {
		return ErrInvalidSessionState
	}
	s.StatementEndingBalance = endingBalance
	if endingDate != nil {
		d := TruncateDay(*endingDate)
		s.StatementEndingDate = &d
	}
	s.State = ReconciliationSelecting
	return nil
}

func (s *ReconciliationSession) checkIndex(i int) error {
	if i == 0 && len(s.Entries) > 0 {
		return ErrOpeningEntryNotSelectable
	}
	if i < 0 || i >= len(s.Entries) {
		return ErrInvalidSelection
	}
	return nil
}

func (s *ReconciliationSession) requireSelecting() error {
	if s.State != ReconciliationSelecting {
		return ErrInvalidSessionState
	}
	return nil
}

// IsSelected reports whether entry i is marked cleared in this session.
func (s *ReconciliationSession) IsSelected(i int) bool {
	_, found := slices.BinarySearch(s.Selected, i)
	return found
}

// Toggle flips the selection of entry i.
func (s *ReconciliationSession) Toggle(i int) error {
	if err := s.requireSelecting(); err != nil {
		return err
	}
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.IsSelected(i) {
		s.remove(i)
	} else {
		s.add(i)
	}
	return nil
}

// Select marks entries as cleared. Nothing changes if any index is invalid.
func (s *ReconciliationSession) Select(indices ...int) error {
	if err := s.requireSelecting(); err != nil {
		return err
	}
	for _, i := range indices {
		if err := s.checkIndex(i); err != nil {
			return err
		}
	}
	for _, i := range indices {
		s.add(i)
	}
	return nil
}

// Deselect unmarks entries. Nothing changes if any index is invalid.
func (s *ReconciliationSession) Deselect(indices ...int) error {
	if err := s.requireSelecting(); err != nil {
		return err
	}
	for _, i := range indices {
		if err := s.checkIndex(i); err != nil {
			return err
		}
	}
	for _, i := range indices {
		s.remove(i)
	}
	return nil
}

// ClearSelection unmarks every entry.
func (s *ReconciliationSession) ClearSelection() error {
	if err := s.requireSelecting(); err != nil {
		return err
	}
	s.Selected = []int{}
	return nil
}

func (s *ReconciliationSession) add(i int) {
	pos, found := slices.BinarySearch(s.Selected, i)
	if !found {
		s.Selected = slices.Insert(s.Selected, pos, i)
	}
}

func (s *ReconciliationSession) remove(i int) {
	pos, found := slices.BinarySearch(s.Selected, i)
	if found {
		s.Selected = slices.Delete(s.Selected, pos, pos+1)
	}
}

// Summary computes the reconciliation figures for the current selection.
func (s *ReconciliationSession) Summary() ReconciliationSummary {
	sum := ReconciliationSummary{
		BeginningBalance:       decimal.Zero,
		ClearedPayments:        decimal.Zero,
		ClearedDeposits:        decimal.Zero,
		StatementEndingBalance: s.StatementEndingBalance,
	}
	if len(s.Entries) > 0 {
		sum.BeginningBalance = s.Entries[0].Balance
	}

	for _, i := range s.Selected {
		if i <= 0 || i >= len(s.Entries) {
			continue
		}
		e := s.Entries[i]
		if s.PartyType == PartyTypeVendor {
			sum.ClearedPayments = sum.ClearedPayments.Add(e.Debit)
			sum.ClearedDeposits = sum.ClearedDeposits.Add(e.Credit)
		} else {
			sum.ClearedPayments = sum.ClearedPayments.Add(e.Credit)
			sum.ClearedDeposits = sum.ClearedDeposits.Add(e.Debit)
		}
		sum.SelectedCount++
	}

	sum.ClearedBalance = sum.BeginningBalance.Sub(sum.ClearedPayments).Add(sum.ClearedDeposits)
	sum.Difference = s.StatementEndingBalance.Sub(sum.ClearedBalance)
	sum.Reconciled = sum.Difference.IsZero()

	return sum
}

// CanFinalize reports whether Finalize would succeed.
func (s *ReconciliationSession) CanFinalize() bool {
	return s.State == ReconciliationSelecting && s.Summary().Reconciled
}

// SelectedEntries returns the entries currently marked cleared.
func (s *ReconciliationSession) SelectedEntries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(s.Selected))
	for _, i := range s.Selected {
		if i > 0 && i < len(s.Entries) {
			out = append(out, s.Entries[i])
		}
	}
	return out
}

// Finalize closes a balanced session and returns the cleared entries.
func (s *ReconciliationSession) Finalize() ([]LedgerEntry, error) {
	if err := s.requireSelecting(); err != nil {
		return nil, err
	}
	if !s.Summary().Reconciled {
		return nil, ErrNotReconciled
	}
	cleared := s.SelectedEntries()
	s.State = ReconciliationClosed
	return cleared, nil
}

// Close abandons the session; nothing of it is kept.
func (s *ReconciliationSession) Close() {
	s.State = ReconciliationClosed
	s.Selected = []int{}
}
