package domain

import (
	"strings"
	"time"
)

// LedgerFilter narrows a ledger for display. Balances of surviving entries
// are the ones computed over the full ledger.
type LedgerFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// IsZero reports whether the filter keeps every entry.
func (f LedgerFilter) IsZero() bool {
	return f.StartDate == nil && f.EndDate == nil && strings.TrimSpace(f.Search) == ""
}

// Matches reports whether a single entry survives the filter.
func (f LedgerFilter) Matches(e LedgerEntry) bool {
	day := TruncateDay(e.Date)
	if f.StartDate != nil && day.Before(TruncateDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(TruncateDay(*f.EndDate)) {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Type), term) ||
		strings.Contains(strings.ToLower(e.Ref), term) ||
		strings.Contains(strings.ToLower(e.Narration), term)
}

// Apply returns the entries that survive the filter, in ledger order.
func (f LedgerFilter) Apply(entries []LedgerEntry) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
