package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the ledger column a document kind posts to.
type Side int

const (
	SideDebit Side = iota
	SideCredit
)

func (s Side) opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// Transaction is a document-kind-agnostic view of one source document.
// Debit and Credit are never negative, and at most one of them is non-zero.
type Transaction struct {
	Date      time.Time
	Type      string
	Ref       string
	Narration string
	Debit     decimal.Decimal
	Credit    decimal.Decimal

	DocumentID string
	Kind       DocumentKind
	Cleared    bool
	// Seq is the discovery position, used to break ties between equal dates.
	Seq int
}

// Net returns debit minus credit.
func (t Transaction) Net() decimal.Decimal {
	return t.Debit.Sub(t.Credit)
}
