package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyType distinguishes receivable and payable sub-ledgers.
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeVendor   PartyType = "vendor"
)

// IsValid reports whether the party type is known.
func (t PartyType) IsValid() bool {
	return t == PartyTypeCustomer || t == PartyTypeVendor
}

// Sign returns the direction in which a debit moves the running balance.
// Customers are debit-positive (receivable), vendors credit-positive (payable).
func (t PartyType) Sign() decimal.Decimal {
	if t == PartyTypeVendor {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Party is a customer or vendor, the subject of a sub-ledger.
type Party struct {
	ID                 string
	Name               string
	Type               PartyType
	OpeningBalance     decimal.Decimal
	OpeningBalanceDate *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OpeningDate returns the opening balance date, defaulting to January 1
// of the year of now.
func (p *Party) OpeningDate(now time.Time) time.Time {
	if p.OpeningBalanceDate != nil && !p.OpeningBalanceDate.IsZero() {
		return TruncateDay(*p.OpeningBalanceDate)
	}
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Validate checks the party fields accepted by the store API.
func (p *Party) Validate() error {
	if err := ValidatePartyName(p.Name); err != nil {
		return err
	}
	if !p.Type.IsValid() {
		return ErrInvalidPartyType
	}
	return nil
}
