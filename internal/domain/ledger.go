package domain

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Opening entry markers.
const (
	OpeningBalanceType      = "Opening Balance"
	OpeningBalanceRef       = "-"
	OpeningBalanceNarration = "Opening balance"
)

// Balance labels.
const (
	LabelReceivable = "Receivable"
	LabelPayable    = "Payable"
)

// LedgerEntry is a transaction annotated with the running balance after it.
type LedgerEntry struct {
	Transaction
	Balance decimal.Decimal
}

// IsOpening reports whether the entry is the synthetic opening balance row.
func (e LedgerEntry) IsOpening() bool {
	return e.Type == OpeningBalanceType && e.Ref == OpeningBalanceRef && e.DocumentID == ""
}

// Ledger is the ordered running-balance statement of one party.
type Ledger struct {
	Party   *Party
	Entries []LedgerEntry
}

// FinalBalance returns the balance of the last entry.
func (l *Ledger) FinalBalance() decimal.Decimal {
	return FinalBalance(l.Entries)
}

// BalanceLabel names the final balance for the party type.
func (l *Ledger) BalanceLabel() string {
	if l.Party == nil {
		return ""
	}
	return BalanceLabel(l.Party.Type, l.FinalBalance())
}

// Accumulate orders txs chronologically behind a synthetic opening entry and
// attaches running balances. A nil party produces an empty ledger.
func Accumulate(party *Party, txs []Transaction, now time.Time) []LedgerEntry {
	if party == nil {
		return []LedgerEntry{}
	}

	entries := make([]LedgerEntry, 0, len(txs)+1)
	entries = append(entries, openingEntry(party, now))

	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	running := party.OpeningBalance
	for _, tx := range sorted {
		running = applyToBalance(party.Type, running, tx)
		entries = append(entries, LedgerEntry{Transaction: tx, Balance: running})
	}

	return entries
}

func applyToBalance(t PartyType, balance decimal.Decimal, tx Transaction) decimal.Decimal {
	if t == PartyTypeVendor {
		return balance.Add(tx.Credit).Sub(tx.Debit)
	}
	return balance.Add(tx.Debit).Sub(tx.Credit)
}

func openingEntry(party *Party, now time.Time) LedgerEntry {
	ob := party.OpeningBalance
	pos := decimal.Max(ob, decimal.Zero)
	neg := decimal.Max(ob.Neg(), decimal.Zero)

	tx := Transaction{
		Date:      party.OpeningDate(now),
		Type:      OpeningBalanceType,
		Ref:       OpeningBalanceRef,
		Narration: OpeningBalanceNarration,
		Seq:       -1,
	}
	if party.Type == PartyTypeVendor {
		tx.Credit, tx.Debit = pos, neg
	} else {
		tx.Debit, tx.Credit = pos, neg
	}

	return LedgerEntry{Transaction: tx, Balance: ob}
}

// FinalBalance returns the balance of the last entry, or zero when empty.
func FinalBalance(entries []LedgerEntry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[len(entries)-1].Balance
}

// BalanceLabel names a balance in the party's native convention.
func BalanceLabel(t PartyType, balance decimal.Decimal) string {
	nonNegative := !balance.IsNegative()
	if t == PartyTypeVendor {
		if nonNegative {
			return LabelPayable
		}
		return LabelReceivable
	}
	if nonNegative {
		return LabelReceivable
	}
	return LabelPayable
}

// Totals sums the debit and credit columns of entries.
func Totals(entries []LedgerEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}
