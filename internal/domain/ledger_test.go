package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2023, time.June, 30, 12, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestAccumulate_CustomerReceivableConvention(t *testing.T) {
	party := &Party{
		ID:                 "c1",
		Type:               PartyTypeCustomer,
		OpeningBalance:     dec(5000),
		OpeningBalanceDate: dayPtr("2023-01-01"),
	}
	txs := []Transaction{
		{Date: day("2023-01-15"), Type: "Receipt", Ref: "R-1", Credit: dec(1000), Debit: decimal.Zero, Seq: 1},
		{Date: day("2023-01-05"), Type: "Sales Invoice", Ref: "INV-1", Debit: dec(2000), Credit: decimal.Zero, Seq: 0},
	}

	entries := Accumulate(party, txs, testNow)
	require.Len(t, entries, 3)

	assert.Equal(t, OpeningBalanceType, entries[0].Type)
	assert.Equal(t, OpeningBalanceRef, entries[0].Ref)
	assert.True(t, entries[0].Balance.Equal(dec(5000)))
	assert.True(t, entries[0].Debit.Equal(dec(5000)))
	assert.True(t, entries[0].Credit.IsZero())

	assert.Equal(t, "INV-1", entries[1].Ref)
	assert.True(t, entries[1].Balance.Equal(dec(7000)), "got %s", entries[1].Balance)
	assert.Equal(t, "R-1", entries[2].Ref)
	assert.True(t, entries[2].Balance.Equal(dec(6000)), "got %s", entries[2].Balance)

	ledger := &Ledger{Party: party, Entries: entries}
	assert.True(t, ledger.FinalBalance().Equal(dec(6000)))
	assert.Equal(t, LabelReceivable, ledger.BalanceLabel())
}

func TestAccumulate_VendorPayableConvention(t *testing.T) {
	party := &Party{
		ID:                 "v1",
		Type:               PartyTypeVendor,
		OpeningBalance:     dec(3000),
		OpeningBalanceDate: dayPtr("2023-01-01"),
	}
	txs := []Transaction{
		{Date: day("2023-02-01"), Type: "Purchase Bill", Ref: "B-1", Credit: dec(1500), Debit: decimal.Zero},
		{Date: day("2023-02-10"), Type: "Payment", Ref: "P-1", Debit: dec(500), Credit: decimal.Zero, Seq: 1},
	}

	entries := Accumulate(party, txs, testNow)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Credit.Equal(dec(3000)))
	assert.True(t, entries[0].Debit.IsZero())
	assert.True(t, entries[0].Balance.Equal(dec(3000)))
	assert.True(t, entries[1].Balance.Equal(dec(4500)))
	assert.True(t, entries[2].Balance.Equal(dec(4000)))
	assert.Equal(t, LabelPayable, BalanceLabel(PartyTypeVendor, FinalBalance(entries)))
}

func TestAccumulate_NegativeOpeningBalanceSplit(t *testing.T) {
	tests := []struct {
		name       string
		partyType  PartyType
		wantDebit  decimal.Decimal
		wantCredit decimal.Decimal
	}{
		{"customer advance", PartyTypeCustomer, decimal.Zero, dec(250)},
		{"vendor advance", PartyTypeVendor, dec(250), decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			party := &Party{ID: "p", Type: tt.partyType, OpeningBalance: dec(-250)}
			entries := Accumulate(party, nil, testNow)

			require.Len(t, entries, 1)
			assert.True(t, entries[0].Debit.Equal(tt.wantDebit))
			assert.True(t, entries[0].Credit.Equal(tt.wantCredit))
			assert.True(t, entries[0].Balance.Equal(dec(-250)))
		})
	}
}

func TestAccumulate_OpeningDateDefaultsToStartOfYear(t *testing.T) {
	party := &Party{ID: "c1", Type: PartyTypeCustomer, OpeningBalance: decimal.Zero}
	entries := Accumulate(party, nil, testNow)

	require.Len(t, entries, 1)
	assert.Equal(t, day("2023-01-01"), entries[0].Date)
}

func TestAccumulate_OpeningEntryFirstEvenWhenLater(t *testing.T) {
	party := &Party{
		ID:                 "c1",
		Type:               PartyTypeCustomer,
		OpeningBalance:     dec(100),
		OpeningBalanceDate: dayPtr("2023-06-01"),
	}
	txs := []Transaction{{Date: day("2023-01-10"), Debit: dec(10), Credit: decimal.Zero}}

	entries := Accumulate(party, txs, testNow)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsOpening())
	assert.True(t, entries[1].Balance.Equal(dec(110)))
}

func TestAccumulate_NilPartyYieldsEmptyLedger(t *testing.T) {
	entries := Accumulate(nil, []Transaction{{Date: day("2023-01-01"), Debit: dec(1)}}, testNow)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAccumulate_EqualDatesKeepDiscoveryOrder(t *testing.T) {
	party := &Party{ID: "c1", Type: PartyTypeCustomer, OpeningBalance: decimal.Zero}
	txs := []Transaction{
		{Date: day("2023-03-01"), Ref: "third", Debit: dec(3), Credit: decimal.Zero, Seq: 2},
		{Date: day("2023-03-01"), Ref: "first", Debit: dec(1), Credit: decimal.Zero, Seq: 0},
		{Date: day("2023-03-01"), Ref: "second", Credit: dec(2), Debit: decimal.Zero, Seq: 1},
	}

	entries := Accumulate(party, txs, testNow)
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"first", "second", "third"}, []string{entries[1].Ref, entries[2].Ref, entries[3].Ref})
}

func TestAccumulate_DoesNotMutateInput(t *testing.T) {
	party := &Party{ID: "c1", Type: PartyTypeCustomer, OpeningBalance: decimal.Zero}
	txs := []Transaction{
		{Date: day("2023-03-02"), Ref: "b", Seq: 0},
		{Date: day("2023-03-01"), Ref: "a", Seq: 1},
	}

	Accumulate(party, txs, testNow)
	assert.Equal(t, "b", txs[0].Ref)
}

func TestAccumulate_Properties(t *testing.T) {
	for _, partyType := range []PartyType{PartyTypeCustomer, PartyTypeVendor} {
		t.Run(string(partyType), func(t *testing.T) {
			party := &Party{ID: "p1", Type: partyType, OpeningBalance: dec(1234)}

			var docs []*Document
			kinds := KindsFor(partyType)
			for i := 0; i < 40; i++ {
				kind := kinds[i%len(kinds)]
				a, _ := AdapterFor(kind)
				docs = append(docs, &Document{
					ID:   "d" + CoerceString(i),
					Kind: kind,
					Fields: map[string]any{
						a.PartyField:  "p1",
						a.DateField:   day("2023-01-01").AddDate(0, 0, (i*7)%31).Format(DateLayout),
						a.RefField:    "REF-" + CoerceString(i),
						a.AmountField: float64(10 + (i*37)%500),
					},
				})
			}

			txs, skipped := NormalizeDocuments("p1", docs)
			require.Zero(t, skipped)
			first := Accumulate(party, txs, testNow)
			second := Accumulate(party, txs, testNow)

			require.Len(t, first, len(docs)+1)
			assert.True(t, first[0].IsOpening())
			assert.Equal(t, first, second, "pipeline must be idempotent")

			sign := partyType.Sign()
			for i := 1; i < len(first); i++ {
				assert.False(t, first[i].Date.Before(first[i-1].Date) && i > 1, "entries out of order at %d", i)
				assert.True(t, first[i].Debit.Mul(first[i].Credit).IsZero(), "debit and credit both set at %d", i)

				want := first[i-1].Balance.Add(sign.Mul(first[i].Debit.Sub(first[i].Credit)))
				assert.True(t, first[i].Balance.Equal(want), "recurrence broken at %d: %s != %s", i, first[i].Balance, want)
			}
		})
	}
}

func TestBalanceLabel(t *testing.T) {
	tests := []struct {
		partyType PartyType
		balance   decimal.Decimal
		want      string
	}{
		{PartyTypeCustomer, dec(6000), LabelReceivable},
		{PartyTypeCustomer, decimal.Zero, LabelReceivable},
		{PartyTypeCustomer, dec(-1), LabelPayable},
		{PartyTypeVendor, dec(4000), LabelPayable},
		{PartyTypeVendor, dec(-1), LabelReceivable},
	}

	for _, tt := range tests {
		if got := BalanceLabel(tt.partyType, tt.balance); got != tt.want {
			t.Fatalf("BalanceLabel(%s, %s) = %q, want %q", tt.partyType, tt.balance, got, tt.want)
		}
	}
}

func TestTotals(t *testing.T) {
	entries := []LedgerEntry{
		{Transaction: Transaction{Debit: dec(5), Credit: decimal.Zero}},
		{Transaction: Transaction{Debit: decimal.Zero, Credit: dec(3)}},
		{Transaction: Transaction{Debit: dec(2), Credit: decimal.Zero}},
	}

	debit, credit := Totals(entries)
	assert.True(t, debit.Equal(dec(7)))
	assert.True(t, credit.Equal(dec(3)))
}
