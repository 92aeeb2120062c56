package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PerKindRules(t *testing.T) {
	tests := []struct {
		kind          DocumentKind
		fields        map[string]any
		wantType      string
		wantDebit     decimal.Decimal
		wantCredit    decimal.Decimal
		wantNarration string
	}{
		{
			kind:          KindSalesInvoice,
			fields:        map[string]any{"customerId": "c1", "date": "2023-01-05", "invoiceNumber": "INV-1", "grandTotal": 2000.0, "items": []any{1, 2, 3}},
			wantType:      "Sales Invoice",
			wantDebit:     dec(2000),
			wantCredit:    decimal.Zero,
			wantNarration: "Invoice for 3 items",
		},
		{
			kind:          KindSalesReturn,
			fields:        map[string]any{"customerId": "c1", "date": "2023-01-06", "returnNumber": "SR-1", "grandTotal": "150", "items": []any{1}},
			wantType:      "Sales Return",
			wantDebit:     decimal.Zero,
			wantCredit:    dec(150),
			wantNarration: "Return of 1 items",
		},
		{
			kind:          KindCreditNote,
			fields:        map[string]any{"creditAccount": "c1", "date": "2023-01-07", "noteNumber": "CN-1", "amount": 75.0},
			wantType:      "Credit Note",
			wantDebit:     decimal.Zero,
			wantCredit:    dec(75),
			wantNarration: "Credit issued",
		},
		{
			kind:          KindReceipt,
			fields:        map[string]any{"receivedFrom": "c1", "date": "2023-01-08", "receiptNumber": "R-1", "amount": 1000.0},
			wantType:      "Receipt",
			wantDebit:     decimal.Zero,
			wantCredit:    dec(1000),
			wantNarration: "Payment received",
		},
		{
			kind:          KindPurchaseBill,
			fields:        map[string]any{"vendorId": "v1", "date": "2023-02-01", "billNumber": "B-1", "grandTotal": 1500.0, "items": []any{1, 2}},
			wantType:      "Purchase Bill",
			wantDebit:     decimal.Zero,
			wantCredit:    dec(1500),
			wantNarration: "Bill for 2 items",
		},
		{
			kind:          KindPurchaseReturn,
			fields:        map[string]any{"vendorId": "v1", "date": "2023-02-02", "returnNumber": "PR-1", "grandTotal": 40.0},
			wantType:      "Purchase Return",
			wantDebit:     dec(40),
			wantCredit:    decimal.Zero,
			wantNarration: "Return of 0 items",
		},
		{
			kind:          KindDebitNote,
			fields:        map[string]any{"debitAccount": "v1", "date": "2023-02-03", "noteNumber": "DN-1", "amount": 20.0},
			wantType:      "Debit Note",
			wantDebit:     dec(20),
			wantCredit:    decimal.Zero,
			wantNarration: "Debit issued",
		},
		{
			kind:          KindPayment,
			fields:        map[string]any{"paidTo": "v1", "date": "2023-02-10", "paymentNumber": "P-1", "amount": 500.0},
			wantType:      "Payment",
			wantDebit:     dec(500),
			wantCredit:    decimal.Zero,
			wantNarration: "Payment made",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			a, err := AdapterFor(tt.kind)
			require.NoError(t, err)

			tx, ok := a.Normalize(&Document{ID: "doc", Kind: tt.kind, Fields: tt.fields})
			require.True(t, ok)

			assert.Equal(t, tt.wantType, tx.Type)
			assert.True(t, tx.Debit.Equal(tt.wantDebit), "debit %s", tx.Debit)
			assert.True(t, tx.Credit.Equal(tt.wantCredit), "credit %s", tx.Credit)
			assert.Equal(t, tt.wantNarration, tx.Narration)
			assert.Equal(t, "doc", tx.DocumentID)
			assert.Equal(t, tt.kind, tx.Kind)
		})
	}
}

func TestNormalize_SuppliedNarrationWins(t *testing.T) {
	a, _ := AdapterFor(KindReceipt)
	tx, ok := a.Normalize(&Document{Kind: KindReceipt, Fields: map[string]any{
		"receivedFrom": "c1", "date": "2023-01-01", "amount": 1.0, "narration": "  cheque 42 ",
	}})

	require.True(t, ok)
	assert.Equal(t, "cheque 42", tx.Narration)
}

func TestNormalize_BlankNarrationFallsBack(t *testing.T) {
	a, _ := AdapterFor(KindSalesInvoice)
	tx, ok := a.Normalize(&Document{Kind: KindSalesInvoice, Fields: map[string]any{
		"customerId": "c1", "date": "2023-01-01", "notes": "   ",
	}})

	require.True(t, ok)
	assert.Equal(t, "Invoice for 0 items", tx.Narration)
}

func TestNormalize_MissingDateIsSkipped(t *testing.T) {
	a, _ := AdapterFor(KindPayment)
	_, ok := a.Normalize(&Document{Kind: KindPayment, Fields: map[string]any{"paidTo": "v1", "date": "not a date"}})
	assert.False(t, ok)
}

func TestNormalize_LocalDateTimeIsAccepted(t *testing.T) {
	a, _ := AdapterFor(KindSalesInvoice)
	for _, raw := range []string{"2023-01-05T10:00:00", "2023-01-05T10:00", "2023-01-05T10:00:00.250"} {
		tx, ok := a.Normalize(&Document{Kind: KindSalesInvoice, Fields: map[string]any{
			"customerId": "c1", "date": raw, "grandTotal": 2000.0,
		}})
		require.True(t, ok, raw)
		assert.True(t, tx.Date.Equal(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)), raw)
	}
}

func TestNormalizeDocuments_LocalDateTimeKeepsBalance(t *testing.T) {
	docs := []*Document{
		{ID: "inv", Kind: KindSalesInvoice, Fields: map[string]any{"customerId": "c1", "date": "2023-01-05T10:00:00", "grandTotal": 2000.0}},
		{ID: "rcpt", Kind: KindReceipt, Fields: map[string]any{"receivedFrom": "c1", "date": "2023-01-15", "amount": 1000.0}},
	}

	txs, skipped := NormalizeDocuments("c1", docs)
	require.Len(t, txs, 2)
	assert.Zero(t, skipped)

	party := &Party{ID: "c1", Type: PartyTypeCustomer, OpeningBalance: dec(5000), OpeningBalanceDate: dayPtr("2023-01-01")}
	entries := Accumulate(party, txs, testNow)
	require.Len(t, entries, 3)
	assert.Equal(t, "inv", entries[1].DocumentID)
	assert.True(t, FinalBalance(entries).Equal(dec(6000)), FinalBalance(entries).String())
}

func TestNormalize_NegativeAmountPostsToOppositeSide(t *testing.T) {
	a, _ := AdapterFor(KindReceipt)
	tx, ok := a.Normalize(&Document{Kind: KindReceipt, Fields: map[string]any{
		"receivedFrom": "c1", "date": "2023-01-10", "amount": -300.0,
	}})

	require.True(t, ok)
	assert.True(t, tx.Debit.Equal(dec(300)), tx.Debit.String())
	assert.True(t, tx.Credit.IsZero(), tx.Credit.String())
	assert.True(t, tx.Net().Equal(dec(300)))

	b, _ := AdapterFor(KindSalesInvoice)
	tx, ok = b.Normalize(&Document{Kind: KindSalesInvoice, Fields: map[string]any{
		"customerId": "c1", "date": "2023-01-10", "grandTotal": "-50",
	}})

	require.True(t, ok)
	assert.True(t, tx.Debit.IsZero())
	assert.True(t, tx.Credit.Equal(dec(50)))
}

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want decimal.Decimal
	}{
		{"nil", nil, decimal.Zero},
		{"float", 12.5, decimal.NewFromFloat(12.5)},
		{"int", 7, dec(7)},
		{"numeric string", " 99.99 ", decimal.RequireFromString("99.99")},
		{"garbage string", "abc", decimal.Zero},
		{"empty string", "", decimal.Zero},
		{"json number", json.Number("42"), dec(42)},
		{"bool", true, decimal.Zero},
		{"map", map[string]any{}, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceAmount(tt.in)
			if !got.Equal(tt.want) {
				t.Fatalf("CoerceAmount(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDocuments_FiltersByParty(t *testing.T) {
	docs := []*Document{
		{ID: "1", Kind: KindSalesInvoice, Fields: map[string]any{"customerId": "c1", "date": "2023-01-02", "grandTotal": 10.0}},
		{ID: "2", Kind: KindSalesInvoice, Fields: map[string]any{"customerId": "c2", "date": "2023-01-02", "grandTotal": 20.0}},
		{ID: "3", Kind: KindReceipt, Fields: map[string]any{"receivedFrom": "c1", "date": "2023-01-03", "amount": "oops"}},
		{ID: "4", Kind: KindReceipt, Fields: map[string]any{"receivedFrom": "c1"}},
		{ID: "5", Kind: DocumentKind("journal"), Fields: map[string]any{}},
		nil,
	}

	txs, skipped := NormalizeDocuments("c1", docs)

	require.Len(t, txs, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "1", txs[0].DocumentID)
	assert.Equal(t, 0, txs[0].Seq)
	assert.Equal(t, "3", txs[1].DocumentID)
	assert.Equal(t, 1, txs[1].Seq)
	assert.True(t, txs[1].Credit.IsZero())
}

func TestNormalizeDocuments_NumericPartyID(t *testing.T) {
	docs := []*Document{
		{ID: "1", Kind: KindPayment, Fields: map[string]any{"paidTo": 17.0, "date": "2023-01-02", "amount": 5.0}},
	}

	txs, _ := NormalizeDocuments("17", docs)
	require.Len(t, txs, 1)
}

func TestParseDocumentKind(t *testing.T) {
	kind, err := ParseDocumentKind(" Receipt ")
	require.NoError(t, err)
	assert.Equal(t, KindReceipt, kind)

	_, err = ParseDocumentKind("journal")
	assert.True(t, errors.Is(err, ErrUnknownDocumentKind))
}

func TestKindsFor(t *testing.T) {
	assert.Equal(t, []DocumentKind{KindSalesInvoice, KindSalesReturn, KindCreditNote, KindReceipt}, KindsFor(PartyTypeCustomer))
	assert.Equal(t, []DocumentKind{KindPurchaseBill, KindPurchaseReturn, KindDebitNote, KindPayment}, KindsFor(PartyTypeVendor))
	assert.Nil(t, KindsFor(PartyType("other")))
	assert.Len(t, AllKinds(), 8)

	for _, kind := range AllKinds() {
		a, err := AdapterFor(kind)
		require.NoError(t, err)
		assert.Contains(t, KindsFor(a.PartyType), kind)
	}
}
