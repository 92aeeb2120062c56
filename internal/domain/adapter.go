package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentAdapter hides the per-kind field naming of source documents.
type DocumentAdapter struct {
	Kind      DocumentKind
	PartyType PartyType
	Label     string
	Side      Side

	PartyField     string
	DateField      string
	RefField       string
	AmountField    string
	NarrationField string
	ItemsField     string

	DefaultNarration func(items int) string
}

func fixedNarration(s string) func(int) string {
	return func(int) string { return s }
}

func itemsNarration(prefix string) func(int) string {
	return func(n int) string { return fmt.Sprintf("%s %d items", prefix, n) }
}

// Discovery order matters: it is the tie-break for transactions sharing a date.
var (
	customerKinds = []DocumentKind{KindSalesInvoice, KindSalesReturn, KindCreditNote, KindReceipt}
	vendorKinds   = []DocumentKind{KindPurchaseBill, KindPurchaseReturn, KindDebitNote, KindPayment}
)

var adapters = map[DocumentKind]DocumentAdapter{
	KindSalesInvoice: {
		Kind: KindSalesInvoice, PartyType: PartyTypeCustomer, Label: "Sales Invoice", Side: SideDebit,
		PartyField: "customerId", DateField: "date", RefField: "invoiceNumber",
		AmountField: "grandTotal", NarrationField: "notes", ItemsField: "items",
		DefaultNarration: itemsNarration("Invoice for"),
	},
	KindSalesReturn: {
		Kind: KindSalesReturn, PartyType: PartyTypeCustomer, Label: "Sales Return", Side: SideCredit,
		PartyField: "customerId", DateField: "date", RefField: "returnNumber",
		AmountField: "grandTotal", NarrationField: "reason", ItemsField: "items",
		DefaultNarration: itemsNarration("Return of"),
	},
	KindCreditNote: {
		Kind: KindCreditNote, PartyType: PartyTypeCustomer, Label: "Credit Note", Side: SideCredit,
		PartyField: "creditAccount", DateField: "date", RefField: "noteNumber",
		AmountField: "amount", NarrationField: "narration",
		DefaultNarration: fixedNarration("Credit issued"),
	},
	KindReceipt: {
		Kind: KindReceipt, PartyType: PartyTypeCustomer, Label: "Receipt", Side: SideCredit,
		PartyField: "receivedFrom", DateField: "date", RefField: "receiptNumber",
		AmountField: "amount", NarrationField: "narration",
		DefaultNarration: fixedNarration("Payment received"),
	},
	KindPurchaseBill: {
		Kind: KindPurchaseBill, PartyType: PartyTypeVendor, Label: "Purchase Bill", Side: SideCredit,
		PartyField: "vendorId", DateField: "date", RefField: "billNumber",
		AmountField: "grandTotal", NarrationField: "notes", ItemsField: "items",
		DefaultNarration: itemsNarration("Bill for"),
	},
	KindPurchaseReturn: {
		Kind: KindPurchaseReturn, PartyType: PartyTypeVendor, Label: "Purchase Return", Side: SideDebit,
		PartyField: "vendorId", DateField: "date", RefField: "returnNumber",
		AmountField: "grandTotal", NarrationField: "reason", ItemsField: "items",
		DefaultNarration: itemsNarration("Return of"),
	},
	KindDebitNote: {
		Kind: KindDebitNote, PartyType: PartyTypeVendor, Label: "Debit Note", Side: SideDebit,
		PartyField: "debitAccount", DateField: "date", RefField: "noteNumber",
		AmountField: "amount", NarrationField: "narration",
		DefaultNarration: fixedNarration("Debit issued"),
	},
	KindPayment: {
		Kind: KindPayment, PartyType: PartyTypeVendor, Label: "Payment", Side: SideDebit,
		PartyField: "paidTo", DateField: "date", RefField: "paymentNumber",
		AmountField: "amount", NarrationField: "narration",
		DefaultNarration: fixedNarration("Payment made"),
	},
}

// AdapterFor returns the adapter registered for kind.
func AdapterFor(kind DocumentKind) (DocumentAdapter, error) {
	a, ok := adapters[kind]
	if !ok {
		return DocumentAdapter{}, fmt.Errorf("%w: %s", ErrUnknownDocumentKind, kind)
	}
	return a, nil
}

// KindsFor lists the document kinds that post to a party type's sub-ledger,
// in discovery order.
func KindsFor(t PartyType) []DocumentKind {
	switch t {
	case PartyTypeCustomer:
		return append([]DocumentKind(nil), customerKinds...)
	case PartyTypeVendor:
		return append([]DocumentKind(nil), vendorKinds...)
	default:
		return nil
	}
}

// AllKinds lists every known document kind.
func AllKinds() []DocumentKind {
	return append(KindsFor(PartyTypeCustomer), vendorKinds...)
}

// ParseDocumentKind validates a kind coming from outside.
func ParseDocumentKind(s string) (DocumentKind, error) {
	kind := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := AdapterFor(kind); err != nil {
		return "", err
	}
	return kind, nil
}

// ExtractPartyID reads the party foreign key.
func (a DocumentAdapter) ExtractPartyID(doc *Document) string {
	return CoerceString(doc.Field(a.PartyField))
}

// ExtractAmount reads the monetary amount, zero when missing or malformed.
func (a DocumentAdapter) ExtractAmount(doc *Document) decimal.Decimal {
	return CoerceAmount(doc.Field(a.AmountField))
}

// ExtractDate reads the document date.
func (a DocumentAdapter) ExtractDate(doc *Document) (time.Time, bool) {
	return CoerceDate(doc.Field(a.DateField))
}

// ExtractRef reads the reference number.
func (a DocumentAdapter) ExtractRef(doc *Document) string {
	return CoerceString(doc.Field(a.RefField))
}

// ExtractNarration reads the narration, falling back to the kind default.
func (a DocumentAdapter) ExtractNarration(doc *Document) string {
	if s := CoerceString(doc.Field(a.NarrationField)); s != "" {
		return s
	}
	return a.DefaultNarration(countItems(doc.Field(a.ItemsField)))
}

// Normalize maps a document to a transaction. It returns false when the
// document has no usable date.
func (a DocumentAdapter) Normalize(doc *Document) (Transaction, bool) {
	date, ok := a.ExtractDate(doc)
	if !ok {
		return Transaction{}, false
	}

	tx := Transaction{
		Date:       date,
		Type:       a.Label,
		Ref:        a.ExtractRef(doc),
		Narration:  a.ExtractNarration(doc),
		Debit:      decimal.Zero,
		Credit:     decimal.Zero,
		DocumentID: doc.ID,
		Kind:       a.Kind,
		Cleared:    doc.Cleared,
	}

	// A negative amount posts to the opposite column as its absolute value,
	// so both columns stay non-negative while the net effect is unchanged.
	amount := a.ExtractAmount(doc)
	side := a.Side
	if amount.IsNegative() {
		amount = amount.Neg()
		side = side.opposite()
	}
	if side == SideDebit {
		tx.Debit = amount
	} else {
		tx.Credit = amount
	}

	return tx, true
}

// NormalizeDocuments keeps the documents whose foreign key points at partyID
// and maps them to transactions, numbering them in the given order. Documents
// of unknown kinds or without a date are skipped and counted.
func NormalizeDocuments(partyID string, docs []*Document) (txs []Transaction, skipped int) {
	txs = make([]Transaction, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		a, err := AdapterFor(doc.Kind)
		if err != nil {
			skipped++
			continue
		}
		if a.ExtractPartyID(doc) != partyID {
			continue
		}
		tx, ok := a.Normalize(doc)
		if !ok {
			skipped++
			continue
		}
		tx.Seq = len(txs)
		txs = append(txs, tx)
	}
	return txs, skipped
}
