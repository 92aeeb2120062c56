package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies a source document collection.
type DocumentKind string

const (
	KindSalesInvoice   DocumentKind = "sales_invoice"
	KindSalesReturn    DocumentKind = "sales_return"
	KindCreditNote     DocumentKind = "credit_note"
	KindReceipt        DocumentKind = "receipt"
	KindPurchaseBill   DocumentKind = "purchase_bill"
	KindPurchaseReturn DocumentKind = "purchase_return"
	KindDebitNote      DocumentKind = "debit_note"
	KindPayment        DocumentKind = "payment"
)

// Document is a raw source record as kept by the document store. Field
// names inside Fields differ per kind and are read through a DocumentAdapter.
type Document struct {
	ID        string
	Kind      DocumentKind
	Fields    map[string]any
	Cleared   bool
	ClearedAt *time.Time
	UpdatedAt time.Time
}

// Field returns the raw value stored under name, or nil.
func (d *Document) Field(name string) any {
	if d == nil || d.Fields == nil || name == "" {
		return nil
	}
	return d.Fields[name]
}

// DocumentKey addresses a single document across collections.
type DocumentKey struct {
	Kind DocumentKind
	ID   string
}

// CoerceAmount converts a loosely typed monetary value into a decimal.
// Missing or unparseable values yield zero.
func CoerceAmount(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return CoerceAmount(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt(int64(n))
	case json.Number:
		return CoerceAmount(n.String())
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// CoerceString renders identifiers and labels that may arrive as numbers.
func CoerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

// CoerceDate parses a date-like field value. The boolean is false when the
// value is missing or malformed.
func CoerceDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return TruncateDay(d), true
	case string:
		t, err := ParseDate(d)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

func countItems(v any) int {
	if items, ok := v.([]any); ok {
		return len(items)
	}
	return 0
}
