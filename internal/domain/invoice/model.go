package invoice

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a bill for one period of a subscription. Invoices are never
// deleted; only the payment status and the paid amount change after creation.
type Invoice struct {
	ID             string            `db:"id" json:"id"`
	SubscriptionID string            `db:"subscription_id" json:"subscription_id"`
	InvoiceType    types.InvoiceType `db:"invoice_type" json:"invoice_type"`

	// FromDate and ToDate are the inclusive bounds of the billed period
	FromDate time.Time `db:"from_date" json:"from_date"`
	ToDate   time.Time `db:"to_date" json:"to_date"`
	DueDate  time.Time `db:"due_date" json:"due_date"`

	// AmountDue is cumulative: it includes any outstanding balance carried over
	AmountDue  decimal.Decimal `db:"amount_due" json:"amount_due"`
	AmountPaid decimal.Decimal `db:"amount_paid" json:"amount_paid"`

	PaymentStatus types.InvoicePaymentStatus `db:"payment_status" json:"payment_status"`

	IsProrated   bool `db:"is_prorated" json:"is_prorated"`
	ProratedDays int  `db:"prorated_days" json:"prorated_days"`

	// OriginalAmount is the period charge before discounts and credits
	OriginalAmount  *decimal.Decimal `db:"original_amount" json:"original_amount,omitempty"`
	DiscountApplied *decimal.Decimal `db:"discount_applied" json:"discount_applied,omitempty"`
	CreditsApplied  *decimal.Decimal `db:"credits_applied" json:"credits_applied,omitempty"`

	types.BaseModel
}

// IsPaid reports whether the invoice is settled
func (i *Invoice) IsPaid() bool {
	return i.PaymentStatus == types.InvoicePaymentStatusPaid
}

// Outstanding is the part of AmountDue not yet paid, never negative
func (i *Invoice) Outstanding() decimal.Decimal {
	return decimal.Max(i.AmountDue.Sub(i.AmountPaid), decimal.Zero)
}

// Covers reports whether the invoice spans the whole of [from, to]
func (i *Invoice) Covers(from, to time.Time) bool {
	return !i.FromDate.After(from) && !i.ToDate.Before(to)
}
