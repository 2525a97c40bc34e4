package payment

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is an append-only ledger entry. It is never updated or deleted.
type Payment struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	// InvoiceID is empty for unallocated advance payments
	InvoiceID      *string           `db:"invoice_id" json:"invoice_id,omitempty"`
	SettlementDate time.Time         `db:"settlement_date" json:"settlement_date"`
	Amount         decimal.Decimal   `db:"amount" json:"amount"`
	Mode           types.PaymentMode `db:"mode" json:"mode"`
	Notes          string            `db:"notes" json:"notes"`
	types.BaseModel
}
