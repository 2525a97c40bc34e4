package planchange

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// PlanChange records a mid-cycle plan swap. The new plan's remainder of the
// period is billed by the next generation pass, which then flips Processed.
type PlanChange struct {
	ID             string          `db:"id" json:"id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	OldPlanID      string          `db:"old_plan_id" json:"old_plan_id"`
	NewPlanID      string          `db:"new_plan_id" json:"new_plan_id"`
	OldFee         decimal.Decimal `db:"old_fee" json:"old_fee"`
	NewFee         decimal.Decimal `db:"new_fee" json:"new_fee"`
	ChangeDate     time.Time       `db:"change_date" json:"change_date"`
	// ProratedAmount is signed: positive is a charge, negative a credit
	ProratedAmount decimal.Decimal `db:"prorated_amount" json:"prorated_amount"`
	ProratedDays   int             `db:"prorated_days" json:"prorated_days"`
	PeriodStart    time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd      time.Time       `db:"period_end" json:"period_end"`
	// InvoiceID links the invoice that realised the change
	InvoiceID *string `db:"invoice_id" json:"invoice_id,omitempty"`
	Processed bool    `db:"processed" json:"processed"`
	types.BaseModel
}
