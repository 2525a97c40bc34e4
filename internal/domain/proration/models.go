package proration

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// Result is a prorated charge over a day count
type Result struct {
	Amount    decimal.Decimal `json:"amount"`
	Days      int             `json:"days"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// PlanChangeParams holds the input of a mid-cycle plan change split
type PlanChangeParams struct {
	OldFee      decimal.Decimal
	NewFee      decimal.Decimal
	ChangeDate  time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	// InstallDate starts the old plan's days when it falls inside the period
	InstallDate time.Time
	// PeriodPaid is true when an invoice covering the period of service is already paid
	PeriodPaid bool
}

// PlanChangeSplit is the accounting effect of a plan change on the current period
type PlanChangeSplit struct {
	Branch types.PlanChangeBranch `json:"branch"`
	// OldPlan is the used portion (unpaid branch) or the unused remainder (paid branch)
	OldPlan Result `json:"old_plan"`
	// NewPlan is the new plan's remainder of the period, billed on the next generation pass
	NewPlan Result `json:"new_plan"`
	// Adjustment is signed: positive is a charge, negative a credit
	Adjustment decimal.Decimal `json:"adjustment"`
	Total      decimal.Decimal `json:"total"`
}

// IsCredit reports whether the change returns value to the customer
func (s PlanChangeSplit) IsCredit() bool {
	return s.Adjustment.IsNegative()
}
