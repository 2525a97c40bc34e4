package dto

import (
	"time"

	"github.com/netcycle/netcycle/internal/domain/proration"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

// ChangePlanRequest swaps a subscription's plan mid cycle
type ChangePlanRequest struct {
	NewPlanID string `json:"new_plan_id" validate:"required"`
	// ChangeDate defaults to today
	ChangeDate string `json:"change_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *ChangePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *ChangePlanRequest) Date(now time.Time) (time.Time, error) {
	return parseDateOr("change_date", r.ChangeDate, now)
}

// PlanChangePeriod is one side of a plan change split
type PlanChangePeriod struct {
	PlanID string          `json:"plan_id"`
	Days   int             `json:"days"`
	Amount decimal.Decimal `json:"amount"`
}

func newPlanChangePeriod(planID string, r proration.Result) PlanChangePeriod {
	return PlanChangePeriod{PlanID: planID, Days: r.Days, Amount: r.Amount}
}

// PlanChangeResponse is returned by both the change and its preview
type PlanChangeResponse struct {
	Success        bool                   `json:"success"`
	Preview        bool                   `json:"preview"`
	PlanChangeID   string                 `json:"plan_change_id,omitempty"`
	SubscriptionID string                 `json:"subscription_id"`
	Branch         types.PlanChangeBranch `json:"branch"`
	ChangeDate     time.Time              `json:"change_date"`
	PeriodStart    time.Time              `json:"period_start"`
	PeriodEnd      time.Time              `json:"period_end"`
	OldPlan        PlanChangePeriod       `json:"old_plan"`
	// NewPlan is billed by the next generation pass
	NewPlan PlanChangePeriod `json:"new_plan"`
	// Adjustment is signed: positive is charged now, negative is credited now
	Adjustment   decimal.Decimal  `json:"adjustment"`
	Total        decimal.Decimal  `json:"total"`
	InvoiceID    *string          `json:"invoice_id,omitempty"`
	CreditAmount *decimal.Decimal `json:"credit_amount,omitempty"`
	NewBalance   *decimal.Decimal `json:"new_balance,omitempty"`
	Errors       []string         `json:"errors"`
}

// NewPlanChangeResponse fills the computed part of a response from a split
func NewPlanChangeResponse(subscriptionID, oldPlanID, newPlanID string, changeDate, periodStart, periodEnd time.Time, split proration.PlanChangeSplit) *PlanChangeResponse {
	return &PlanChangeResponse{
		Success:        true,
		SubscriptionID: subscriptionID,
		Branch:         split.Branch,
		ChangeDate:     changeDate,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		OldPlan:        newPlanChangePeriod(oldPlanID, split.OldPlan),
		NewPlan:        newPlanChangePeriod(newPlanID, split.NewPlan),
		Adjustment:     split.Adjustment,
		Total:          split.Total,
		Errors:         []string{},
	}
}
