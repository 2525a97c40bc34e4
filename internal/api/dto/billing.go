package dto

import (
	"time"

	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

// GenerateInvoicesRequest runs one generation pass for a business unit and billing month
type GenerateInvoicesRequest struct {
	BusinessUnitID string `json:"business_unit_id" validate:"required"`
	Year           int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Month          int    `json:"month" validate:"required,gte=1,lte=12"`
	// BillingCycleOverride limits the pass to subscriptions billed on the 15th or 30th cycle
	BillingCycleOverride types.BillingCycle `json:"billing_cycle_override,omitempty"`
}

func (r *GenerateInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycleOverride != "" {
		return r.BillingCycleOverride.Validate()
	}
	return nil
}

func (r *GenerateInvoicesRequest) TargetMonth() time.Month {
	return time.Month(r.Month)
}

// SubscriptionResult is the outcome of one subscription in a generation pass
type SubscriptionResult struct {
	SubscriptionID string           `json:"subscription_id"`
	InvoiceID      string           `json:"invoice_id,omitempty"`
	AmountDue      *decimal.Decimal `json:"amount_due,omitempty"`
	IsProrated     bool             `json:"is_prorated"`
	ProratedDays   int              `json:"prorated_days,omitempty"`
	Skipped        bool             `json:"skipped"`
	// Reason explains a skip
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	SkipReasonAlreadyInvoiced      = "already_invoiced"
	SkipReasonInstalledAfterPeriod = "installed_after_period"
)

// GenerateInvoicesResponse summarises a generation pass
type GenerateInvoicesResponse struct {
	Success        bool                 `json:"success"`
	BusinessUnitID string               `json:"business_unit_id"`
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	BillingCycle   types.BillingCycle   `json:"billing_cycle,omitempty"`
	Generated      int                  `json:"generated"`
	Skipped        int                  `json:"skipped"`
	Results        []SubscriptionResult `json:"results"`
	Errors         []string             `json:"errors"`
}

// BillingScheduleRequest asks for the resolved billing dates of a unit
type BillingScheduleRequest struct {
	BusinessUnitID       string             `form:"business_unit_id" validate:"required"`
	Year                 int                `form:"year" validate:"required,gte=2000,lte=2100"`
	Month                int                `form:"month" validate:"required,gte=1,lte=12"`
	BillingCycleOverride types.BillingCycle `form:"billing_cycle_override"`
}

func (r *BillingScheduleRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycleOverride != "" {
		return r.BillingCycleOverride.Validate()
	}
	return nil
}

// BillingScheduleResponse carries the resolved profile and dates
type BillingScheduleResponse struct {
	BusinessUnitID   string `json:"business_unit_id"`
	BusinessUnitName string `json:"business_unit_name"`
	schedule.Dates
}

// DailyRunResponse reports what the daily scheduler run did
type DailyRunResponse struct {
	Success    bool                        `json:"success"`
	Date       string                      `json:"date"`
	Tasks      schedule.Tasks              `json:"tasks"`
	Generation []*GenerateInvoicesResponse `json:"generation"`
	Reminders  *notification.BulkResult    `json:"reminders,omitempty"`
	Warnings   *notification.BulkResult    `json:"warnings,omitempty"`
	Errors     []string                    `json:"errors"`
}
