package dto

import (
	"time"

	"github.com/netcycle/netcycle/internal/domain/payment"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest records a customer payment against a subscription
type ApplyPaymentRequest struct {
	SubscriptionID string            `json:"subscription_id" validate:"required"`
	Amount         decimal.Decimal   `json:"amount" validate:"required"`
	Mode           types.PaymentMode `json:"mode" validate:"required"`
	// SettlementDate defaults to today
	SettlementDate string `json:"settlement_date" validate:"omitempty,datetime=2006-01-02"`
	Notes          string `json:"notes,omitempty" validate:"max=500"`
	// InvoiceID targets a specific invoice, otherwise the most recent unpaid one is used
	InvoiceID *string `json:"invoice_id,omitempty"`
}

func (r *ApplyPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validatePositiveAmount(r.Amount); err != nil {
		return err
	}
	return r.Mode.Validate()
}

func (r *ApplyPaymentRequest) Settlement(now time.Time) (time.Time, error) {
	return parseDateOr("settlement_date", r.SettlementDate, now)
}

// ApplyPaymentResponse is the outcome of a single payment
type ApplyPaymentResponse struct {
	Success         bool                        `json:"success"`
	PaymentID       string                      `json:"payment_id"`
	SubscriptionID  string                      `json:"subscription_id"`
	PreviousBalance decimal.Decimal             `json:"previous_balance"`
	NewBalance      decimal.Decimal             `json:"new_balance"`
	InvoiceID       *string                     `json:"invoice_id,omitempty"`
	InvoiceStatus   *types.InvoicePaymentStatus `json:"invoice_status,omitempty"`
	Errors          []string                    `json:"errors"`
}

// PayAllRequest spreads one amount across outstanding invoices, oldest due first
type PayAllRequest struct {
	SubscriptionID string            `json:"subscription_id" validate:"required"`
	Amount         decimal.Decimal   `json:"amount" validate:"required"`
	Mode           types.PaymentMode `json:"mode" validate:"required"`
	SettlementDate string            `json:"settlement_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *PayAllRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validatePositiveAmount(r.Amount); err != nil {
		return err
	}
	return r.Mode.Validate()
}

func (r *PayAllRequest) Settlement(now time.Time) (time.Time, error) {
	return parseDateOr("settlement_date", r.SettlementDate, now)
}

// PaymentAllocation is the share of a pay-all amount written against one invoice
type PaymentAllocation struct {
	PaymentID     string                     `json:"payment_id"`
	InvoiceID     string                     `json:"invoice_id"`
	Amount        decimal.Decimal            `json:"amount"`
	InvoiceStatus types.InvoicePaymentStatus `json:"invoice_status"`
}

// PayAllResponse lists the allocations of a pay-all call
type PayAllResponse struct {
	Success         bool                `json:"success"`
	SubscriptionID  string              `json:"subscription_id"`
	PreviousBalance decimal.Decimal     `json:"previous_balance"`
	NewBalance      decimal.Decimal     `json:"new_balance"`
	Allocations     []PaymentAllocation `json:"allocations"`
	// Unallocated is recorded as an advance payment without an invoice
	Unallocated        decimal.Decimal `json:"unallocated"`
	UnallocatedPayment *string         `json:"unallocated_payment_id,omitempty"`
	Errors             []string        `json:"errors"`
}

type PaymentResponse struct {
	*payment.Payment
}

type ListPaymentsResponse = ListResponse[*PaymentResponse]

func validatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
