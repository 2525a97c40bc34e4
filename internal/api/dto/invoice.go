package dto

import (
	"time"

	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/validator"
	"github.com/shopspring/decimal"
)

type InvoiceResponse struct {
	*invoice.Invoice
	Outstanding decimal.Decimal `json:"outstanding"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:     inv,
		Outstanding: inv.Outstanding(),
	}
}

type ListInvoicesResponse = ListResponse[*InvoiceResponse]

// DisconnectSubscriptionRequest bills the days up to a disconnection
type DisconnectSubscriptionRequest struct {
	// DisconnectionDate defaults to today
	DisconnectionDate string `json:"disconnection_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *DisconnectSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *DisconnectSubscriptionRequest) Date(now time.Time) (time.Time, error) {
	return parseDateOr("disconnection_date", r.DisconnectionDate, now)
}

// ActivateSubscriptionRequest bills from a (re)activation to the next boundary
type ActivateSubscriptionRequest struct {
	// ActivationDate defaults to today
	ActivationDate string `json:"activation_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *ActivateSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *ActivateSubscriptionRequest) Date(now time.Time) (time.Time, error) {
	return parseDateOr("activation_date", r.ActivationDate, now)
}

// RecalculateBalanceResponse shows the reconciliation of a subscription balance
type RecalculateBalanceResponse struct {
	SubscriptionID  string          `json:"subscription_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	TotalInvoiced   decimal.Decimal `json:"total_invoiced"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
}
