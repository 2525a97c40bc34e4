package types

import (
	"time"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/samber/lo"
)

// InvoiceType is the origin of an invoice
type InvoiceType string

const (
	// InvoiceTypeRecurring is written by the periodic generation pass
	InvoiceTypeRecurring InvoiceType = "recurring"
	// InvoiceTypePlanChange covers the used days of the previous plan
	InvoiceTypePlanChange InvoiceType = "plan_change"
	// InvoiceTypeDisconnection covers the days since the last invoice up to disconnection
	InvoiceTypeDisconnection InvoiceType = "disconnection"
	// InvoiceTypeActivation covers activation up to the next billing boundary
	InvoiceTypeActivation InvoiceType = "activation"
)

func (t InvoiceType) String() string {
	return string(t)
}

// InvoicePaymentStatus is the settlement state of an invoice
type InvoicePaymentStatus string

const (
	InvoicePaymentStatusUnpaid              InvoicePaymentStatus = "Unpaid"
	InvoicePaymentStatusPartiallyPaid       InvoicePaymentStatus = "Partially Paid"
	InvoicePaymentStatusPaid                InvoicePaymentStatus = "Paid"
	InvoicePaymentStatusPendingVerification InvoicePaymentStatus = "Pending Verification"
)

func (s InvoicePaymentStatus) String() string {
	return string(s)
}

func (s InvoicePaymentStatus) Validate() error {
	allowed := []InvoicePaymentStatus{
		InvoicePaymentStatusUnpaid,
		InvoicePaymentStatusPartiallyPaid,
		InvoicePaymentStatusPaid,
		InvoicePaymentStatusPendingVerification,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice payment status").
			WithHint("Please provide a valid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter narrows invoice list queries
type InvoiceFilter struct {
	SubscriptionIDs []string               `form:"subscription_ids" json:"subscription_ids,omitempty"`
	InvoiceTypes    []InvoiceType          `form:"invoice_types" json:"invoice_types,omitempty"`
	PaymentStatus   []InvoicePaymentStatus `form:"payment_status" json:"payment_status,omitempty"`
	// DueDateFrom and DueDateTo bound due_date inclusively
	DueDateFrom *time.Time `form:"due_date_from" time_format:"2006-01-02" json:"due_date_from,omitempty"`
	DueDateTo   *time.Time `form:"due_date_to" time_format:"2006-01-02" json:"due_date_to,omitempty"`
}

// NewInvoiceFilter returns an empty filter that matches every invoice
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{}
}
