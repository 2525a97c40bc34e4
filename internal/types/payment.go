package types

import (
	"time"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/samber/lo"
)

// PaymentMode is how the customer settled a payment
type PaymentMode string

const (
	PaymentModeCash           PaymentMode = "Cash"
	PaymentModeEWallet        PaymentMode = "E-Wallet"
	PaymentModeReferralCredit PaymentMode = "Referral Credit"
)

func (m PaymentMode) String() string {
	return string(m)
}

func (m PaymentMode) Validate() error {
	allowed := []PaymentMode{
		PaymentModeCash,
		PaymentModeEWallet,
		PaymentModeReferralCredit,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment mode").
			WithHint("Payment mode must be Cash, E-Wallet or Referral Credit").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentFilter narrows payment list queries
type PaymentFilter struct {
	SubscriptionIDs []string   `form:"subscription_ids" json:"subscription_ids,omitempty"`
	InvoiceID       *string    `form:"invoice_id" json:"invoice_id,omitempty"`
	SettledFrom     *time.Time `form:"settled_from" time_format:"2006-01-02" json:"settled_from,omitempty"`
	SettledTo       *time.Time `form:"settled_to" time_format:"2006-01-02" json:"settled_to,omitempty"`
}

// NewPaymentFilter returns an empty filter that matches every payment
func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{}
}
