package subscription

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// CustomerID is the identifier for the customer in our system
	CustomerID string `db:"customer_id" json:"customer_id"`

	// PlanID is the identifier for the plan currently billed
	PlanID string `db:"plan_id" json:"plan_id"`

	// BusinessUnitID decides the billing schedule profile
	BusinessUnitID string `db:"business_unit_id" json:"business_unit_id"`

	// InstallDate is the day the service was installed
	InstallDate time.Time `db:"install_date" json:"install_date"`

	// BillingCycle is the 15th or 30th cycle marker
	BillingCycle types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`

	// Balance is positive when the customer owes money and negative when they hold credit
	Balance decimal.Decimal `db:"balance" json:"balance"`

	Active bool `db:"active" json:"active"`

	// ReferralCreditApplied is set once the one-time referral discount has been used
	ReferralCreditApplied bool `db:"referral_credit_applied" json:"referral_credit_applied"`

	// Version is the optimistic lock counter, bumped by every write
	Version int `db:"version" json:"version"`

	types.BaseModel
}

// HasCredit reports whether the subscription holds a credit balance
func (s *Subscription) HasCredit() bool {
	return s.Balance.IsNegative()
}

// IsFirstFor reports whether s is the chronologically first of a customer's
// subscriptions. Ties on install date are broken by id.
func (s *Subscription) IsFirstFor(all []*Subscription) bool {
	for _, other := range all {
		if other.ID == s.ID || other.CustomerID != s.CustomerID {
			continue
		}
		if other.InstallDate.Before(s.InstallDate) ||
			(other.InstallDate.Equal(s.InstallDate) && other.ID < s.ID) {
			return false
		}
	}
	return true
}
