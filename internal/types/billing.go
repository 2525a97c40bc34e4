package types

import (
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/samber/lo"
)

// BillingCycle marks which billing calendar a subscription or business unit follows.
// The values are the day-of-month labels used by operators.
type BillingCycle string

const (
	// BillingCycleMidMonth bills the 15th of the prior month through the 15th
	BillingCycleMidMonth BillingCycle = "15th"
	// BillingCycleFullMonth bills the 1st through the last day of a calendar month
	BillingCycleFullMonth BillingCycle = "30th"
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleMidMonth,
		BillingCycleFullMonth,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Billing cycle must be either 15th or 30th").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PlanChangeBranch tells which accounting path a plan change took
type PlanChangeBranch string

const (
	// PlanChangeBranchPaid credits the unused old-plan days back to the balance
	PlanChangeBranchPaid PlanChangeBranch = "paid"
	// PlanChangeBranchUnpaid bills the used old-plan days on a new invoice
	PlanChangeBranchUnpaid PlanChangeBranch = "unpaid"
)
