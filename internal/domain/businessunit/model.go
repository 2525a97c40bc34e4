package businessunit

import (
	"github.com/netcycle/netcycle/internal/types"
)

// BusinessUnit is a branch or service area. Its name selects the billing
// schedule profile unless BillingCycleOverride forces one.
type BusinessUnit struct {
	ID                   string              `db:"id" json:"id"`
	Name                 string              `db:"name" json:"name"`
	BillingCycleOverride *types.BillingCycle `db:"billing_cycle_override" json:"billing_cycle_override,omitempty"`
	types.BaseModel
}

// Override returns the forced cycle or the empty cycle
func (b *BusinessUnit) Override() types.BillingCycle {
	if b.BillingCycleOverride == nil {
		return ""
	}
	return *b.BillingCycleOverride
}
