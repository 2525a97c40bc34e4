package customer

import (
	"github.com/netcycle/netcycle/internal/types"
)

type Customer struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
	// ReferredBy is the id of the customer who referred this one
	ReferredBy *string `db:"referred_by" json:"referred_by,omitempty"`
	types.BaseModel
}

// WasReferred reports whether the customer has a referrer
func (c *Customer) WasReferred() bool {
	return c.ReferredBy != nil && *c.ReferredBy != ""
}
