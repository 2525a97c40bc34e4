package subscription

import (
	"context"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for subscription persistence.
// Writes are versioned: they only apply when the stored version equals
// sub.Version, bump it on success and fail with ErrVersionConflict otherwise.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)

	// Update persists plan, active flag, referral flag and balance
	Update(ctx context.Context, sub *Subscription) error

	// UpdateBalance persists a new balance
	UpdateBalance(ctx context.Context, sub *Subscription, balance decimal.Decimal) error
}
