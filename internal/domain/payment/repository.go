package payment

import (
	"context"

	"github.com/netcycle/netcycle/internal/types"
)

// Repository is append-only
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// List returns payments ordered by settlement date
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
}
