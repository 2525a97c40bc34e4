package planchange

import (
	"context"

	"github.com/netcycle/netcycle/internal/types"
)

// Repository defines the interface for plan change persistence
type Repository interface {
	Create(ctx context.Context, change *PlanChange) error
	Get(ctx context.Context, id string) (*PlanChange, error)
	// List returns changes ordered by change date
	List(ctx context.Context, filter *types.PlanChangeFilter) ([]*PlanChange, error)
	// MarkProcessed flips processed and links the realising invoice
	MarkProcessed(ctx context.Context, id string, invoiceID string) error
}
