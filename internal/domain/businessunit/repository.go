package businessunit

import (
	"context"
)

// Repository defines the interface for business unit persistence
type Repository interface {
	Create(ctx context.Context, unit *BusinessUnit) error
	Get(ctx context.Context, id string) (*BusinessUnit, error)
	List(ctx context.Context) ([]*BusinessUnit, error)
}
