package customer

import (
	"context"
)

// Repository defines the interface for customer persistence
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	// List returns the customers with the given ids, missing ids are ignored
	List(ctx context.Context, ids []string) ([]*Customer, error)
}
