package testutil

import (
	"context"
	"sync/atomic"

	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/plan"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/samber/lo"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[plan.Plan]
	gets atomic.Int64
}

var _ plan.Repository = (*InMemoryPlanStore)(nil)

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{InMemoryStore: NewInMemoryStore[plan.Plan]()}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.gets.Add(1)

	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Plan %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

// GetCount is the number of point lookups served, used to assert cache hits
func (s *InMemoryPlanStore) GetCount() int {
	return int(s.gets.Load())
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *plan.Plan) bool {
		return i.Name < j.Name
	})
}

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[customer.Customer]
}

var _ customer.Repository = (*InMemoryCustomerStore)(nil)

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{InMemoryStore: NewInMemoryStore[customer.Customer]()}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if c == nil {
		return ierr.NewError("customer cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Customer %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryCustomerStore) List(ctx context.Context, ids []string) ([]*customer.Customer, error) {
	return s.InMemoryStore.List(ctx, ids, func(_ context.Context, c *customer.Customer, filter interface{}) bool {
		return lo.Contains(filter.([]string), c.ID)
	}, func(i, j *customer.Customer) bool {
		return i.ID < j.ID
	})
}

// InMemoryBusinessUnitStore implements businessunit.Repository
type InMemoryBusinessUnitStore struct {
	*InMemoryStore[businessunit.BusinessUnit]
}

var _ businessunit.Repository = (*InMemoryBusinessUnitStore)(nil)

func NewInMemoryBusinessUnitStore() *InMemoryBusinessUnitStore {
	return &InMemoryBusinessUnitStore{InMemoryStore: NewInMemoryStore[businessunit.BusinessUnit]()}
}

func (s *InMemoryBusinessUnitStore) Create(ctx context.Context, b *businessunit.BusinessUnit) error {
	if b == nil {
		return ierr.NewError("business unit cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, b.ID, b)
}

func (s *InMemoryBusinessUnitStore) Get(ctx context.Context, id string) (*businessunit.BusinessUnit, error) {
	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Business unit %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return b, nil
}

func (s *InMemoryBusinessUnitStore) List(ctx context.Context) ([]*businessunit.BusinessUnit, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *businessunit.BusinessUnit) bool {
		return i.Name < j.Name
	})
}
