package testutil

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/domain/planchange"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// InMemoryPlanChangeStore implements planchange.Repository
type InMemoryPlanChangeStore struct {
	*InMemoryStore[planchange.PlanChange]
}

var _ planchange.Repository = (*InMemoryPlanChangeStore)(nil)

func NewInMemoryPlanChangeStore() *InMemoryPlanChangeStore {
	return &InMemoryPlanChangeStore{
		InMemoryStore: NewInMemoryStore[planchange.PlanChange](),
	}
}

func planChangeFilterFn(ctx context.Context, pc *planchange.PlanChange, filter interface{}) bool {
	f, ok := filter.(*types.PlanChangeFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, pc.SubscriptionID) {
		return false
	}
	if f.Processed != nil && pc.Processed != *f.Processed {
		return false
	}
	return true
}

func planChangeSortFn(i, j *planchange.PlanChange) bool {
	if i.ChangeDate.Equal(j.ChangeDate) {
		return i.ID < j.ID
	}
	return i.ChangeDate.Before(j.ChangeDate)
}

func (s *InMemoryPlanChangeStore) Create(ctx context.Context, pc *planchange.PlanChange) error {
	if pc == nil {
		return ierr.NewError("plan change cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, pc.ID, pc)
}

func (s *InMemoryPlanChangeStore) Get(ctx context.Context, id string) (*planchange.PlanChange, error) {
	pc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Plan change %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return pc, nil
}

func (s *InMemoryPlanChangeStore) List(ctx context.Context, filter *types.PlanChangeFilter) ([]*planchange.PlanChange, error) {
	return s.InMemoryStore.List(ctx, filter, planChangeFilterFn, planChangeSortFn)
}

func (s *InMemoryPlanChangeStore) MarkProcessed(ctx context.Context, id string, invoiceID string) error {
	return s.Mutate(ctx, id, func(stored *planchange.PlanChange) error {
		stored.Processed = true
		stored.InvoiceID = lo.ToPtr(invoiceID)
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}
