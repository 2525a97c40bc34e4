package testutil

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[subscription.Subscription]
}

var _ subscription.Repository = (*InMemorySubscriptionStore)(nil)

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[subscription.Subscription](),
	}
}

func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	f, ok := filter.(*types.SubscriptionFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, sub.ID) {
		return false
	}
	if len(f.CustomerIDs) > 0 && !lo.Contains(f.CustomerIDs, sub.CustomerID) {
		return false
	}
	if f.BusinessUnitID != "" && sub.BusinessUnitID != f.BusinessUnitID {
		return false
	}
	if f.ActiveOnly && !sub.Active {
		return false
	}
	return true
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	if i.InstallDate.Equal(j.InstallDate) {
		return i.ID < j.ID
	}
	return i.InstallDate.Before(j.InstallDate)
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	if sub.Version == 0 {
		sub.Version = 1
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Subscription %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return s.versioned(ctx, sub, func(stored *subscription.Subscription) {
		stored.PlanID = sub.PlanID
		stored.Active = sub.Active
		stored.ReferralCreditApplied = sub.ReferralCreditApplied
		stored.Balance = sub.Balance
		stored.BillingCycle = sub.BillingCycle
	})
}

func (s *InMemorySubscriptionStore) UpdateBalance(ctx context.Context, sub *subscription.Subscription, balance decimal.Decimal) error {
	err := s.versioned(ctx, sub, func(stored *subscription.Subscription) {
		stored.Balance = balance
	})
	if err == nil {
		sub.Balance = balance
	}
	return err
}

// versioned applies fn when the stored version matches sub.Version, then bumps both
func (s *InMemorySubscriptionStore) versioned(ctx context.Context, sub *subscription.Subscription, fn func(stored *subscription.Subscription)) error {
	err := s.Mutate(ctx, sub.ID, func(stored *subscription.Subscription) error {
		if stored.Version != sub.Version {
			return ierr.NewError("subscription was modified concurrently").
				WithHint("The subscription changed while it was being updated, please retry").
				WithReportableDetails(map[string]any{
					"subscription_id":  sub.ID,
					"expected_version": sub.Version,
					"actual_version":   stored.Version,
				}).
				Mark(ierr.ErrVersionConflict)
		}
		fn(stored)
		stored.Version++
		stored.UpdatedAt = time.Now().UTC()
		stored.UpdatedBy = types.GetUserID(ctx)
		return nil
	})
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.WithError(err).
				WithHintf("Subscription %s not found", sub.ID).
				Mark(ierr.ErrNotFound)
		}
		return err
	}
	sub.Version++
	return nil
}
