package testutil

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/payment"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[payment.Payment]
}

var _ payment.Repository = (*InMemoryPaymentStore)(nil)

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[payment.Payment](),
	}
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, p.SubscriptionID) {
		return false
	}
	if f.InvoiceID != nil && (p.InvoiceID == nil || *p.InvoiceID != *f.InvoiceID) {
		return false
	}
	if f.SettledFrom != nil && p.SettlementDate.Before(*f.SettledFrom) {
		return false
	}
	if f.SettledTo != nil && p.SettlementDate.After(*f.SettledTo) {
		return false
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	if i.SettlementDate.Equal(j.SettlementDate) {
		return i.ID < j.ID
	}
	return i.SettlementDate.Before(j.SettlementDate)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Payment %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	return s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
}
