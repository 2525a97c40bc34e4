package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/netcycle/netcycle/internal/domain/invoice"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[invoice.Invoice]

	failMu       sync.Mutex
	failBulkWith error
}

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[invoice.Invoice](),
	}
}

// FailNextBulk makes the next CreateBulk call fail with err without storing anything
func (s *InMemoryInvoiceStore) FailNextBulk(err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failBulkWith = err
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, inv.SubscriptionID) {
		return false
	}
	if len(f.InvoiceTypes) > 0 && !lo.Contains(f.InvoiceTypes, inv.InvoiceType) {
		return false
	}
	if len(f.PaymentStatus) > 0 && !lo.Contains(f.PaymentStatus, inv.PaymentStatus) {
		return false
	}
	if f.DueDateFrom != nil && inv.DueDate.Before(*f.DueDateFrom) {
		return false
	}
	if f.DueDateTo != nil && inv.DueDate.After(*f.DueDateTo) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.DueDate.Equal(j.DueDate) {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.ID < j.ID
		}
		return i.CreatedAt.Before(j.CreatedAt)
	}
	return i.DueDate.Before(j.DueDate)
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) CreateBulk(ctx context.Context, invoices []*invoice.Invoice) error {
	s.failMu.Lock()
	failWith := s.failBulkWith
	s.failBulkWith = nil
	s.failMu.Unlock()
	if failWith != nil {
		return ierr.WithError(failWith).
			WithHint("Failed to insert invoices").
			Mark(ierr.ErrDatabase)
	}

	ids := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string { return inv.ID })
	return s.CreateMany(ctx, ids, invoices)
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) UpdatePayment(ctx context.Context, inv *invoice.Invoice) error {
	return s.Mutate(ctx, inv.ID, func(stored *invoice.Invoice) error {
		stored.AmountPaid = inv.AmountPaid
		stored.PaymentStatus = inv.PaymentStatus
		stored.UpdatedAt = time.Now().UTC()
		stored.UpdatedBy = types.GetUserID(ctx)
		return nil
	})
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
}
