package service

import (
	"fmt"
	"time"

	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/testutil"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// serviceFixture builds service params and seeds records on top of the base suite
type serviceFixture struct {
	testutil.BaseServiceTestSuite
	seq int
}

func (s *serviceFixture) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Resolver:         s.GetResolver(),
		Cache:            s.GetCache(),
		Metrics:          s.GetMetrics(),
		SubRepo:          stores.SubscriptionRepo,
		PlanRepo:         stores.PlanRepo,
		CustomerRepo:     stores.CustomerRepo,
		BusinessUnitRepo: stores.BusinessUnitRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		PaymentRepo:      stores.PaymentRepo,
		PlanChangeRepo:   stores.PlanChangeRepo,
		Notifier:         s.GetPublisher(),
		BulkSender:       notification.NewBulkSender(s.GetGateway(), 10, 0, s.GetLogger(), s.GetMetrics()),
	}
}

func (s *serviceFixture) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%03d", prefix, s.seq)
}

func date(y int, m time.Month, d int) time.Time {
	return types.NewDate(y, m, d)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *serviceFixture) createPlan(name string, fee string) *plan.Plan {
	p := &plan.Plan{
		ID:         s.nextID("plan"),
		Name:       name,
		MonthlyFee: dec(fee),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	return p
}

func (s *serviceFixture) createCustomer(name string, referredBy *string) *customer.Customer {
	c := &customer.Customer{
		ID:          s.nextID("cust"),
		Name:        name,
		PhoneNumber: fmt.Sprintf("6391700%05d", s.seq),
		ReferredBy:  referredBy,
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), c))
	return c
}

func (s *serviceFixture) createUnit(name string) *businessunit.BusinessUnit {
	u := &businessunit.BusinessUnit{
		ID:        s.nextID("bu"),
		Name:      name,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().BusinessUnitRepo.Create(s.GetContext(), u))
	return u
}

func (s *serviceFixture) createSub(c *customer.Customer, p *plan.Plan, u *businessunit.BusinessUnit, install time.Time, balance string) *subscription.Subscription {
	return s.createSubOnCycle(c, p, u, install, balance, s.GetResolver().ResolveProfile(u.Name, u.Override()).PeriodType)
}

func (s *serviceFixture) createSubOnCycle(c *customer.Customer, p *plan.Plan, u *businessunit.BusinessUnit, install time.Time, balance string, cycle types.BillingCycle) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:             s.nextID("sub"),
		CustomerID:     c.ID,
		PlanID:         p.ID,
		BusinessUnitID: u.ID,
		InstallDate:    install,
		BillingCycle:   cycle,
		Balance:        dec(balance),
		Active:         true,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *serviceFixture) createInvoice(sub *subscription.Subscription, invoiceType types.InvoiceType, from, to, due time.Time, amountDue, amountPaid string, status types.InvoicePaymentStatus) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:             s.nextID("inv"),
		SubscriptionID: sub.ID,
		InvoiceType:    invoiceType,
		FromDate:       from,
		ToDate:         to,
		DueDate:        due,
		AmountDue:      dec(amountDue),
		AmountPaid:     dec(amountPaid),
		PaymentStatus:  status,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *serviceFixture) reloadSub(id string) *subscription.Subscription {
	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return sub
}

func (s *serviceFixture) invoicesOf(subID string) []*invoice.Invoice {
	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), &types.InvoiceFilter{SubscriptionIDs: []string{subID}})
	s.Require().NoError(err)
	return invoices
}

func (s *serviceFixture) assertDecimal(expected string, actual decimal.Decimal) {
	s.Truef(dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}
