package service

import (
	"testing"

	"github.com/netcycle/netcycle/internal/api/dto"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceSuite struct {
	serviceFixture
	catalog       CatalogService
	subscriptions SubscriptionService
}

func TestCatalogService(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.catalog = NewCatalogService(s.params())
	s.subscriptions = NewSubscriptionService(s.params())
}

func (s *CatalogServiceSuite) TestCreatePlan() {
	resp, err := s.catalog.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:       "Fiber 100",
		MonthlyFee: dec("999.999"),
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.ID)
	s.assertDecimal("1000", resp.MonthlyFee)

	got, err := s.catalog.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal("Fiber 100", got.Name)

	list, err := s.catalog.ListPlans(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, list.Total)
}

func (s *CatalogServiceSuite) TestCreatePlanValidation() {
	_, err := s.catalog.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:       "Broken",
		MonthlyFee: dec("-1"),
	})
	s.True(ierr.IsValidation(err))

	_, err = s.catalog.CreatePlan(s.GetContext(), dto.CreatePlanRequest{MonthlyFee: dec("100")})
	s.True(ierr.IsValidation(err))
}

func (s *CatalogServiceSuite) TestCreateCustomerNormalizesPhone() {
	resp, err := s.catalog.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:        "Juan dela Cruz",
		PhoneNumber: "0917 123 4567",
	})
	s.Require().NoError(err)
	s.Equal("639171234567", resp.PhoneNumber)

	got, err := s.catalog.GetCustomer(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal("639171234567", got.PhoneNumber)
	s.False(got.WasReferred())
}

func (s *CatalogServiceSuite) TestCreateCustomerRejectsBadPhone() {
	_, err := s.catalog.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:        "Juan",
		PhoneNumber: "12345",
	})
	s.True(ierr.IsValidation(err))
}

func (s *CatalogServiceSuite) TestCreateCustomerReferral() {
	referrer, err := s.catalog.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:        "Referrer",
		PhoneNumber: "+63 917 000 0001",
	})
	s.Require().NoError(err)

	referred, err := s.catalog.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:        "Referred",
		PhoneNumber: "9170000002",
		ReferredBy:  lo.ToPtr(referrer.ID),
	})
	s.Require().NoError(err)
	s.True(referred.WasReferred())

	_, err = s.catalog.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:        "Dangling",
		PhoneNumber: "09170000003",
		ReferredBy:  lo.ToPtr("cust_missing"),
	})
	s.True(ierr.IsValidation(err))
}

func (s *CatalogServiceSuite) TestBusinessUnits() {
	full := types.BillingCycleFullMonth
	_, err := s.catalog.CreateBusinessUnit(s.GetContext(), dto.CreateBusinessUnitRequest{Name: "Main Office"})
	s.Require().NoError(err)
	overridden, err := s.catalog.CreateBusinessUnit(s.GetContext(), dto.CreateBusinessUnitRequest{
		Name:                 "Main Office North",
		BillingCycleOverride: &full,
	})
	s.Require().NoError(err)
	s.Equal(types.BillingCycleFullMonth, overridden.Override())

	bad := types.BillingCycle("7th")
	_, err = s.catalog.CreateBusinessUnit(s.GetContext(), dto.CreateBusinessUnitRequest{
		Name:                 "Somewhere",
		BillingCycleOverride: &bad,
	})
	s.True(ierr.IsValidation(err))

	list, err := s.catalog.ListBusinessUnits(s.GetContext())
	s.Require().NoError(err)
	s.Equal(2, list.Total)

	_, err = s.catalog.GetBusinessUnit(s.GetContext(), "bu_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *CatalogServiceSuite) TestCreateSubscription() {
	c := s.createCustomer("Maria", nil)
	p := s.createPlan("Fiber 100", "1000")
	annex := s.createUnit("Annex Branch")

	resp, err := s.subscriptions.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID:     c.ID,
		PlanID:         p.ID,
		BusinessUnitID: annex.ID,
		InstallDate:    "2026-03-05",
	})
	s.Require().NoError(err)

	s.Equal(types.BillingCycleFullMonth, resp.BillingCycle)
	s.Equal(date(2026, 3, 5), resp.InstallDate)
	s.True(resp.Active)
	s.True(resp.Balance.IsZero())
	s.Equal(1, resp.Version)

	welcome := s.GetPublisher().Notifications(notification.KindWelcome)
	s.Require().Len(welcome, 1)
	s.Equal(resp.ID, welcome[0].SubscriptionID)
	s.Equal(c.PhoneNumber, welcome[0].PhoneNumber)

	list, err := s.subscriptions.ListSubscriptions(s.GetContext(), &types.SubscriptionFilter{
		BusinessUnitID: annex.ID,
	})
	s.Require().NoError(err)
	s.Equal(1, list.Total)
}

func (s *CatalogServiceSuite) TestCreateSubscriptionUnknownReferences() {
	c := s.createCustomer("Maria", nil)
	u := s.createUnit("Main Office")

	_, err := s.subscriptions.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID:     c.ID,
		PlanID:         "plan_missing",
		BusinessUnitID: u.ID,
	})
	s.True(ierr.IsNotFound(err))

	_, err = s.subscriptions.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID:     "cust_missing",
		PlanID:         "plan_missing",
		BusinessUnitID: u.ID,
	})
	s.True(ierr.IsNotFound(err))

	subs, err := s.GetStores().SubscriptionRepo.List(s.GetContext(), &types.SubscriptionFilter{})
	s.Require().NoError(err)
	s.Empty(subs)
	s.Empty(s.GetPublisher().Notifications())
}
