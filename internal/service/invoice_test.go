package service

import (
	"testing"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/payment"
	"github.com/netcycle/netcycle/internal/domain/plan"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	serviceFixture
	service  InvoiceService
	testData struct {
		unit  *businessunit.BusinessUnit
		annex *businessunit.BusinessUnit
		plan  *plan.Plan
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(s.params())
	s.testData.unit = s.createUnit("Main Office")
	s.testData.annex = s.createUnit("Annex Branch")
	s.testData.plan = s.createPlan("Fiber 100", "1000")
}

func (s *InvoiceServiceSuite) TestDisconnectionInvoice() {
	sub := s.createSub(s.createCustomer("Juan", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "0")
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 1, 15), date(2026, 2, 15), date(2026, 2, 15), "1000", "1000", types.InvoicePaymentStatusPaid)
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 2, 15), date(2026, 3, 15), date(2026, 3, 15), "1000", "1000", types.InvoicePaymentStatusPaid)

	resp, err := s.service.GenerateDisconnectionInvoice(s.GetContext(), sub.ID, dto.DisconnectSubscriptionRequest{
		DisconnectionDate: "2026-03-25",
	})
	s.Require().NoError(err)

	s.Equal(types.InvoiceTypeDisconnection, resp.InvoiceType)
	s.Equal(date(2026, 3, 16), resp.FromDate)
	s.Equal(date(2026, 3, 25), resp.ToDate)
	s.Equal(date(2026, 3, 25), resp.DueDate)
	s.Equal(9, resp.ProratedDays)
	s.True(resp.IsProrated)
	s.assertDecimal("300", resp.AmountDue)
	s.assertDecimal("300", resp.Outstanding)

	stored := s.reloadSub(sub.ID)
	s.assertDecimal("300", stored.Balance)
	s.False(stored.Active)

	s.Len(s.GetPublisher().Notifications(notification.KindInvoiceGenerated), 1)
}

func (s *InvoiceServiceSuite) TestDisconnectionWithoutInvoices() {
	sub := s.createSub(s.createCustomer("Juan", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "0")

	_, err := s.service.GenerateDisconnectionInvoice(s.GetContext(), sub.ID, dto.DisconnectSubscriptionRequest{
		DisconnectionDate: "2026-03-25",
	})

	s.True(ierr.IsNotFound(err))
	s.True(s.reloadSub(sub.ID).Active)
}

func (s *InvoiceServiceSuite) TestDisconnectionWithNothingToBill() {
	sub := s.createSub(s.createCustomer("Juan", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "0")
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 2, 15), date(2026, 3, 15), date(2026, 3, 15), "1000", "0", types.InvoicePaymentStatusUnpaid)

	_, err := s.service.GenerateDisconnectionInvoice(s.GetContext(), sub.ID, dto.DisconnectSubscriptionRequest{
		DisconnectionDate: "2026-03-16",
	})

	s.True(ierr.IsValidation(err))
	s.Len(s.invoicesOf(sub.ID), 1)
	s.True(s.reloadSub(sub.ID).Active)
}

func (s *InvoiceServiceSuite) TestActivationInvoice() {
	tests := []struct {
		name         string
		unit         func() *businessunit.BusinessUnit
		activation   string
		wantTo       string
		wantDays     int
		wantAmount   string
		wantProrated bool
	}{
		{
			name:         "mid month before boundary",
			unit:         func() *businessunit.BusinessUnit { return s.testData.unit },
			activation:   "2026-03-20",
			wantTo:       "2026-04-15",
			wantDays:     26,
			wantAmount:   "866.67",
			wantProrated: true,
		},
		{
			name:         "on the boundary rolls a month",
			unit:         func() *businessunit.BusinessUnit { return s.testData.unit },
			activation:   "2026-03-15",
			wantTo:       "2026-04-15",
			wantDays:     30,
			wantAmount:   "1000",
			wantProrated: false,
		},
		{
			name:         "full month clamps to february end",
			unit:         func() *businessunit.BusinessUnit { return s.testData.annex },
			activation:   "2026-02-10",
			wantTo:       "2026-02-28",
			wantDays:     18,
			wantAmount:   "600",
			wantProrated: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			sub := s.createSub(s.createCustomer("Maria", nil), s.testData.plan, tt.unit(), date(2025, 6, 1), "100")

			resp, err := s.service.GenerateActivationInvoice(s.GetContext(), sub.ID, dto.ActivateSubscriptionRequest{
				ActivationDate: tt.activation,
			})
			s.Require().NoError(err)

			s.Equal(types.InvoiceTypeActivation, resp.InvoiceType)
			s.Equal(tt.activation, resp.FromDate.Format(types.DateLayout))
			s.Equal(tt.wantTo, resp.ToDate.Format(types.DateLayout))
			s.Equal(resp.ToDate, resp.DueDate)
			s.Equal(tt.wantDays, resp.ProratedDays)
			s.Equal(tt.wantProrated, resp.IsProrated)
			s.assertDecimal(tt.wantAmount, resp.AmountDue)

			stored := s.reloadSub(sub.ID)
			s.assertDecimal(dec(tt.wantAmount).Add(dec("100")).String(), stored.Balance)
			s.True(stored.Active)
		})
	}
}

func (s *InvoiceServiceSuite) TestActivationWelcomesInactiveSubscription() {
	sub := s.createSub(s.createCustomer("Pedro", nil), s.testData.plan, s.testData.unit, date(2026, 3, 20), "0")
	sub.Active = false
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	_, err := s.service.GenerateActivationInvoice(s.GetContext(), sub.ID, dto.ActivateSubscriptionRequest{
		ActivationDate: "2026-03-20",
	})
	s.Require().NoError(err)

	welcome := s.GetPublisher().Notifications(notification.KindWelcome)
	s.Require().Len(welcome, 1)
	s.Contains(welcome[0].Message, "Fiber 100")
	s.Len(s.GetPublisher().Notifications(notification.KindInvoiceGenerated), 1)

	// a later reactivation is not a welcome
	_, err = s.service.GenerateDisconnectionInvoice(s.GetContext(), sub.ID, dto.DisconnectSubscriptionRequest{
		DisconnectionDate: "2026-04-20",
	})
	s.Require().NoError(err)
	_, err = s.service.GenerateActivationInvoice(s.GetContext(), sub.ID, dto.ActivateSubscriptionRequest{
		ActivationDate: "2026-05-01",
	})
	s.Require().NoError(err)
	s.Len(s.GetPublisher().Notifications(notification.KindWelcome), 1)
}

func (s *InvoiceServiceSuite) TestRecalculateBalance() {
	sub := s.createSub(s.createCustomer("Ana", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "42")
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 1, 15), date(2026, 2, 15), date(2026, 2, 15), "1000", "700", types.InvoicePaymentStatusPartiallyPaid)
	s.createInvoice(sub, types.InvoiceTypePlanChange,
		date(2026, 2, 15), date(2026, 2, 28), date(2026, 3, 15), "500", "0", types.InvoicePaymentStatusUnpaid)
	s.Require().NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), &payment.Payment{
		ID:             "pay_001",
		SubscriptionID: sub.ID,
		SettlementDate: date(2026, 2, 10),
		Amount:         dec("700"),
		Mode:           types.PaymentModeCash,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}))

	resp, err := s.service.RecalculateBalance(s.GetContext(), sub.ID)
	s.Require().NoError(err)

	s.assertDecimal("42", resp.PreviousBalance)
	s.assertDecimal("1500", resp.TotalInvoiced)
	s.assertDecimal("700", resp.TotalPaid)
	s.assertDecimal("800", resp.NewBalance)
	s.assertDecimal("800", s.reloadSub(sub.ID).Balance)
}

func (s *InvoiceServiceSuite) TestMarkPendingVerification() {
	sub := s.createSub(s.createCustomer("Jose", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "0")
	unpaid := s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 2, 15), date(2026, 3, 15), date(2026, 3, 15), "1000", "0", types.InvoicePaymentStatusUnpaid)
	paid := s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 1, 15), date(2026, 2, 15), date(2026, 2, 15), "1000", "1000", types.InvoicePaymentStatusPaid)

	resp, err := s.service.MarkPendingVerification(s.GetContext(), unpaid.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoicePaymentStatusPendingVerification, resp.PaymentStatus)

	stored, err := s.service.GetInvoice(s.GetContext(), unpaid.ID)
	s.Require().NoError(err)
	s.Equal(types.InvoicePaymentStatusPendingVerification, stored.PaymentStatus)

	// already pending
	_, err = s.service.MarkPendingVerification(s.GetContext(), unpaid.ID)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.MarkPendingVerification(s.GetContext(), paid.ID)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.MarkPendingVerification(s.GetContext(), "inv_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	sub := s.createSub(s.createCustomer("Lito", nil), s.testData.plan, s.testData.unit, date(2025, 6, 1), "0")
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 1, 15), date(2026, 2, 15), date(2026, 2, 15), "1000", "1000", types.InvoicePaymentStatusPaid)
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 2, 15), date(2026, 3, 15), date(2026, 3, 15), "1000", "250", types.InvoicePaymentStatusPartiallyPaid)

	resp, err := s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{
		SubscriptionIDs: []string{sub.ID},
		PaymentStatus:   []types.InvoicePaymentStatus{types.InvoicePaymentStatusPartiallyPaid},
	})
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.assertDecimal("750", resp.Items[0].Outstanding)

	all, err := s.service.ListInvoices(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(2, all.Total)
	s.Equal([]string{"2026-02-15", "2026-03-15"}, lo.Map(all.Items, func(inv *dto.InvoiceResponse, _ int) string {
		return inv.DueDate.Format(types.DateLayout)
	}))
}
