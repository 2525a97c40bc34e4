package service

import (
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type PlanChangeServiceSuite struct {
	serviceFixture
	service  PlanChangeService
	testData struct {
		unit    *businessunit.BusinessUnit
		basic   *plan.Plan
		premium *plan.Plan
		sub     *subscription.Subscription
	}
}

func TestPlanChangeService(t *testing.T) {
	suite.Run(t, new(PlanChangeServiceSuite))
}

func (s *PlanChangeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanChangeService(s.params())
	s.testData.unit = s.createUnit("Main Office")
	s.testData.basic = s.createPlan("Fiber 100", "1000")
	s.testData.premium = s.createPlan("Fiber 300", "1500")
	s.testData.sub = s.createSub(s.createCustomer("Juan", nil), s.testData.basic, s.testData.unit, date(2025, 6, 1), "0")
}

func (s *PlanChangeServiceSuite) upgradeOnMarchFirst() *dto.PlanChangeResponse {
	resp, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-01",
	})
	s.Require().NoError(err)
	return resp
}

func (s *PlanChangeServiceSuite) TestUnpaidPeriodBillsUsedDays() {
	resp := s.upgradeOnMarchFirst()

	s.True(resp.Success)
	s.False(resp.Preview)
	s.Equal(types.PlanChangeBranchUnpaid, resp.Branch)
	s.Equal(date(2026, 2, 15), resp.PeriodStart)
	s.Equal(date(2026, 3, 15), resp.PeriodEnd)
	s.Equal(13, resp.OldPlan.Days)
	s.assertDecimal("433.33", resp.OldPlan.Amount)
	s.Equal(14, resp.NewPlan.Days)
	s.assertDecimal("700", resp.NewPlan.Amount)
	s.assertDecimal("433.33", resp.Adjustment)
	s.Nil(resp.CreditAmount)
	s.Require().NotNil(resp.NewBalance)
	s.assertDecimal("433.33", *resp.NewBalance)

	invoices := s.invoicesOf(s.testData.sub.ID)
	s.Require().Len(invoices, 1)
	inv := invoices[0]
	s.Equal(types.InvoiceTypePlanChange, inv.InvoiceType)
	s.Equal(date(2026, 2, 15), inv.FromDate)
	s.Equal(date(2026, 2, 28), inv.ToDate)
	s.Equal(date(2026, 3, 15), inv.DueDate)
	s.True(inv.IsProrated)
	s.Equal(13, inv.ProratedDays)
	s.Require().NotNil(resp.InvoiceID)
	s.Equal(inv.ID, *resp.InvoiceID)

	sub := s.reloadSub(s.testData.sub.ID)
	s.Equal(s.testData.premium.ID, sub.PlanID)
	s.assertDecimal("433.33", sub.Balance)

	pc, err := s.GetStores().PlanChangeRepo.Get(s.GetContext(), resp.PlanChangeID)
	s.Require().NoError(err)
	s.False(pc.Processed)
	s.Nil(pc.InvoiceID)
	s.Equal(s.testData.basic.ID, pc.OldPlanID)
	s.Equal(s.testData.premium.ID, pc.NewPlanID)
	s.assertDecimal("1500", pc.NewFee)
	s.Equal(date(2026, 3, 15), pc.PeriodEnd)
}

func (s *PlanChangeServiceSuite) TestPaidPeriodCreditsUnusedDays() {
	s.createInvoice(s.testData.sub, types.InvoiceTypeRecurring,
		date(2026, 2, 15), date(2026, 3, 15), date(2026, 3, 15), "1000", "1000", types.InvoicePaymentStatusPaid)

	resp := s.upgradeOnMarchFirst()

	s.Equal(types.PlanChangeBranchPaid, resp.Branch)
	s.Equal(14, resp.OldPlan.Days)
	s.Require().NotNil(resp.CreditAmount)
	s.assertDecimal("466.67", *resp.CreditAmount)
	s.assertDecimal("-466.67", resp.Adjustment)
	s.Nil(resp.InvoiceID)

	// only the paid recurring invoice exists
	s.Len(s.invoicesOf(s.testData.sub.ID), 1)
	s.assertDecimal("-466.67", s.reloadSub(s.testData.sub.ID).Balance)
}

func (s *PlanChangeServiceSuite) TestPaidFirstInvoiceFromInstallDate() {
	sub := s.createSub(s.createCustomer("Newcomer", nil), s.testData.basic, s.testData.unit, date(2026, 3, 5), "0")
	s.createInvoice(sub, types.InvoiceTypeRecurring,
		date(2026, 3, 5), date(2026, 3, 15), date(2026, 3, 15), "333.33", "333.33", types.InvoicePaymentStatusPaid)

	resp, err := s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-10",
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeBranchPaid, resp.Branch)
	s.Equal(5, resp.OldPlan.Days)
	s.Require().NotNil(resp.CreditAmount)
	s.assertDecimal("166.67", *resp.CreditAmount)
	s.Nil(resp.InvoiceID)
	s.Len(s.invoicesOf(sub.ID), 1)
	s.assertDecimal("-166.67", s.reloadSub(sub.ID).Balance)
}

func (s *PlanChangeServiceSuite) TestUnpaidFirstPeriodBillsFromInstallDate() {
	sub := s.createSub(s.createCustomer("Newcomer", nil), s.testData.basic, s.testData.unit, date(2026, 3, 5), "0")

	resp, err := s.service.ChangePlan(s.GetContext(), sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-10",
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeBranchUnpaid, resp.Branch)
	s.Equal(4, resp.OldPlan.Days)
	s.assertDecimal("133.33", resp.OldPlan.Amount)

	invoices := s.invoicesOf(sub.ID)
	s.Require().Len(invoices, 1)
	s.Equal(types.InvoiceTypePlanChange, invoices[0].InvoiceType)
	s.Equal(date(2026, 3, 5), invoices[0].FromDate)
	s.Equal(date(2026, 3, 9), invoices[0].ToDate)
}

func (s *PlanChangeServiceSuite) TestPaidActivationInvoiceCoversPeriod() {
	sub := s.createSub(s.createCustomer("Activated", nil), s.testData.basic, s.testData.unit, date(2026, 2, 20), "0")
	s.createInvoice(sub, types.InvoiceTypeActivation,
		date(2026, 2, 20), date(2026, 3, 15), date(2026, 3, 15), "833.33", "833.33", types.InvoicePaymentStatusPaid)

	resp, err := s.service.PreviewPlanChange(s.GetContext(), sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-01",
	})
	s.Require().NoError(err)

	s.Equal(types.PlanChangeBranchPaid, resp.Branch)
	s.Require().NotNil(resp.CreditAmount)
	s.assertDecimal("466.67", *resp.CreditAmount)
}

func (s *PlanChangeServiceSuite) TestChangeLateInMonthBelongsToNextPeriod() {
	resp, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-20",
	})
	s.Require().NoError(err)

	s.Equal(date(2026, 3, 15), resp.PeriodStart)
	s.Equal(date(2026, 4, 15), resp.PeriodEnd)
	s.Equal(4, resp.OldPlan.Days)
}

func (s *PlanChangeServiceSuite) TestSamePlan() {
	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.basic.ID,
		ChangeDate: "2026-03-01",
	})

	s.True(ierr.IsValidation(err))
	s.Empty(s.invoicesOf(s.testData.sub.ID))
}

func (s *PlanChangeServiceSuite) TestUnknownPlan() {
	_, err := s.service.ChangePlan(s.GetContext(), s.testData.sub.ID, dto.ChangePlanRequest{
		NewPlanID:  "plan_missing",
		ChangeDate: "2026-03-01",
	})

	s.True(ierr.IsNotFound(err))
	s.Equal(s.testData.basic.ID, s.reloadSub(s.testData.sub.ID).PlanID)
}

func (s *PlanChangeServiceSuite) TestPreviewWritesNothing() {
	resp, err := s.service.PreviewPlanChange(s.GetContext(), s.testData.sub.ID, dto.ChangePlanRequest{
		NewPlanID:  s.testData.premium.ID,
		ChangeDate: "2026-03-01",
	})
	s.Require().NoError(err)

	s.True(resp.Preview)
	s.Empty(resp.PlanChangeID)
	s.assertDecimal("433.33", resp.Adjustment)
	s.assertDecimal("1133.33", resp.Total)
	s.assertDecimal("433.33", *resp.NewBalance)

	s.Empty(s.invoicesOf(s.testData.sub.ID))
	sub := s.reloadSub(s.testData.sub.ID)
	s.Equal(s.testData.basic.ID, sub.PlanID)
	s.True(sub.Balance.IsZero())
	changes, err := s.GetStores().PlanChangeRepo.List(s.GetContext(), &types.PlanChangeFilter{
		SubscriptionIDs: []string{s.testData.sub.ID},
	})
	s.Require().NoError(err)
	s.Empty(changes)
	s.Equal(0, s.GetDB().TxCount())
	s.Empty(s.GetPublisher().Notifications())
}

func (s *PlanChangeServiceSuite) TestNextGenerationBillsNewPlanRemainder() {
	s.upgradeOnMarchFirst()

	billing := NewBillingService(s.params())
	gen, err := billing.GenerateInvoices(s.GetContext(), dto.GenerateInvoicesRequest{
		BusinessUnitID: s.testData.unit.ID,
		Year:           2026,
		Month:          int(time.March),
	})
	s.Require().NoError(err)
	s.Equal(1, gen.Generated)

	recurring, ok := lo.Find(s.invoicesOf(s.testData.sub.ID), func(inv *invoice.Invoice) bool {
		return inv.InvoiceType == types.InvoiceTypeRecurring
	})
	s.Require().True(ok)
	// 700 for the new plan's days plus the unpaid 433.33 carried on the balance
	s.assertDecimal("1133.33", recurring.AmountDue)
	s.Equal(date(2026, 3, 1), recurring.FromDate)

	changes, err := s.GetStores().PlanChangeRepo.List(s.GetContext(), &types.PlanChangeFilter{
		SubscriptionIDs: []string{s.testData.sub.ID},
	})
	s.Require().NoError(err)
	s.Require().Len(changes, 1)
	s.True(changes[0].Processed)
	s.Equal(recurring.ID, *changes[0].InvoiceID)
}
