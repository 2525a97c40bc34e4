package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type SchedulerServiceSuite struct {
	serviceFixture
	service  SchedulerService
	testData struct {
		main  *businessunit.BusinessUnit
		annex *businessunit.BusinessUnit
		plan  *plan.Plan
	}
}

func TestSchedulerService(t *testing.T) {
	suite.Run(t, new(SchedulerServiceSuite))
}

func (s *SchedulerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.params()
	s.service = NewSchedulerService(params, NewBillingService(params))
	s.testData.main = s.createUnit("Main Office")
	s.testData.annex = s.createUnit("Annex Branch")
	s.testData.plan = s.createPlan("Fiber 100", "1000")
}

// localMorning is 01:00 in UTC+8 on the given March 2026 day
func localMorning(day int) time.Time {
	return time.Date(2026, time.March, day, 1, 0, 0, 0, time.UTC).Add(-8 * time.Hour)
}

func (s *SchedulerServiceSuite) TestGenerationDayOfMidMonthCycle() {
	s.createSub(s.createCustomer("Main", nil), s.testData.plan, s.testData.main, date(2025, 6, 1), "0")
	s.createSub(s.createCustomer("Annex", nil), s.testData.plan, s.testData.annex, date(2025, 6, 1), "0")

	// still the 9th in UTC
	resp, err := s.service.RunDailyTasks(s.GetContext(), time.Date(2026, time.March, 9, 17, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.True(resp.Success)
	s.Equal("2026-03-10", resp.Date)
	s.Equal([]types.BillingCycle{types.BillingCycleMidMonth}, resp.Tasks.ShouldGenerateInvoices)
	s.Require().Len(resp.Generation, 1)
	s.Equal(s.testData.main.ID, resp.Generation[0].BusinessUnitID)
	s.Equal(2026, resp.Generation[0].Year)
	s.Equal(3, resp.Generation[0].Month)
	s.Equal(1, resp.Generation[0].Generated)
	s.Nil(resp.Reminders)
	s.Nil(resp.Warnings)

	all, err := s.GetStores().InvoiceRepo.List(s.GetContext(), types.NewInvoiceFilter())
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(date(2026, 3, 15), all[0].DueDate)
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().SchedulerRuns.WithLabelValues("success")))
}

func (s *SchedulerServiceSuite) TestGenerationDayOfFullMonthCycle() {
	s.createSub(s.createCustomer("Main", nil), s.testData.plan, s.testData.main, date(2025, 6, 1), "0")
	annexSub := s.createSub(s.createCustomer("Annex", nil), s.testData.plan, s.testData.annex, date(2025, 6, 1), "0")

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(25))
	s.Require().NoError(err)

	s.Require().Len(resp.Generation, 1)
	s.Equal(s.testData.annex.ID, resp.Generation[0].BusinessUnitID)

	invoices := s.invoicesOf(annexSub.ID)
	s.Require().Len(invoices, 1)
	s.Equal(date(2026, 3, 1), invoices[0].FromDate)
	s.Equal(date(2026, 3, 31), invoices[0].ToDate)
	s.Equal(date(2026, 3, 30), invoices[0].DueDate)
}

func (s *SchedulerServiceSuite) TestDueRemindersOnlyForBalances() {
	owing := s.createCustomer("Owing", nil)
	failing := s.createCustomer("Failing", nil)
	settled := s.createCustomer("Settled", nil)
	s.createSub(owing, s.testData.plan, s.testData.main, date(2025, 6, 1), "1000")
	s.createSub(failing, s.testData.plan, s.testData.main, date(2025, 6, 1), "250")
	s.createSub(settled, s.testData.plan, s.testData.main, date(2025, 6, 1), "-100")
	// annex balances are reminded on the 30th
	s.createSub(s.createCustomer("Annex", nil), s.testData.plan, s.testData.annex, date(2025, 6, 1), "500")
	s.GetGateway().FailNumber(failing.PhoneNumber, fmt.Errorf("gateway rejected"))

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(15))
	s.Require().NoError(err)

	s.True(resp.Success)
	s.Empty(resp.Generation)
	s.Require().NotNil(resp.Reminders)
	s.Equal(1, resp.Reminders.Sent)
	s.Equal(1, resp.Reminders.Failed)
	s.Len(resp.Reminders.Errors, 1)

	sent := s.GetGateway().Sent()
	s.Require().Len(sent, 1)
	s.Equal(owing.PhoneNumber, sent[0].PhoneNumber)
	s.Contains(sent[0].Body, "PHP 1000.00")
	s.Contains(sent[0].Body, "Mar 15, 2026")
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().NotificationsSent.WithLabelValues("due_reminder", "failed")))
}

func (s *SchedulerServiceSuite) TestDisconnectionWarningsDayBefore() {
	c := s.createCustomer("Late", nil)
	s.createSub(c, s.testData.plan, s.testData.main, date(2025, 6, 1), "1200")
	inactive := s.createSub(s.createCustomer("Gone", nil), s.testData.plan, s.testData.main, date(2025, 6, 1), "900")
	inactive.Active = false
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), inactive))

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(19))
	s.Require().NoError(err)

	s.Equal([]types.BillingCycle{types.BillingCycleMidMonth}, resp.Tasks.ShouldSendDisconnectionWarnings)
	s.Require().NotNil(resp.Warnings)
	s.Equal(1, resp.Warnings.Sent)

	sent := s.GetGateway().Sent()
	s.Require().Len(sent, 1)
	s.Equal(c.PhoneNumber, sent[0].PhoneNumber)
	s.Contains(sent[0].Body, "Mar 20, 2026")
	s.Contains(sent[0].Body, "PHP 1200.00")
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().NotificationsSent.WithLabelValues(notification.KindDisconnectionWarning.String(), "sent")))
}

func (s *SchedulerServiceSuite) TestQuietDay() {
	s.createSub(s.createCustomer("Main", nil), s.testData.plan, s.testData.main, date(2025, 6, 1), "1000")

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(3))
	s.Require().NoError(err)

	s.True(resp.Success)
	s.True(resp.Tasks.IsEmpty())
	s.Empty(resp.Generation)
	s.Nil(resp.Reminders)
	s.Nil(resp.Warnings)
	s.Empty(s.GetGateway().Sent())
	s.Equal(0, s.GetDB().TxCount())
}

func (s *SchedulerServiceSuite) TestGenerationFailureMarksRunFailed() {
	s.createSub(s.createCustomer("Main", nil), s.testData.plan, s.testData.main, date(2025, 6, 1), "0")
	s.GetStores().InvoiceRepo.(interface{ FailNextBulk(error) }).FailNextBulk(fmt.Errorf("disk full"))

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(10))
	s.Require().NoError(err)

	s.False(resp.Success)
	s.NotEmpty(resp.Errors)
	s.Contains(resp.Errors[0], "Main Office")
	s.Equal(1.0, promtestutil.ToFloat64(s.GetMetrics().SchedulerRuns.WithLabelValues("failed")))
}

func (s *SchedulerServiceSuite) TestExtensionUnitBillsEachCycleOnItsDay() {
	ext := s.createUnit("Extension Area")
	mid := s.createSubOnCycle(s.createCustomer("Mid", nil), s.testData.plan, ext, date(2025, 6, 1), "0", types.BillingCycleMidMonth)
	full := s.createSubOnCycle(s.createCustomer("Full", nil), s.testData.plan, ext, date(2025, 6, 1), "0", types.BillingCycleFullMonth)

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(25))
	s.Require().NoError(err)

	s.Equal([]types.BillingCycle{types.BillingCycleFullMonth}, resp.Tasks.ShouldGenerateInvoices)
	s.Require().Len(resp.Generation, 1)
	s.Equal(ext.ID, resp.Generation[0].BusinessUnitID)
	s.Equal(types.BillingCycleFullMonth, resp.Generation[0].BillingCycle)
	s.Equal(1, resp.Generation[0].Generated)

	fullInvoices := s.invoicesOf(full.ID)
	s.Require().Len(fullInvoices, 1)
	s.Equal(date(2026, 3, 1), fullInvoices[0].FromDate)
	s.Equal(date(2026, 3, 30), fullInvoices[0].DueDate)
	s.Empty(s.invoicesOf(mid.ID))

	// the 15th subscriber waits for April 10th and the 30th subscriber is not rebilled
	resp, err = s.service.RunDailyTasks(s.GetContext(), time.Date(2026, time.April, 10, 1, 0, 0, 0, time.UTC).Add(-8*time.Hour))
	s.Require().NoError(err)

	s.Require().Len(resp.Generation, 1)
	s.Equal(types.BillingCycleMidMonth, resp.Generation[0].BillingCycle)
	midInvoices := s.invoicesOf(mid.ID)
	s.Require().Len(midInvoices, 1)
	s.Equal(date(2026, 3, 15), midInvoices[0].FromDate)
	s.Equal(date(2026, 4, 15), midInvoices[0].DueDate)
	s.Len(s.invoicesOf(full.ID), 1)
}

func (s *SchedulerServiceSuite) TestRemindersFollowSubscriptionCycle() {
	ext := s.createUnit("Extension Area")
	s.createSubOnCycle(s.createCustomer("Mid", nil), s.testData.plan, ext, date(2025, 6, 1), "400", types.BillingCycleMidMonth)
	full := s.createSubOnCycle(s.createCustomer("Full", nil), s.testData.plan, ext, date(2025, 6, 1), "700", types.BillingCycleFullMonth)

	resp, err := s.service.RunDailyTasks(s.GetContext(), localMorning(30))
	s.Require().NoError(err)

	s.Require().NotNil(resp.Reminders)
	s.Equal(1, resp.Reminders.Sent)
	sent := s.GetGateway().Sent()
	s.Require().Len(sent, 1)
	s.Equal(full.ID, sent[0].SubscriptionID)
	s.Contains(sent[0].Body, "Mar 30, 2026")
}
