package service

import (
	"context"
	"fmt"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// SchedulerService runs the actions the billing calendar schedules for a day
type SchedulerService interface {
	// RunDailyTasks evaluates now in the billing timezone and runs generation,
	// due reminders and disconnection warnings for the cycles due that day
	RunDailyTasks(ctx context.Context, now time.Time) (*dto.DailyRunResponse, error)
}

type schedulerService struct {
	ServiceParams
	billing BillingService
}

func NewSchedulerService(params ServiceParams, billing BillingService) SchedulerService {
	return &schedulerService{
		ServiceParams: params,
		billing:       billing,
	}
}

// subscriptionSchedule is an active subscription with its resolved profile
type subscriptionSchedule struct {
	unit    *businessunit.BusinessUnit
	sub     *subscription.Subscription
	profile schedule.Profile
}

func (s *schedulerService) RunDailyTasks(ctx context.Context, now time.Time) (*dto.DailyRunResponse, error) {
	span, ctx := s.Sentry.StartTransaction(ctx, "scheduler.daily")
	if span != nil {
		defer span.Finish()
	}

	tasks := s.Resolver.GetTodaysTasks(now)
	today := tasks.Today
	resp := &dto.DailyRunResponse{
		Success:    true,
		Date:       today.Format(types.DateLayout),
		Tasks:      tasks,
		Generation: []*dto.GenerateInvoicesResponse{},
		Errors:     []string{},
	}

	if tasks.IsEmpty() {
		s.Logger.Infow("no billing tasks scheduled today", "date", resp.Date)
		s.Metrics.SchedulerRun(true)
		return resp, nil
	}

	units, err := s.BusinessUnitRepo.List(ctx)
	if err != nil {
		s.Metrics.SchedulerRun(false)
		return nil, err
	}
	schedules, err := s.loadSchedules(ctx, units)
	if err != nil {
		s.Metrics.SchedulerRun(false)
		return nil, err
	}

	// one pass per unit and cycle, so an extension unit bills each cycle on its own day
	for _, unit := range units {
		for _, cycle := range tasks.ShouldGenerateInvoices {
			if !lo.ContainsBy(schedules, func(ss subscriptionSchedule) bool {
				return ss.unit.ID == unit.ID && ss.profile.PeriodType == cycle
			}) {
				continue
			}
			gen, err := s.billing.GenerateInvoices(ctx, dto.GenerateInvoicesRequest{
				BusinessUnitID:       unit.ID,
				Year:                 today.Year(),
				Month:                int(today.Month()),
				BillingCycleOverride: cycle,
			})
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("generation for %s: %s", unit.Name, ierr.DisplayMessage(err)))
				continue
			}
			resp.Generation = append(resp.Generation, gen)
			if !gen.Success {
				for _, e := range gen.Errors {
					resp.Errors = append(resp.Errors, fmt.Sprintf("generation for %s: %s", unit.Name, e))
				}
			}
		}
	}

	// balances moved
	if len(resp.Generation) > 0 {
		if schedules, err = s.loadSchedules(ctx, units); err != nil {
			s.Metrics.SchedulerRun(false)
			return nil, err
		}
	}

	if len(tasks.ShouldSendDueReminders) > 0 {
		targets := lo.Filter(schedules, func(ss subscriptionSchedule, _ int) bool {
			return lo.Contains(tasks.ShouldSendDueReminders, ss.profile.PeriodType)
		})
		msgs, err := s.buildMessages(ctx, targets, func(ss subscriptionSchedule, name string) string {
			due := schedule.DatesFor(ss.profile, today.Year(), today.Month()).Due
			return notification.DueReminder(name, ss.sub.Balance, due)
		})
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("due reminders: %s", ierr.DisplayMessage(err)))
		} else {
			result := s.BulkSender.SendBulk(ctx, notification.KindDueReminder, msgs)
			resp.Reminders = &result
		}
	}

	if len(tasks.ShouldSendDisconnectionWarnings) > 0 {
		disconnection := today.AddDate(0, 0, s.Config.Billing.WarningLeadDays)
		targets := lo.Filter(schedules, func(ss subscriptionSchedule, _ int) bool {
			return lo.Contains(tasks.ShouldSendDisconnectionWarnings, ss.profile.PeriodType)
		})
		msgs, err := s.buildMessages(ctx, targets, func(ss subscriptionSchedule, name string) string {
			return notification.DisconnectionWarning(name, ss.sub.Balance, disconnection)
		})
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("disconnection warnings: %s", ierr.DisplayMessage(err)))
		} else {
			result := s.BulkSender.SendBulk(ctx, notification.KindDisconnectionWarning, msgs)
			resp.Warnings = &result
		}
	}

	resp.Success = len(resp.Errors) == 0
	s.Metrics.SchedulerRun(resp.Success)
	s.Logger.Infow("daily billing run finished",
		"date", resp.Date,
		"generate", tasks.ShouldGenerateInvoices,
		"reminders", tasks.ShouldSendDueReminders,
		"warnings", tasks.ShouldSendDisconnectionWarnings,
		"errors", len(resp.Errors),
	)
	return resp, nil
}

// loadSchedules resolves the profile of every active subscription
func (s *schedulerService) loadSchedules(ctx context.Context, units []*businessunit.BusinessUnit) ([]subscriptionSchedule, error) {
	subs, err := s.SubRepo.List(ctx, &types.SubscriptionFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(units, func(u *businessunit.BusinessUnit) string { return u.ID })
	out := make([]subscriptionSchedule, 0, len(subs))
	for _, sub := range subs {
		unit, ok := byID[sub.BusinessUnitID]
		if !ok {
			s.Logger.Warnw("skipping subscription, business unit not found",
				"subscription_id", sub.ID,
				"business_unit_id", sub.BusinessUnitID,
			)
			continue
		}
		out = append(out, subscriptionSchedule{
			unit:    unit,
			sub:     sub,
			profile: s.profileFor(unit, sub),
		})
	}
	return out, nil
}

// buildMessages renders one message per target subscription that still owes money
func (s *schedulerService) buildMessages(ctx context.Context, targets []subscriptionSchedule, render func(ss subscriptionSchedule, name string) string) ([]notification.Message, error) {
	owing := lo.Filter(targets, func(ss subscriptionSchedule, _ int) bool {
		return ss.sub.Balance.IsPositive()
	})
	msgs := []notification.Message{}
	if len(owing) == 0 {
		return msgs, nil
	}

	customers, err := s.customersByID(ctx, lo.Uniq(lo.Map(owing, func(ss subscriptionSchedule, _ int) string {
		return ss.sub.CustomerID
	})))
	if err != nil {
		return nil, err
	}

	for _, ss := range owing {
		c, ok := customers[ss.sub.CustomerID]
		if !ok {
			s.Logger.Warnw("skipping message, customer not found",
				"subscription_id", ss.sub.ID,
				"customer_id", ss.sub.CustomerID,
			)
			continue
		}
		msgs = append(msgs, notification.Message{
			SubscriptionID: ss.sub.ID,
			PhoneNumber:    c.PhoneNumber,
			Body:           render(ss, c.Name),
		})
	}
	return msgs, nil
}
