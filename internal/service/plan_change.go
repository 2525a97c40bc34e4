package service

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/plan"
	"github.com/netcycle/netcycle/internal/domain/planchange"
	"github.com/netcycle/netcycle/internal/domain/proration"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PlanChangeService swaps plans mid cycle
type PlanChangeService interface {
	// ChangePlan settles the old plan's share of the current period and switches the
	// subscription to the new plan. The new plan's share is billed by the next generation pass.
	ChangePlan(ctx context.Context, subscriptionID string, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error)
	// PreviewPlanChange computes what ChangePlan would do without writing anything
	PreviewPlanChange(ctx context.Context, subscriptionID string, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error)
}

type planChangeService struct {
	ServiceParams
}

func NewPlanChangeService(params ServiceParams) PlanChangeService {
	return &planChangeService{
		ServiceParams: params,
	}
}

type planChangeInput struct {
	sub        *subscription.Subscription
	oldPlan    *plan.Plan
	newPlan    *plan.Plan
	changeDate time.Time
	dates      schedule.Dates
	split      proration.PlanChangeSplit
}

func (s *planChangeService) PreviewPlanChange(ctx context.Context, subscriptionID string, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error) {
	changeDate, err := s.changeDate(req)
	if err != nil {
		return nil, err
	}

	in, err := s.compute(ctx, subscriptionID, req.NewPlanID, changeDate)
	if err != nil {
		return nil, err
	}

	resp := in.response()
	resp.Preview = true
	if in.split.Branch == types.PlanChangeBranchPaid {
		resp.CreditAmount = lo.ToPtr(in.split.OldPlan.Amount)
	}
	resp.NewBalance = lo.ToPtr(in.sub.Balance.Add(in.split.Adjustment))
	return resp, nil
}

func (s *planChangeService) ChangePlan(ctx context.Context, subscriptionID string, req dto.ChangePlanRequest) (*dto.PlanChangeResponse, error) {
	changeDate, err := s.changeDate(req)
	if err != nil {
		return nil, err
	}

	var resp *dto.PlanChangeResponse
	var in *planChangeInput
	var created *invoice.Invoice
	err = s.retryOnVersionConflict(ctx, "plan_change", func() error {
		created = nil
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			var err error
			in, err = s.compute(ctx, subscriptionID, req.NewPlanID, changeDate)
			if err != nil {
				return err
			}
			sub := in.sub
			split := in.split

			resp = in.response()

			// paid: the unused old-plan days come back as credit.
			// unpaid: the used old-plan days are billed now.
			sub.PlanID = in.newPlan.ID
			sub.Balance = sub.Balance.Add(split.Adjustment)
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}

			if split.Branch == types.PlanChangeBranchPaid {
				resp.CreditAmount = lo.ToPtr(split.OldPlan.Amount)
			} else if split.OldPlan.Days > 0 && split.OldPlan.Amount.IsPositive() {
				created = &invoice.Invoice{
					ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
					SubscriptionID: sub.ID,
					InvoiceType:    types.InvoiceTypePlanChange,
					FromDate:       proration.ServiceStart(in.dates.From, sub.InstallDate),
					ToDate:         in.changeDate.AddDate(0, 0, -1),
					DueDate:        in.dates.Due,
					AmountDue:      split.OldPlan.Amount,
					AmountPaid:     decimal.Zero,
					PaymentStatus:  types.InvoicePaymentStatusUnpaid,
					IsProrated:     true,
					ProratedDays:   split.OldPlan.Days,
					OriginalAmount: lo.ToPtr(split.OldPlan.Amount),
					BaseModel:      types.GetDefaultBaseModel(ctx),
				}
				if err := s.InvoiceRepo.Create(ctx, created); err != nil {
					return err
				}
				resp.InvoiceID = lo.ToPtr(created.ID)
			}

			pc := &planchange.PlanChange{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_CHANGE),
				SubscriptionID: sub.ID,
				OldPlanID:      in.oldPlan.ID,
				NewPlanID:      in.newPlan.ID,
				OldFee:         in.oldPlan.MonthlyFee,
				NewFee:         in.newPlan.MonthlyFee,
				ChangeDate:     in.changeDate,
				ProratedAmount: split.Adjustment,
				ProratedDays:   split.OldPlan.Days,
				PeriodStart:    in.dates.From,
				PeriodEnd:      in.dates.To,
				Processed:      false,
				BaseModel:      types.GetDefaultBaseModel(ctx),
			}
			if err := s.PlanChangeRepo.Create(ctx, pc); err != nil {
				return err
			}

			resp.PlanChangeID = pc.ID
			resp.NewBalance = lo.ToPtr(sub.Balance)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.PlanChanged(string(in.split.Branch))
	s.Logger.Infow("plan changed",
		"subscription_id", subscriptionID,
		"plan_change_id", resp.PlanChangeID,
		"old_plan_id", in.oldPlan.ID,
		"new_plan_id", in.newPlan.ID,
		"branch", in.split.Branch,
		"adjustment", in.split.Adjustment,
	)

	if created != nil {
		s.Metrics.InvoiceGenerated(types.InvoiceTypePlanChange.String())
		if c, err := s.getCustomer(ctx, in.sub.CustomerID); err == nil {
			s.notify(ctx, notification.KindInvoiceGenerated, in.sub.ID, c,
				notification.InvoiceGenerated(c.Name, created.AmountDue, created.DueDate))
		}
	}
	return resp, nil
}

func (s *planChangeService) changeDate(req dto.ChangePlanRequest) (time.Time, error) {
	if err := req.Validate(); err != nil {
		return time.Time{}, err
	}
	return req.Date(s.today())
}

// compute loads the subscription and both plans and splits the current period
func (s *planChangeService) compute(ctx context.Context, subscriptionID, newPlanID string, changeDate time.Time) (*planChangeInput, error) {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.PlanID == newPlanID {
		return nil, ierr.NewError("subscription is already on this plan").
			WithHint("Please choose a different plan").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"plan_id":         newPlanID,
			}).
			Mark(ierr.ErrValidation)
	}

	oldPlan, err := s.getPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := s.getPlan(ctx, newPlanID)
	if err != nil {
		return nil, err
	}

	unit, err := s.getBusinessUnit(ctx, sub.BusinessUnitID)
	if err != nil {
		return nil, err
	}
	profile := s.profileFor(unit, sub)
	year, month := schedule.PeriodContaining(profile, changeDate)
	dates := schedule.DatesFor(profile, year, month)

	billed, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{
		SubscriptionIDs: []string{sub.ID},
		InvoiceTypes:    []types.InvoiceType{types.InvoiceTypeRecurring, types.InvoiceTypeActivation},
	})
	if err != nil {
		return nil, err
	}
	// a first invoice prorated from the install date covers the whole period of service
	serviceStart := proration.ServiceStart(dates.From, sub.InstallDate)
	paid := lo.ContainsBy(billed, func(inv *invoice.Invoice) bool {
		return inv.Covers(serviceStart, dates.To) && inv.IsPaid()
	})

	return &planChangeInput{
		sub:        sub,
		oldPlan:    oldPlan,
		newPlan:    newPlan,
		changeDate: changeDate,
		dates:      dates,
		split: proration.SplitPlanChange(proration.PlanChangeParams{
			OldFee:      oldPlan.MonthlyFee,
			NewFee:      newPlan.MonthlyFee,
			ChangeDate:  changeDate,
			PeriodStart: dates.From,
			PeriodEnd:   dates.To,
			InstallDate: sub.InstallDate,
			PeriodPaid:  paid,
		}),
	}, nil
}

func (in *planChangeInput) response() *dto.PlanChangeResponse {
	return dto.NewPlanChangeResponse(in.sub.ID, in.oldPlan.ID, in.newPlan.ID,
		in.changeDate, in.dates.From, in.dates.To, in.split)
}
