package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/domain/customer"
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
	"github.com/sourcegraph/conc/pool"
)

// BillingService runs invoice generation passes
type BillingService interface {
	// GenerateInvoices writes at most one recurring invoice per active subscription of
	// a business unit for a billing month. Each subscription bills on its own cycle's
	// calendar; a cycle override restricts the pass to that cycle's subscriptions.
	// Re-running a month skips what was invoiced.
	GenerateInvoices(ctx context.Context, req dto.GenerateInvoicesRequest) (*dto.GenerateInvoicesResponse, error)
	GetBillingSchedule(ctx context.Context, req dto.BillingScheduleRequest) (*dto.BillingScheduleResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

// generationInput is everything a pass reads before computing
type generationInput struct {
	unitID   string
	year     int
	month    time.Month
	referral decimal.Decimal
	base     types.BaseModel

	// dates is each subscription's billing month on its own profile
	dates        map[string]schedule.Dates
	invoices     map[string][]*invoice.Invoice
	changes      map[string][]*planchange.PlanChange
	customers    map[string]*customer.Customer
	customerSubs []*subscription.Subscription
	plans        map[string]*plan.Plan
}

// computedInvoice is the outcome of one subscription, nothing written yet
type computedInvoice struct {
	index    int
	sub      *subscription.Subscription
	customer *customer.Customer
	result   dto.SubscriptionResult

	invoice         *invoice.Invoice
	newBalance      decimal.Decimal
	referralApplied bool
	realised        []*planchange.PlanChange
}

func (s *billingService) GenerateInvoices(ctx context.Context, req dto.GenerateInvoicesRequest) (*dto.GenerateInvoicesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	span, ctx := s.Sentry.StartTransaction(ctx, "billing.generate_invoices")
	if span != nil {
		defer span.Finish()
	}

	resp := &dto.GenerateInvoicesResponse{
		Success:        false,
		BusinessUnitID: req.BusinessUnitID,
		Year:           req.Year,
		Month:          req.Month,
		BillingCycle:   req.BillingCycleOverride,
		Results:        []dto.SubscriptionResult{},
		Errors:         []string{},
	}

	fail := func(stage string, err error) (*dto.GenerateInvoicesResponse, error) {
		s.Metrics.GenerationError(stage)
		s.Metrics.ObserveGeneration(start, false)
		s.Logger.Errorw("invoice generation aborted",
			"business_unit_id", req.BusinessUnitID,
			"year", req.Year,
			"month", req.Month,
			"stage", stage,
			"error", err,
		)
		resp.Errors = append(resp.Errors, ierr.DisplayMessage(err))
		return resp, nil
	}

	unit, err := s.getBusinessUnit(ctx, req.BusinessUnitID)
	if err != nil {
		return fail("business_unit", err)
	}

	in, subs, err := s.loadGenerationInput(ctx, req, unit)
	if err != nil {
		return fail("load", err)
	}

	s.Logger.Infow("starting invoice generation",
		"business_unit_id", unit.ID,
		"business_unit", unit.Name,
		"billing_cycle", req.BillingCycleOverride,
		"profiles", lo.Uniq(lo.MapToSlice(in.dates, func(_ string, d schedule.Dates) string { return d.Profile.Name })),
		"subscriptions", len(subs),
	)

	computed := s.computeAll(subs, in)

	toWrite := lo.Filter(computed, func(c computedInvoice, _ int) bool {
		return c.invoice != nil
	})

	if err := s.writeGeneration(ctx, toWrite); err != nil {
		return fail("write", err)
	}

	for _, c := range computed {
		resp.Results = append(resp.Results, c.result)
		switch {
		case c.result.Skipped:
			resp.Skipped++
		case c.result.Error != "":
			s.Metrics.GenerationError("subscription")
			resp.Errors = append(resp.Errors, fmt.Sprintf("subscription %s: %s", c.sub.ID, c.result.Error))
		default:
			resp.Generated++
			s.Metrics.InvoiceGenerated(types.InvoiceTypeRecurring.String())
		}
	}
	s.Metrics.InvoiceSkipped(unit.ID, resp.Skipped)

	for _, c := range toWrite {
		if !c.invoice.AmountDue.IsPositive() {
			continue
		}
		s.notify(ctx, notification.KindInvoiceGenerated, c.sub.ID, c.customer,
			notification.InvoiceGenerated(c.customer.Name, c.invoice.AmountDue, c.invoice.DueDate))
	}

	resp.Success = true
	s.Metrics.ObserveGeneration(start, true)
	s.Logger.Infow("invoice generation completed",
		"business_unit_id", unit.ID,
		"generated", resp.Generated,
		"skipped", resp.Skipped,
		"errors", len(resp.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// loadGenerationInput reads the active subscriptions of the unit, resolves the
// billing month of each on its own profile and loads everything their
// computation depends on
func (s *billingService) loadGenerationInput(ctx context.Context, req dto.GenerateInvoicesRequest, unit *businessunit.BusinessUnit) (*generationInput, []*subscription.Subscription, error) {
	active, err := s.SubRepo.List(ctx, &types.SubscriptionFilter{
		BusinessUnitID: req.BusinessUnitID,
		ActiveOnly:     true,
	})
	if err != nil {
		return nil, nil, err
	}

	byProfile := map[string]schedule.Dates{}
	dates := make(map[string]schedule.Dates, len(active))
	subs := make([]*subscription.Subscription, 0, len(active))
	for _, sub := range active {
		profile := s.profileFor(unit, sub)
		if req.BillingCycleOverride != "" && profile.PeriodType != req.BillingCycleOverride {
			continue
		}
		d, ok := byProfile[profile.Name]
		if !ok {
			d = schedule.DatesFor(profile, req.Year, req.TargetMonth())
			byProfile[profile.Name] = d
		}
		dates[sub.ID] = d
		subs = append(subs, sub)
	}

	in := &generationInput{
		unitID:    req.BusinessUnitID,
		year:      req.Year,
		month:     req.TargetMonth(),
		dates:     dates,
		referral:  decimal.NewFromFloat(s.Config.Billing.ReferralDiscount),
		base:      types.GetDefaultBaseModel(ctx),
		invoices:  map[string][]*invoice.Invoice{},
		changes:   map[string][]*planchange.PlanChange{},
		customers: map[string]*customer.Customer{},
		plans:     map[string]*plan.Plan{},
	}
	if len(subs) == 0 {
		return in, subs, nil
	}

	subIDs := lo.Map(subs, func(sub *subscription.Subscription, _ int) string { return sub.ID })

	invoices, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{SubscriptionIDs: subIDs})
	if err != nil {
		return nil, nil, err
	}
	in.invoices = lo.GroupBy(invoices, func(inv *invoice.Invoice) string { return inv.SubscriptionID })

	changes, err := s.PlanChangeRepo.List(ctx, &types.PlanChangeFilter{
		SubscriptionIDs: subIDs,
		Processed:       lo.ToPtr(false),
	})
	if err != nil {
		return nil, nil, err
	}
	in.changes = lo.GroupBy(changes, func(pc *planchange.PlanChange) string { return pc.SubscriptionID })

	customerIDs := lo.Uniq(lo.Map(subs, func(sub *subscription.Subscription, _ int) string { return sub.CustomerID }))
	in.customers, err = s.customersByID(ctx, customerIDs)
	if err != nil {
		return nil, nil, err
	}

	// referral eligibility looks at every subscription of the customer, in any unit
	in.customerSubs, err = s.SubRepo.List(ctx, &types.SubscriptionFilter{CustomerIDs: customerIDs})
	if err != nil {
		return nil, nil, err
	}

	for _, planID := range lo.Uniq(lo.Map(subs, func(sub *subscription.Subscription, _ int) string { return sub.PlanID })) {
		pl, err := s.getPlan(ctx, planID)
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, nil, err
		}
		in.plans[planID] = pl
	}

	return in, subs, nil
}

// computeAll fans the per-subscription computation out on a bounded pool and
// returns the results in subscription order
func (s *billingService) computeAll(subs []*subscription.Subscription, in *generationInput) []computedInvoice {
	p := pool.NewWithResults[computedInvoice]().WithMaxGoroutines(max(s.Config.Billing.WorkerCount, 1))
	for i, sub := range subs {
		i, sub := i, sub
		p.Go(func() computedInvoice {
			c := computeInvoice(sub, in)
			c.index = i
			return c
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].index < results[j].index
	})
	return results
}

// computeInvoice derives one subscription's invoice and new balance. It must
// not write: it runs concurrently for every subscription of the pass.
func computeInvoice(sub *subscription.Subscription, in *generationInput) computedInvoice {
	c := computedInvoice{
		sub:    sub,
		result: dto.SubscriptionResult{SubscriptionID: sub.ID},
	}
	dates := in.dates[sub.ID]
	prior := in.invoices[sub.ID]

	// 1. already invoiced for the month
	if lo.ContainsBy(prior, func(inv *invoice.Invoice) bool {
		return blocksGeneration(inv, in.year, in.month)
	}) {
		c.result.Skipped = true
		c.result.Reason = dto.SkipReasonAlreadyInvoiced
		return c
	}
	if sub.InstallDate.After(dates.To) {
		c.result.Skipped = true
		c.result.Reason = dto.SkipReasonInstalledAfterPeriod
		return c
	}

	pl, ok := in.plans[sub.PlanID]
	if !ok {
		c.result.Error = fmt.Sprintf("plan %s not found", sub.PlanID)
		return c
	}
	cust, ok := in.customers[sub.CustomerID]
	if !ok {
		c.result.Error = fmt.Sprintf("customer %s not found", sub.CustomerID)
		return c
	}
	c.customer = cust

	// 2. base amount
	from := dates.From
	amount := pl.MonthlyFee
	prorated := false
	proratedDays := 0
	carried := decimal.Zero

	// pending plan changes: one inside this period replaces the base fee with the
	// new plan's remainder, older ones carry their remainder in
	for _, pc := range in.changes[sub.ID] {
		if pc.PeriodEnd.After(dates.To) {
			continue
		}
		remainder := proration.Prorate(pc.NewFee, pc.ChangeDate, pc.PeriodEnd)
		if pc.PeriodEnd.Equal(dates.To) {
			amount = remainder.Amount
			prorated = true
			proratedDays = remainder.Days
			from = pc.ChangeDate
		} else {
			carried = carried.Add(remainder.Amount)
		}
		c.realised = append(c.realised, pc)
	}

	// 3. first invoice proration
	if len(prior) == 0 && !prorated &&
		proration.NeedsProrating(sub.InstallDate, dates.Generation, dates.From) &&
		sub.InstallDate.After(dates.From) {
		r := proration.Prorate(pl.MonthlyFee, sub.InstallDate, dates.Due)
		if r.Days < proration.DaysPerMonth {
			amount = r.Amount
			prorated = true
			proratedDays = r.Days
			from = sub.InstallDate
		}
	}

	amount = amount.Add(carried)
	original := amount

	// 4. one-time referral discount on the customer's first subscription
	discount := decimal.Zero
	if cust.WasReferred() && !sub.ReferralCreditApplied && amount.IsPositive() && sub.IsFirstFor(in.customerSubs) {
		discount = decimal.Min(amount, in.referral)
		amount = amount.Sub(discount)
		c.referralApplied = true
	}

	// 5. absorb credit
	leftover := decimal.Zero
	absorbed := decimal.Zero
	if sub.HasCredit() {
		credit := sub.Balance.Neg()
		absorbed = decimal.Min(credit, amount)
		amount = amount.Sub(absorbed)
		leftover = credit.Sub(absorbed)
	}

	// 6. carry an outstanding balance into the invoice
	amountDue := amount
	if sub.Balance.IsPositive() {
		amountDue = amountDue.Add(sub.Balance)
	}

	// 7. status
	status := types.InvoicePaymentStatusUnpaid
	if amountDue.IsZero() {
		status = types.InvoicePaymentStatusPaid
	}

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriptionID: sub.ID,
		InvoiceType:    types.InvoiceTypeRecurring,
		FromDate:       from,
		ToDate:         dates.To,
		DueDate:        dates.Due,
		AmountDue:      amountDue,
		AmountPaid:     decimal.Zero,
		PaymentStatus:  status,
		IsProrated:     prorated,
		ProratedDays:   proratedDays,
		OriginalAmount: lo.ToPtr(original),
		BaseModel:      in.base,
	}
	if discount.IsPositive() {
		inv.DiscountApplied = lo.ToPtr(discount)
	}
	if absorbed.IsPositive() {
		inv.CreditsApplied = lo.ToPtr(absorbed)
	}

	// 8. the invoice defines the balance; unabsorbed credit stays negative
	c.invoice = inv
	c.newBalance = amountDue.Sub(leftover)

	c.result.InvoiceID = inv.ID
	c.result.AmountDue = lo.ToPtr(amountDue)
	c.result.IsProrated = prorated
	c.result.ProratedDays = proratedDays
	return c
}

// blocksGeneration reports whether an invoice already bills the target month.
// Plan change and disconnection invoices are partial and do not block.
func blocksGeneration(inv *invoice.Invoice, year int, month time.Month) bool {
	if inv.InvoiceType != types.InvoiceTypeRecurring && inv.InvoiceType != types.InvoiceTypeActivation {
		return false
	}
	return types.SameMonth(inv.DueDate, year, month)
}

// writeGeneration persists a pass: invoices first, then balances, then the
// plan changes the invoices realised
func (s *billingService) writeGeneration(ctx context.Context, computed []computedInvoice) error {
	if len(computed) == 0 {
		return nil
	}

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		invoices := lo.Map(computed, func(c computedInvoice, _ int) *invoice.Invoice { return c.invoice })
		if err := s.InvoiceRepo.CreateBulk(ctx, invoices); err != nil {
			return err
		}

		for _, c := range computed {
			if c.referralApplied {
				c.sub.ReferralCreditApplied = true
				c.sub.Balance = c.newBalance
				if err := s.SubRepo.Update(ctx, c.sub); err != nil {
					return err
				}
				continue
			}
			if err := s.SubRepo.UpdateBalance(ctx, c.sub, c.newBalance); err != nil {
				return err
			}
		}

		for _, c := range computed {
			for _, pc := range c.realised {
				if err := s.PlanChangeRepo.MarkProcessed(ctx, pc.ID, c.invoice.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *billingService) GetBillingSchedule(ctx context.Context, req dto.BillingScheduleRequest) (*dto.BillingScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unit, err := s.getBusinessUnit(ctx, req.BusinessUnitID)
	if err != nil {
		return nil, err
	}

	override := req.BillingCycleOverride
	if override == "" {
		override = unit.Override()
	}

	return &dto.BillingScheduleResponse{
		BusinessUnitID:   unit.ID,
		BusinessUnitName: unit.Name,
		Dates:            s.Resolver.BillingDates(unit.Name, req.Year, time.Month(req.Month), override),
	}, nil
}
