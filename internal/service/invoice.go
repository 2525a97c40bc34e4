package service

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/proration"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceService handles one-off invoices and invoice maintenance
type InvoiceService interface {
	GenerateDisconnectionInvoice(ctx context.Context, subscriptionID string, req dto.DisconnectSubscriptionRequest) (*dto.InvoiceResponse, error)
	GenerateActivationInvoice(ctx context.Context, subscriptionID string, req dto.ActivateSubscriptionRequest) (*dto.InvoiceResponse, error)
	RecalculateBalance(ctx context.Context, subscriptionID string) (*dto.RecalculateBalanceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	MarkPendingVerification(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

// GenerateDisconnectionInvoice bills the days from the end of the last invoice up
// to the disconnection date and deactivates the subscription
func (s *invoiceService) GenerateDisconnectionInvoice(ctx context.Context, subscriptionID string, req dto.DisconnectSubscriptionRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	disconnectionDate, err := req.Date(s.today())
	if err != nil {
		return nil, err
	}

	var created *invoice.Invoice
	var cust string
	err = s.retryOnVersionConflict(ctx, "disconnect", func() error {
		created = nil
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			sub, err := s.SubRepo.Get(ctx, subscriptionID)
			if err != nil {
				return err
			}
			cust = sub.CustomerID

			invoices, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{SubscriptionIDs: []string{sub.ID}})
			if err != nil {
				return err
			}
			if len(invoices) == 0 {
				return ierr.NewError("no previous invoice").
					WithHint("A disconnection invoice needs a previous invoice to start from").
					WithReportableDetails(map[string]any{
						"subscription_id": sub.ID,
					}).
					Mark(ierr.ErrNotFound)
			}
			last := lo.MaxBy(invoices, func(a, b *invoice.Invoice) bool {
				return a.ToDate.After(b.ToDate)
			})

			pl, err := s.getPlan(ctx, sub.PlanID)
			if err != nil {
				return err
			}

			start := last.ToDate.AddDate(0, 0, 1)
			r := proration.Prorate(pl.MonthlyFee, start, disconnectionDate)
			if r.Days == 0 {
				return ierr.NewError("no days to bill").
					WithHintf("Disconnection date must be after %s", last.ToDate.Format(types.DateLayout)).
					WithReportableDetails(map[string]any{
						"subscription_id":    sub.ID,
						"last_invoice_to":    last.ToDate.Format(types.DateLayout),
						"disconnection_date": disconnectionDate.Format(types.DateLayout),
					}).
					Mark(ierr.ErrValidation)
			}

			inv := newOneOffInvoice(ctx, sub, types.InvoiceTypeDisconnection, start, disconnectionDate, disconnectionDate, r)

			sub.Balance = sub.Balance.Add(inv.AmountDue)
			sub.Active = false
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
			if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			created = inv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.InvoiceGenerated(types.InvoiceTypeDisconnection.String())
	s.Logger.Infow("disconnection invoice created",
		"subscription_id", subscriptionID,
		"invoice_id", created.ID,
		"amount_due", created.AmountDue,
		"days", created.ProratedDays,
	)

	if c, err := s.getCustomer(ctx, cust); err == nil {
		s.notify(ctx, notification.KindInvoiceGenerated, subscriptionID, c,
			notification.InvoiceGenerated(c.Name, created.AmountDue, created.DueDate))
	}
	return dto.NewInvoiceResponse(created), nil
}

// GenerateActivationInvoice bills from (re)activation to the next natural
// boundary of the unit's schedule and activates the subscription
func (s *invoiceService) GenerateActivationInvoice(ctx context.Context, subscriptionID string, req dto.ActivateSubscriptionRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	activationDate, err := req.Date(s.today())
	if err != nil {
		return nil, err
	}

	var created *invoice.Invoice
	var firstActivation bool
	var sub *subscription.Subscription
	err = s.retryOnVersionConflict(ctx, "activate", func() error {
		created = nil
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			got, err := s.SubRepo.Get(ctx, subscriptionID)
			if err != nil {
				return err
			}
			sub = got

			unit, err := s.getBusinessUnit(ctx, sub.BusinessUnitID)
			if err != nil {
				return err
			}
			pl, err := s.getPlan(ctx, sub.PlanID)
			if err != nil {
				return err
			}

			profile := s.profileFor(unit, sub)
			boundary := schedule.NextBoundary(profile, activationDate)
			r := proration.Prorate(pl.MonthlyFee, activationDate, boundary)
			if r.Days == 0 {
				return ierr.NewError("no days to bill").
					WithHint("Activation date leaves no days before the next billing boundary").
					WithReportableDetails(map[string]any{
						"subscription_id": sub.ID,
						"activation_date": activationDate.Format(types.DateLayout),
						"boundary":        boundary.Format(types.DateLayout),
					}).
					Mark(ierr.ErrValidation)
			}

			existing, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{SubscriptionIDs: []string{sub.ID}})
			if err != nil {
				return err
			}
			// a subscription created inactive is welcomed when it first goes live
			firstActivation = len(existing) == 0 && !sub.Active

			inv := newOneOffInvoice(ctx, sub, types.InvoiceTypeActivation, activationDate, boundary, boundary, r)

			sub.Balance = sub.Balance.Add(inv.AmountDue)
			sub.Active = true
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
			if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			created = inv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.InvoiceGenerated(types.InvoiceTypeActivation.String())
	s.Logger.Infow("activation invoice created",
		"subscription_id", subscriptionID,
		"invoice_id", created.ID,
		"amount_due", created.AmountDue,
		"to_date", created.ToDate.Format(types.DateLayout),
	)

	if c, err := s.getCustomer(ctx, sub.CustomerID); err == nil {
		if firstActivation {
			if pl, err := s.getPlan(ctx, sub.PlanID); err == nil {
				s.notify(ctx, notification.KindWelcome, sub.ID, c, notification.Welcome(c.Name, pl.Name))
			}
		}
		s.notify(ctx, notification.KindInvoiceGenerated, sub.ID, c,
			notification.InvoiceGenerated(c.Name, created.AmountDue, created.DueDate))
	}
	return dto.NewInvoiceResponse(created), nil
}

func newOneOffInvoice(ctx context.Context, sub *subscription.Subscription, invoiceType types.InvoiceType, from, to, due time.Time, r proration.Result) *invoice.Invoice {
	return &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SubscriptionID: sub.ID,
		InvoiceType:    invoiceType,
		FromDate:       from,
		ToDate:         to,
		DueDate:        due,
		AmountDue:      r.Amount,
		AmountPaid:     decimal.Zero,
		PaymentStatus:  types.InvoicePaymentStatusUnpaid,
		IsProrated:     r.Days < proration.DaysPerMonth,
		ProratedDays:   r.Days,
		OriginalAmount: lo.ToPtr(r.Amount),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

// RecalculateBalance rebuilds the balance from the ledgers: invoiced minus paid
func (s *invoiceService) RecalculateBalance(ctx context.Context, subscriptionID string) (*dto.RecalculateBalanceResponse, error) {
	var resp *dto.RecalculateBalanceResponse
	err := s.retryOnVersionConflict(ctx, "recalculate_balance", func() error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			sub, err := s.SubRepo.Get(ctx, subscriptionID)
			if err != nil {
				return err
			}

			invoices, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{SubscriptionIDs: []string{sub.ID}})
			if err != nil {
				return err
			}
			payments, err := s.PaymentRepo.List(ctx, &types.PaymentFilter{SubscriptionIDs: []string{sub.ID}})
			if err != nil {
				return err
			}

			invoiced := decimal.Zero
			for _, inv := range invoices {
				invoiced = invoiced.Add(inv.AmountDue)
			}
			paid := decimal.Zero
			for _, p := range payments {
				paid = paid.Add(p.Amount)
			}

			previous := sub.Balance
			balance := invoiced.Sub(paid)
			if err := s.SubRepo.UpdateBalance(ctx, sub, balance); err != nil {
				return err
			}

			resp = &dto.RecalculateBalanceResponse{
				SubscriptionID:  sub.ID,
				PreviousBalance: previous,
				NewBalance:      balance,
				TotalInvoiced:   invoiced,
				TotalPaid:       paid,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if !resp.PreviousBalance.Equal(resp.NewBalance) {
		s.Logger.Warnw("balance drift corrected",
			"subscription_id", subscriptionID,
			"previous_balance", resp.PreviousBalance,
			"new_balance", resp.NewBalance,
		)
	}
	return resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})), nil
}

// MarkPendingVerification flags an invoice whose e-wallet proof awaits review
func (s *invoiceService) MarkPendingVerification(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.PaymentStatus != types.InvoicePaymentStatusUnpaid &&
		inv.PaymentStatus != types.InvoicePaymentStatusPartiallyPaid {
		return nil, ierr.NewError("invoice is not awaiting payment").
			WithHintf("Only unpaid or partially paid invoices can be marked for verification, invoice is %s", inv.PaymentStatus).
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"payment_status": inv.PaymentStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.PaymentStatus = types.InvoicePaymentStatusPendingVerification
	if err := s.InvoiceRepo.UpdatePayment(ctx, inv); err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}
