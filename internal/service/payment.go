package service

import (
	"context"
	"fmt"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/invoice"
	"github.com/netcycle/netcycle/internal/domain/payment"
	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/notification"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PaymentService records payments against subscription balances
type PaymentService interface {
	ApplyPayment(ctx context.Context, req dto.ApplyPaymentRequest) (*dto.ApplyPaymentResponse, error)
	ApplyPaymentToAll(ctx context.Context, req dto.PayAllRequest) (*dto.PayAllResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

// DeterminePaymentStatus maps what was paid on an invoice to its status
func DeterminePaymentStatus(totalPaid, amountDue decimal.Decimal) types.InvoicePaymentStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(amountDue):
		return types.InvoicePaymentStatusPaid
	case totalPaid.IsPositive():
		return types.InvoicePaymentStatusPartiallyPaid
	default:
		return types.InvoicePaymentStatusUnpaid
	}
}

// openStatuses are the statuses a payment can still settle
var openStatuses = []types.InvoicePaymentStatus{
	types.InvoicePaymentStatusUnpaid,
	types.InvoicePaymentStatusPartiallyPaid,
	types.InvoicePaymentStatusPendingVerification,
}

func (s *paymentService) ApplyPayment(ctx context.Context, req dto.ApplyPaymentRequest) (*dto.ApplyPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	settlement, err := req.Settlement(s.today())
	if err != nil {
		return nil, err
	}

	var resp *dto.ApplyPaymentResponse
	var sub *subscription.Subscription
	err = s.retryOnVersionConflict(ctx, "apply_payment", func() error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			got, err := s.SubRepo.Get(ctx, req.SubscriptionID)
			if err != nil {
				return err
			}
			sub = got

			target, err := s.targetInvoice(ctx, sub.ID, req.InvoiceID)
			if err != nil {
				return err
			}

			// the versioned write goes first so a conflict leaves no ledger row behind
			previous := sub.Balance
			newBalance := previous.Sub(req.Amount)
			if err := s.SubRepo.UpdateBalance(ctx, sub, newBalance); err != nil {
				return err
			}

			p := &payment.Payment{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
				SubscriptionID: sub.ID,
				SettlementDate: settlement,
				Amount:         req.Amount,
				Mode:           req.Mode,
				Notes:          req.Notes,
				BaseModel:      types.GetDefaultBaseModel(ctx),
			}
			if target != nil {
				p.InvoiceID = lo.ToPtr(target.ID)
			}
			if err := s.PaymentRepo.Create(ctx, p); err != nil {
				return err
			}

			resp = &dto.ApplyPaymentResponse{
				Success:         true,
				PaymentID:       p.ID,
				SubscriptionID:  sub.ID,
				PreviousBalance: previous,
				NewBalance:      newBalance,
				Errors:          []string{},
			}

			if target == nil {
				return nil
			}
			target.AmountPaid = target.AmountPaid.Add(req.Amount)
			target.PaymentStatus = DeterminePaymentStatus(target.AmountPaid, target.AmountDue)
			if err := s.InvoiceRepo.UpdatePayment(ctx, target); err != nil {
				return err
			}
			resp.InvoiceID = lo.ToPtr(target.ID)
			resp.InvoiceStatus = lo.ToPtr(target.PaymentStatus)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.PaymentApplied(req.Mode.String(), req.Amount.InexactFloat64())
	s.Logger.Infow("payment applied",
		"subscription_id", sub.ID,
		"payment_id", resp.PaymentID,
		"amount", req.Amount,
		"mode", req.Mode,
		"previous_balance", resp.PreviousBalance,
		"new_balance", resp.NewBalance,
	)

	s.notifyPayment(ctx, sub, req.Amount, resp.NewBalance)
	return resp, nil
}

// targetInvoice returns the requested invoice, or the most recent open one when
// no id is given. nil means the payment is an advance.
func (s *paymentService) targetInvoice(ctx context.Context, subscriptionID string, invoiceID *string) (*invoice.Invoice, error) {
	if invoiceID != nil && *invoiceID != "" {
		inv, err := s.InvoiceRepo.Get(ctx, *invoiceID)
		if err != nil {
			return nil, err
		}
		if inv.SubscriptionID != subscriptionID {
			return nil, ierr.NewError("invoice belongs to another subscription").
				WithHint("The invoice does not belong to this subscription").
				WithReportableDetails(map[string]any{
					"invoice_id":      inv.ID,
					"subscription_id": subscriptionID,
				}).
				Mark(ierr.ErrValidation)
		}
		return inv, nil
	}

	open, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{
		SubscriptionIDs: []string{subscriptionID},
		PaymentStatus:   openStatuses,
	})
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	// ordered by due date, oldest first
	return open[len(open)-1], nil
}

// ApplyPaymentToAll settles open invoices oldest due first. Each invoice touched
// gets its own payment row; what is left is kept as an advance payment.
func (s *paymentService) ApplyPaymentToAll(ctx context.Context, req dto.PayAllRequest) (*dto.PayAllResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	settlement, err := req.Settlement(s.today())
	if err != nil {
		return nil, err
	}

	var resp *dto.PayAllResponse
	var sub *subscription.Subscription
	err = s.retryOnVersionConflict(ctx, "pay_all", func() error {
		return s.DB.WithTx(ctx, func(ctx context.Context) error {
			got, err := s.SubRepo.Get(ctx, req.SubscriptionID)
			if err != nil {
				return err
			}
			sub = got

			previous := sub.Balance
			newBalance := previous.Sub(req.Amount)
			if err := s.SubRepo.UpdateBalance(ctx, sub, newBalance); err != nil {
				return err
			}

			open, err := s.InvoiceRepo.List(ctx, &types.InvoiceFilter{
				SubscriptionIDs: []string{sub.ID},
				PaymentStatus:   openStatuses,
			})
			if err != nil {
				return err
			}

			resp = &dto.PayAllResponse{
				Success:         true,
				SubscriptionID:  sub.ID,
				PreviousBalance: previous,
				NewBalance:      newBalance,
				Allocations:     []dto.PaymentAllocation{},
				Unallocated:     decimal.Zero,
				Errors:          []string{},
			}

			remaining := req.Amount
			for _, inv := range open {
				if !remaining.IsPositive() {
					break
				}
				outstanding := inv.Outstanding()
				if !outstanding.IsPositive() {
					continue
				}
				share := decimal.Min(remaining, outstanding)

				p := s.newPayment(ctx, sub.ID, share, req.Mode, settlement,
					fmt.Sprintf("Payment for %s - %s", inv.FromDate.Format(types.DateLayout), inv.ToDate.Format(types.DateLayout)))
				p.InvoiceID = lo.ToPtr(inv.ID)
				if err := s.PaymentRepo.Create(ctx, p); err != nil {
					return err
				}

				inv.AmountPaid = inv.AmountPaid.Add(share)
				inv.PaymentStatus = DeterminePaymentStatus(inv.AmountPaid, inv.AmountDue)
				if err := s.InvoiceRepo.UpdatePayment(ctx, inv); err != nil {
					return err
				}

				resp.Allocations = append(resp.Allocations, dto.PaymentAllocation{
					PaymentID:     p.ID,
					InvoiceID:     inv.ID,
					Amount:        share,
					InvoiceStatus: inv.PaymentStatus,
				})
				remaining = remaining.Sub(share)
			}

			if remaining.IsPositive() {
				p := s.newPayment(ctx, sub.ID, remaining, req.Mode, settlement, "Advance payment")
				if err := s.PaymentRepo.Create(ctx, p); err != nil {
					return err
				}
				resp.Unallocated = remaining
				resp.UnallocatedPayment = lo.ToPtr(p.ID)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.PaymentApplied(req.Mode.String(), req.Amount.InexactFloat64())
	s.Logger.Infow("payment applied to all open invoices",
		"subscription_id", sub.ID,
		"amount", req.Amount,
		"invoices", len(resp.Allocations),
		"unallocated", resp.Unallocated,
		"new_balance", resp.NewBalance,
	)

	s.notifyPayment(ctx, sub, req.Amount, resp.NewBalance)
	return resp, nil
}

func (s *paymentService) newPayment(ctx context.Context, subscriptionID string, amount decimal.Decimal, mode types.PaymentMode, settlement time.Time, notes string) *payment.Payment {
	return &payment.Payment{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		SubscriptionID: subscriptionID,
		SettlementDate: settlement,
		Amount:         amount,
		Mode:           mode,
		Notes:          notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

func (s *paymentService) notifyPayment(ctx context.Context, sub *subscription.Subscription, amount, balance decimal.Decimal) {
	c, err := s.getCustomer(ctx, sub.CustomerID)
	if err != nil {
		s.Logger.Warnw("skipping payment notification, customer lookup failed",
			"subscription_id", sub.ID,
			"error", err,
		)
		return
	}
	s.notify(ctx, notification.KindPaymentReceived, sub.ID, c, notification.PaymentReceived(c.Name, amount, balance))
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(lo.Map(payments, func(p *payment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	})), nil
}
