package postgres

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/payment"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/types"
)

const paymentColumns = `id, subscription_id, invoice_id, settlement_date, amount, mode, notes,
	status, created_at, updated_at, created_by, updated_by`

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id,
			subscription_id,
			invoice_id,
			settlement_date,
			amount,
			mode,
			notes,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:subscription_id,
			:invoice_id,
			:settlement_date,
			:amount,
			:mode,
			:notes,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("recording payment",
		"payment_id", p.ID,
		"subscription_id", p.SubscriptionID,
		"amount", p.Amount,
		"mode", p.Mode,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		r.logger.Errorw("failed to record payment", "payment_id", p.ID, "error", err)
		return mapWriteError(err, "Payment")
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p payment.Payment
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id); err != nil {
		return nil, mapGetError(err, "Payment", id)
	}
	return &p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	q := newSelect("payments", paymentColumns).OrderBy("settlement_date, created_at, id")
	if filter != nil {
		if len(filter.SubscriptionIDs) > 0 {
			q.Where("subscription_id IN (?)", filter.SubscriptionIDs)
		}
		if filter.InvoiceID != nil {
			q.Where("invoice_id = ?", *filter.InvoiceID)
		}
		if filter.SettledFrom != nil {
			q.Where("settlement_date >= ?", *filter.SettledFrom)
		}
		if filter.SettledTo != nil {
			q.Where("settlement_date <= ?", *filter.SettledTo)
		}
	}

	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	var payments []*payment.Payment
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, mapListError(err, "payments")
	}
	return payments, nil
}
