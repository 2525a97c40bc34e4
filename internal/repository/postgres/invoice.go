package postgres

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/domain/invoice"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/types"
)

const invoiceColumns = `id, subscription_id, invoice_type, from_date, to_date, due_date, amount_due, amount_paid,
	payment_status, is_prorated, prorated_days, original_amount, discount_applied, credits_applied,
	status, created_at, updated_at, created_by, updated_by`

const insertInvoiceQuery = `
	INSERT INTO invoices (
		id,
		subscription_id,
		invoice_type,
		from_date,
		to_date,
		due_date,
		amount_due,
		amount_paid,
		payment_status,
		is_prorated,
		prorated_days,
		original_amount,
		discount_applied,
		credits_applied,
		status,
		created_at,
		updated_at,
		created_by,
		updated_by
	)
	VALUES (
		:id,
		:subscription_id,
		:invoice_type,
		:from_date,
		:to_date,
		:due_date,
		:amount_due,
		:amount_paid,
		:payment_status,
		:is_prorated,
		:prorated_days,
		:original_amount,
		:discount_applied,
		:credits_applied,
		:status,
		:created_at,
		:updated_at,
		:created_by,
		:updated_by
	)
`

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"subscription_id", inv.SubscriptionID,
		"invoice_type", inv.InvoiceType,
		"amount_due", inv.AmountDue,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertInvoiceQuery, inv); err != nil {
		r.logger.Errorw("failed to create invoice", "invoice_id", inv.ID, "error", err)
		return mapWriteError(err, "Invoice")
	}
	return nil
}

// CreateBulk inserts row by row on the caller's querier, so a surrounding
// transaction makes the batch all or nothing.
func (r *invoiceRepository) CreateBulk(ctx context.Context, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	r.logger.Debugw("creating invoices in bulk", "count", len(invoices))

	q := r.db.GetQuerier(ctx)
	for _, inv := range invoices {
		if _, err := q.NamedExecContext(ctx, insertInvoiceQuery, inv); err != nil {
			r.logger.Errorw("failed to create invoice in bulk",
				"invoice_id", inv.ID,
				"subscription_id", inv.SubscriptionID,
				"error", err,
			)
			return mapWriteError(err, "Invoice")
		}
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv invoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id); err != nil {
		return nil, mapGetError(err, "Invoice", id)
	}
	return &inv, nil
}

func (r *invoiceRepository) UpdatePayment(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices SET
			amount_paid = $1,
			payment_status = $2,
			updated_at = $3,
			updated_by = $4
		WHERE id = $5
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.AmountPaid,
		inv.PaymentStatus,
		time.Now().UTC(),
		types.GetUserID(ctx),
		inv.ID,
	)
	if err != nil {
		r.logger.Errorw("failed to update invoice payment", "invoice_id", inv.ID, "error", err)
		return ierr.WithError(err).
			WithHint("Could not update invoice").
			Mark(ierr.ErrDatabase)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not update invoice").
			Mark(ierr.ErrDatabase)
	}
	if !ok {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	q := newSelect("invoices", invoiceColumns).OrderBy("due_date, created_at, id")
	if filter != nil {
		if len(filter.SubscriptionIDs) > 0 {
			q.Where("subscription_id IN (?)", filter.SubscriptionIDs)
		}
		if len(filter.InvoiceTypes) > 0 {
			q.Where("invoice_type IN (?)", filter.InvoiceTypes)
		}
		if len(filter.PaymentStatus) > 0 {
			q.Where("payment_status IN (?)", filter.PaymentStatus)
		}
		if filter.DueDateFrom != nil {
			q.Where("due_date >= ?", *filter.DueDateFrom)
		}
		if filter.DueDateTo != nil {
			q.Where("due_date <= ?", *filter.DueDateTo)
		}
	}

	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, mapListError(err, "invoices")
	}
	return invoices, nil
}
