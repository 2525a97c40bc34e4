package postgres

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
)

const customerColumns = `id, name, phone_number, referred_by, status, created_at, updated_at, created_by, updated_by`

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id,
			name,
			phone_number,
			referred_by,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:name,
			:phone_number,
			:referred_by,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating customer", "customer_id", c.ID)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c); err != nil {
		r.logger.Errorw("failed to create customer", "customer_id", c.ID, "error", err)
		return mapWriteError(err, "Customer")
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c customer.Customer
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, id); err != nil {
		return nil, mapGetError(err, "Customer", id)
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, ids []string) ([]*customer.Customer, error) {
	if len(ids) == 0 {
		return []*customer.Customer{}, nil
	}

	query, args, err := newSelect("customers", customerColumns).
		Where("id IN (?)", ids).
		OrderBy("id").
		Build()
	if err != nil {
		return nil, err
	}

	var customers []*customer.Customer
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, mapListError(err, "customers")
	}
	return customers, nil
}
