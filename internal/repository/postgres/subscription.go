package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/netcycle/netcycle/internal/domain/subscription"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

const subscriptionColumns = `id, customer_id, plan_id, business_unit_id, install_date, billing_cycle, balance, active,
	referral_credit_applied, version, status, created_at, updated_at, created_by, updated_by`

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub.Version == 0 {
		sub.Version = 1
	}

	query := `
		INSERT INTO subscriptions (
			id,
			customer_id,
			plan_id,
			business_unit_id,
			install_date,
			billing_cycle,
			balance,
			active,
			referral_credit_applied,
			version,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:customer_id,
			:plan_id,
			:business_unit_id,
			:install_date,
			:billing_cycle,
			:balance,
			:active,
			:referral_credit_applied,
			:version,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"business_unit_id", sub.BusinessUnitID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub); err != nil {
		r.logger.Errorw("failed to create subscription", "subscription_id", sub.ID, "error", err)
		return mapWriteError(err, "Subscription")
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, id); err != nil {
		return nil, mapGetError(err, "Subscription", id)
	}
	return &sub, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	q := newSelect("subscriptions", subscriptionColumns).OrderBy("install_date, id")
	if filter != nil {
		if len(filter.SubscriptionIDs) > 0 {
			q.Where("id IN (?)", filter.SubscriptionIDs)
		}
		if len(filter.CustomerIDs) > 0 {
			q.Where("customer_id IN (?)", filter.CustomerIDs)
		}
		if filter.BusinessUnitID != "" {
			q.Where("business_unit_id = ?", filter.BusinessUnitID)
		}
		if filter.ActiveOnly {
			q.Where("active = ?", true)
		}
	}

	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	var subs []*subscription.Subscription
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, mapListError(err, "subscriptions")
	}
	return subs, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			plan_id = $1,
			active = $2,
			referral_credit_applied = $3,
			balance = $4,
			updated_at = $5,
			updated_by = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		sub.PlanID,
		sub.Active,
		sub.ReferralCreditApplied,
		sub.Balance,
		time.Now().UTC(),
		types.GetUserID(ctx),
		sub.ID,
		sub.Version,
	)
	if err := r.checkVersioned(ctx, res, err, sub, "update"); err != nil {
		return err
	}

	sub.Version++
	return nil
}

func (r *subscriptionRepository) UpdateBalance(ctx context.Context, sub *subscription.Subscription, balance decimal.Decimal) error {
	query := `
		UPDATE subscriptions SET
			balance = $1,
			updated_at = $2,
			updated_by = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		balance,
		time.Now().UTC(),
		types.GetUserID(ctx),
		sub.ID,
		sub.Version,
	)
	if err := r.checkVersioned(ctx, res, err, sub, "update_balance"); err != nil {
		return err
	}

	sub.Version++
	sub.Balance = balance
	return nil
}

// checkVersioned tells a missing row apart from a stale version when a guarded update touched nothing
func (r *subscriptionRepository) checkVersioned(ctx context.Context, res sql.Result, execErr error, sub *subscription.Subscription, op string) error {
	if execErr != nil {
		r.logger.Errorw("failed to update subscription", "subscription_id", sub.ID, "operation", op, "error", execErr)
		return ierr.WithError(execErr).
			WithHint("Could not update subscription").
			Mark(ierr.ErrDatabase)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not update subscription").
			Mark(ierr.ErrDatabase)
	}
	if ok {
		return nil
	}

	var exists bool
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1)`, sub.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Could not update subscription").
			Mark(ierr.ErrDatabase)
	}
	if !exists {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription %s not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}

	r.logger.Warnw("subscription version conflict",
		"subscription_id", sub.ID,
		"operation", op,
		"expected_version", sub.Version,
	)
	return ierr.NewError("subscription was modified concurrently").
		WithHint("The subscription changed while this request was running, please retry").
		WithReportableDetails(map[string]any{
			"subscription_id": sub.ID,
			"version":         sub.Version,
		}).
		Mark(ierr.ErrVersionConflict)
}
