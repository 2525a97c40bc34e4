package postgres

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/domain/planchange"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
	"github.com/netcycle/netcycle/internal/types"
)

const planChangeColumns = `id, subscription_id, old_plan_id, new_plan_id, old_fee, new_fee, change_date,
	prorated_amount, prorated_days, period_start, period_end, invoice_id, processed,
	status, created_at, updated_at, created_by, updated_by`

type planChangeRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanChangeRepository(db *postgres.DB, logger *logger.Logger) planchange.Repository {
	return &planChangeRepository{db: db, logger: logger}
}

func (r *planChangeRepository) Create(ctx context.Context, change *planchange.PlanChange) error {
	query := `
		INSERT INTO plan_changes (
			id,
			subscription_id,
			old_plan_id,
			new_plan_id,
			old_fee,
			new_fee,
			change_date,
			prorated_amount,
			prorated_days,
			period_start,
			period_end,
			invoice_id,
			processed,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:subscription_id,
			:old_plan_id,
			:new_plan_id,
			:old_fee,
			:new_fee,
			:change_date,
			:prorated_amount,
			:prorated_days,
			:period_start,
			:period_end,
			:invoice_id,
			:processed,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("recording plan change",
		"plan_change_id", change.ID,
		"subscription_id", change.SubscriptionID,
		"old_plan_id", change.OldPlanID,
		"new_plan_id", change.NewPlanID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, change); err != nil {
		r.logger.Errorw("failed to record plan change", "plan_change_id", change.ID, "error", err)
		return mapWriteError(err, "Plan change")
	}
	return nil
}

func (r *planChangeRepository) Get(ctx context.Context, id string) (*planchange.PlanChange, error) {
	query := `SELECT ` + planChangeColumns + ` FROM plan_changes WHERE id = $1`

	var change planchange.PlanChange
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &change, query, id); err != nil {
		return nil, mapGetError(err, "Plan change", id)
	}
	return &change, nil
}

func (r *planChangeRepository) List(ctx context.Context, filter *types.PlanChangeFilter) ([]*planchange.PlanChange, error) {
	q := newSelect("plan_changes", planChangeColumns).OrderBy("change_date, created_at, id")
	if filter != nil {
		if len(filter.SubscriptionIDs) > 0 {
			q.Where("subscription_id IN (?)", filter.SubscriptionIDs)
		}
		if filter.Processed != nil {
			q.Where("processed = ?", *filter.Processed)
		}
	}

	query, args, err := q.Build()
	if err != nil {
		return nil, err
	}

	var changes []*planchange.PlanChange
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &changes, query, args...); err != nil {
		return nil, mapListError(err, "plan changes")
	}
	return changes, nil
}

func (r *planChangeRepository) MarkProcessed(ctx context.Context, id string, invoiceID string) error {
	query := `
		UPDATE plan_changes SET
			processed = TRUE,
			invoice_id = $1,
			updated_at = $2,
			updated_by = $3
		WHERE id = $4
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, invoiceID, time.Now().UTC(), types.GetUserID(ctx), id)
	if err != nil {
		r.logger.Errorw("failed to mark plan change processed", "plan_change_id", id, "error", err)
		return ierr.WithError(err).
			WithHint("Could not update plan change").
			Mark(ierr.ErrDatabase)
	}

	ok, err := affectedOne(res)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not update plan change").
			Mark(ierr.ErrDatabase)
	}
	if !ok {
		return ierr.NewError("plan change not found").
			WithHintf("Plan change %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
