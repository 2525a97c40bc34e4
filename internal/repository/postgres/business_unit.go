package postgres

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/businessunit"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/postgres"
)

const businessUnitColumns = `id, name, billing_cycle_override, status, created_at, updated_at, created_by, updated_by`

type businessUnitRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBusinessUnitRepository(db *postgres.DB, logger *logger.Logger) businessunit.Repository {
	return &businessUnitRepository{db: db, logger: logger}
}

func (r *businessUnitRepository) Create(ctx context.Context, unit *businessunit.BusinessUnit) error {
	query := `
		INSERT INTO business_units (
			id,
			name,
			billing_cycle_override,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:name,
			:billing_cycle_override,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating business unit", "business_unit_id", unit.ID, "name", unit.Name)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, unit); err != nil {
		r.logger.Errorw("failed to create business unit", "business_unit_id", unit.ID, "error", err)
		return mapWriteError(err, "Business unit")
	}
	return nil
}

func (r *businessUnitRepository) Get(ctx context.Context, id string) (*businessunit.BusinessUnit, error) {
	query := `SELECT ` + businessUnitColumns + ` FROM business_units WHERE id = $1`

	var unit businessunit.BusinessUnit
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &unit, query, id); err != nil {
		return nil, mapGetError(err, "Business unit", id)
	}
	return &unit, nil
}

func (r *businessUnitRepository) List(ctx context.Context) ([]*businessunit.BusinessUnit, error) {
	query := `SELECT ` + businessUnitColumns + ` FROM business_units ORDER BY name, id`

	var units []*businessunit.BusinessUnit
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &units, query); err != nil {
		return nil, mapListError(err, "business units")
	}
	return units, nil
}
