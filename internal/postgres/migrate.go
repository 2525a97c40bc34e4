package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/samber/lo"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded schema file, applied once and in name order
type Migration struct {
	Version string
	SQL     string
}

// Migrations lists the embedded migrations sorted by version
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql"),
			SQL:     string(body),
		})
	}
	return migrations, nil
}

// Pending returns the migrations not yet recorded in schema_migrations
func (db *DB) Pending(ctx context.Context) ([]Migration, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not prepare the migrations table").
			Mark(ierr.ErrDatabase)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not read applied migrations").
			Mark(ierr.ErrDatabase)
	}

	all, err := Migrations()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not load migrations").
			Mark(ierr.ErrDatabase)
	}
	return lo.Filter(all, func(m Migration, _ int) bool {
		return !lo.Contains(applied, m.Version)
	}), nil
}

// Migrate applies every pending migration, each in its own transaction
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	pending, err := db.Pending(ctx)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(pending))
	for _, m := range pending {
		db.logger.Infow("applying migration", "version", m.Version)

		txCtx, tx, err := db.BeginTx(ctx)
		if err != nil {
			return applied, ierr.WithError(err).
				WithHintf("Could not apply migration %s", m.Version).
				Mark(ierr.ErrDatabase)
		}
		if _, err := tx.ExecContext(txCtx, m.SQL); err != nil {
			_ = db.RollbackTx(txCtx)
			return applied, ierr.WithError(err).
				WithHintf("Migration %s failed", m.Version).
				Mark(ierr.ErrDatabase)
		}
		if _, err := tx.ExecContext(txCtx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			_ = db.RollbackTx(txCtx)
			return applied, ierr.WithError(err).
				WithHintf("Could not record migration %s", m.Version).
				Mark(ierr.ErrDatabase)
		}
		if err := db.CommitTx(txCtx); err != nil {
			return applied, ierr.WithError(err).
				WithHintf("Could not commit migration %s", m.Version).
				Mark(ierr.ErrDatabase)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}
