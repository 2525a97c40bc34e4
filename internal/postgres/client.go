package postgres

import (
	"context"

	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"go.uber.org/fx"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls become savepoints.
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// Client runs units of work against DB
type Client struct {
	db     *DB
	logger *logger.Logger
}

// Module provides the connection pool and the monitored transaction client
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
			NewSentryClient,
		),
	)
}

// NewClient creates a new client with transaction management
func NewClient(db *DB, logger *logger.Logger) *Client {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	txCtx, tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not start a database transaction").
			Mark(ierr.ErrDatabase)
	}

	defer func() {
		if v := recover(); v != nil {
			c.logger.Errorw("rolling back transaction due to panic",
				"tx_id", tx.ID,
				"panic", v,
			)
			_ = c.db.RollbackTx(txCtx)
			panic(v)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rerr := c.db.RollbackTx(txCtx); rerr != nil {
			c.logger.Errorw("failed to roll back transaction",
				"tx_id", tx.ID,
				"error", rerr,
				"original_error", err,
			)
		}
		return err
	}

	if err := c.db.CommitTx(txCtx); err != nil {
		c.logger.Errorw("committing transaction", "tx_id", tx.ID, "error", err)
		return ierr.WithError(err).
			WithHint("Could not save changes").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
