package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	ierr "github.com/netcycle/netcycle/internal/errors"
)

const (
	versionRetryInitialInterval = 20 * time.Millisecond
	versionRetryMaxInterval     = 500 * time.Millisecond
	versionRetryMaxAttempts     = 5
)

// retryOnVersionConflict reruns fn while it fails with ErrVersionConflict.
// fn must re-read the rows it writes so every attempt sees the latest version.
func (p ServiceParams) retryOnVersionConflict(ctx context.Context, operation string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = versionRetryInitialInterval
	b.MaxInterval = versionRetryMaxInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !ierr.IsVersionConflict(err) {
			return backoff.Permanent(err)
		}

		p.Metrics.VersionConflict(operation)
		p.Logger.Warnw("version conflict, retrying",
			"operation", operation,
			"attempt", attempt,
			"error", err,
		)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, versionRetryMaxAttempts), ctx))
}
