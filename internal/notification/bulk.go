package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"golang.org/x/time/rate"
)

// BulkSender sends messages in fixed size batches with a pause between
// batches, continuing past individual failures
type BulkSender struct {
	gateway   Gateway
	batchSize int
	limiter   *rate.Limiter
	logger    *logger.Logger
	metrics   *metrics.Collector
}

func NewBulkSender(gateway Gateway, batchSize int, batchDelay time.Duration, logger *logger.Logger, metrics *metrics.Collector) *BulkSender {
	if batchSize <= 0 {
		batchSize = 10
	}
	limit := rate.Inf
	if batchDelay > 0 {
		limit = rate.Every(batchDelay)
	}
	return &BulkSender{
		gateway:   gateway,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
		metrics:   metrics,
	}
}

// NewBulkSenderFromConfig applies notification.batch_size and notification.batch_delay
func NewBulkSenderFromConfig(cfg *config.Configuration, gateway Gateway, logger *logger.Logger, metrics *metrics.Collector) *BulkSender {
	return NewBulkSender(gateway, cfg.Notification.BatchSize, cfg.Notification.BatchDelay, logger, metrics)
}

// SendBulk delivers msgs and reports aggregate counts. A cancelled context
// marks every unsent message as failed.
func (b *BulkSender) SendBulk(ctx context.Context, kind Kind, msgs []Message) BulkResult {
	result := BulkResult{}

	for start := 0; start < len(msgs); start += b.batchSize {
		end := min(start+b.batchSize, len(msgs))

		if err := b.limiter.Wait(ctx); err != nil {
			remaining := len(msgs) - start
			result.Failed += remaining
			result.Errors = append(result.Errors, fmt.Sprintf("bulk send stopped with %d messages unsent: %v", remaining, err))
			break
		}

		for _, m := range msgs[start:end] {
			if err := b.gateway.Send(ctx, m.PhoneNumber, m.Body); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("subscription %s: %v", m.SubscriptionID, err))
				b.metrics.Notification(kind.String(), false)
				b.logger.Warnw("bulk message failed",
					"kind", kind,
					"subscription_id", m.SubscriptionID,
					"error", err,
				)
				continue
			}
			result.Sent++
			b.metrics.Notification(kind.String(), true)
		}
	}

	b.logger.Infow("bulk send finished",
		"kind", kind,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result
}
