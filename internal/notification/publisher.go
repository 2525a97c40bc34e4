package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/netcycle/netcycle/internal/config"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/pubsub"
	"github.com/netcycle/netcycle/internal/types"
)

// Publisher hands notifications off for asynchronous delivery. Enqueue must
// not wait for the gateway: a billing write never depends on an SMS going out.
type Publisher interface {
	Enqueue(ctx context.Context, n *Notification) error
}

// NewPublisher returns the queue publisher when notifications are enabled
// and a publisher that only logs otherwise
func NewPublisher(cfg *config.Configuration, ps pubsub.PubSub, logger *logger.Logger) Publisher {
	if !cfg.Notification.Enabled {
		return &NoopPublisher{logger: logger}
	}
	return NewQueuePublisher(ps, cfg.Notification.Topic, logger)
}

// QueuePublisher publishes notifications as JSON messages on a topic
type QueuePublisher struct {
	pubsub pubsub.Publisher
	topic  string
	logger *logger.Logger
}

func NewQueuePublisher(ps pubsub.Publisher, topic string, logger *logger.Logger) *QueuePublisher {
	return &QueuePublisher{
		pubsub: ps,
		topic:  topic,
		logger: logger,
	}
}

func (p *QueuePublisher) Enqueue(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not encode the notification").
			Mark(ierr.ErrNotification)
	}

	msg := message.NewMessage(n.ID, payload)
	msg.Metadata.Set("kind", n.Kind.String())
	msg.Metadata.Set("subscription_id", n.SubscriptionID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		middleware.SetCorrelationID(requestID, msg)
	}

	if err := p.pubsub.Publish(ctx, p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Could not queue the notification").
			WithReportableDetails(map[string]any{
				"kind":            n.Kind,
				"subscription_id": n.SubscriptionID,
			}).
			Mark(ierr.ErrNotification)
	}

	p.logger.Debugw("notification queued",
		"notification_id", n.ID,
		"kind", n.Kind,
		"subscription_id", n.SubscriptionID,
	)
	return nil
}

// NoopPublisher drops notifications, used when delivery is disabled
type NoopPublisher struct {
	logger *logger.Logger
}

func NewNoopPublisher(logger *logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Enqueue(ctx context.Context, n *Notification) error {
	p.logger.Debugw("notifications disabled, dropping",
		"kind", n.Kind,
		"subscription_id", n.SubscriptionID,
	)
	return nil
}
