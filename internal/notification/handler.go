package notification

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/netcycle/netcycle/internal/config"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"github.com/netcycle/netcycle/internal/pubsub"
	"github.com/netcycle/netcycle/internal/pubsub/router"
	"github.com/netcycle/netcycle/internal/sentry"
)

// Handler consumes queued notifications and delivers them through the gateway
type Handler struct {
	gateway Gateway
	logger  *logger.Logger
	sentry  *sentry.Service
	metrics *metrics.Collector
}

func NewHandler(gateway Gateway, logger *logger.Logger, sentry *sentry.Service, metrics *metrics.Collector) *Handler {
	return &Handler{
		gateway: gateway,
		logger:  logger,
		sentry:  sentry,
		metrics: metrics,
	}
}

// RegisterHandler subscribes the handler to the notification topic
func (h *Handler) RegisterHandler(r *router.Router, cfg *config.Configuration, subscriber pubsub.Subscriber) {
	r.AddNoPublishHandler(
		"notification_delivery_handler",
		cfg.Notification.Topic,
		subscriber,
		h.processMessage,
	)
	h.logger.Infow("registered notification handler", "topic", cfg.Notification.Topic)
}

func (h *Handler) processMessage(msg *message.Message) error {
	var n Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		h.metrics.Notification("unknown", false)
		return ierr.WithError(err).
			WithHint("Malformed notification payload").
			Mark(ierr.ErrValidation)
	}

	span, ctx := h.sentry.StartNotificationSpan(msg.Context(), n.Kind.String(), n.SubscriptionID)
	if span != nil {
		defer span.Finish()
	}

	if err := h.gateway.Send(ctx, n.PhoneNumber, n.Message); err != nil {
		h.metrics.Notification(n.Kind.String(), false)
		return err
	}

	h.metrics.Notification(n.Kind.String(), true)
	h.logger.Infow("notification delivered",
		"notification_id", n.ID,
		"kind", n.Kind,
		"subscription_id", n.SubscriptionID,
	)
	return nil
}
