package service

import (
	"context"

	"github.com/netcycle/netcycle/internal/domain/customer"
	"github.com/netcycle/netcycle/internal/notification"
)

// notify hands a message to the notification queue. Failures are logged and
// counted but never returned: billing state is already committed.
func (p ServiceParams) notify(ctx context.Context, kind notification.Kind, subscriptionID string, cust *customer.Customer, message string) {
	if p.Notifier == nil || cust == nil {
		return
	}

	err := p.Notifier.Enqueue(ctx, &notification.Notification{
		Kind:           kind,
		SubscriptionID: subscriptionID,
		PhoneNumber:    cust.PhoneNumber,
		Message:        message,
	})
	if err != nil {
		p.Metrics.Notification(kind.String(), false)
		p.Sentry.CaptureException(err)
		p.Logger.Warnw("failed to queue notification",
			"kind", kind,
			"subscription_id", subscriptionID,
			"error", err,
		)
	}
}
