package notification

import (
	"time"
)

// Kind is the template a notification was rendered from
type Kind string

const (
	KindInvoiceGenerated     Kind = "invoice_generated"
	KindDueReminder          Kind = "due_reminder"
	KindDisconnectionWarning Kind = "disconnection_warning"
	KindPaymentReceived      Kind = "payment_received"
	KindWelcome              Kind = "welcome"
)

func (k Kind) String() string {
	return string(k)
}

// Notification is one queued customer message. It is handed off after the
// billing write commits and delivered by the queue handler.
type Notification struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	SubscriptionID string    `json:"subscription_id"`
	PhoneNumber    string    `json:"phone_number"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Message is one entry of a bulk send
type Message struct {
	SubscriptionID string
	PhoneNumber    string
	Body           string
}

// BulkResult aggregates a bulk send
type BulkResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}
