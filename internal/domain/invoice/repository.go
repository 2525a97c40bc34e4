package invoice

import (
	"context"

	"github.com/netcycle/netcycle/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// There is no Delete: invoices are kept forever.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// CreateBulk inserts invoices in one statement batch
	CreateBulk(ctx context.Context, invoices []*Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// UpdatePayment persists payment_status and amount_paid
	UpdatePayment(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices ordered by due date, oldest first
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
}
