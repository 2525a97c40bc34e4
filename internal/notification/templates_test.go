package notification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTemplates(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		"Hi Ana, your internet bill of PHP 1500.00 is now available. Please pay on or before Mar 15, 2024. Thank you!",
		InvoiceGenerated("Ana", decimal.NewFromInt(1500), due),
	)
	assert.Contains(t, DueReminder("Ana", decimal.NewFromFloat(250.5), due), "PHP 250.50 is due today, Mar 15, 2024")
	assert.Contains(t, DisconnectionWarning("Ana", decimal.NewFromInt(900), due.AddDate(0, 0, 5)), "disconnected on Mar 20, 2024")
	assert.Contains(t, Welcome("Ana", "Fiber 50"), "Fiber 50 plan is now active")
}

func TestPaymentReceived(t *testing.T) {
	owing := PaymentReceived("Ben", decimal.NewFromInt(1000), decimal.NewFromInt(500))
	assert.Contains(t, owing, "payment of PHP 1000.00")
	assert.Contains(t, owing, "Remaining balance: PHP 500.00")

	credit := PaymentReceived("Ben", decimal.NewFromInt(2000), decimal.NewFromInt(-500))
	assert.Contains(t, credit, "You have a credit of PHP 500.00")
	assert.NotContains(t, credit, "Remaining balance")
}
