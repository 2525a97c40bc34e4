package notification

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateFormat = "Jan 2, 2006"

func peso(amount decimal.Decimal) string {
	return "PHP " + amount.StringFixed(2)
}

// InvoiceGenerated tells the customer a new bill is out
func InvoiceGenerated(name string, amount decimal.Decimal, due time.Time) string {
	return fmt.Sprintf("Hi %s, your internet bill of %s is now available. Please pay on or before %s. Thank you!",
		name, peso(amount), due.Format(dateFormat))
}

// DueReminder is sent on the due date to customers with an outstanding balance
func DueReminder(name string, balance decimal.Decimal, due time.Time) string {
	return fmt.Sprintf("Hi %s, this is a reminder that your balance of %s is due today, %s.",
		name, peso(balance), due.Format(dateFormat))
}

// DisconnectionWarning is sent the day before disconnection
func DisconnectionWarning(name string, balance decimal.Decimal, disconnection time.Time) string {
	return fmt.Sprintf("Hi %s, your service will be disconnected on %s unless your balance of %s is settled.",
		name, disconnection.Format(dateFormat), peso(balance))
}

// PaymentReceived confirms a payment and shows the new balance
func PaymentReceived(name string, amount, balance decimal.Decimal) string {
	msg := fmt.Sprintf("Hi %s, we received your payment of %s.", name, peso(amount))
	if balance.IsNegative() {
		return msg + fmt.Sprintf(" You have a credit of %s.", peso(balance.Neg()))
	}
	return msg + fmt.Sprintf(" Remaining balance: %s.", peso(balance))
}

// Welcome greets a newly activated subscriber
func Welcome(name string, planName string) string {
	return fmt.Sprintf("Welcome to NetCycle, %s! Your %s plan is now active.", name, planName)
}
