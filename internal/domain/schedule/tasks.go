package schedule

import (
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/samber/lo"
)

// Tasks lists the billing cycles that need an action on a given day
type Tasks struct {
	// Today is the scheduler's calendar day in the billing timezone
	Today                           time.Time            `json:"today"`
	ShouldGenerateInvoices          []types.BillingCycle `json:"should_generate_invoices"`
	ShouldSendDueReminders          []types.BillingCycle `json:"should_send_due_reminders"`
	ShouldSendDisconnectionWarnings []types.BillingCycle `json:"should_send_disconnection_warnings"`
}

// IsEmpty reports whether nothing is scheduled
func (t Tasks) IsEmpty() bool {
	return len(t.ShouldGenerateInvoices) == 0 &&
		len(t.ShouldSendDueReminders) == 0 &&
		len(t.ShouldSendDisconnectionWarnings) == 0
}

// GetTodaysTasks converts now to the billing timezone and returns the actions
// due today. Days are matched exactly: a run skipped on its day does not fire
// later and has to be triggered manually for that date.
func (r *Resolver) GetTodaysTasks(now time.Time) Tasks {
	local := now.In(r.location)
	today := types.NewDate(local.Year(), local.Month(), local.Day())
	day := today.Day()
	last := LastDayOfMonth(today.Year(), today.Month())

	tasks := Tasks{
		Today:                           today,
		ShouldGenerateInvoices:          []types.BillingCycle{},
		ShouldSendDueReminders:          []types.BillingCycle{},
		ShouldSendDisconnectionWarnings: []types.BillingCycle{},
	}

	warnDay := today.AddDate(0, 0, r.warningLeadDays).Day()

	for _, p := range r.table.Profiles() {
		if day == p.InvoiceGenerationDay {
			tasks.ShouldGenerateInvoices = append(tasks.ShouldGenerateInvoices, p.PeriodType)
		}

		if day == p.DueDay || (dueFallsPastFebruary(p, today.Month(), last) && day == last) {
			tasks.ShouldSendDueReminders = append(tasks.ShouldSendDueReminders, p.PeriodType)
		}

		if warnDay == p.DisconnectionDay {
			tasks.ShouldSendDisconnectionWarnings = append(tasks.ShouldSendDisconnectionWarnings, p.PeriodType)
		}
	}

	tasks.ShouldGenerateInvoices = lo.Uniq(tasks.ShouldGenerateInvoices)
	tasks.ShouldSendDueReminders = lo.Uniq(tasks.ShouldSendDueReminders)
	tasks.ShouldSendDisconnectionWarnings = lo.Uniq(tasks.ShouldSendDisconnectionWarnings)
	return tasks
}

// dueFallsPastFebruary covers the 30th cycle in February, where the due day
// never occurs and the reminder goes out on the last day of the month instead
func dueFallsPastFebruary(p Profile, month time.Month, lastDay int) bool {
	return month == time.February && p.PeriodType == types.BillingCycleFullMonth && p.DueDay > lastDay
}
