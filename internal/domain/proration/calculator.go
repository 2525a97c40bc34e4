package proration

import (
	"math"
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed divisor of the daily rate, whatever the calendar month length
const DaysPerMonth = 30

const day = 24 * time.Hour

var daysPerMonth = decimal.NewFromInt(DaysPerMonth)

// DailyRate returns fee / 30
func DailyRate(fee decimal.Decimal) decimal.Decimal {
	return fee.Div(daysPerMonth)
}

// Prorate charges fee for the days between start and end. Days are
// ceil(end - start) clamped to [0, 30] and the amount is rounded to cents.
func Prorate(fee decimal.Decimal, start, end time.Time) Result {
	return ProrateDays(fee, ceilDays(end.Sub(start)))
}

// ProrateDays charges fee for a day count, clamped to [0, 30]
func ProrateDays(fee decimal.Decimal, days int) Result {
	days = min(max(days, 0), DaysPerMonth)
	return Result{
		// fee * days / 30 keeps full-period charges exact
		Amount:    fee.Mul(decimal.NewFromInt(int64(days))).Div(daysPerMonth).Round(2),
		Days:      days,
		DailyRate: DailyRate(fee),
	}
}

// NeedsProrating reports whether a first invoice should be prorated: the
// install happened inside the period or less than 30 days before generation.
func NeedsProrating(installDate, generationDate, periodStart time.Time) bool {
	return installDate.After(periodStart) || installDate.After(generationDate.AddDate(0, 0, -DaysPerMonth))
}

// ServiceStart is the later of the period start and the install date
func ServiceStart(periodStart, installDate time.Time) time.Time {
	installDate = types.DateOnly(installDate)
	if installDate.After(periodStart) {
		return installDate
	}
	return periodStart
}

// DaysBetween counts the days from a to b with both ends included
func DaysBetween(a, b time.Time) int {
	return ceilDays(b.Sub(a)) + 1
}

// SplitPlanChange computes both sides of a plan change. On a paid period the
// old plan's unused remainder is returned as credit. On an unpaid period the
// days used on the old plan up to the day before the change are charged.
// The new plan's remainder is always computed so previews can show it.
func SplitPlanChange(p PlanChangeParams) PlanChangeSplit {
	changeDate := types.DateOnly(p.ChangeDate)
	split := PlanChangeSplit{
		NewPlan: Prorate(p.NewFee, changeDate, p.PeriodEnd),
	}

	if p.PeriodPaid {
		split.Branch = types.PlanChangeBranchPaid
		split.OldPlan = Prorate(p.OldFee, changeDate, p.PeriodEnd)
		split.Adjustment = split.OldPlan.Amount.Neg()
	} else {
		split.Branch = types.PlanChangeBranchUnpaid
		split.OldPlan = Prorate(p.OldFee, ServiceStart(p.PeriodStart, p.InstallDate), changeDate.AddDate(0, 0, -1))
		split.Adjustment = split.OldPlan.Amount
	}

	split.Total = split.Adjustment.Add(split.NewPlan.Amount)
	return split
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}
