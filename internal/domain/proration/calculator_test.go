package proration

import (
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return types.NewDate(y, m, day)
}

func TestProrate(t *testing.T) {
	fee := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		fee      decimal.Decimal
		start    time.Time
		end      time.Time
		wantDays int
		want     string
	}{
		{"ten_days", fee, d(2025, 3, 5), d(2025, 3, 15), 10, "333.33"},
		{"full_period", fee, d(2025, 2, 15), d(2025, 3, 15), 28, "933.33"},
		{"clamped_to_thirty", fee, d(2025, 1, 1), d(2025, 3, 1), 30, "1000"},
		{"end_before_start", fee, d(2025, 3, 15), d(2025, 3, 10), 0, "0"},
		{"same_day", fee, d(2025, 3, 15), d(2025, 3, 15), 0, "0"},
		{"partial_day_rounds_up", fee, d(2025, 3, 1), d(2025, 3, 2).Add(time.Hour), 2, "66.67"},
		{"fractional_fee", decimal.RequireFromString("1299.50"), d(2025, 4, 1), d(2025, 4, 8), 7, "303.22"},
		{"zero_fee", decimal.Zero, d(2025, 4, 1), d(2025, 4, 8), 7, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prorate(tt.fee, tt.start, tt.end)
			assert.Equal(t, tt.wantDays, got.Days)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Amount), "amount %s, want %s", got.Amount, tt.want)
		})
	}
}

func TestProrateDaysMatchesDailyRate(t *testing.T) {
	fees := []string{"0", "1", "499", "999.99", "1000", "1499", "2500.50"}
	for _, f := range fees {
		fee := decimal.RequireFromString(f)
		for days := -3; days <= 35; days++ {
			clamped := min(max(days, 0), 30)
			want := fee.Div(decimal.NewFromInt(30)).Mul(decimal.NewFromInt(int64(clamped))).Round(2)
			got := ProrateDays(fee, days)
			assert.Equal(t, clamped, got.Days)
			assert.True(t, want.Equal(got.Amount), "fee %s days %d: got %s want %s", f, days, got.Amount, want)
		}
	}
}

func TestDailyRate(t *testing.T) {
	assert.True(t, decimal.NewFromInt(50).Equal(DailyRate(decimal.NewFromInt(1500))))
	assert.True(t, DailyRate(decimal.Zero).IsZero())
}

func TestNeedsProrating(t *testing.T) {
	periodStart := d(2025, 2, 15)
	generation := d(2025, 3, 10)

	tests := []struct {
		name    string
		install time.Time
		want    bool
	}{
		{"installed_long_ago", d(2024, 6, 1), false},
		{"installed_within_thirty_days_of_generation", d(2025, 2, 12), true},
		{"installed_on_period_start", d(2025, 2, 15), true},
		{"installed_inside_period", d(2025, 3, 5), true},
		{"installed_exactly_thirty_days_before_generation", d(2025, 2, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsProrating(tt.install, generation, periodStart))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(d(2025, 3, 1), d(2025, 3, 1)))
	assert.Equal(t, 15, DaysBetween(d(2025, 3, 1), d(2025, 3, 15)))
	assert.Equal(t, 29, DaysBetween(d(2024, 2, 1), d(2024, 2, 29)))
	assert.Equal(t, 2, DaysBetween(d(2025, 3, 1), d(2025, 3, 1).Add(time.Hour)))
}

func TestSplitPlanChange(t *testing.T) {
	base := PlanChangeParams{
		OldFee:      decimal.NewFromInt(1500),
		NewFee:      decimal.NewFromInt(3000),
		ChangeDate:  d(2025, 3, 1),
		PeriodStart: d(2025, 2, 15),
		PeriodEnd:   d(2025, 3, 15),
	}

	t.Run("unpaid_period_bills_used_days", func(t *testing.T) {
		split := SplitPlanChange(base)
		assert.Equal(t, types.PlanChangeBranchUnpaid, split.Branch)
		// Feb 15 through Feb 28
		assert.Equal(t, 13, split.OldPlan.Days)
		assert.True(t, decimal.NewFromInt(650).Equal(split.OldPlan.Amount))
		assert.True(t, split.Adjustment.Equal(split.OldPlan.Amount))
		assert.Equal(t, 14, split.NewPlan.Days)
		assert.True(t, decimal.NewFromInt(1400).Equal(split.NewPlan.Amount))
		assert.True(t, decimal.NewFromInt(2050).Equal(split.Total))
		assert.False(t, split.IsCredit())
	})

	t.Run("paid_period_credits_unused_days", func(t *testing.T) {
		p := base
		p.PeriodPaid = true
		split := SplitPlanChange(p)
		assert.Equal(t, types.PlanChangeBranchPaid, split.Branch)
		assert.Equal(t, 14, split.OldPlan.Days)
		assert.True(t, decimal.NewFromInt(700).Equal(split.OldPlan.Amount))
		assert.True(t, decimal.NewFromInt(-700).Equal(split.Adjustment))
		assert.True(t, decimal.NewFromInt(700).Equal(split.Total))
		assert.True(t, split.IsCredit())
	})

	t.Run("install_inside_period_starts_old_days", func(t *testing.T) {
		p := base
		p.InstallDate = d(2025, 2, 20)
		split := SplitPlanChange(p)
		assert.Equal(t, types.PlanChangeBranchUnpaid, split.Branch)
		// Feb 20 through Feb 28
		assert.Equal(t, 8, split.OldPlan.Days)
		assert.True(t, decimal.NewFromInt(400).Equal(split.OldPlan.Amount))
	})

	t.Run("install_before_period_is_ignored", func(t *testing.T) {
		p := base
		p.InstallDate = d(2024, 6, 1)
		assert.Equal(t, 13, SplitPlanChange(p).OldPlan.Days)
	})

	t.Run("change_on_period_start_uses_no_old_days", func(t *testing.T) {
		p := base
		p.ChangeDate = base.PeriodStart
		split := SplitPlanChange(p)
		assert.Equal(t, 0, split.OldPlan.Days)
		assert.True(t, split.Adjustment.IsZero())
	})
}

func TestServiceStart(t *testing.T) {
	assert.Equal(t, d(2025, 2, 15), ServiceStart(d(2025, 2, 15), d(2024, 6, 1)))
	assert.Equal(t, d(2025, 3, 5), ServiceStart(d(2025, 2, 15), d(2025, 3, 5)))
	assert.Equal(t, d(2025, 2, 15), ServiceStart(d(2025, 2, 15), time.Time{}))
}
