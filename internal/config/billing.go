package config

import (
	"fmt"

	"github.com/netcycle/netcycle/internal/types"
)

// BillingConfig holds the billing engine settings and the schedule profile table
type BillingConfig struct {
	// ReferralDiscount is the one-time discount on a referred customer's first invoice
	ReferralDiscount float64 `mapstructure:"referral_discount" validate:"gte=0"`
	// TimezoneOffsetHours is the fixed UTC offset the scheduler evaluates "today" in
	TimezoneOffsetHours int `mapstructure:"timezone_offset_hours" validate:"gte=-12,lte=14"`
	// WorkerCount bounds the per-subscription fan-out of a generation pass
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
	// WarningLeadDays is how many days before disconnection the warning goes out
	WarningLeadDays int `mapstructure:"warning_lead_days" validate:"gte=0"`
	// DefaultProfile is used when no business unit match applies
	DefaultProfile string                   `mapstructure:"default_profile" validate:"required"`
	Profiles       map[string]ProfileConfig `mapstructure:"profiles" validate:"required,min=1,dive"`
	BusinessUnits  []BusinessUnitMatch      `mapstructure:"business_units" validate:"dive"`
}

// ProfileConfig is the raw form of a billing schedule profile
type ProfileConfig struct {
	InvoiceGenerationDay     int                `mapstructure:"invoice_generation_day" validate:"gte=1,lte=31"`
	DueDay                   int                `mapstructure:"due_day" validate:"gte=1,lte=31"`
	DisconnectionDay         int                `mapstructure:"disconnection_day" validate:"gte=1,lte=31"`
	DisconnectionIsNextMonth bool               `mapstructure:"disconnection_is_next_month"`
	PeriodType               types.BillingCycle `mapstructure:"period_type" validate:"required"`
}

// BusinessUnitMatch maps a case-insensitive substring of a business unit name to a profile
type BusinessUnitMatch struct {
	Match   string `mapstructure:"match" validate:"required"`
	Profile string `mapstructure:"profile" validate:"required"`
}

const (
	ProfileMain      = "main"
	ProfileExtension = "extension"
	ProfileAnnex     = "annex"
)

// DefaultBillingConfig returns the three built-in schedule profiles
func DefaultBillingConfig() BillingConfig {
	midMonth := ProfileConfig{
		InvoiceGenerationDay: 10,
		DueDay:               15,
		DisconnectionDay:     20,
		PeriodType:           types.BillingCycleMidMonth,
	}
	return BillingConfig{
		ReferralDiscount:    300,
		TimezoneOffsetHours: 8,
		WorkerCount:         8,
		WarningLeadDays:     1,
		DefaultProfile:      ProfileMain,
		Profiles: map[string]ProfileConfig{
			ProfileMain:      midMonth,
			ProfileExtension: midMonth,
			ProfileAnnex: {
				InvoiceGenerationDay:     25,
				DueDay:                   30,
				DisconnectionDay:         5,
				DisconnectionIsNextMonth: true,
				PeriodType:               types.BillingCycleFullMonth,
			},
		},
		BusinessUnits: []BusinessUnitMatch{
			{Match: ProfileMain, Profile: ProfileMain},
			{Match: ProfileExtension, Profile: ProfileExtension},
			{Match: ProfileAnnex, Profile: ProfileAnnex},
		},
	}
}

// Validate checks the cross references the struct tags cannot express
func (c BillingConfig) Validate() error {
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		return fmt.Errorf("billing.default_profile %q is not a configured profile", c.DefaultProfile)
	}
	for name, p := range c.Profiles {
		if err := p.PeriodType.Validate(); err != nil {
			return fmt.Errorf("billing.profiles.%s: %w", name, err)
		}
	}
	for _, m := range c.BusinessUnits {
		if _, ok := c.Profiles[m.Profile]; !ok {
			return fmt.Errorf("billing.business_units match %q references unknown profile %q", m.Match, m.Profile)
		}
	}
	return nil
}
