package config

import (
	"testing"

	"github.com/netcycle/netcycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Billing.Validate())

	assert.Equal(t, 300.0, cfg.Billing.ReferralDiscount)
	assert.Equal(t, 8, cfg.Billing.TimezoneOffsetHours)
	assert.Len(t, cfg.Billing.Profiles, 3)
	assert.Equal(t, types.BillingCycleFullMonth, cfg.Billing.Profiles[ProfileAnnex].PeriodType)
	assert.Equal(t, 10, cfg.Notification.BatchSize)
}

func TestBillingConfigRejectsUnknownProfile(t *testing.T) {
	cfg := DefaultBillingConfig()
	cfg.BusinessUnits = append(cfg.BusinessUnits, BusinessUnitMatch{Match: "north", Profile: "missing"})

	assert.Error(t, cfg.Validate())
}

func TestBillingConfigRejectsUnknownDefault(t *testing.T) {
	cfg := DefaultBillingConfig()
	cfg.DefaultProfile = "nope"

	assert.Error(t, cfg.Validate())
}

func TestBillingConfigRejectsBadPeriodType(t *testing.T) {
	cfg := DefaultBillingConfig()
	p := cfg.Profiles[ProfileMain]
	p.PeriodType = "weekly"
	cfg.Profiles[ProfileMain] = p

	assert.Error(t, cfg.Validate())
}
