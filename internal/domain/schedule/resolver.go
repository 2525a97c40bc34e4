package schedule

import (
	"strconv"
	"time"

	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/types"
)

// Dates are the concrete calendar dates of one billing month
type Dates struct {
	Profile       Profile   `json:"profile"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Due           time.Time `json:"due"`
	Disconnection time.Time `json:"disconnection"`
	Generation    time.Time `json:"generation"`
}

// Resolver maps business units to profiles and profiles to dates
type Resolver struct {
	table           *Table
	location        *time.Location
	warningLeadDays int
}

// NewResolver creates a resolver over an immutable table. now values given to
// GetTodaysTasks are evaluated in loc.
func NewResolver(table *Table, loc *time.Location, warningLeadDays int) *Resolver {
	if loc == nil {
		loc = FixedZone(8)
	}
	return &Resolver{
		table:           table,
		location:        loc,
		warningLeadDays: warningLeadDays,
	}
}

// NewResolverFromConfig builds the table and the resolver from billing config
func NewResolverFromConfig(cfg *config.Configuration) (*Resolver, error) {
	table, err := NewTable(cfg.Billing)
	if err != nil {
		return nil, err
	}
	return NewResolver(table, FixedZone(cfg.Billing.TimezoneOffsetHours), cfg.Billing.WarningLeadDays), nil
}

// DefaultResolver uses the built-in table and UTC+8
func DefaultResolver() *Resolver {
	cfg := config.DefaultBillingConfig()
	return NewResolver(DefaultTable(), FixedZone(cfg.TimezoneOffsetHours), cfg.WarningLeadDays)
}

// FixedZone returns a fixed offset zone named like UTC+8
func FixedZone(offsetHours int) *time.Location {
	name := "UTC"
	if offsetHours >= 0 {
		name += "+"
	}
	return time.FixedZone(name+strconv.Itoa(offsetHours), offsetHours*3600)
}

// Table exposes the resolver's profile table
func (r *Resolver) Table() *Table {
	return r.table
}

// Location is the zone the scheduler evaluates days in
func (r *Resolver) Location() *time.Location {
	return r.location
}

// ResolveProfile maps a business unit name, with an optional 15th/30th override, to its profile
func (r *Resolver) ResolveProfile(unitName string, override types.BillingCycle) Profile {
	return r.table.resolve(unitName, override)
}

// ResolveSubscription picks the profile one subscription bills on. A unit
// override wins, then the subscription's own cycle, then the unit name match.
// Units like "extension" hold subscribers on both cycles.
func (r *Resolver) ResolveSubscription(unitName string, unitOverride, subCycle types.BillingCycle) Profile {
	return r.table.resolve(unitName, EffectiveCycle(unitOverride, subCycle))
}

// EffectiveCycle returns the first non-empty cycle
func EffectiveCycle(cycles ...types.BillingCycle) types.BillingCycle {
	for _, c := range cycles {
		if c != "" {
			return c
		}
	}
	return ""
}

// BillingDates returns the dates of the billing month (year, month) for a business unit
func (r *Resolver) BillingDates(unitName string, year int, month time.Month, override types.BillingCycle) Dates {
	return DatesFor(r.ResolveProfile(unitName, override), year, month)
}

// DatesFor computes the billing dates of one month for a profile
func DatesFor(p Profile, year int, month time.Month) Dates {
	last := LastDayOfMonth(year, month)
	d := Dates{Profile: p}

	if p.IsMidMonth() {
		d.From = types.NewDate(year, month-1, 15)
		d.To = types.NewDate(year, month, 15)
	} else {
		d.From = types.NewDate(year, month, 1)
		d.To = types.NewDate(year, month, last)
	}

	d.Due = types.NewDate(year, month, min(p.DueDay, last))
	d.Generation = types.NewDate(year, month, min(p.InvoiceGenerationDay, last))

	discYear, discMonth := year, month
	if p.DisconnectionIsNextMonth {
		next := types.NewDate(year, month+1, 1)
		discYear, discMonth = next.Year(), next.Month()
	}
	d.Disconnection = types.NewDate(discYear, discMonth, min(p.DisconnectionDay, LastDayOfMonth(discYear, discMonth)))

	return d
}

// PeriodContaining returns the billing month whose period contains date.
// On the mid-month cycle a date up to and including the 15th belongs to the
// period ending that 15th.
func PeriodContaining(p Profile, date time.Time) (int, time.Month) {
	date = types.DateOnly(date)
	if p.IsMidMonth() && date.Day() > 15 {
		next := types.NewDate(date.Year(), date.Month()+1, 1)
		return next.Year(), next.Month()
	}
	return date.Year(), date.Month()
}

// NextBoundary returns the next natural billing boundary after date: the 15th on
// the mid-month cycle, the 30th (clamped to the month end) on the full-month
// cycle. A date already on or past the boundary day rolls to the next month.
func NextBoundary(p Profile, date time.Time) time.Time {
	date = types.DateOnly(date)
	boundary := boundaryIn(p, date.Year(), date.Month())
	if !date.Before(boundary) {
		next := types.NewDate(date.Year(), date.Month()+1, 1)
		boundary = boundaryIn(p, next.Year(), next.Month())
	}
	return boundary
}

func boundaryIn(p Profile, year int, month time.Month) time.Time {
	if p.IsMidMonth() {
		return types.NewDate(year, month, 15)
	}
	return types.NewDate(year, month, min(30, LastDayOfMonth(year, month)))
}

// LastDayOfMonth returns the number of days in month, leap years included
func LastDayOfMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
