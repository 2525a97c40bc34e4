package schedule

import (
	"sort"
	"strings"

	"github.com/netcycle/netcycle/internal/config"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/types"
)

// Profile is the billing calendar of a group of business units
type Profile struct {
	Name                     string             `json:"name"`
	InvoiceGenerationDay     int                `json:"invoice_generation_day"`
	DueDay                   int                `json:"due_day"`
	DisconnectionDay         int                `json:"disconnection_day"`
	DisconnectionIsNextMonth bool               `json:"disconnection_is_next_month"`
	PeriodType               types.BillingCycle `json:"period_type"`
}

// IsMidMonth reports whether the profile bills 15th to 15th
func (p Profile) IsMidMonth() bool {
	return p.PeriodType == types.BillingCycleMidMonth
}

// Match maps a business unit name fragment to a profile name
type Match struct {
	Substring string
	Profile   string
}

// Table is the immutable schedule profile table. It is built once at startup
// and shared by every resolver.
type Table struct {
	profiles       map[string]Profile
	matches        []Match
	defaultProfile string
	// names keeps profile iteration deterministic
	names []string
}

// NewTable builds a table from billing configuration
func NewTable(cfg config.BillingConfig) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid billing schedule configuration").
			Mark(ierr.ErrValidation)
	}

	t := &Table{
		profiles:       make(map[string]Profile, len(cfg.Profiles)),
		matches:        make([]Match, 0, len(cfg.BusinessUnits)),
		defaultProfile: cfg.DefaultProfile,
	}
	for name, p := range cfg.Profiles {
		t.profiles[name] = Profile{
			Name:                     name,
			InvoiceGenerationDay:     p.InvoiceGenerationDay,
			DueDay:                   p.DueDay,
			DisconnectionDay:         p.DisconnectionDay,
			DisconnectionIsNextMonth: p.DisconnectionIsNextMonth,
			PeriodType:               p.PeriodType,
		}
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)

	for _, m := range cfg.BusinessUnits {
		t.matches = append(t.matches, Match{
			Substring: strings.ToLower(m.Match),
			Profile:   m.Profile,
		})
	}
	return t, nil
}

// DefaultTable returns the built-in three profile table
func DefaultTable() *Table {
	t, err := NewTable(config.DefaultBillingConfig())
	if err != nil {
		panic("default billing table is invalid: " + err.Error())
	}
	return t
}

// Profile returns a profile by name
func (t *Table) Profile(name string) (Profile, bool) {
	p, ok := t.profiles[name]
	return p, ok
}

// Profiles returns every profile ordered by name
func (t *Table) Profiles() []Profile {
	out := make([]Profile, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.profiles[name])
	}
	return out
}

// resolve picks the profile for a business unit name. The override forces a
// profile of the given cycle whatever the name matched.
func (t *Table) resolve(unitName string, override types.BillingCycle) Profile {
	matched := t.profiles[t.defaultProfile]
	lower := strings.ToLower(unitName)
	for _, m := range t.matches {
		if m.Substring != "" && strings.Contains(lower, m.Substring) {
			matched = t.profiles[m.Profile]
			break
		}
	}

	if override == "" || matched.PeriodType == override {
		return matched
	}
	return t.forCycle(override)
}

// forCycle returns the default profile when it follows the cycle, else the first
// profile by name that does
func (t *Table) forCycle(cycle types.BillingCycle) Profile {
	if p := t.profiles[t.defaultProfile]; p.PeriodType == cycle {
		return p
	}
	for _, name := range t.names {
		if p := t.profiles[name]; p.PeriodType == cycle {
			return p
		}
	}
	return t.profiles[t.defaultProfile]
}
