// Package catalog builds the per-request constraint snapshot consumed
// by the preference validator and the schedule generator.
//
// The snapshot is read-only: it is constructed once from data already
// fetched for the tenant and passed by reference into both consumers,
// guaranteeing within-request consistency.
package catalog

import (
	"math"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// Criticality is the merged staffing effect of every critical period
// and recurring criticality active on a single date.
type Criticality struct {
	Multiplier        float64 `json:"moltiplicatore"`
	ExtraStaff        int     `json:"personale_extra"`
	MinStaff          int     `json:"personale_minimo"`
	BlocksPreferences bool    `json:"blocca_preferenze"`
	Sources           int     `json:"sources"` // matching entries
}

// IsActive reports whether any entry matched the date.
func (c Criticality) IsActive() bool {
	return c.Sources > 0
}

// ScaleHeadcount applies the criticality to a baseline headcount:
// multiplier rounds up, extra staff adds, and the result never drops
// below the criticality's own minimum staff.
func (c Criticality) ScaleHeadcount(base int) int {
	scaled := int(math.Ceil(float64(base) * c.Multiplier))
	scaled += c.ExtraStaff
	if scaled < c.MinStaff {
		scaled = c.MinStaff
	}
	if scaled < base {
		scaled = base
	}
	return scaled
}

// RestConstraint is the resolved rest/workload bound for one
// collaborator.
type RestConstraint struct {
	MinRestHours   float64 `json:"min_ore_riposo"`
	MaxWeeklyHours float64 `json:"max_ore_settimanali"`
}

// Snapshot is the tenant's constraint catalog frozen for one request.
type Snapshot struct {
	TenantID               uuid.UUID
	OpeningHours           *model.OpeningHours
	CriticalPeriods        []*model.CriticalPeriod
	RecurringCriticalities []*model.RecurringCriticality
	Config                 model.SchedulingConfig
}

// New builds a snapshot. A nil config means the tenant has no
// configuration row; the explicit defaults apply (the engine never
// fails open on missing configuration for rest-hour safety).
func New(
	tenantID uuid.UUID,
	hours *model.OpeningHours,
	periods []*model.CriticalPeriod,
	recurring []*model.RecurringCriticality,
	cfg *model.SchedulingConfig,
) *Snapshot {
	resolved := model.DefaultSchedulingConfig(tenantID)
	if cfg != nil {
		resolved = *cfg
		if resolved.MinRestHours <= 0 {
			resolved.MinRestHours = model.DefaultMinRestHours
		}
		if resolved.MaxWeeklyHours <= 0 {
			resolved.MaxWeeklyHours = model.DefaultMaxWeeklyHours
		}
	}
	return &Snapshot{
		TenantID:               tenantID,
		OpeningHours:           hours,
		CriticalPeriods:        periods,
		RecurringCriticalities: recurring,
		Config:                 resolved,
	}
}

// IsClosedDay reports whether the tenant is closed on the date. A
// fixed-schedule tenant is never closed; a variable-schedule tenant is
// closed only on weekdays explicitly flagged.
func (s *Snapshot) IsClosedDay(date string) bool {
	if s.OpeningHours == nil {
		return false
	}
	wd, err := model.Weekday(date)
	if err != nil {
		return false
	}
	return s.OpeningHours.IsClosed(wd)
}

// ActiveCriticalities merges every critical period containing the date
// and every recurring criticality matching its weekday. Multipliers
// combine multiplicatively, extra staff additively; blocca_preferenze
// is sticky across sources.
func (s *Snapshot) ActiveCriticalities(date string) Criticality {
	crit := Criticality{Multiplier: 1.0}

	for _, p := range s.CriticalPeriods {
		if !p.IsActive || !p.ContainsDate(date) {
			continue
		}
		if p.Multiplier > 0 {
			crit.Multiplier *= p.Multiplier
		}
		if p.MinStaff != nil && *p.MinStaff > crit.MinStaff {
			crit.MinStaff = *p.MinStaff
		}
		if p.BlocksPreferences {
			crit.BlocksPreferences = true
		}
		crit.Sources++
	}

	for _, r := range s.RecurringCriticalities {
		if !r.IsActive || !r.MatchesDate(date) {
			continue
		}
		if r.Multiplier > 0 {
			crit.Multiplier *= r.Multiplier
		}
		crit.ExtraStaff += r.ExtraStaff
		if r.BlocksPreferences {
			crit.BlocksPreferences = true
		}
		crit.Sources++
	}

	return crit
}

// RestConstraint resolves the rest/workload bound for a collaborator:
// tenant configuration with the collaborator's hours policy narrowing
// the weekly cap where it is stricter.
func (s *Snapshot) RestConstraint(c *model.Collaborator) RestConstraint {
	rc := RestConstraint{
		MinRestHours:   s.Config.MinRestHours,
		MaxWeeklyHours: s.Config.MaxWeeklyHours,
	}
	if c == nil {
		return rc
	}
	if wc := c.WeeklyCap(); wc > 0 && wc < rc.MaxWeeklyHours {
		rc.MaxWeeklyHours = wc
	}
	return rc
}
