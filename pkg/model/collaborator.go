package model

import "github.com/google/uuid"

// HoursPolicy is how a collaborator's contractual hours are bounded.
type HoursPolicy string

const (
	HoursFixedWeekly HoursPolicy = "fixed-weekly"
	HoursMonthly     HoursPolicy = "monthly"
	HoursFlexible    HoursPolicy = "flexible"
)

// Valid reports whether the policy is one of the known values.
func (p HoursPolicy) Valid() bool {
	switch p {
	case HoursFixedWeekly, HoursMonthly, HoursFlexible:
		return true
	}
	return false
}

// Collaborator is an employee belonging to exactly one tenant.
// Collaborators are soft-deleted, never removed, while historical
// assignments reference them.
type Collaborator struct {
	BaseModel
	TenantID     uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	FirstName    string      `json:"nome" db:"nome"`
	LastName     string      `json:"cognome" db:"cognome"`
	ContractType string      `json:"tipo_contratto,omitempty" db:"tipo_contratto"`
	HoursPolicy  HoursPolicy `json:"tipologia_ore" db:"tipologia_ore"`
	WeeklyHours  *float64    `json:"ore_settimanali,omitempty" db:"ore_settimanali"`
	MonthlyHours *float64    `json:"ore_mensili,omitempty" db:"ore_mensili"`
	MinHours     *float64    `json:"ore_min,omitempty" db:"ore_min"`
	MaxHours     *float64    `json:"ore_max,omitempty" db:"ore_max"`
	NucleoIDs    []uuid.UUID `json:"nucleo_ids" db:"-"`
	IsActive     bool        `json:"is_active" db:"is_active"`
}

// FullName returns the display name.
func (c *Collaborator) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// BelongsTo reports whether the collaborator is a member of the nucleo.
func (c *Collaborator) BelongsTo(nucleoID uuid.UUID) bool {
	for _, id := range c.NucleoIDs {
		if id == nucleoID {
			return true
		}
	}
	return false
}

// WeeklyCap returns the collaborator-specific weekly hour cap, or 0
// when the policy does not narrow the tenant default.
func (c *Collaborator) WeeklyCap() float64 {
	switch c.HoursPolicy {
	case HoursFixedWeekly:
		if c.WeeklyHours != nil {
			return *c.WeeklyHours
		}
	case HoursMonthly:
		// Monthly budgets are enforced at the month boundary, not here.
		return 0
	case HoursFlexible:
		if c.MaxHours != nil {
			return *c.MaxHours
		}
	}
	return 0
}
