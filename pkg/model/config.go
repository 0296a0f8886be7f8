package model

import (
	"time"

	"github.com/google/uuid"
)

// SchedulingMode is the closed set of per-tenant automation modes.
// Consumers must match exhaustively.
type SchedulingMode string

const (
	ModeDisabled   SchedulingMode = "DISABLED"
	ModeSuggestion SchedulingMode = "SUGGESTION"
	ModeSemiAuto   SchedulingMode = "SEMI_AUTO"
	ModeAutonomous SchedulingMode = "AUTONOMOUS"
)

// Valid reports whether the mode is one of the known values.
func (m SchedulingMode) Valid() bool {
	switch m {
	case ModeDisabled, ModeSuggestion, ModeSemiAuto, ModeAutonomous:
		return true
	}
	return false
}

// AllowsAutoPublish reports whether the mode may publish generated
// shifts without human review. SUGGESTION never auto-publishes.
func (m SchedulingMode) AllowsAutoPublish() bool {
	switch m {
	case ModeAutonomous:
		return true
	case ModeDisabled, ModeSuggestion, ModeSemiAuto:
		return false
	}
	return false
}

// SchedulingConfig is the per-tenant operating configuration. At most
// one active row exists per tenant; a tenant with no row computes with
// DefaultSchedulingConfig.
type SchedulingConfig struct {
	BaseModel
	TenantID            uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	Mode                SchedulingMode `json:"modalita" db:"modalita"`
	ConfidenceThreshold float64        `json:"soglia_confidenza" db:"soglia_confidenza"`
	RespectPreferences  bool           `json:"considera_preferenze" db:"considera_preferenze"`
	EnforceHard         bool           `json:"rispetta_vincoli_hard" db:"rispetta_vincoli_hard"`
	NotifyConflicts     bool           `json:"notifica_conflitti" db:"notifica_conflitti"`
	GenerateReport      bool           `json:"genera_report" db:"genera_report"`
	MaxWeeklyHours      float64        `json:"max_ore_settimanali" db:"max_ore_settimanali"`
	MinRestHours        float64        `json:"min_ore_riposo" db:"min_ore_riposo"`
}

// Safe fallbacks for tenants with no configuration row. Rest-hour
// safety checks must never fail open on missing configuration.
const (
	DefaultMinRestHours   = 11.0
	DefaultMaxWeeklyHours = 40.0
)

// DefaultSchedulingConfig returns the explicit fallback configuration
// used when a tenant has no row of its own.
func DefaultSchedulingConfig(tenantID uuid.UUID) SchedulingConfig {
	return SchedulingConfig{
		TenantID:            tenantID,
		Mode:                ModeSuggestion,
		ConfidenceThreshold: 0.7,
		RespectPreferences:  true,
		EnforceHard:         true,
		NotifyConflicts:     true,
		GenerateReport:      false,
		MaxWeeklyHours:      DefaultMaxWeeklyHours,
		MinRestHours:        DefaultMinRestHours,
	}
}

// ScheduleType distinguishes fixed weekly opening hours from a
// per-weekday variable schedule.
type ScheduleType string

const (
	ScheduleFixed    ScheduleType = "fixed"
	ScheduleVariable ScheduleType = "variable"
)

// DayHours is the opening window of a single weekday.
type DayHours struct {
	Start  string `json:"apertura,omitempty"` // HH:MM
	End    string `json:"chiusura,omitempty"` // HH:MM
	Closed bool   `json:"chiuso"`
}

// OpeningHours is a tenant's weekly opening configuration. A fixed
// schedule is never closed; a variable schedule is closed only on
// weekdays explicitly flagged chiuso.
type OpeningHours struct {
	TenantID uuid.UUID                 `json:"tenant_id"`
	Type     ScheduleType              `json:"tipo_orario"`
	PerDay   map[time.Weekday]DayHours `json:"orari,omitempty"`
}

// IsClosed reports whether the weekday is closed for tenant
// operations.
func (o *OpeningHours) IsClosed(day time.Weekday) bool {
	if o == nil || o.Type != ScheduleVariable {
		return false
	}
	return o.PerDay[day].Closed
}
