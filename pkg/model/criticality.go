package model

import (
	"time"

	"github.com/google/uuid"
)

// CriticalPeriod is a date-bounded high-demand window. It applies
// tenant-wide, independent of nuclei.
type CriticalPeriod struct {
	BaseModel
	TenantID          uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name              string    `json:"nome" db:"nome"`
	StartDate         string    `json:"data_inizio" db:"data_inizio"` // YYYY-MM-DD
	EndDate           string    `json:"data_fine" db:"data_fine"`     // YYYY-MM-DD
	Multiplier        float64   `json:"moltiplicatore_personale" db:"moltiplicatore_personale"`
	MinStaff          *int      `json:"personale_minimo,omitempty" db:"personale_minimo"`
	BlocksPreferences bool      `json:"blocca_preferenze" db:"blocca_preferenze"`
	RecursYearly      bool      `json:"ricorrenza_annuale" db:"ricorrenza_annuale"`
	IsActive          bool      `json:"is_active" db:"is_active"`
}

// ContainsDate reports whether date falls inside the period. A yearly
// recurring period compares month and day only.
func (p *CriticalPeriod) ContainsDate(date string) bool {
	if !p.RecursYearly {
		return date >= p.StartDate && date <= p.EndDate
	}
	d, err := time.Parse(DateFormat, date)
	if err != nil {
		return false
	}
	start, err1 := time.Parse(DateFormat, p.StartDate)
	end, err2 := time.Parse(DateFormat, p.EndDate)
	if err1 != nil || err2 != nil {
		return false
	}
	// Compare within the candidate's year. Ranges wrapping the year
	// boundary (e.g. Dec 20 - Jan 6) split across the wrap.
	md := d.Format("01-02")
	ms, me := start.Format("01-02"), end.Format("01-02")
	if ms <= me {
		return md >= ms && md <= me
	}
	return md >= ms || md <= me
}

// RecurringCriticality is a weekly-recurring staffing event tied to a
// single day of week and optional clock window.
type RecurringCriticality struct {
	BaseModel
	TenantID          uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	Name              string       `json:"nome" db:"nome"`
	DayOfWeek         time.Weekday `json:"giorno_settimana" db:"giorno_settimana"`
	StartTime         *string      `json:"ora_inizio,omitempty" db:"ora_inizio"` // HH:MM
	EndTime           *string      `json:"ora_fine,omitempty" db:"ora_fine"`     // HH:MM
	ExtraStaff        int          `json:"personale_extra" db:"personale_extra"`
	Multiplier        float64      `json:"moltiplicatore_personale" db:"moltiplicatore_personale"`
	BlocksPreferences bool         `json:"blocca_preferenze" db:"blocca_preferenze"`
	IsActive          bool         `json:"is_active" db:"is_active"`
}

// MatchesDate reports whether the criticality recurs on the date's
// weekday.
func (r *RecurringCriticality) MatchesDate(date string) bool {
	wd, err := Weekday(date)
	if err != nil {
		return false
	}
	return wd == r.DayOfWeek
}
