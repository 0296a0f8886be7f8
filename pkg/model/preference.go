package model

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceType classifies a declared availability.
type PreferenceType string

const (
	PreferenceAvailable   PreferenceType = "AVAILABLE"
	PreferencePreferred   PreferenceType = "PREFERRED"
	PreferenceUnavailable PreferenceType = "UNAVAILABLE"
)

// Valid reports whether the type is one of the known values.
func (t PreferenceType) Valid() bool {
	switch t {
	case PreferenceAvailable, PreferencePreferred, PreferenceUnavailable:
		return true
	}
	return false
}

// ValidationStatus is the closed set of preference validation
// outcomes. Consumers must match exhaustively; new statuses must not
// fall through to a default branch.
type ValidationStatus string

const (
	StatusPending            ValidationStatus = "PENDING"
	StatusApproved           ValidationStatus = "APPROVED"
	StatusRejectedConflict   ValidationStatus = "REJECTED_CONFLICT"
	StatusRejectedCritical   ValidationStatus = "REJECTED_CRITICAL"
	StatusRejectedConstraint ValidationStatus = "REJECTED_CONSTRAINT"
)

// Valid reports whether the status is one of the known values.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejectedConflict,
		StatusRejectedCritical, StatusRejectedConstraint:
		return true
	}
	return false
}

// IsRejection reports whether the status is any of the rejected
// outcomes.
func (s ValidationStatus) IsRejection() bool {
	switch s {
	case StatusRejectedConflict, StatusRejectedCritical, StatusRejectedConstraint:
		return true
	case StatusPending, StatusApproved:
		return false
	}
	return false
}

// Preference is a collaborator's declared availability for a date and
// an optional clock window. At most one preference exists per
// (collaborator, date, start time); duplicates are rejected at
// creation by the persistence layer.
type Preference struct {
	BaseModel
	TenantID        uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	CollaboratorID  uuid.UUID        `json:"collaboratore_id" db:"collaboratore_id"`
	Date            string           `json:"data" db:"data"`                         // YYYY-MM-DD
	StartTime       *string          `json:"ora_inizio,omitempty" db:"ora_inizio"`   // HH:MM, nil = full day
	EndTime         *string          `json:"ora_fine,omitempty" db:"ora_fine"`       // HH:MM, nil = full day
	Type            PreferenceType   `json:"tipo" db:"tipo"`
	Status          ValidationStatus `json:"validation_status" db:"validation_status"`
	RejectionReason string           `json:"motivo_rifiuto,omitempty" db:"motivo_rifiuto"`
	ValidatedAt     *time.Time       `json:"validated_at,omitempty" db:"validated_at"`
}

// IsFullDay reports whether the preference covers the whole date.
func (p *Preference) IsFullDay() bool {
	return p.StartTime == nil || p.EndTime == nil
}

// Range resolves the preference to an absolute time range. Full-day
// preferences span midnight to midnight.
func (p *Preference) Range() (TimeRange, error) {
	day, err := time.Parse(DateFormat, p.Date)
	if err != nil {
		return TimeRange{}, err
	}
	if p.IsFullDay() {
		return TimeRange{Start: day, End: day.Add(24 * time.Hour)}, nil
	}
	start, err := ParseClock(day, *p.StartTime)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseClock(day, *p.EndTime)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: end}, nil
}

// Covers reports whether the preference window has a non-empty
// intersection with the given range. Any partial-day overlap counts.
func (p *Preference) Covers(tr TimeRange) bool {
	pr, err := p.Range()
	if err != nil {
		return false
	}
	return pr.Overlaps(tr)
}
