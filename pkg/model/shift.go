package model

import (
	"time"

	"github.com/google/uuid"
)

// Shift is a concrete slot: a date, a clock window, an owning nucleo
// and a required headcount.
type Shift struct {
	BaseModel
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	NucleoID    uuid.UUID `json:"nucleo_id" db:"nucleo_id"`
	Date        string    `json:"data" db:"data"`             // YYYY-MM-DD
	StartTime   string    `json:"ora_inizio" db:"ora_inizio"` // HH:MM
	EndTime     string    `json:"ora_fine" db:"ora_fine"`     // HH:MM
	Required    int       `json:"num_collaboratori_richiesti" db:"num_collaboratori_richiesti"`
	IsPublished bool      `json:"pubblicato" db:"pubblicato"`
	IsCompleted bool      `json:"completato" db:"completato"`
	Notes       string    `json:"note,omitempty" db:"note"`
}

// Range resolves the shift to an absolute time range on its date.
// Overnight shifts (end at or before start) roll the end to the next
// day.
func (s *Shift) Range() (TimeRange, error) {
	day, err := time.Parse(DateFormat, s.Date)
	if err != nil {
		return TimeRange{}, err
	}
	start, err := ParseClock(day, s.StartTime)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseClock(day, s.EndTime)
	if err != nil {
		return TimeRange{}, err
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Hours returns the shift duration in hours, 0 when malformed.
func (s *Shift) Hours() float64 {
	tr, err := s.Range()
	if err != nil {
		return 0
	}
	return tr.Hours()
}

// Assignment links a shift to a collaborator. Generated assignments
// are proposals until confirmed.
type Assignment struct {
	BaseModel
	TenantID         uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ShiftID          uuid.UUID `json:"turno_id" db:"turno_id"`
	CollaboratorID   uuid.UUID `json:"collaboratore_id" db:"collaboratore_id"`
	IsConfirmed      bool      `json:"confermato" db:"confermato"`
	Confidence       float64   `json:"confidenza" db:"confidenza"`
	MatchedPreferred bool      `json:"preferenza_rispettata" db:"preferenza_rispettata"`
}
