// Package model defines the core data model of the scheduling engine.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// ClockFormat is the wire format for clock times.
const ClockFormat = "15:04"

// BaseModel carries the fields shared by every persisted entity.
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel returns a BaseModel with a fresh id and timestamps.
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the range.
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Hours returns the length of the range in hours.
func (tr TimeRange) Hours() float64 {
	return tr.End.Sub(tr.Start).Hours()
}

// Overlaps reports whether two ranges share a non-empty intersection.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Contains reports whether t falls inside the range.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// DateRange is an inclusive calendar-date range.
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Validate checks both bounds parse and start <= end.
func (dr DateRange) Validate() error {
	start, err := time.Parse(DateFormat, dr.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", dr.StartDate, err)
	}
	end, err := time.Parse(DateFormat, dr.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", dr.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("start date %s after end date %s", dr.StartDate, dr.EndDate)
	}
	return nil
}

// Contains reports whether date (YYYY-MM-DD) falls inside the range.
func (dr DateRange) Contains(date string) bool {
	return date >= dr.StartDate && date <= dr.EndDate
}

// Days returns the dates of the range in ascending order.
func (dr DateRange) Days() []string {
	start, err1 := time.Parse(DateFormat, dr.StartDate)
	end, err2 := time.Parse(DateFormat, dr.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateFormat))
	}
	return days
}

// ParseClock parses an HH:MM clock time onto the given date.
func ParseClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(ClockFormat, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// Weekday returns the weekday of a YYYY-MM-DD date.
func Weekday(date string) (time.Weekday, error) {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Weekday(), nil
}
