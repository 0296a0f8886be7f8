// Package validator evaluates a proposed availability preference
// against the constraint catalog and the collaborator's existing
// approved preferences.
package validator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/catalog"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// Severity of a detail entry.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Detail types.
const (
	DetailClosedDay      = "closed_day"
	DetailConflict       = "conflict"
	DetailCriticalPeriod = "critical_period"
	DetailHighDemand     = "high_demand"
)

// Detail is one finding attached to a validation result. More than one
// soft warning may accompany an approved verdict.
type Detail struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Result is the validation verdict for one proposed preference.
type Result struct {
	Status  model.ValidationStatus `json:"status"`
	IsValid bool                   `json:"is_valid"`
	Reason  string                 `json:"reason,omitempty"`
	Details []Detail               `json:"details"`
}

// Request is one proposed preference. Time bounds, if present, have
// already been checked (start < end) at the calling boundary; the
// collaborator is known to exist, be active and belong to the caller's
// tenant.
type Request struct {
	CollaboratorID uuid.UUID
	Date           string // YYYY-MM-DD
	StartTime      *string
	EndTime        *string
	Type           model.PreferenceType
}

// window resolves the requested slot to an absolute range; full-day
// requests span the whole date.
func (r Request) window() (model.TimeRange, error) {
	day, err := time.Parse(model.DateFormat, r.Date)
	if err != nil {
		return model.TimeRange{}, err
	}
	if r.StartTime == nil || r.EndTime == nil {
		return model.TimeRange{Start: day, End: day.Add(24 * time.Hour)}, nil
	}
	start, err := model.ParseClock(day, *r.StartTime)
	if err != nil {
		return model.TimeRange{}, err
	}
	end, err := model.ParseClock(day, *r.EndTime)
	if err != nil {
		return model.TimeRange{}, err
	}
	return model.TimeRange{Start: start, End: end}, nil
}

// Validate runs the fixed short-circuit pipeline: closed day, conflict
// with approved preferences, critical-period lock. It is a pure
// function of the snapshot and the existing approved preferences and
// performs no writes; the caller persists the returned status and
// stamps the validation timestamp.
func Validate(snap *catalog.Snapshot, existing []*model.Preference, req Request) (Result, error) {
	window, err := req.window()
	if err != nil {
		// Malformed input is a contract violation, never a rejection
		// status.
		return Result{}, err
	}

	res := Result{Details: []Detail{}}

	// 1. Closed-day check: cheapest and most actionable first.
	if snap.IsClosedDay(req.Date) {
		res.Status = model.StatusRejectedConstraint
		res.Reason = fmt.Sprintf("day %s is a closure day", req.Date)
		res.Details = append(res.Details, Detail{
			Type:     DetailClosedDay,
			Message:  res.Reason,
			Severity: SeverityError,
		})
		return res, nil
	}

	// 2. Conflict check against the collaborator's approved
	// preferences. Any non-empty time-range intersection is a
	// conflict; a full-day preference overlaps everything on its date.
	for _, p := range existing {
		if p.CollaboratorID != req.CollaboratorID || p.Status != model.StatusApproved {
			continue
		}
		if p.Date != req.Date {
			continue
		}
		if p.Covers(window) {
			res.Status = model.StatusRejectedConflict
			res.Reason = fmt.Sprintf("an approved preference already covers %s", req.Date)
			res.Details = append(res.Details, Detail{
				Type:     DetailConflict,
				Message:  res.Reason,
				Severity: SeverityError,
			})
			return res, nil
		}
	}

	// 3. Critical-period lock: unavailability cannot be declared
	// inside a mandated high-demand window.
	crit := snap.ActiveCriticalities(req.Date)
	if crit.BlocksPreferences && req.Type == model.PreferenceUnavailable {
		res.Status = model.StatusRejectedCritical
		res.Reason = fmt.Sprintf("date %s falls in a critical period that blocks unavailability", req.Date)
		res.Details = append(res.Details, Detail{
			Type:     DetailCriticalPeriod,
			Message:  res.Reason,
			Severity: SeverityError,
		})
		return res, nil
	}

	// 4. Pass. Attach soft warnings without blocking.
	res.Status = model.StatusApproved
	res.IsValid = true
	if crit.IsActive() {
		res.Details = append(res.Details, Detail{
			Type:     DetailHighDemand,
			Message:  fmt.Sprintf("date %s falls in a high-demand period", req.Date),
			Severity: SeverityWarning,
		})
	}
	return res, nil
}
