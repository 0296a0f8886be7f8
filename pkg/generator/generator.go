// Package generator produces a draft slate of shifts and proposed
// assignments for a date range, honoring the constraint catalog,
// approved preferences and equity goals.
package generator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/catalog"
	"github.com/Alexfrate/turnjob-sub002/pkg/logger"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// Default shift window used when the tenant's opening hours do not
// specify one for the day.
const (
	DefaultShiftStart = "09:00"
	DefaultShiftEnd   = "17:00"
)

// Options control a single generation run.
type Options struct {
	RespectPreferences bool    `json:"rispetta_preferenze"`
	OptimizeEquity     bool    `json:"ottimizza_equita"`
	MinConfidence      float64 `json:"min_confidenza,omitempty"`
}

// DefaultOptions mirror the safe tenant defaults.
func DefaultOptions() Options {
	return Options{
		RespectPreferences: true,
		OptimizeEquity:     true,
		MinConfidence:      0,
	}
}

// Input is the immutable data snapshot for one generation run. The
// generator never mutates any of it.
type Input struct {
	TenantID            uuid.UUID
	Range               model.DateRange
	Nuclei              []*model.Nucleo
	Collaborators       []*model.Collaborator
	Preferences         []*model.Preference // approved, within range
	ExistingShifts      []*model.Shift
	ExistingAssignments []*model.Assignment
	Options             Options
}

// Warning codes.
const (
	WarnClosedDay       = "closed_day"
	WarnUnderfilled     = "underfilled"
	WarnTruncated       = "truncated"
	WarnNoCollaborators = "no_collaborators"
)

// Warning is a non-fatal finding recorded during generation.
type Warning struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Date     string    `json:"date,omitempty"`
	NucleoID uuid.UUID `json:"nucleo_id,omitempty"`
}

// Metrics summarize a generation run.
type Metrics struct {
	SlotsGenerated      int     `json:"slots_generated"`
	AssignmentsProposed int     `json:"assignments_proposed"`
	UnderfilledSlots    int     `json:"underfilled_slots"`
	EquitySpread        float64 `json:"equity_spread"`
	Duration            string  `json:"duration"`
}

// Result is a generation proposal. Persistence and publication are the
// caller's responsibility, gated by the tenant's mode and confidence
// threshold.
type Result struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Shifts      []*model.Shift      `json:"shifts"`
	Assignments []*model.Assignment `json:"assignments"`
	Warnings    []Warning           `json:"warnings"`
	Metrics     Metrics             `json:"metrics"`
}

// Generator runs the day-by-day assignment algorithm.
type Generator struct {
	snap *catalog.Snapshot
	log  *logger.EngineLogger
}

// New creates a generator bound to a constraint snapshot.
func New(snap *catalog.Snapshot) *Generator {
	return &Generator{
		snap: snap,
		log:  logger.NewEngineLogger(),
	}
}

// Generate produces the proposal. Iteration is strictly ordered by
// ascending date then by nucleo (name, then id): equity ranking
// depends on hours accumulated earlier in the same run, so reordering
// would change the fairness outcome between identical inputs.
//
// A ctx deadline aborts the day loop early and returns partial results
// with a truncation warning.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	if err := in.Range.Validate(); err != nil {
		return nil, err
	}
	if in.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}

	res := &Result{
		Shifts:      []*model.Shift{},
		Assignments: []*model.Assignment{},
		Warnings:    []Warning{},
	}

	nuclei := sortedNuclei(in.Nuclei)
	active := activeCollaborators(in.Collaborators)
	days := in.Range.Days()

	g.log.StartGeneration(in.TenantID.String(), len(nuclei), len(active), len(days))

	if len(active) == 0 {
		// Distinguish "nothing to schedule" from "zero viable
		// assignments": callers need to know no one was in scope.
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnNoCollaborators,
			Message: "no active collaborators in scope for this tenant",
		})
		res.Message = "generation aborted: no active collaborators"
		res.Metrics.Duration = time.Since(start).String()
		return res, nil
	}

	state := newRunState(g.snap, active, in.Preferences, in.ExistingShifts, in.ExistingAssignments)

	truncated := false
dayLoop:
	for _, day := range days {
		if ctx.Err() != nil {
			truncated = true
			break dayLoop
		}

		if g.snap.IsClosedDay(day) {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnClosedDay,
				Message: fmt.Sprintf("skipped %s: closure day", day),
				Date:    day,
			})
			continue
		}

		crit := g.snap.ActiveCriticalities(day)
		startClock, endClock := g.shiftWindow(day)

		for _, nucleo := range nuclei {
			required := crit.ScaleHeadcount(nucleo.RequiredHeadcount())

			shift := &model.Shift{
				BaseModel: model.NewBaseModel(),
				TenantID:  in.TenantID,
				NucleoID:  nucleo.ID,
				Date:      day,
				StartTime: startClock,
				EndTime:   endClock,
				Required:  required,
			}
			slot, err := shift.Range()
			if err != nil {
				return nil, fmt.Errorf("resolving slot for %s: %w", day, err)
			}

			pool := state.candidates(nucleo, day, slot, crit, in.Options)

			assigned := 0
			for _, cand := range pool {
				if assigned >= required {
					break
				}
				assignment := &model.Assignment{
					BaseModel:        model.NewBaseModel(),
					TenantID:         in.TenantID,
					ShiftID:          shift.ID,
					CollaboratorID:   cand.collaborator.ID,
					Confidence:       cand.confidence,
					MatchedPreferred: cand.preferred,
				}
				state.commit(cand.collaborator.ID, day, slot)
				res.Assignments = append(res.Assignments, assignment)
				assigned++
			}

			res.Shifts = append(res.Shifts, shift)
			res.Metrics.SlotsGenerated++

			if assigned < required {
				// Partial coverage is still actionable output for a
				// human reviewer.
				res.Metrics.UnderfilledSlots++
				res.Warnings = append(res.Warnings, Warning{
					Code:     WarnUnderfilled,
					Message:  fmt.Sprintf("slot %s/%s filled %d of %d", day, nucleo.Name, assigned, required),
					Date:     day,
					NucleoID: nucleo.ID,
				})
				g.log.SlotUnderfilled(nucleo.ID.String(), day, required, assigned)
			}
		}
	}

	if truncated {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnTruncated,
			Message: "generation truncated by caller deadline; results are partial",
		})
	}

	res.Success = true
	res.Metrics.AssignmentsProposed = len(res.Assignments)
	res.Metrics.EquitySpread = state.equitySpread()
	res.Metrics.Duration = time.Since(start).String()
	res.Message = fmt.Sprintf("generated %d shifts, %d assignments (%d underfilled)",
		res.Metrics.SlotsGenerated, res.Metrics.AssignmentsProposed, res.Metrics.UnderfilledSlots)

	g.log.GenerationComplete(in.TenantID.String(), time.Since(start),
		res.Metrics.SlotsGenerated, res.Metrics.AssignmentsProposed, res.Metrics.UnderfilledSlots)

	return res, nil
}

// shiftWindow resolves the day's slot clock window from the tenant's
// opening hours, falling back to the default 8-hour window.
func (g *Generator) shiftWindow(day string) (string, string) {
	oh := g.snap.OpeningHours
	if oh == nil || oh.Type != model.ScheduleVariable {
		return DefaultShiftStart, DefaultShiftEnd
	}
	wd, err := model.Weekday(day)
	if err != nil {
		return DefaultShiftStart, DefaultShiftEnd
	}
	dh, ok := oh.PerDay[wd]
	if !ok || dh.Closed || dh.Start == "" || dh.End == "" {
		return DefaultShiftStart, DefaultShiftEnd
	}
	return dh.Start, dh.End
}

// sortedNuclei returns active nuclei in deterministic order: name,
// then id.
func sortedNuclei(nuclei []*model.Nucleo) []*model.Nucleo {
	out := make([]*model.Nucleo, 0, len(nuclei))
	for _, n := range nuclei {
		if n.IsActive {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func activeCollaborators(collaborators []*model.Collaborator) []*model.Collaborator {
	out := make([]*model.Collaborator, 0, len(collaborators))
	for _, c := range collaborators {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
