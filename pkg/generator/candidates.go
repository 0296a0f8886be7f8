package generator

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/catalog"
	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// candidate is one collaborator considered for a slot, with its
// ranking keys resolved.
type candidate struct {
	collaborator *model.Collaborator
	runHours     float64 // hours proposed earlier in this run
	historyHours float64 // pre-existing committed hours
	preferred    bool    // slot matches an approved PREFERRED preference
	confidence   float64
}

// runState tracks per-collaborator commitments accumulated across the
// run: pre-existing assignments plus everything proposed so far.
type runState struct {
	snap          *catalog.Snapshot
	collaborators []*model.Collaborator
	prefsByCollab map[uuid.UUID][]*model.Preference
	intervals     map[uuid.UUID][]model.TimeRange
	hoursByDate   map[uuid.UUID]map[string]float64
	runHours      map[uuid.UUID]float64
	historyHours  map[uuid.UUID]float64
	touched       map[uuid.UUID]bool
}

func newRunState(
	snap *catalog.Snapshot,
	collaborators []*model.Collaborator,
	preferences []*model.Preference,
	existingShifts []*model.Shift,
	existingAssignments []*model.Assignment,
) *runState {
	s := &runState{
		snap:          snap,
		collaborators: collaborators,
		prefsByCollab: make(map[uuid.UUID][]*model.Preference),
		intervals:     make(map[uuid.UUID][]model.TimeRange),
		hoursByDate:   make(map[uuid.UUID]map[string]float64),
		runHours:      make(map[uuid.UUID]float64),
		historyHours:  make(map[uuid.UUID]float64),
		touched:       make(map[uuid.UUID]bool),
	}

	for _, p := range preferences {
		if p.Status != model.StatusApproved {
			continue
		}
		s.prefsByCollab[p.CollaboratorID] = append(s.prefsByCollab[p.CollaboratorID], p)
	}

	shiftByID := make(map[uuid.UUID]*model.Shift, len(existingShifts))
	for _, sh := range existingShifts {
		shiftByID[sh.ID] = sh
	}
	for _, a := range existingAssignments {
		sh := shiftByID[a.ShiftID]
		if sh == nil {
			continue
		}
		tr, err := sh.Range()
		if err != nil {
			continue
		}
		s.addInterval(a.CollaboratorID, sh.Date, tr)
		s.historyHours[a.CollaboratorID] += tr.Hours()
	}

	return s
}

func (s *runState) addInterval(id uuid.UUID, date string, tr model.TimeRange) {
	s.intervals[id] = append(s.intervals[id], tr)
	if s.hoursByDate[id] == nil {
		s.hoursByDate[id] = make(map[string]float64)
	}
	s.hoursByDate[id][date] += tr.Hours()
}

// commit records a proposed assignment into the run state.
func (s *runState) commit(id uuid.UUID, date string, tr model.TimeRange) {
	s.addInterval(id, date, tr)
	s.runHours[id] += tr.Hours()
}

// candidates builds and ranks the pool for one slot.
func (s *runState) candidates(nucleo *model.Nucleo, date string, slot model.TimeRange, crit catalog.Criticality, opts Options) []candidate {
	var pool []candidate

	for _, c := range s.collaborators {
		if !c.BelongsTo(nucleo.ID) {
			continue
		}

		rc := s.snap.RestConstraint(c)

		if !s.fitsWeeklyCap(c.ID, date, slot.Hours(), rc.MaxWeeklyHours) {
			continue
		}
		if !s.fitsRestGap(c.ID, slot, rc.MinRestHours) {
			continue
		}
		if s.hasUnavailable(c.ID, slot) {
			continue
		}

		s.touched[c.ID] = true

		// Soft preferences are non-binding on days where an active
		// criticality blocks them.
		preferred := false
		if opts.RespectPreferences && !crit.BlocksPreferences {
			preferred = s.hasPreferred(c.ID, slot)
		}

		pool = append(pool, candidate{
			collaborator: c,
			runHours:     s.runHours[c.ID],
			historyHours: s.historyHours[c.ID],
			preferred:    preferred,
		})
	}

	s.rank(pool, opts)
	s.scoreConfidence(pool)
	return pool
}

// rank orders the pool. With equity optimization: preference rank,
// then ascending run-cumulative hours, ties by ascending historical
// hours, then stable id order. Without it: preference rank then id.
func (s *runState) rank(pool []candidate, opts Options) {
	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.preferred != b.preferred {
			return a.preferred
		}
		if opts.OptimizeEquity {
			if a.runHours != b.runHours {
				return a.runHours < b.runHours
			}
			if a.historyHours != b.historyHours {
				return a.historyHours < b.historyHours
			}
		}
		return a.collaborator.ID.String() < b.collaborator.ID.String()
	})
}

// scoreConfidence derives a per-candidate confidence from how many
// ranking tie-breaks were needed against the rest of the pool (more
// peers with identical ranking keys means a less certain pick) and
// from whether the slot matched a PREFERRED preference.
func (s *runState) scoreConfidence(pool []candidate) {
	for i := range pool {
		ties := 0
		for j := range pool {
			if j == i {
				continue
			}
			if pool[j].preferred == pool[i].preferred &&
				pool[j].runHours == pool[i].runHours &&
				pool[j].historyHours == pool[i].historyHours {
				ties++
			}
		}
		conf := 0.95 - 0.05*float64(min(ties, 8))
		if pool[i].preferred {
			conf += 0.05
		}
		if conf > 1.0 {
			conf = 1.0
		}
		if conf < 0.5 {
			conf = 0.5
		}
		pool[i].confidence = conf
	}
}

// fitsWeeklyCap checks every 7-day window containing the date against
// the collaborator's weekly cap, counting existing plus already
// proposed hours.
func (s *runState) fitsWeeklyCap(id uuid.UUID, date string, add float64, maxHours float64) bool {
	if maxHours <= 0 {
		return true
	}
	day, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return false
	}
	byDate := s.hoursByDate[id]
	for offset := -6; offset <= 0; offset++ {
		windowStart := day.AddDate(0, 0, offset)
		var total float64
		for i := 0; i < 7; i++ {
			total += byDate[windowStart.AddDate(0, 0, i).Format(model.DateFormat)]
		}
		if total+add > maxHours {
			return false
		}
	}
	return true
}

// fitsRestGap rejects the slot when it overlaps a committed interval
// or leaves less than the minimum rest gap on either side.
func (s *runState) fitsRestGap(id uuid.UUID, slot model.TimeRange, minRest float64) bool {
	for _, tr := range s.intervals[id] {
		if tr.Overlaps(slot) {
			return false
		}
		if tr.End.Before(slot.Start) || tr.End.Equal(slot.Start) {
			if slot.Start.Sub(tr.End).Hours() < minRest {
				return false
			}
		} else {
			if tr.Start.Sub(slot.End).Hours() < minRest {
				return false
			}
		}
	}
	return true
}

// hasUnavailable reports an approved UNAVAILABLE preference covering
// any part of the slot.
func (s *runState) hasUnavailable(id uuid.UUID, slot model.TimeRange) bool {
	for _, p := range s.prefsByCollab[id] {
		if p.Type == model.PreferenceUnavailable && p.Covers(slot) {
			return true
		}
	}
	return false
}

// hasPreferred reports an approved PREFERRED preference covering any
// part of the slot.
func (s *runState) hasPreferred(id uuid.UUID, slot model.TimeRange) bool {
	for _, p := range s.prefsByCollab[id] {
		if p.Type == model.PreferencePreferred && p.Covers(slot) {
			return true
		}
	}
	return false
}

// equitySpread is max minus min assigned hours across collaborators
// that entered at least one candidate pool this run.
func (s *runState) equitySpread() float64 {
	first := true
	var lo, hi float64
	for id := range s.touched {
		h := s.runHours[id]
		if first {
			lo, hi = h, h
			first = false
			continue
		}
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	if first {
		return 0
	}
	return hi - lo
}
