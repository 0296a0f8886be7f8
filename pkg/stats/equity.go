// Package stats provides distribution analysis over shift
// assignments.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

// CollaboratorStat is the per-collaborator workload summary.
type CollaboratorStat struct {
	CollaboratorID uuid.UUID `json:"collaboratore_id"`
	Name           string    `json:"nome"`
	TotalHours     float64   `json:"ore_totali"`
	ShiftCount     int       `json:"numero_turni"`
	WeekendShifts  int       `json:"turni_weekend"`
	Deviation      float64   `json:"scostamento_percentuale"` // vs. mean, percent
}

// EquityMetrics summarize how evenly hours are distributed.
type EquityMetrics struct {
	Gini               float64            `json:"gini"`
	Variance           float64            `json:"varianza"`
	StdDev             float64            `json:"deviazione_standard"`
	MeanHours          float64            `json:"ore_medie"`
	MaxHours           float64            `json:"ore_max"`
	MinHours           float64            `json:"ore_min"`
	Spread             float64            `json:"scarto"` // max - min
	WeekendGini        float64            `json:"gini_weekend"`
	CollaboratorStats  []CollaboratorStat `json:"statistiche_collaboratori"`
	OverallEquityScore float64            `json:"punteggio_equita"` // 0-100
}

// Analyzer computes equity metrics over a set of assignments.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze joins assignments to their shifts and computes the
// distribution metrics. Collaborators with zero assignments still
// count: an idle collaborator is the strongest inequity signal.
func (a *Analyzer) Analyze(
	assignments []*model.Assignment,
	shifts []*model.Shift,
	collaborators []*model.Collaborator,
) *EquityMetrics {
	if len(collaborators) == 0 {
		return &EquityMetrics{OverallEquityScore: 100, CollaboratorStats: []CollaboratorStat{}}
	}

	shiftByID := make(map[uuid.UUID]*model.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}

	statByID := make(map[uuid.UUID]*CollaboratorStat, len(collaborators))
	order := make([]uuid.UUID, 0, len(collaborators))
	for _, c := range collaborators {
		statByID[c.ID] = &CollaboratorStat{CollaboratorID: c.ID, Name: c.FullName()}
		order = append(order, c.ID)
	}

	for _, asg := range assignments {
		st := statByID[asg.CollaboratorID]
		sh := shiftByID[asg.ShiftID]
		if st == nil || sh == nil {
			continue
		}
		st.TotalHours += sh.Hours()
		st.ShiftCount++
		if isWeekend(sh.Date) {
			st.WeekendShifts++
		}
	}

	hours := make([]float64, 0, len(order))
	weekend := make([]float64, 0, len(order))
	stats := make([]CollaboratorStat, 0, len(order))
	for _, id := range order {
		hours = append(hours, statByID[id].TotalHours)
		weekend = append(weekend, float64(statByID[id].WeekendShifts))
	}

	mean := meanOf(hours)
	variance := varianceOf(hours, mean)
	maxH, minH := rangeOf(hours)

	for _, id := range order {
		st := statByID[id]
		if mean > 0 {
			st.Deviation = (st.TotalHours - mean) / mean * 100
		}
		stats = append(stats, *st)
	}

	gini := giniOf(hours)
	wkGini := giniOf(weekend)

	return &EquityMetrics{
		Gini:               gini,
		Variance:           variance,
		StdDev:             math.Sqrt(variance),
		MeanHours:          mean,
		MaxHours:           maxH,
		MinHours:           minH,
		Spread:             maxH - minH,
		WeekendGini:        wkGini,
		CollaboratorStats:  stats,
		OverallEquityScore: equityScore(gini, wkGini),
	}
}

// equityScore folds the gini coefficients into a 0-100 score: 100
// means perfectly even distribution.
func equityScore(gini, weekendGini float64) float64 {
	score := 100 - (gini*70+weekendGini*30)*100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func isWeekend(date string) bool {
	t, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return max, min
}

// giniOf computes the Gini coefficient: 0 is perfect equality, 1 is
// maximal concentration.
func giniOf(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var cum, total float64
	for i, v := range sorted {
		cum += v * float64(i+1)
		total += v
	}
	if total == 0 {
		return 0
	}
	return (2*cum)/(float64(n)*total) - float64(n+1)/float64(n)
}
