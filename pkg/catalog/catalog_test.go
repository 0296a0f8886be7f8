package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alexfrate/turnjob-sub002/pkg/model"
)

func TestNewAppliesDefaults(t *testing.T) {
	tenantID := uuid.New()

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		snap := New(tenantID, nil, nil, nil, nil)
		if snap.Config.Mode != model.ModeSuggestion {
			t.Errorf("default mode = %s, want SUGGESTION", snap.Config.Mode)
		}
		if snap.Config.MinRestHours != model.DefaultMinRestHours {
			t.Errorf("default min rest = %v, want %v", snap.Config.MinRestHours, model.DefaultMinRestHours)
		}
		if snap.Config.MaxWeeklyHours != model.DefaultMaxWeeklyHours {
			t.Errorf("default weekly cap = %v, want %v", snap.Config.MaxWeeklyHours, model.DefaultMaxWeeklyHours)
		}
	})

	t.Run("zero bounds are replaced, explicit bounds kept", func(t *testing.T) {
		cfg := &model.SchedulingConfig{TenantID: tenantID, Mode: model.ModeAutonomous, MinRestHours: 0, MaxWeeklyHours: 36}
		snap := New(tenantID, nil, nil, nil, cfg)
		if snap.Config.MinRestHours != model.DefaultMinRestHours {
			t.Errorf("min rest = %v, want default %v", snap.Config.MinRestHours, model.DefaultMinRestHours)
		}
		if snap.Config.MaxWeeklyHours != 36 {
			t.Errorf("weekly cap = %v, want 36", snap.Config.MaxWeeklyHours)
		}
		if snap.Config.Mode != model.ModeAutonomous {
			t.Errorf("mode = %s, want AUTONOMOUS", snap.Config.Mode)
		}
	})
}

func TestIsClosedDay(t *testing.T) {
	tenantID := uuid.New()
	variable := &model.OpeningHours{
		TenantID: tenantID,
		Type:     model.ScheduleVariable,
		PerDay: map[time.Weekday]model.DayHours{
			time.Sunday: {Closed: true},
			time.Monday: {Start: "08:00", End: "20:00"},
		},
	}

	tests := []struct {
		name  string
		hours *model.OpeningHours
		date  string
		want  bool
	}{
		{"no opening hours", nil, "2026-03-08", false},
		{"fixed schedule never closed", &model.OpeningHours{Type: model.ScheduleFixed}, "2026-03-08", false},
		{"variable closed sunday", variable, "2026-03-08", true}, // a Sunday
		{"variable open monday", variable, "2026-03-09", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := New(tenantID, tt.hours, nil, nil, nil)
			if got := snap.IsClosedDay(tt.date); got != tt.want {
				t.Errorf("IsClosedDay(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestActiveCriticalitiesMerge(t *testing.T) {
	tenantID := uuid.New()
	minStaff := 5

	periods := []*model.CriticalPeriod{
		{
			StartDate:  "2026-08-01",
			EndDate:    "2026-08-31",
			Multiplier: 1.5,
			MinStaff:   &minStaff,
			IsActive:   true,
		},
		{
			StartDate:         "2026-08-10",
			EndDate:           "2026-08-20",
			Multiplier:        2.0,
			BlocksPreferences: true,
			IsActive:          true,
		},
		{
			StartDate:  "2026-08-01",
			EndDate:    "2026-08-31",
			Multiplier: 3.0,
			IsActive:   false, // inactive, must not contribute
		},
	}
	recurring := []*model.RecurringCriticality{
		{DayOfWeek: time.Saturday, ExtraStaff: 2, Multiplier: 1.0, IsActive: true},
	}

	snap := New(tenantID, nil, periods, recurring, nil)

	// 2026-08-15 is a Saturday: both periods plus the recurring entry.
	crit := snap.ActiveCriticalities("2026-08-15")
	if !crit.IsActive() {
		t.Fatal("expected an active criticality")
	}
	if crit.Sources != 3 {
		t.Errorf("Sources = %d, want 3", crit.Sources)
	}
	if crit.Multiplier != 3.0 {
		t.Errorf("Multiplier = %v, want 3.0 (1.5*2.0*1.0)", crit.Multiplier)
	}
	if crit.ExtraStaff != 2 {
		t.Errorf("ExtraStaff = %d, want 2", crit.ExtraStaff)
	}
	if crit.MinStaff != 5 {
		t.Errorf("MinStaff = %d, want 5", crit.MinStaff)
	}
	if !crit.BlocksPreferences {
		t.Error("BlocksPreferences must be sticky across sources")
	}

	// Outside every window.
	quiet := snap.ActiveCriticalities("2026-03-04")
	if quiet.IsActive() {
		t.Errorf("expected no criticality on a quiet weekday, got %+v", quiet)
	}
	if quiet.Multiplier != 1.0 {
		t.Errorf("neutral multiplier = %v, want 1.0", quiet.Multiplier)
	}
}

func TestScaleHeadcount(t *testing.T) {
	tests := []struct {
		name string
		crit Criticality
		base int
		want int
	}{
		{"neutral", Criticality{Multiplier: 1.0}, 3, 3},
		{"multiplier rounds up", Criticality{Multiplier: 1.5}, 3, 5},
		{"extra staff adds", Criticality{Multiplier: 1.0, ExtraStaff: 2}, 3, 5},
		{"min staff floors", Criticality{Multiplier: 1.0, MinStaff: 6}, 2, 6},
		{"never below base", Criticality{Multiplier: 0.5}, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.crit.ScaleHeadcount(tt.base); got != tt.want {
				t.Errorf("ScaleHeadcount(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}

func TestRestConstraint(t *testing.T) {
	tenantID := uuid.New()
	f := func(v float64) *float64 { return &v }
	cfg := &model.SchedulingConfig{TenantID: tenantID, Mode: model.ModeSuggestion, MinRestHours: 11, MaxWeeklyHours: 40}
	snap := New(tenantID, nil, nil, nil, cfg)

	tests := []struct {
		name       string
		c          *model.Collaborator
		wantWeekly float64
	}{
		{"nil collaborator uses tenant bound", nil, 40},
		{"stricter personal cap wins", &model.Collaborator{HoursPolicy: model.HoursFixedWeekly, WeeklyHours: f(32)}, 32},
		{"looser personal cap ignored", &model.Collaborator{HoursPolicy: model.HoursFixedWeekly, WeeklyHours: f(48)}, 40},
		{"monthly policy keeps tenant bound", &model.Collaborator{HoursPolicy: model.HoursMonthly}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := snap.RestConstraint(tt.c)
			if rc.MinRestHours != 11 {
				t.Errorf("MinRestHours = %v, want 11", rc.MinRestHours)
			}
			if rc.MaxWeeklyHours != tt.wantWeekly {
				t.Errorf("MaxWeeklyHours = %v, want %v", rc.MaxWeeklyHours, tt.wantWeekly)
			}
		})
	}
}
