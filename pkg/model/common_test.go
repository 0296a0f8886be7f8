package model

import (
	"testing"
	"time"
)

func mustClock(t *testing.T, date, clock string) time.Time {
	t.Helper()
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		t.Fatalf("parse date %s: %v", date, err)
	}
	ts, err := ParseClock(day, clock)
	if err != nil {
		t.Fatalf("parse clock %s: %v", clock, err)
	}
	return ts
}

func TestTimeRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    [2]string
		b    [2]string
		want bool
	}{
		{"disjoint", [2]string{"09:00", "12:00"}, [2]string{"13:00", "17:00"}, false},
		{"adjacent", [2]string{"09:00", "12:00"}, [2]string{"12:00", "15:00"}, false},
		{"partial", [2]string{"09:00", "12:00"}, [2]string{"11:00", "15:00"}, true},
		{"contained", [2]string{"09:00", "17:00"}, [2]string{"10:00", "12:00"}, true},
		{"identical", [2]string{"09:00", "12:00"}, [2]string{"09:00", "12:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := TimeRange{Start: mustClock(t, "2026-03-02", tt.a[0]), End: mustClock(t, "2026-03-02", tt.a[1])}
			b := TimeRange{Start: mustClock(t, "2026-03-02", tt.b[0]), End: mustClock(t, "2026-03-02", tt.b[1])}
			if got := a.Overlaps(b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		dr      DateRange
		wantErr bool
	}{
		{"valid", DateRange{"2026-03-02", "2026-03-06"}, false},
		{"single day", DateRange{"2026-03-02", "2026-03-02"}, false},
		{"inverted", DateRange{"2026-03-06", "2026-03-02"}, true},
		{"bad start", DateRange{"02-03-2026", "2026-03-06"}, true},
		{"empty end", DateRange{"2026-03-02", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateRangeDays(t *testing.T) {
	dr := DateRange{StartDate: "2026-03-02", EndDate: "2026-03-06"}
	days := dr.Days()
	if len(days) != 5 {
		t.Fatalf("Days() returned %d days, want 5", len(days))
	}
	if days[0] != "2026-03-02" || days[4] != "2026-03-06" {
		t.Errorf("Days() bounds wrong: %v", days)
	}
	for i := 1; i < len(days); i++ {
		if days[i] <= days[i-1] {
			t.Errorf("Days() not ascending at %d: %v", i, days)
		}
	}
}

func TestShiftRangeOvernight(t *testing.T) {
	s := &Shift{Date: "2026-03-02", StartTime: "22:00", EndTime: "06:00"}
	tr, err := s.Range()
	if err != nil {
		t.Fatalf("Range() error: %v", err)
	}
	if got := tr.Hours(); got != 8 {
		t.Errorf("overnight shift hours = %v, want 8", got)
	}
	if !tr.End.After(tr.Start) {
		t.Error("overnight range must roll end to the next day")
	}
}

func TestPreferenceCovers(t *testing.T) {
	clock := func(s string) *string { return &s }

	tests := []struct {
		name string
		pref Preference
		slot [2]string
		want bool
	}{
		{
			"full day covers everything",
			Preference{Date: "2026-03-04"},
			[2]string{"09:00", "17:00"},
			true,
		},
		{
			"window overlap",
			Preference{Date: "2026-03-04", StartTime: clock("08:00"), EndTime: clock("12:00")},
			[2]string{"11:00", "17:00"},
			true,
		},
		{
			"window disjoint",
			Preference{Date: "2026-03-04", StartTime: clock("08:00"), EndTime: clock("10:00")},
			[2]string{"11:00", "17:00"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := TimeRange{
				Start: mustClock(t, "2026-03-04", tt.slot[0]),
				End:   mustClock(t, "2026-03-04", tt.slot[1]),
			}
			if got := tt.pref.Covers(slot); got != tt.want {
				t.Errorf("Covers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCriticalPeriodContainsDate(t *testing.T) {
	tests := []struct {
		name   string
		period CriticalPeriod
		date   string
		want   bool
	}{
		{
			"plain range inside",
			CriticalPeriod{StartDate: "2026-08-01", EndDate: "2026-08-31"},
			"2026-08-15", true,
		},
		{
			"plain range outside",
			CriticalPeriod{StartDate: "2026-08-01", EndDate: "2026-08-31"},
			"2026-09-01", false,
		},
		{
			"yearly recurrence matches other year",
			CriticalPeriod{StartDate: "2024-08-01", EndDate: "2024-08-31", RecursYearly: true},
			"2026-08-15", true,
		},
		{
			"yearly wrap across new year",
			CriticalPeriod{StartDate: "2024-12-20", EndDate: "2025-01-06", RecursYearly: true},
			"2026-01-03", true,
		},
		{
			"yearly wrap outside",
			CriticalPeriod{StartDate: "2024-12-20", EndDate: "2025-01-06", RecursYearly: true},
			"2026-03-03", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.ContainsDate(tt.date); got != tt.want {
				t.Errorf("ContainsDate(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestCollaboratorWeeklyCap(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		c    Collaborator
		want float64
	}{
		{"fixed weekly", Collaborator{HoursPolicy: HoursFixedWeekly, WeeklyHours: f(36)}, 36},
		{"fixed weekly unset", Collaborator{HoursPolicy: HoursFixedWeekly}, 0},
		{"monthly never caps weekly", Collaborator{HoursPolicy: HoursMonthly, MonthlyHours: f(160)}, 0},
		{"flexible max", Collaborator{HoursPolicy: HoursFlexible, MaxHours: f(30)}, 30},
		{"flexible unbounded", Collaborator{HoursPolicy: HoursFlexible}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.WeeklyCap(); got != tt.want {
				t.Errorf("WeeklyCap() = %v, want %v", got, tt.want)
			}
		})
	}
}
