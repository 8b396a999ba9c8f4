package stats

import (
	"testing"
	"time"

	"fincal/internal/model"
)

func ev(id string, at time.Time, k model.Kind, cat string) model.Event {
	return model.Event{ID: id, Title: id, Date: at, Kind: k, Category: cat}
}

func TestLeapDayScenario(t *testing.T) {
	events := []model.Event{
		ev("a", time.Date(2024, 2, 29, 11, 30, 0, 0, time.UTC), model.KindPersonal, ""),
		ev("b", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), model.KindTask, ""),
	}
	ref := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	s := Compute(events, ref, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if s.EventsThisMonth != 1 {
		t.Errorf("EventsThisMonth = %d, want 1", s.EventsThisMonth)
	}
	if s.UniqueActiveDays != 2 {
		t.Errorf("UniqueActiveDays = %d, want 2", s.UniqueActiveDays)
	}
	if s.EventsToday != 1 {
		t.Errorf("EventsToday = %d, want 1", s.EventsToday)
	}
	if s.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d, want 2", s.TotalEvents)
	}
	if !s.BusiestDay.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) || s.BusiestDayEvents != 1 {
		t.Errorf("BusiestDay = %s (%d)", s.BusiestDay, s.BusiestDayEvents)
	}
}

func TestCountsByKindAlwaysHasAllKinds(t *testing.T) {
	s := Compute(nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Now())
	if len(s.CountsByKind) != 4 {
		t.Fatalf("CountsByKind has %d keys, want 4", len(s.CountsByKind))
	}
	for _, k := range model.Kinds() {
		if n, ok := s.CountsByKind[k]; !ok || n != 0 {
			t.Errorf("CountsByKind[%s] = %d, %v", k, n, ok)
		}
	}
	if len(s.CountsByCategory) != 0 {
		t.Errorf("CountsByCategory = %v, want empty", s.CountsByCategory)
	}
	if !s.BusiestDay.IsZero() {
		t.Errorf("BusiestDay = %s, want zero", s.BusiestDay)
	}
}

func TestKindTotalsMatchTotalEvents(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		ev("1", day, model.KindMeeting, "work"),
		ev("2", day, model.KindMeeting, "work"),
		ev("3", day.AddDate(0, 0, 1), model.KindTask, ""),
		ev("4", day.AddDate(0, 1, 0), model.KindReminder, "bills"),
		ev("5", day.AddDate(0, 0, 2), model.KindPersonal, "  "),
	}
	s := Compute(events, day, day)

	sum := 0
	for _, n := range s.CountsByKind {
		sum += n
	}
	if sum != s.TotalEvents {
		t.Fatalf("kind sum %d != total %d", sum, s.TotalEvents)
	}
	want := map[string]int{"work": 2, "general": 2, "bills": 1}
	if len(s.CountsByCategory) != len(want) {
		t.Fatalf("CountsByCategory = %v", s.CountsByCategory)
	}
	for k, n := range want {
		if s.CountsByCategory[k] != n {
			t.Errorf("CountsByCategory[%s] = %d, want %d", k, s.CountsByCategory[k], n)
		}
	}
	if s.BusiestDayEvents != 2 || s.BusiestDay.Day() != 1 {
		t.Errorf("BusiestDay = %s (%d)", s.BusiestDay, s.BusiestDayEvents)
	}
}

func TestMonthProgressPercent(t *testing.T) {
	cases := []struct {
		ref  time.Time
		want int
	}{
		{time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 50},
		{time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 100},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 100},
		{time.Date(2023, 2, 14, 0, 0, 0, 0, time.UTC), 50},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3},
	}
	for _, tc := range cases {
		if got := MonthProgressPercent(tc.ref); got != tc.want {
			t.Errorf("MonthProgressPercent(%s) = %d, want %d", tc.ref.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestUnknownKindNotCounted(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		ev("1", day, model.KindTask, ""),
		ev("2", day, "", ""),
		ev("3", day, "holiday", ""),
	}
	s := Compute(events, day, day)
	if len(s.CountsByKind) != 4 {
		t.Fatalf("CountsByKind = %v, want exactly the four kinds", s.CountsByKind)
	}
	if s.CountsByKind[model.KindTask] != 1 || s.TotalEvents != 3 {
		t.Fatalf("stats = %+v", s)
	}
}
