// Package stats derives calendar statistics from an event snapshot.
//
// Nothing is cached: every call walks the events it is given.
package stats

import (
	"math"
	"time"

	"fincal/internal/grid"
	"fincal/internal/model"
)

// Stats is the bundle shown next to the calendar.
type Stats struct {
	TotalEvents          int                `json:"total_events"`
	EventsThisMonth      int                `json:"events_this_month"`
	EventsToday          int                `json:"events_today"`
	UniqueActiveDays     int                `json:"unique_active_days"`
	CountsByKind         map[model.Kind]int `json:"counts_by_kind"`
	CountsByCategory     map[string]int     `json:"counts_by_category"`
	MonthProgressPercent int                `json:"month_progress_percent"`

	// BusiestDay is the day of the reference month with the most events,
	// earliest on ties. Zero when the month has no events.
	BusiestDay       time.Time `json:"busiest_day,omitzero"`
	BusiestDayEvents int       `json:"busiest_day_events"`
}

// Compute derives Stats from events for the month of ref, with today used
// for the "events today" count.
func Compute(events []model.Event, ref, today time.Time) Stats {
	s := Stats{
		TotalEvents:          len(events),
		CountsByKind:         make(map[model.Kind]int, len(model.Kinds())),
		CountsByCategory:     make(map[string]int),
		MonthProgressPercent: MonthProgressPercent(ref),
	}
	for _, k := range model.Kinds() {
		s.CountsByKind[k] = 0
	}

	activeDays := make(map[grid.DayKey]struct{})
	perDay := make(map[grid.DayKey]int)

	for _, e := range events {
		key := grid.KeyOf(e.Date)
		activeDays[key] = struct{}{}

		if grid.InMonth(e.Date, ref) {
			s.EventsThisMonth++
			perDay[key]++
		}
		if grid.SameDay(e.Date, today) {
			s.EventsToday++
		}
		// Only the four known kinds are keys; the store does not validate.
		if e.Kind.Valid() {
			s.CountsByKind[e.Kind]++
		}
		s.CountsByCategory[e.CategoryOrDefault()]++
	}
	s.UniqueActiveDays = len(activeDays)

	for key, n := range perDay {
		d := time.Date(key.Year, key.Month, key.Day, 0, 0, 0, 0, ref.Location())
		if n > s.BusiestDayEvents || (n == s.BusiestDayEvents && d.Before(s.BusiestDay)) {
			s.BusiestDay = d
			s.BusiestDayEvents = n
		}
	}
	return s
}

// MonthProgressPercent returns round(day / daysInMonth * 100) for ref.
func MonthProgressPercent(ref time.Time) int {
	return int(math.Round(float64(ref.Day()) / float64(grid.DaysInMonth(ref)) * 100))
}
