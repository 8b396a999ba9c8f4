// Package grid builds the fixed six-week month grid used by calendar views.
//
// All functions are pure. Only the year and month of a reference date are
// consulted; time of day and day of month are ignored.
package grid

import "time"

const (
	// Weeks is the number of week rows in every grid.
	Weeks = 6
	// DaysPerWeek is the number of cells in a row, Sunday through Saturday.
	DaysPerWeek = 7
	// Cells is the total number of dates in a grid.
	Cells = Weeks * DaysPerWeek
)

// Month is a 6x7 grid of dates, one row per week.
type Month [Weeks][DaysPerWeek]time.Time

// Dates returns the 42 grid dates in chronological order.
func (m Month) Dates() []time.Time {
	out := make([]time.Time, 0, Cells)
	for _, week := range m {
		out = append(out, week[:]...)
	}
	return out
}

// First returns the top-left (Sunday) date of the grid.
func (m Month) First() time.Time { return m[0][0] }

// Last returns the bottom-right (Saturday) date of the grid.
func (m Month) Last() time.Time { return m[Weeks-1][DaysPerWeek-1] }

// BuildMonthGrid returns the grid for ref's month. The first row starts on
// the last Sunday on or before the 1st of the month. Dates are midnight in
// ref's location.
func BuildMonthGrid(ref time.Time) Month {
	first := FirstOfMonth(ref)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	var m Month
	for i := 0; i < Cells; i++ {
		// AddDate from the start keeps every cell at midnight across DST shifts.
		m[i/DaysPerWeek][i%DaysPerWeek] = start.AddDate(0, 0, i)
	}
	return m
}

// FirstOfMonth returns midnight on the 1st of t's month, in t's location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days (28..31) in t's month.
func DaysInMonth(t time.Time) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InMonth reports whether d falls in ref's year and month.
func InMonth(d, ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

// SameDay reports whether a and b share year, month and day, ignoring
// time of day and location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey is a comparable calendar-day identity.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// KeyOf returns the DayKey of t's wall-clock date.
func KeyOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// String formats the key as YYYY-MM-DD.
func (k DayKey) String() string {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC).Format(DayLayout)
}

// Layouts for day and month query values.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)
