// Package navigator tracks which month a calendar shows and which day is
// selected.
package navigator

import (
	"time"

	"fincal/internal/grid"
)

// Clock returns the current time.
type Clock func() time.Time

// View is a snapshot of the navigator state.
type View struct {
	// Reference is a midnight date; its year and month pick the visible
	// month and its day drives month progress.
	Reference time.Time
	Selected  *time.Time
	Today     time.Time
}

// Navigator is not safe for concurrent use; callers that share one must
// serialize access.
type Navigator struct {
	clock     Clock
	reference time.Time
	selected  *time.Time
	today     time.Time
}

// New starts a navigator on the current month. Today is captured once here
// and only changes through GoToToday or RefreshToday.
func New(clock Clock) *Navigator {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Navigator{
		clock:     clock,
		reference: grid.StartOfDay(now),
		today:     grid.StartOfDay(now),
	}
}

// NextMonth moves the reference one calendar month forward.
func (n *Navigator) NextMonth() {
	n.reference = AddMonths(n.reference, 1)
}

// PreviousMonth moves the reference one calendar month back.
func (n *Navigator) PreviousMonth() {
	n.reference = AddMonths(n.reference, -1)
}

// AddMonths shifts t by delta calendar months, keeping the day of month
// but clamping it to the length of the target month (Jan 31 + 1 is Feb 28
// or 29, never a day in March).
func AddMonths(t time.Time, delta int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, t.Location())
	day := min(t.Day(), grid.DaysInMonth(first))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// GoToToday reads the clock and sets reference month, selection and today.
func (n *Navigator) GoToToday() {
	now := n.clock()
	day := grid.StartOfDay(now)
	n.today = day
	n.reference = day
	n.selected = &day
}

// SelectDate selects d without changing the visible month.
func (n *Navigator) SelectDate(d time.Time) {
	day := grid.StartOfDay(d)
	n.selected = &day
}

// ClearSelection drops the selected day.
func (n *Navigator) ClearSelection() {
	n.selected = nil
}

// RefreshToday re-reads the clock for today only.
func (n *Navigator) RefreshToday() {
	n.today = grid.StartOfDay(n.clock())
}

// Reference returns the reference date of the visible month.
func (n *Navigator) Reference() time.Time { return n.reference }

// Today returns the cached current day.
func (n *Navigator) Today() time.Time { return n.today }

// Selected returns the selected day, if any.
func (n *Navigator) Selected() (time.Time, bool) {
	if n.selected == nil {
		return time.Time{}, false
	}
	return *n.selected, true
}

// Snapshot copies the current state.
func (n *Navigator) Snapshot() View {
	v := View{Reference: n.reference, Today: n.today}
	if n.selected != nil {
		sel := *n.selected
		v.Selected = &sel
	}
	return v
}
