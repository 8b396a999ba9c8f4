package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "fincal/internal/log"
)

const defaultMaxOccurrences = 1000

// Window bounds recurrence expansion. Both ends are inclusive.
type Window struct {
	Start time.Time
	End   time.Time

	// MaxOccurrences caps a single rule; zero means defaultMaxOccurrences.
	MaxOccurrences int
}

// ExpandRule returns the start times produced by the RRULE value rule
// (without the "RRULE:" prefix) for a series starting at dtstart, limited
// to w. The second result reports whether the cap truncated the series.
//
// Occurrences keep dtstart's location and wall clock.
func ExpandRule(rule string, dtstart time.Time, w Window) ([]time.Time, bool, error) {
	if w.End.Before(w.Start) {
		return nil, false, errors.New("expand: window end is before start")
	}
	if w.MaxOccurrences <= 0 {
		w.MaxOccurrences = defaultMaxOccurrences
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, false, fmt.Errorf("expand: parse rrule %q: %w", rule, err)
	}
	r.DTStart(dtstart)

	loc := dtstart.Location()
	times := r.Between(w.Start.In(loc), w.End.In(loc), true)

	truncated := false
	if len(times) > w.MaxOccurrences {
		times = times[:w.MaxOccurrences]
		truncated = true
		appLog.Warn("expand: occurrences truncated", "rrule", rule, "cap", w.MaxOccurrences)
	}
	return times, truncated, nil
}
