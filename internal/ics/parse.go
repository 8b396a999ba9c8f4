// Package ics converts between iCalendar data and calendar events.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "fincal/internal/log"
	"fincal/internal/model"
)

// Extension properties that carry fields iCalendar has no slot for.
const (
	PropertyKind         ical.ComponentProperty = "X-FINCAL-KIND"
	PropertyParticipants ical.ComponentProperty = "X-FINCAL-PARTICIPANTS"
)

const propertyColor ical.ComponentProperty = "COLOR"

// ImportedEvent is one VEVENT mapped onto a draft, with its recurrence
// rule kept aside for expansion.
type ImportedEvent struct {
	UID   string
	Draft model.EventDraft
	// RRule is the raw RRULE value, empty for single events.
	RRule   string
	ExDates []time.Time
}

// Parse reads an iCalendar stream. Invalid VEVENTs are logged and skipped.
func Parse(r io.Reader, name string) ([]ImportedEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		appLog.Error("ics parse failed", err, "source", name)
		return nil, fmt.Errorf("ics: parse %s: %w", name, err)
	}

	out := make([]ImportedEvent, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "source", name)
			continue
		}
		out = append(out, ev)
	}

	appLog.Info("ics parse completed", "source", name, "event_count", len(out))
	return out, nil
}

// Expand turns imported events into drafts, expanding recurring ones
// inside w. EXDATEs are matched on exact start time.
func Expand(events []ImportedEvent, w Window) []model.EventDraft {
	out := make([]model.EventDraft, 0, len(events))
	for _, ev := range events {
		if ev.RRule == "" {
			out = append(out, ev.Draft)
			continue
		}
		times, _, err := ExpandRule(ev.RRule, ev.Draft.Date, w)
		if err != nil {
			appLog.Error("ics recurrence skipped", err, "uid", ev.UID)
			continue
		}
		for _, t := range times {
			if excluded(t, ev.ExDates) {
				continue
			}
			d := ev.Draft
			d.Date = t
			out = append(out, d)
		}
	}
	return out
}

func excluded(t time.Time, exdates []time.Time) bool {
	for _, ex := range exdates {
		if ex.Equal(t) {
			return true
		}
	}
	return false
}

func parseVEvent(ve *ical.VEvent) (ImportedEvent, error) {
	var out ImportedEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}

	p := ve.GetProperty(ical.ComponentPropertySummary)
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return out, errors.New("missing SUMMARY")
	}
	out.Draft.Title = p.Value

	start, zone, err := startOf(ve)
	if err != nil {
		return out, err
	}
	out.Draft.Date = start

	attendees := ve.GetProperties(ical.ComponentPropertyAttendee)
	if n := len(attendees); n > 0 {
		out.Draft.ParticipantCount = &n
	} else if pp := ve.GetProperty(PropertyParticipants); pp != nil {
		if n, ok := participantsFromString(pp.Value); ok {
			out.Draft.ParticipantCount = &n
		}
	}

	out.Draft.Kind = model.KindPersonal
	if len(attendees) > 0 {
		out.Draft.Kind = model.KindMeeting
	}
	if kp := ve.GetProperty(PropertyKind); kp != nil {
		k, err := model.ParseKind(kp.Value)
		if err != nil {
			return out, fmt.Errorf("%s %q: %w", PropertyKind, kp.Value, err)
		}
		out.Draft.Kind = k
	}

	if cp := ve.GetProperty(ical.ComponentPropertyCategories); cp != nil {
		out.Draft.Category = categoryOf(cp.Value, ve.GetProperty(PropertyKind) != nil)
	}
	if cp := ve.GetProperty(propertyColor); cp != nil {
		out.Draft.Color = cp.Value
	}

	if rp := ve.GetProperty(ical.ComponentPropertyRrule); rp != nil {
		out.RRule = rp.Value
	}
	for _, xp := range ve.GetProperties(ical.ComponentPropertyExdate) {
		tzid := ""
		if tz, ok := xp.ICalParameters["TZID"]; ok && len(tz) > 0 {
			tzid = tz[0]
		}
		for _, part := range strings.Split(xp.Value, ",") {
			t, err := parseExDate(part, tzid, zone)
			if err != nil {
				appLog.Debug("ics exdate skipped", "uid", out.UID, "value", part, "err", err)
				continue
			}
			out.ExDates = append(out.ExDates, wallClock(t))
		}
	}

	return out, nil
}

// startOf reads DTSTART and returns its wall clock together with the zone
// it was written in. TZID-qualified values are resolved by the library;
// UTC values keep UTC; floating values use the local zone. No conversion
// to the local zone is applied to the wall clock.
func startOf(ve *ical.VEvent) (time.Time, *time.Location, error) {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, nil, errors.New("missing DTSTART")
	}
	if tz, ok := prop.ICalParameters["TZID"]; ok && len(tz) > 0 {
		t, err := ve.GetStartAt()
		if err != nil {
			return time.Time{}, nil, err
		}
		return wallClock(t), t.Location(), nil
	}
	t, err := parseICSTime(prop.Value)
	if err != nil {
		return time.Time{}, nil, err
	}
	return wallClock(t), t.Location(), nil
}

// parseExDate resolves one EXDATE value into DTSTART's zone so that its
// wall clock lines up with the expanded occurrences. UTC and TZID values
// are instants; floating and date-only values are already wall clock in
// that zone.
func parseExDate(v, tzid string, zone *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if zone == nil {
		zone = time.Local
	}
	switch {
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse(layoutUTC, v)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(zone), nil
	case tzid != "":
		loc, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, fmt.Errorf("exdate tzid %q: %w", tzid, err)
		}
		t, err := time.ParseInLocation(layoutFloating, v, loc)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(zone), nil
	case strings.Contains(v, "T"):
		return time.ParseInLocation(layoutFloating, v, zone)
	default:
		return time.ParseInLocation(layoutDate, v, zone)
	}
}

// categoryOf picks the event category from a CATEGORIES value. Files this
// app exported (marked by the kind property) carry one free-text category
// that may itself contain commas; for other files only the first listed
// category is kept.
func categoryOf(v string, ownExport bool) string {
	if ownExport {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(strings.Split(v, ",")[0])
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// parseICSTime handles the basic DATE, DATE-TIME and UTC DATE-TIME forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse(layoutUTC, v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation(layoutFloating, v, time.Local)
	}
	return time.ParseInLocation(layoutDate, v, time.Local)
}

const (
	layoutUTC      = "20060102T150405Z"
	layoutFloating = "20060102T150405"
	layoutDate     = "20060102"
)

func participantsFromString(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
