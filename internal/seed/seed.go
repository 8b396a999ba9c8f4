// Package seed produces the events a store starts with.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fincal/internal/grid"
	"fincal/internal/ics"
	appLog "fincal/internal/log"
	"fincal/internal/model"
)

// Entry is one seed record as written in a YAML seed file.
//
//	events:
//	  - title: Pay rent
//	    date: "2024-03-01 09:00"
//	    kind: reminder
//	    category: bills
//	    rrule: FREQ=MONTHLY
type Entry struct {
	Title        string `yaml:"title"`
	Date         string `yaml:"date"`
	Kind         string `yaml:"kind"`
	Color        string `yaml:"color,omitempty"`
	Category     string `yaml:"category,omitempty"`
	Participants *int   `yaml:"participants,omitempty"`
	// RRule is expanded once at load time inside the seed window.
	RRule string `yaml:"rrule,omitempty"`
}

type file struct {
	Events []Entry `yaml:"events"`
}

// Options drives Load.
type Options struct {
	Builtin bool
	Files   []string
	// Now anchors the built-in samples and the expansion window.
	Now time.Time
	// HorizonMonths is the window length, starting at Now's month.
	HorizonMonths int
}

// Window returns the recurrence window for opts.
func (o Options) Window() ics.Window {
	start := grid.FirstOfMonth(o.Now)
	months := o.HorizonMonths
	if months <= 0 {
		months = 12
	}
	return ics.Window{Start: start, End: start.AddDate(0, months, 0).Add(-time.Nanosecond)}
}

// Load gathers drafts from the built-in samples and every seed file.
// A file that fails to load is reported and the rest are still used.
func Load(opts Options) ([]model.EventDraft, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	w := opts.Window()

	var drafts []model.EventDraft
	var errs []error

	if opts.Builtin {
		d, err := expandEntries(Builtin(opts.Now), w)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed: builtin: %w", err))
		}
		drafts = append(drafts, d...)
	}

	for _, path := range opts.Files {
		d, err := LoadFile(path, w)
		if err != nil {
			appLog.Error("seed file failed", err, "path", path)
			errs = append(errs, err)
			continue
		}
		appLog.Info("seed file loaded", "path", path, "event_count", len(d))
		drafts = append(drafts, d...)
	}

	return drafts, errors.Join(errs...)
}

// LoadFile reads one seed file. ".ics" files are parsed as iCalendar,
// anything else as YAML.
func LoadFile(path string, w ics.Window) ([]model.EventDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".ics") {
		events, err := ics.Parse(bytes.NewReader(data), path)
		if err != nil {
			return nil, err
		}
		return ics.Expand(events, w), nil
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode %s: %w", path, err)
	}
	d, err := expandEntries(f.Events, w)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return d, nil
}

func expandEntries(entries []Entry, w ics.Window) ([]model.EventDraft, error) {
	out := make([]model.EventDraft, 0, len(entries))
	for i, e := range entries {
		d, err := e.Draft()
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Title, err)
		}
		if e.RRule == "" {
			out = append(out, d)
			continue
		}
		times, _, err := ics.ExpandRule(e.RRule, d.Date, w)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Title, err)
		}
		for _, t := range times {
			occ := d
			occ.Date = t
			out = append(out, occ)
		}
	}
	return out, nil
}

// Draft validates the entry and converts it.
func (e Entry) Draft() (model.EventDraft, error) {
	kind, err := model.ParseKind(e.Kind)
	if err != nil {
		return model.EventDraft{}, err
	}
	at, err := ParseDate(e.Date)
	if err != nil {
		return model.EventDraft{}, err
	}
	d := model.EventDraft{
		Title:            strings.TrimSpace(e.Title),
		Date:             at,
		Color:            e.Color,
		Kind:             kind,
		ParticipantCount: e.Participants,
		Category:         e.Category,
	}
	return d, d.Validate()
}

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a local date with optional time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("seed: unrecognized date %q", s)
}
