// Package store holds calendar events in memory.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fincal/internal/grid"
	appLog "fincal/internal/log"
	"fincal/internal/model"
)

// ErrNotFound is returned by Get and the strict mutation variants.
var ErrNotFound = errors.New("store: event not found")

// Store is an in-memory event collection. Mutations are applied in call
// order and are visible to the next read. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	events []model.Event
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides id generation (uuid v4 by default).
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed adds every draft and returns the created events.
func (s *Store) Seed(drafts []model.EventDraft) []model.Event {
	out := make([]model.Event, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, s.Add(d))
	}
	return out
}

// Add assigns a fresh id to d, stores it and returns the stored event.
// d is not validated; callers taking outside input run EventDraft.Validate
// first. Events with an unknown kind are left out of per-kind statistics.
func (s *Store) Add(d model.EventDraft) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := d.Build(s.newID())
	s.events = append(s.events, ev)
	appLog.Debug("store: event added", "id", ev.ID, "kind", ev.Kind, "date", ev.Date.Format(time.RFC3339))
	return ev.Clone()
}

// Update merges p into the event with the given id. Unknown ids are a
// silent no-op; use UpdateStrict to observe them.
func (s *Store) Update(id string, p model.EventPatch) {
	_ = s.UpdateStrict(id, p)
}

// UpdateStrict is Update but returns ErrNotFound for unknown ids.
func (s *Store) UpdateStrict(id string, p model.EventPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		appLog.Debug("store: update of unknown event", "id", id)
		return ErrNotFound
	}
	s.events[i] = p.Apply(s.events[i])
	appLog.Debug("store: event updated", "id", id)
	return nil
}

// Remove deletes the event with the given id. Unknown ids are a silent
// no-op; use RemoveStrict to observe them.
func (s *Store) Remove(id string) {
	_ = s.RemoveStrict(id)
}

// RemoveStrict is Remove but returns ErrNotFound for unknown ids.
func (s *Store) RemoveStrict(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		appLog.Debug("store: remove of unknown event", "id", id)
		return ErrNotFound
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	appLog.Debug("store: event removed", "id", id)
	return nil
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Event{}, ErrNotFound
	}
	return s.events[i].Clone(), nil
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// All returns a snapshot of every event. Order is unspecified.
func (s *Store) All() []model.Event {
	return s.filter(func(model.Event) bool { return true })
}

// EventsOnDay returns the events whose date falls on day's calendar day.
// Time of day is ignored on both sides.
func (s *Store) EventsOnDay(day time.Time) []model.Event {
	return s.filter(func(e model.Event) bool { return grid.SameDay(e.Date, day) })
}

// EventsOnDaySorted is EventsOnDay ordered by time, then title.
func (s *Store) EventsOnDaySorted(day time.Time) []model.Event {
	out := s.EventsOnDay(day)
	SortByTime(out)
	return out
}

// EventsInMonth returns the events in month's year and month.
func (s *Store) EventsInMonth(month time.Time) []model.Event {
	return s.filter(func(e model.Event) bool { return grid.InMonth(e.Date, month) })
}

// Upcoming returns up to limit events at or after from, earliest first.
// A limit <= 0 means no limit.
func (s *Store) Upcoming(from time.Time, limit int) []model.Event {
	out := s.filter(func(e model.Event) bool { return !e.Date.Before(from) })
	SortByTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortByTime orders events by date, then title, then id.
func SortByTime(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

func (s *Store) filter(keep func(model.Event) bool) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}
