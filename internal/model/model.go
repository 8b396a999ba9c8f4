package model

import (
	"errors"
	"strings"
	"time"
)

// Kind classifies an event for statistics grouping. The set is closed.
type Kind string

const (
	KindMeeting  Kind = "meeting"
	KindTask     Kind = "task"
	KindPersonal Kind = "personal"
	KindReminder Kind = "reminder"
)

// DefaultCategory is used for events that carry no category.
const DefaultCategory = "general"

var (
	ErrInvalidKind          = errors.New("model: invalid event kind")
	ErrEmptyTitle           = errors.New("model: event title is empty")
	ErrNegativeParticipants = errors.New("model: participant count is negative")
	ErrZeroDate             = errors.New("model: event date is zero")
)

// Kinds lists every Kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindMeeting, KindTask, KindPersonal, KindReminder}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMeeting, KindTask, KindPersonal, KindReminder:
		return true
	}
	return false
}

// DefaultColor returns the display color token used when an event has none.
func (k Kind) DefaultColor() string {
	switch k {
	case KindMeeting:
		return "blue"
	case KindTask:
		return "green"
	case KindPersonal:
		return "purple"
	case KindReminder:
		return "orange"
	}
	return "gray"
}

// ParseKind converts a user-supplied string into a Kind.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Event is a single calendar entry.
//
// Date carries the day used for bucketing plus an optional time of day.
// No timezone conversion is ever applied to it.
type Event struct {
	ID    string    `json:"id" yaml:"id"`
	Title string    `json:"title" yaml:"title"`
	Date  time.Time `json:"date" yaml:"date"`
	Color string    `json:"color" yaml:"color"`
	Kind  Kind      `json:"kind" yaml:"kind"`

	// ParticipantCount is nil when unknown.
	ParticipantCount *int `json:"participant_count,omitempty" yaml:"participant_count,omitempty"`

	// Category is free text; empty means DefaultCategory.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// CategoryOrDefault returns the event category, falling back to DefaultCategory.
func (e Event) CategoryOrDefault() string {
	if strings.TrimSpace(e.Category) == "" {
		return DefaultCategory
	}
	return e.Category
}

// Clone returns a copy that shares no pointers with e.
func (e Event) Clone() Event {
	if e.ParticipantCount != nil {
		n := *e.ParticipantCount
		e.ParticipantCount = &n
	}
	return e
}

// EventDraft is an event that has not been assigned an id yet.
type EventDraft struct {
	Title            string    `json:"title" yaml:"title"`
	Date             time.Time `json:"date" yaml:"date"`
	Color            string    `json:"color,omitempty" yaml:"color,omitempty"`
	Kind             Kind      `json:"kind" yaml:"kind"`
	ParticipantCount *int      `json:"participant_count,omitempty" yaml:"participant_count,omitempty"`
	Category         string    `json:"category,omitempty" yaml:"category,omitempty"`
}

// Validate checks the draft at input boundaries (HTTP, seed files).
// The store itself accepts any draft.
func (d EventDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Date.IsZero() {
		return ErrZeroDate
	}
	if !d.Kind.Valid() {
		return ErrInvalidKind
	}
	if d.ParticipantCount != nil && *d.ParticipantCount < 0 {
		return ErrNegativeParticipants
	}
	return nil
}

// Build turns the draft into an Event with the given id, filling the
// color from the kind when it is missing.
func (d EventDraft) Build(id string) Event {
	ev := Event{
		ID:       id,
		Title:    d.Title,
		Date:     d.Date,
		Color:    d.Color,
		Kind:     d.Kind,
		Category: strings.TrimSpace(d.Category),
	}
	if ev.Color == "" {
		ev.Color = d.Kind.DefaultColor()
	}
	if d.ParticipantCount != nil {
		n := *d.ParticipantCount
		ev.ParticipantCount = &n
	}
	return ev
}

// EventPatch holds the fields of a partial update. Nil fields are left
// untouched. There is deliberately no ID field.
type EventPatch struct {
	Title            *string    `json:"title,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	Color            *string    `json:"color,omitempty"`
	Kind             *Kind      `json:"kind,omitempty"`
	ParticipantCount *int       `json:"participant_count,omitempty"`
	Category         *string    `json:"category,omitempty"`
}

// Validate rejects patches that would break the Event invariants.
// Category stays free text.
func (p EventPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrZeroDate
	}
	if p.Kind != nil && !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if p.ParticipantCount != nil && *p.ParticipantCount < 0 {
		return ErrNegativeParticipants
	}
	return nil
}

// Apply merges the patch into e and returns the result. e.ID is preserved.
func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.ParticipantCount != nil {
		n := *p.ParticipantCount
		e.ParticipantCount = &n
	}
	if p.Category != nil {
		e.Category = strings.TrimSpace(*p.Category)
	}
	return e
}
