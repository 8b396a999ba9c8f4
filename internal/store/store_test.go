package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"fincal/internal/model"
)

func seqIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	})
}

func draft(title string, at time.Time, k model.Kind) model.EventDraft {
	return model.EventDraft{Title: title, Date: at, Kind: k}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := New()
	a := s.Add(draft("a", time.Now(), model.KindTask))
	b := s.Add(draft("b", time.Now(), model.KindTask))
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.Color != model.KindTask.DefaultColor() {
		t.Fatalf("default color not applied: %q", a.Color)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestEventsOnDayIgnoresTimeOfDay(t *testing.T) {
	s := New(seqIDs())
	s.Add(draft("early", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), model.KindTask))
	s.Add(draft("late", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), model.KindMeeting))
	s.Add(draft("next", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), model.KindMeeting))

	for _, q := range []time.Time{
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
	} {
		if got := s.EventsOnDay(q); len(got) != 2 {
			t.Fatalf("EventsOnDay(%s) = %d events, want 2", q, len(got))
		}
	}

	sorted := s.EventsOnDaySorted(time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC))
	if sorted[0].Title != "early" || sorted[1].Title != "late" {
		t.Fatalf("unexpected order: %q, %q", sorted[0].Title, sorted[1].Title)
	}
}

func TestEventsInMonth(t *testing.T) {
	s := New(seqIDs())
	s.Add(draft("feb", time.Date(2024, 2, 29, 11, 30, 0, 0, time.UTC), model.KindPersonal))
	s.Add(draft("mar", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), model.KindTask))
	s.Add(draft("feb-last-year", time.Date(2023, 2, 10, 9, 0, 0, 0, time.UTC), model.KindTask))

	got := s.EventsInMonth(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if len(got) != 1 || got[0].Title != "feb" {
		t.Fatalf("EventsInMonth = %+v", got)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := New(seqIDs())
	ev := s.Add(draft("standup", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), model.KindMeeting))

	title := "retro"
	cat := "work"
	n := 4
	s.Update(ev.ID, model.EventPatch{Title: &title, Category: &cat, ParticipantCount: &n})

	got, err := s.Get(ev.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != ev.ID || got.Title != "retro" || got.Category != "work" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ParticipantCount == nil || *got.ParticipantCount != 4 {
		t.Fatalf("participant count = %v", got.ParticipantCount)
	}
	if !got.Date.Equal(ev.Date) || got.Kind != model.KindMeeting {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	// The caller's pointer must not alias stored state.
	n = 99
	got, _ = s.Get(ev.ID)
	if *got.ParticipantCount != 4 {
		t.Fatalf("stored count aliased caller memory")
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	s := New(seqIDs())
	s.Add(draft("a", time.Now(), model.KindTask))

	title := "x"
	s.Update("missing", model.EventPatch{Title: &title})
	s.Remove("missing")
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	if err := s.UpdateStrict("missing", model.EventPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStrict err = %v", err)
	}
	if err := s.RemoveStrict("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveStrict err = %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := New(seqIDs())
	a := s.Add(draft("a", time.Now(), model.KindTask))
	b := s.Add(draft("b", time.Now(), model.KindTask))

	s.Remove(a.ID)
	all := s.All()
	if len(all) != 1 || all[0].ID != b.ID {
		t.Fatalf("All after remove = %+v", all)
	}
}

func TestUpcoming(t *testing.T) {
	s := New(seqIDs())
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	s.Add(draft("past", base.Add(-time.Hour), model.KindTask))
	s.Add(draft("third", base.Add(3*time.Hour), model.KindTask))
	s.Add(draft("first", base, model.KindTask))
	s.Add(draft("second", base.Add(time.Hour), model.KindTask))

	got := s.Upcoming(base, 2)
	if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" {
		t.Fatalf("Upcoming = %+v", got)
	}
	if all := s.Upcoming(base, 0); len(all) != 3 {
		t.Fatalf("Upcoming no limit = %d, want 3", len(all))
	}
}

func TestSeed(t *testing.T) {
	s := New(seqIDs())
	created := s.Seed([]model.EventDraft{
		draft("a", time.Now(), model.KindTask),
		draft("b", time.Now(), model.KindReminder),
	})
	if len(created) != 2 || s.Len() != 2 {
		t.Fatalf("seeded %d, store has %d", len(created), s.Len())
	}
}
