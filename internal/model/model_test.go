package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	for _, in := range []string{"meeting", "Task", " PERSONAL ", "reminder"} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q): %v", in, err)
		}
	}
	for _, in := range []string{"", "holiday", "meetings"} {
		if _, err := ParseKind(in); !errors.Is(err, ErrInvalidKind) {
			t.Errorf("ParseKind(%q) err = %v", in, err)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	neg := -1
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		d    EventDraft
		want error
	}{
		{EventDraft{Title: "ok", Date: at, Kind: KindTask}, nil},
		{EventDraft{Title: " ", Date: at, Kind: KindTask}, ErrEmptyTitle},
		{EventDraft{Title: "x", Kind: KindTask}, ErrZeroDate},
		{EventDraft{Title: "x", Date: at, Kind: "party"}, ErrInvalidKind},
		{EventDraft{Title: "x", Date: at, Kind: KindTask, ParticipantCount: &neg}, ErrNegativeParticipants},
	}
	for i, tc := range cases {
		if err := tc.d.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("case %d: err = %v, want %v", i, err, tc.want)
		}
	}
}

func TestBuildAndCategoryDefault(t *testing.T) {
	n := 2
	d := EventDraft{Title: "Lunch", Date: time.Now(), Kind: KindPersonal, ParticipantCount: &n, Category: "  "}
	ev := d.Build("id-1")
	if ev.ID != "id-1" || ev.Color != KindPersonal.DefaultColor() {
		t.Fatalf("Build = %+v", ev)
	}
	if ev.CategoryOrDefault() != DefaultCategory {
		t.Fatalf("category = %q", ev.CategoryOrDefault())
	}
	n = 5
	if *ev.ParticipantCount != 2 {
		t.Fatalf("Build aliased participant count")
	}
}

func TestPatchApplyKeepsID(t *testing.T) {
	ev := Event{ID: "keep", Title: "old", Kind: KindTask, Category: "bills"}
	title := "new"
	kind := KindMeeting
	got := EventPatch{Title: &title, Kind: &kind}.Apply(ev)
	if got.ID != "keep" || got.Title != "new" || got.Kind != KindMeeting || got.Category != "bills" {
		t.Fatalf("Apply = %+v", got)
	}

	bad := Kind("nope")
	if err := (EventPatch{Kind: &bad}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("Validate err = %v", err)
	}
}
