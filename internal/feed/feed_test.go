package feed_test

import (
	"testing"
	"time"

	"campus-event-system/internal/feed"
	"campus-event-system/internal/model"
)

func mkEvent(id string) *model.Event {
	start := time.Now().Add(24 * time.Hour)
	return &model.Event{
		ID:       id,
		Title:    "Event " + id,
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
		Status:   model.StatusScheduled,
	}
}

func TestAddAndRemove(t *testing.T) {
	f := feed.New()
	ev := mkEvent("evt_0001")

	f.Add(ev)
	if !f.Contains(ev.ID) {
		t.Fatal("event not on feed after add")
	}

	f.Remove(ev)
	if f.Contains(ev.ID) {
		t.Fatal("event still on feed after remove")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	f := feed.New()
	ev := mkEvent("evt_0001")

	f.Add(ev)
	f.Add(ev)
	if got := f.Events(); len(got) != 1 {
		t.Fatalf("expected 1 feed entry, got %d", len(got))
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	f := feed.New()
	f.Add(mkEvent("evt_0001"))

	f.Remove(mkEvent("evt_9999"))
	if got := f.Events(); len(got) != 1 {
		t.Fatalf("remove of absent event changed the feed: %d entries", len(got))
	}
}

func TestAddSkipsCanceled(t *testing.T) {
	f := feed.New()
	ev := mkEvent("evt_0001")
	ev.Cancel("sick", "prof_edwards", time.Now())

	f.Add(ev)
	if f.Contains(ev.ID) {
		t.Fatal("canceled event landed on the feed")
	}
}

func TestEventsKeepDisplayOrder(t *testing.T) {
	f := feed.New()
	for _, id := range []string{"evt_0002", "evt_0001", "evt_0003"} {
		f.Add(mkEvent(id))
	}
	f.Remove(mkEvent("evt_0001"))
	f.Add(mkEvent("evt_0004"))

	got := f.Events()
	want := []string{"evt_0002", "evt_0003", "evt_0004"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, ev := range got {
		if ev.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, ev.ID, want[i])
		}
	}
}
