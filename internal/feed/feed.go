// Package feed maintains the list of events shown on the campus feed.
package feed

import (
	"sync"

	"campus-event-system/internal/model"
)

// Feed is the displayed event list. Add and Remove are idempotent:
// re-adding a present event or removing an absent one is a no-op.
type Feed struct {
	mu    sync.Mutex
	byID  map[string]*model.Event
	order []string
}

func New() *Feed {
	return &Feed{byID: make(map[string]*model.Event)}
}

// Add puts the event on the feed. Canceled events are skipped.
func (f *Feed) Add(ev *model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.Status == model.StatusCanceled {
		return
	}
	if _, ok := f.byID[ev.ID]; ok {
		return
	}
	f.byID[ev.ID] = ev
	f.order = append(f.order, ev.ID)
}

// Remove takes the event off the feed.
func (f *Feed) Remove(ev *model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[ev.ID]; !ok {
		return
	}
	delete(f.byID, ev.ID)
	for i, id := range f.order {
		if id == ev.ID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether an event is currently on the feed.
func (f *Feed) Contains(eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[eventID]
	return ok
}

// Events returns the feed in display order.
func (f *Feed) Events() []*model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out
}
