package store

import (
	"errors"
	"sync"
	"time"

	"campus-event-system/internal/model"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrDuplicateEvent = errors.New("event id already exists")
)

// EventStore keeps events in memory, insertion order preserved. Events
// are shared by pointer: callers mutate them through the cancellation
// manager, never by reaching into the store.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*model.Event
	order  []string
}

func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*model.Event)}
}

// Create stores an event under its id.
func (s *EventStore) Create(ev *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; ok {
		return ErrDuplicateEvent
	}
	s.events[ev.ID] = ev
	s.order = append(s.order, ev.ID)
	return nil
}

// Get returns the event with the given id.
func (s *EventStore) Get(id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// All returns every stored event, oldest first.
func (s *EventStore) All() []*model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id])
	}
	return out
}

// Upcoming returns the non-canceled events that have not started yet,
// oldest first.
func (s *EventStore) Upcoming(now time.Time) []*model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Event
	for _, id := range s.order {
		ev := s.events[id]
		if ev.Status == model.StatusCanceled || !ev.StartsAt.After(now) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Virtual returns the events with no physical venue, oldest first.
func (s *EventStore) Virtual() []*model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Event
	for _, id := range s.order {
		if ev := s.events[id]; ev.IsVirtual() {
			out = append(out, ev)
		}
	}
	return out
}

// HasOverlap reports whether any non-canceled event at the same location
// overlaps the half-open interval [start, end).
func (s *EventStore) HasOverlap(start, end time.Time, location string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		ev := s.events[id]
		if ev.Status == model.StatusCanceled || ev.Location != location {
			continue
		}
		if ev.StartsAt.Before(end) && ev.EndsAt.After(start) {
			return true
		}
	}
	return false
}
