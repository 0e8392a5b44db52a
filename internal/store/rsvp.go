package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-event-system/internal/model"
)

var ErrRSVPNotFound = errors.New("rsvp not found")

// RSVPStore holds RSVP records in insertion order. Add is unconditional;
// duplicate prevention, if wanted, belongs to the caller.
type RSVPStore struct {
	mu    sync.RWMutex
	rsvps []model.RSVP
}

func NewRSVPStore() *RSVPStore {
	return &RSVPStore{}
}

// Add appends an RSVP exactly as given.
func (s *RSVPStore) Add(r model.RSVP) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rsvps = append(s.rsvps, r)
}

// Create builds a confirmed RSVP for a student and appends it.
func (s *RSVPStore) Create(eventID, studentID, name, email string) model.RSVP {
	r := model.RSVP{
		ID:           uuid.New().String(),
		EventID:      eventID,
		StudentID:    studentID,
		StudentName:  name,
		StudentEmail: email,
		Status:       model.RSVPConfirmed,
		CreatedAt:    time.Now(),
	}
	s.Add(r)
	return r
}

// Confirmed returns the confirmed RSVPs for an event, oldest first.
func (s *RSVPStore) Confirmed(eventID string) []model.RSVP {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.RSVP
	for _, r := range s.rsvps {
		if r.EventID == eventID && r.Status == model.RSVPConfirmed {
			out = append(out, r)
		}
	}
	return out
}

// Count is the number of confirmed RSVPs for an event.
func (s *RSVPStore) Count(eventID string) int {
	return len(s.Confirmed(eventID))
}

// CancelRSVP withdraws an RSVP. The record stays, flipped to CANCELED.
func (s *RSVPStore) CancelRSVP(rsvpID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rsvps {
		if s.rsvps[i].ID == rsvpID {
			s.rsvps[i].Status = model.RSVPCanceled
			return nil
		}
	}
	return ErrRSVPNotFound
}

// ByStudent returns every RSVP a student has made, oldest first.
func (s *RSVPStore) ByStudent(studentID string) []model.RSVP {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.RSVP
	for _, r := range s.rsvps {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}
