// Package courses creates course-scoped events for professors and runs
// the override workflow for drafts that collide with an existing booking.
package courses

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"campus-event-system/internal/feed"
	"campus-event-system/internal/model"
	"campus-event-system/internal/store"
)

var (
	ErrNotCourseOwner   = errors.New("course does not belong to professor")
	ErrInvalidDraft     = errors.New("invalid event draft")
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrOverrideNotFound = errors.New("override request not found")
	ErrAlreadyDecided   = errors.New("override request already decided")
)

// Section is one course section a professor teaches.
type Section struct {
	ID         string
	CourseCode string
	Name       string
}

// Service owns course event creation and override requests. Created
// events go into the shared event store and the activity feed.
type Service struct {
	events *store.EventStore
	feed   *feed.Feed

	mu            sync.Mutex
	eventCounter  int
	reqCounter    int
	overrides     map[string]*model.OverrideRequest
	reqOrder      []string
	courseByEvent map[string]string
}

func NewService(events *store.EventStore, f *feed.Feed) *Service {
	return &Service{
		events:        events,
		feed:          f,
		overrides:     make(map[string]*model.OverrideRequest),
		courseByEvent: make(map[string]string),
	}
}

// Sections lists the course sections the professor teaches. Static data
// standing in for a registrar lookup.
func (s *Service) Sections(professorID string) []Section {
	_ = professorID
	return []Section{
		{ID: "cs101_fall2025", CourseCode: "CS101", Name: "Intro to Computer Science"},
		{ID: "cs201_fall2025", CourseCode: "CS201", Name: "Data Structures"},
		{ID: "cs301_fall2025", CourseCode: "CS301", Name: "Algorithms"},
	}
}

// OwnsCourse reports whether the course code appears in the professor's
// sections.
func (s *Service) OwnsCourse(courseCode, professorID string) bool {
	for _, sec := range s.Sections(professorID) {
		if sec.CourseCode == courseCode {
			return true
		}
	}
	return false
}

// CreateCourseEvent validates and books a course event, such as an exam
// review session. A booking collision returns ErrScheduleConflict; the
// caller may then file an override request for the same draft.
func (s *Service) CreateCourseEvent(professorID, professorName, courseCode, title, description string, startsAt, endsAt time.Time, location string) (*model.Event, error) {
	if !s.OwnsCourse(courseCode, professorID) {
		return nil, fmt.Errorf("%w: %s", ErrNotCourseOwner, courseCode)
	}
	if err := validateDraft(title, startsAt, endsAt); err != nil {
		return nil, err
	}
	if location != "" && s.events.HasOverlap(startsAt, endsAt, location) {
		return nil, fmt.Errorf("%w: %s is already booked in that window", ErrScheduleConflict, location)
	}

	ev := &model.Event{
		ID:            s.nextEventID(),
		Title:         strings.TrimSpace(title),
		Description:   description,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Location:      location,
		OrganizerID:   professorID,
		OrganizerName: professorName,
		Status:        model.StatusScheduled,
	}
	if err := s.events.Create(ev); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.courseByEvent[ev.ID] = courseCode
	s.mu.Unlock()

	s.feed.Add(ev)
	return ev, nil
}

// RequestOverride files a pending override for a draft that hit a
// schedule conflict.
func (s *Service) RequestOverride(draft model.EventDraft, conflictReason string) *model.OverrideRequest {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reqCounter++
	req := &model.OverrideRequest{
		ID:             fmt.Sprintf("override_req_%04d", s.reqCounter),
		Draft:          draft,
		ConflictReason: conflictReason,
		Status:         model.OverridePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.overrides[req.ID] = req
	s.reqOrder = append(s.reqOrder, req.ID)
	return req
}

// Decide resolves a pending override request. A non-empty denyReason
// denies it; otherwise it is approved and the draft becomes a real
// event, skipping the conflict check the override exists to bypass.
// Deciding twice fails with ErrAlreadyDecided.
func (s *Service) Decide(overrideID, denyReason string) (*model.OverrideRequest, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.overrides[overrideID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOverrideNotFound, overrideID)
	}
	if req.Status != model.OverridePending {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, overrideID, req.Status)
	}

	if denyReason != "" {
		req.Deny(denyReason, now)
		return req, nil
	}

	ev := &model.Event{
		ID:            s.nextEventIDLocked(),
		Title:         strings.TrimSpace(req.Draft.Title),
		Description:   req.Draft.Description,
		StartsAt:      req.Draft.StartsAt,
		EndsAt:        req.Draft.EndsAt,
		Location:      req.Draft.Location,
		OrganizerID:   req.Draft.OrganizerID,
		OrganizerName: req.Draft.OrganizerName,
		Status:        model.StatusScheduled,
	}
	if err := s.events.Create(ev); err != nil {
		return nil, err
	}
	if req.Draft.CourseCode != "" {
		s.courseByEvent[ev.ID] = req.Draft.CourseCode
	}
	s.feed.Add(ev)

	req.Approve(now)
	return req, nil
}

// Requests returns all override requests in filing order.
func (s *Service) Requests() []*model.OverrideRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.OverrideRequest, 0, len(s.reqOrder))
	for _, id := range s.reqOrder {
		out = append(out, s.overrides[id])
	}
	return out
}

// CourseOf reports which course an event was created for.
func (s *Service) CourseOf(eventID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.courseByEvent[eventID]
	return code, ok
}

func (s *Service) nextEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextEventIDLocked()
}

func (s *Service) nextEventIDLocked() string {
	s.eventCounter++
	return fmt.Sprintf("evt_%04d", s.eventCounter)
}

func validateDraft(title string, startsAt, endsAt time.Time) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidDraft)
	}
	if startsAt.IsZero() || endsAt.IsZero() {
		return fmt.Errorf("%w: times required", ErrInvalidDraft)
	}
	if !endsAt.After(startsAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidDraft)
	}
	if startsAt.Before(time.Now().Add(-5 * time.Minute)) {
		return fmt.Errorf("%w: cannot book in the past", ErrInvalidDraft)
	}
	return nil
}
