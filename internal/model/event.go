package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusScheduled EventStatus = "SCHEDULED"
	StatusCanceled  EventStatus = "CANCELED"
)

// ErrInvalidTitle is returned by UpdateTitle when the new title breaks
// one or more naming rules. All violations are listed in the message.
var ErrInvalidTitle = errors.New("invalid event title")

var (
	titlePattern = regexp.MustCompile(`^[A-Za-z0-9 '&:\-]+$`)
	bannedWords  = []string{"inappropriate", "test event", "dummy"}
)

// Event is a scheduled happening: a review session, club meeting, class.
// CancellationReason, CanceledAt and CanceledBy are set iff Status is
// StatusCanceled; Cancel and Restore keep that invariant.
type Event struct {
	ID                 string
	Title              string
	Description        string
	StartsAt           time.Time
	EndsAt             time.Time
	Location           string
	OrganizerID        string
	OrganizerName      string
	Status             EventStatus
	CancellationReason string
	CanceledAt         time.Time
	CanceledBy         string
}

// Cancel marks the event canceled and stamps the cancellation metadata.
func (e *Event) Cancel(reason, by string, at time.Time) {
	e.Status = StatusCanceled
	e.CancellationReason = reason
	e.CanceledAt = at
	e.CanceledBy = by
}

// Restore puts the event back to prev and clears cancellation metadata.
func (e *Event) Restore(prev EventStatus) {
	e.Status = prev
	e.CancellationReason = ""
	e.CanceledAt = time.Time{}
	e.CanceledBy = ""
}

// IsVirtual reports whether the event has no physical venue.
func (e *Event) IsVirtual() bool {
	loc := strings.ToLower(e.Location)
	return loc == "" || strings.Contains(loc, "virtual") || strings.Contains(loc, "online")
}

// UpdateTitle validates and applies a new title.
func (e *Event) UpdateTitle(title string) error {
	cleaned := strings.TrimSpace(title)

	var problems []string
	if cleaned == "" {
		problems = append(problems, "title cannot be empty")
	}
	if len(cleaned) < 5 || len(cleaned) > 100 {
		problems = append(problems, "title must be between 5 and 100 characters")
	}
	if cleaned != "" && !titlePattern.MatchString(cleaned) {
		problems = append(problems, "title contains invalid characters")
	}
	lower := strings.ToLower(cleaned)
	for _, w := range bannedWords {
		if strings.Contains(lower, w) {
			problems = append(problems, fmt.Sprintf("title cannot contain %q", w))
		}
	}
	if cleaned == e.Title {
		problems = append(problems, "new title must differ from the current one")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTitle, strings.Join(problems, "; "))
	}

	e.Title = cleaned
	return nil
}
