// Package calsync renders events as iCalendar documents and pushes them
// to named external calendar integrations, keeping a per-attempt result
// history. Pushes are simulated: the payload a real client would send is
// built and logged, never transmitted.
package calsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/calendar/v3"

	"campus-event-system/internal/model"
)

// Integration names recognized out of the box. The set is open: anything
// else can be wired in with Register.
const (
	IntegrationGoogle  = "google_calendar"
	IntegrationOutlook = "outlook"
)

var ErrICSGeneration = errors.New("ics generation failed")

// SyncResult is one push attempt against one integration. Append-only.
type SyncResult struct {
	EventID     string
	Integration string
	Success     bool
	Timestamp   time.Time
	Message     string
}

// SyncReport aggregates one Sync call.
type SyncReport struct {
	EventID      string
	EventTitle   string
	EventStatus  model.EventStatus
	ICSGenerated bool
	ICSSize      int
	Synced       int
	Failed       int
	Results      []SyncResult
	Timestamp    time.Time
}

// Pusher sends a rendered event to one external calendar system.
type Pusher func(ctx context.Context, ev *model.Event, ics string) error

// Adapter owns ICS generation, integration dispatch and sync history.
type Adapter struct {
	log    *slog.Logger
	domain string

	mu      sync.Mutex
	pushers map[string]Pusher
	history []SyncResult

	now func() time.Time
}

// NewAdapter builds an adapter with the google_calendar and outlook
// pushers registered. domain is the organization mail domain used in
// UID and ORGANIZER fields.
func NewAdapter(log *slog.Logger, domain string) *Adapter {
	if domain == "" {
		domain = "campus.edu"
	}
	a := &Adapter{
		log:    log,
		domain: domain,
		now:    time.Now,
	}
	a.pushers = map[string]Pusher{
		IntegrationGoogle:  a.pushGoogle,
		IntegrationOutlook: a.pushOutlook,
	}
	return a
}

// Register adds or replaces the pusher for an integration name.
func (a *Adapter) Register(name string, p Pusher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pushers[name] = p
}

// Sync renders the event once and pushes it to each integration, the
// defaults when none are named. Generation failure aborts the whole call
// before any push is attempted or recorded. Unrecognized integration
// names record a failed result but never an error.
func (a *Adapter) Sync(ctx context.Context, ev *model.Event, integrations ...string) (*SyncReport, error) {
	now := a.now()
	if len(integrations) == 0 {
		integrations = []string{IntegrationGoogle, IntegrationOutlook}
	}

	report := &SyncReport{
		EventID:     ev.ID,
		EventTitle:  ev.Title,
		EventStatus: ev.Status,
		Timestamp:   now,
	}

	ics, err := a.GenerateICS(ev)
	if err != nil {
		a.log.Error("ics generation failed", "event", ev.ID, "err", err)
		return report, err
	}
	report.ICSGenerated = true
	report.ICSSize = len(ics)

	for _, name := range integrations {
		res := SyncResult{
			EventID:     ev.ID,
			Integration: name,
			Timestamp:   now,
		}

		a.mu.Lock()
		push, known := a.pushers[name]
		a.mu.Unlock()

		switch {
		case !known:
			res.Message = fmt.Sprintf("unknown integration %q", name)
			a.log.Warn("unknown integration", "name", name)
		default:
			if err := push(ctx, ev, ics); err != nil {
				res.Message = err.Error()
			} else {
				res.Success = true
				res.Message = "synced"
			}
		}

		a.record(res)
		report.Results = append(report.Results, res)
		if res.Success {
			report.Synced++
		} else {
			report.Failed++
		}
	}

	return report, nil
}

// History returns past sync attempts, optionally filtered by event
// and/or integration. Empty strings mean no filter; filters combine
// with AND.
func (a *Adapter) History(eventID, integration string) []SyncResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]SyncResult, 0, len(a.history))
	for _, r := range a.history {
		if eventID != "" && r.EventID != eventID {
			continue
		}
		if integration != "" && r.Integration != integration {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (a *Adapter) record(res SyncResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, res)
}

// pushGoogle builds the payload a Calendar API client would send, then
// logs the simulated insert.
func (a *Adapter) pushGoogle(ctx context.Context, ev *model.Event, ics string) error {
	payload := googleEvent(ev)
	a.log.Info("syncing to google calendar",
		"event", ev.ID,
		"summary", payload.Summary,
		"status", payload.Status,
		"ics_bytes", len(ics),
	)
	return nil
}

// pushOutlook logs the simulated Graph API upsert.
func (a *Adapter) pushOutlook(ctx context.Context, ev *model.Event, ics string) error {
	a.log.Info("syncing to outlook",
		"event", ev.ID,
		"summary", ev.Title,
		"status", ev.Status,
		"ics_bytes", len(ics),
	)
	return nil
}

// googleEvent maps our event onto the Calendar API shape.
func googleEvent(ev *model.Event) *calendar.Event {
	status := "confirmed"
	if ev.Status == model.StatusCanceled {
		status = "cancelled"
	}
	ge := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Status:      status,
		Start:       &calendar.EventDateTime{DateTime: ev.StartsAt.Format(time.RFC3339)},
	}
	if !ev.EndsAt.IsZero() {
		ge.End = &calendar.EventDateTime{DateTime: ev.EndsAt.Format(time.RFC3339)}
	}
	return ge
}
