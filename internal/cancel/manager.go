// Package cancel owns the event cancellation state machine: permission
// checks, the late-cancellation policy, and the 10-minute undo window.
package cancel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campus-event-system/internal/model"
	"campus-event-system/internal/notify"
)

// DefaultUndoWindow is how long after a cancellation the undo stays
// open. Fixed per manager, never per event.
const DefaultUndoWindow = 10 * time.Minute

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyCanceled  = errors.New("event already canceled")
	ErrNotCanceled      = errors.New("event is not canceled")
	ErrNoHistory        = errors.New("no cancellation history")
	ErrUndoExpired      = errors.New("undo window expired")
)

// Notifier fans cancellation and restoration notices out to attendees.
type Notifier interface {
	NotifyCancellation(ctx context.Context, ev *model.Event) (*notify.Result, error)
	NotifyRestoration(ctx context.Context, ev *model.Event) (*notify.Result, error)
}

// FeedUpdater maintains the displayed event list.
type FeedUpdater interface {
	Add(ev *model.Event)
	Remove(ev *model.Event)
}

// Record is the audit trail of one cancel episode. UndoneAt stays zero
// until the cancellation is reversed.
type Record struct {
	EventID      string
	PrevStatus   model.EventStatus
	CanceledBy   string
	Reason       string
	CanceledAt   time.Time
	UndoDeadline time.Time
	UndoneAt     time.Time
	UndoneBy     string
}

func (r *Record) undone() bool { return !r.UndoneAt.IsZero() }

// CancelResult reports a completed cancellation.
type CancelResult struct {
	EventID         string
	Status          model.EventStatus
	CanceledBy      string
	Reason          string
	CanceledAt      time.Time
	UndoDeadline    time.Time
	Validation      Validation
	Notifications   *notify.Result
	RemovedFromFeed bool
}

// UndoResult reports a completed undo.
type UndoResult struct {
	EventID        string
	Status         model.EventStatus
	UndoneBy       string
	UndoneAt       time.Time
	CanceledAt     time.Time
	ElapsedSeconds float64
	RestoredToFeed bool
	Notifications  *notify.Result
}

// Manager runs the SCHEDULED -> CANCELED -> SCHEDULED state machine.
// Current state is inferred from the event status plus the presence of a
// record; there is no separate state field. All checks and writes happen
// under one mutex so two callers cannot both pass the status check.
type Manager struct {
	mu       sync.Mutex
	records  map[string]*Record
	window   time.Duration
	notifier Notifier
	feed     FeedUpdater
	now      func() time.Time
}

// Option tweaks a Manager at construction.
type Option func(*Manager)

// WithUndoWindow overrides the undo window. Non-positive values keep the
// default.
func WithUndoWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithClock swaps the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires the state machine to its side-effect collaborators.
// A nil notifier or feed disables that side effect.
func NewManager(n Notifier, f FeedUpdater, opts ...Option) *Manager {
	m := &Manager{
		records:  make(map[string]*Record),
		window:   DefaultUndoWindow,
		notifier: n,
		feed:     f,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UndoWindow is the configured undo grace period.
func (m *Manager) UndoWindow() time.Duration { return m.window }

// Validate runs the late-cancellation policy against the manager clock
// without touching any state.
func (m *Manager) Validate(ev *model.Event, reason string) (Validation, error) {
	return ValidateCancellationReason(ev, reason, m.now())
}

// Cancel moves the event to CANCELED. Checks run in order: permission,
// current status, late-cancellation policy; nothing is written until all
// three pass. Side effects after the write are best effort and never
// roll the transition back.
func (m *Manager) Cancel(ctx context.Context, ev *model.Event, actor *model.User, reason string) (*CancelResult, error) {
	m.mu.Lock()

	if !allowed(ev, actor) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: user %s is neither a teacher nor the organizer of event %s",
			ErrPermissionDenied, actorID(actor), ev.ID)
	}
	if ev.Status == model.StatusCanceled {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCanceled, ev.ID)
	}

	now := m.now()
	validation, err := ValidateCancellationReason(ev, reason, now)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	// only a stale undone record can exist here; the status check above
	// rejects a second cancel while a record is active
	rec := &Record{
		EventID:      ev.ID,
		PrevStatus:   ev.Status,
		CanceledBy:   actor.ID,
		Reason:       reason,
		CanceledAt:   now,
		UndoDeadline: now.Add(m.window),
	}
	m.records[ev.ID] = rec
	ev.Cancel(reason, actor.ID, now)
	m.mu.Unlock()

	res := &CancelResult{
		EventID:      ev.ID,
		Status:       ev.Status,
		CanceledBy:   actor.ID,
		Reason:       reason,
		CanceledAt:   now,
		UndoDeadline: rec.UndoDeadline,
		Validation:   validation,
	}

	if m.notifier != nil {
		if nres, err := m.notifier.NotifyCancellation(ctx, ev); err == nil {
			res.Notifications = nres
		}
	}
	if m.feed != nil {
		m.feed.Remove(ev)
		res.RemovedFromFeed = true
	}

	return res, nil
}

// UndoCancel reverses a cancellation while the undo window is open.
// Preconditions run in order: status, history, window, permission. The
// record is kept and marked undone so a later CanUndo reports "already
// undone" rather than "no history".
func (m *Manager) UndoCancel(ctx context.Context, ev *model.Event, actor *model.User) (*UndoResult, error) {
	m.mu.Lock()

	if ev.Status != model.StatusCanceled {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: event %s has status %s", ErrNotCanceled, ev.ID, ev.Status)
	}
	rec, ok := m.records[ev.ID]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: event %s", ErrNoHistory, ev.ID)
	}
	now := m.now()
	if now.After(rec.UndoDeadline) {
		elapsed := now.Sub(rec.CanceledAt).Minutes()
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: event was canceled %.1f minutes ago, undo stays open for %s",
			ErrUndoExpired, elapsed, m.window)
	}
	if !allowed(ev, actor) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: user %s is neither a teacher nor the organizer of event %s",
			ErrPermissionDenied, actorID(actor), ev.ID)
	}

	canceledAt := rec.CanceledAt
	ev.Restore(rec.PrevStatus)
	rec.UndoneAt = now
	rec.UndoneBy = actor.ID
	m.mu.Unlock()

	res := &UndoResult{
		EventID:        ev.ID,
		Status:         ev.Status,
		UndoneBy:       actor.ID,
		UndoneAt:       now,
		CanceledAt:     canceledAt,
		ElapsedSeconds: now.Sub(canceledAt).Seconds(),
	}

	if m.feed != nil {
		m.feed.Add(ev)
		res.RestoredToFeed = true
	}
	if m.notifier != nil {
		if nres, err := m.notifier.NotifyRestoration(ctx, ev); err == nil {
			res.Notifications = nres
		}
	}

	return res, nil
}

// CanUndo reports whether an undo would currently pass its record and
// window checks, with a short reason when it would not. It never mutates
// and never fails.
func (m *Manager) CanUndo(ev *model.Event) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[ev.ID]
	if !ok {
		return false, "no cancellation history"
	}
	if rec.undone() {
		return false, "already undone"
	}
	if m.now().After(rec.UndoDeadline) {
		return false, "undo window expired"
	}
	return true, ""
}

// Record returns a copy of the cancellation record for an event.
func (m *Manager) Record(eventID string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[eventID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// allowed grants teachers everything and organizers their own events.
func allowed(ev *model.Event, actor *model.User) bool {
	if actor == nil {
		return false
	}
	if actor.Role == model.RoleTeacher {
		return true
	}
	return actor.ID == ev.OrganizerID
}

func actorID(u *model.User) string {
	if u == nil {
		return "anonymous"
	}
	return u.ID
}
