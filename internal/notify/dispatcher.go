// Package notify fans event notices out to confirmed RSVPs and keeps an
// append-only log of what was delivered to whom.
package notify

import (
	"context"
	"time"

	"campus-event-system/internal/model"
	"campus-event-system/internal/store"
)

// urgentNoticeWindow mirrors the validator's late-cancellation threshold.
// Both sides compute urgency independently and must agree.
const urgentNoticeWindow = 24 * time.Hour

// Result aggregates one fan-out run.
type Result struct {
	EventID           string
	EventTitle        string
	RSVPCount         int
	NotificationsSent int
	Urgent            bool
	HoursUntilStart   float64
	NotifiedStudents  []string
	Timestamp         time.Time
}

// Dispatcher delivers cancellation and restoration notices to every
// confirmed RSVP of an event, in RSVP store order.
type Dispatcher struct {
	rsvps  *store.RSVPStore
	mailer Mailer
	log    *Log
	now    func() time.Time
}

func NewDispatcher(rsvps *store.RSVPStore, mailer Mailer, log *Log) *Dispatcher {
	return &Dispatcher{rsvps: rsvps, mailer: mailer, log: log, now: time.Now}
}

// NotifyCancellation tells every confirmed RSVP the event was canceled.
// Zero RSVPs is not an error: zero counts, empty id list.
func (d *Dispatcher) NotifyCancellation(ctx context.Context, ev *model.Event) (*Result, error) {
	return d.fanOut(ctx, ev, KindCancellation)
}

// NotifyRestoration tells every confirmed RSVP a canceled event is back on.
func (d *Dispatcher) NotifyRestoration(ctx context.Context, ev *model.Event) (*Result, error) {
	return d.fanOut(ctx, ev, KindRestoration)
}

// SendAlert delivers one subscription alert. Disabled alerts are skipped,
// reported by the boolean. Alerts do not enter the notification log.
func (d *Dispatcher) SendAlert(ctx context.Context, alert model.Alert, to *model.User) bool {
	if !alert.Enabled {
		return false
	}
	return d.mailer.Send(ctx, Message{
		RecipientName:  to.Name,
		RecipientEmail: to.Email,
		EventTitle:     alert.EventTitle,
		Body:           alert.Render(),
	})
}

func (d *Dispatcher) fanOut(ctx context.Context, ev *model.Event, kind Kind) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := d.now()
	until := ev.StartsAt.Sub(now)
	urgent := until < urgentNoticeWindow

	rsvps := d.rsvps.Confirmed(ev.ID)
	res := &Result{
		EventID:          ev.ID,
		EventTitle:       ev.Title,
		RSVPCount:        len(rsvps),
		Urgent:           urgent,
		HoursUntilStart:  until.Hours(),
		NotifiedStudents: []string{},
		Timestamp:        now,
	}

	reason := ev.CancellationReason
	if reason == "" {
		reason = "No reason provided"
	}

	for _, r := range rsvps {
		ok := d.mailer.Send(ctx, Message{
			RecipientName:  r.StudentName,
			RecipientEmail: r.StudentEmail,
			EventTitle:     ev.Title,
			EventStartsAt:  ev.StartsAt,
			Reason:         reason,
			Urgent:         urgent,
		})
		if !ok {
			continue
		}
		d.log.Append(LogEntry{
			StudentID:    r.StudentID,
			StudentName:  r.StudentName,
			StudentEmail: r.StudentEmail,
			EventID:      ev.ID,
			EventTitle:   ev.Title,
			Kind:         kind,
			SentAt:       now,
			Urgent:       urgent,
		})
		res.NotifiedStudents = append(res.NotifiedStudents, r.StudentID)
		res.NotificationsSent++
	}

	return res, nil
}
