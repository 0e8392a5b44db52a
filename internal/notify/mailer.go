package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Message carries everything the transport needs for one delivery.
type Message struct {
	RecipientName  string
	RecipientEmail string
	EventTitle     string
	EventStartsAt  time.Time
	Reason         string
	Urgent         bool
	Body           string
}

// Mailer is the transport collaborator. A non-error boolean return is
// authoritative: true means delivered.
type Mailer interface {
	Send(ctx context.Context, msg Message) bool
}

// SimMailer logs deliveries instead of talking to a real mail gateway.
// Sends are throttled per recipient so a burst of cancellations cannot
// flood one inbox; a throttled send waits rather than drops.
type SimMailer struct {
	log        *slog.Logger
	mu         sync.Mutex
	recipients map[string]*rate.Limiter
	r          rate.Limit
	burst      int
}

func NewSimMailer(log *slog.Logger, rps float64, burst int) *SimMailer {
	if rps <= 0 {
		rps = 25
	}
	if burst <= 0 {
		burst = 50
	}
	return &SimMailer{
		log:        log,
		recipients: make(map[string]*rate.Limiter),
		r:          rate.Limit(rps),
		burst:      burst,
	}
}

func (m *SimMailer) limiter(email string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.recipients[email]; ok {
		return l
	}
	l := rate.NewLimiter(m.r, m.burst)
	m.recipients[email] = l
	return l
}

// Send simulates one email. It fails only when the context dies while
// waiting on the throttle.
func (m *SimMailer) Send(ctx context.Context, msg Message) bool {
	if err := m.limiter(msg.RecipientEmail).Wait(ctx); err != nil {
		m.log.Warn("send aborted", "to", msg.RecipientEmail, "err", err)
		return false
	}

	attrs := []any{
		"to", msg.RecipientEmail,
		"name", msg.RecipientName,
		"event", msg.EventTitle,
		"urgent", msg.Urgent,
	}
	if msg.Body != "" {
		attrs = append(attrs, "body", msg.Body)
	} else {
		attrs = append(attrs,
			"starts", msg.EventStartsAt.Format("2006-01-02 15:04"),
			"reason", msg.Reason,
		)
	}
	m.log.Info("sending email", attrs...)
	return true
}
