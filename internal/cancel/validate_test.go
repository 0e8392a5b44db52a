package cancel_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"campus-event-system/internal/cancel"
	"campus-event-system/internal/model"
)

var validateNow = time.Date(2025, 11, 14, 9, 0, 0, 0, time.UTC)

func eventStartingIn(d time.Duration) *model.Event {
	return &model.Event{
		ID:            "evt_0001",
		Title:         "Database Design Lecture",
		StartsAt:      validateNow.Add(d),
		EndsAt:        validateNow.Add(d + 2*time.Hour),
		Location:      "STEM Building, Room 201",
		OrganizerID:   "prof_martinez",
		OrganizerName: "Dr. Jennifer Martinez",
		Status:        model.StatusScheduled,
	}
}

func TestValidateLateBlankReasonRejected(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Duration
		reason string
		hours  string // expected in the error text
	}{
		{"eight hours out", 8 * time.Hour, "", "8.0 hours"},
		{"thirty minutes out", 30 * time.Minute, "", "0.5 hours"},
		{"already started", -2 * time.Hour, "", "-2.0 hours"},
		{"whitespace reason", 8 * time.Hour, "   ", "8.0 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := eventStartingIn(tt.in)
			v, err := cancel.ValidateCancellationReason(ev, tt.reason, validateNow)
			if !errors.Is(err, cancel.ErrReasonRequired) {
				t.Fatalf("expected ErrReasonRequired, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.hours) {
				t.Errorf("error %q missing hour count %q", err, tt.hours)
			}
			if v.Valid {
				t.Error("validation reported valid")
			}
			if !v.LateCancellation {
				t.Error("late flag not set")
			}
			if ev.Status != model.StatusScheduled {
				t.Error("validation mutated the event")
			}
		})
	}
}

func TestValidateLateWithReason(t *testing.T) {
	ev := eventStartingIn(8 * time.Hour)
	v, err := cancel.ValidateCancellationReason(ev, "sick", validateNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !v.Valid || !v.LateCancellation {
		t.Errorf("flags: valid=%v late=%v", v.Valid, v.LateCancellation)
	}
	if v.HoursUntilStart != 8 {
		t.Errorf("hours until start: got %v", v.HoursUntilStart)
	}
	if !strings.Contains(v.Message, "late cancellation accepted") {
		t.Errorf("message: %q", v.Message)
	}
	if !strings.Contains(v.Message, "sick") {
		t.Errorf("message missing reason: %q", v.Message)
	}
}

func TestValidateEarlyNeverErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Duration
		reason string
	}{
		{"two days out no reason", 48 * time.Hour, ""},
		{"just over the window", 24*time.Hour + time.Minute, ""},
		{"two days out with reason", 48 * time.Hour, "low enrollment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := cancel.ValidateCancellationReason(eventStartingIn(tt.in), tt.reason, validateNow)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if !v.Valid || v.LateCancellation {
				t.Errorf("flags: valid=%v late=%v", v.Valid, v.LateCancellation)
			}
		})
	}
}

func TestValidateExactlyAtWindow(t *testing.T) {
	// 24.0 hours out is not late: the rule is strictly under 24
	v, err := cancel.ValidateCancellationReason(eventStartingIn(24*time.Hour), "", validateNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.LateCancellation {
		t.Error("exactly 24 hours out flagged late")
	}
}

func TestValidateNegativeHoursWithReason(t *testing.T) {
	v, err := cancel.ValidateCancellationReason(eventStartingIn(-90*time.Minute), "organizer no-show", validateNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if v.HoursUntilStart != -1.5 {
		t.Errorf("hours until start: got %v", v.HoursUntilStart)
	}
	if !v.LateCancellation {
		t.Error("started event not flagged late")
	}
}

func TestValidateLongReasonExcerpted(t *testing.T) {
	long := strings.Repeat("the room flooded and facilities cannot clear it ", 3)
	v, err := cancel.ValidateCancellationReason(eventStartingIn(8*time.Hour), long, validateNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(v.Message, "...") {
		t.Errorf("long reason not excerpted: %q", v.Message)
	}
	if strings.Contains(v.Message, long) {
		t.Error("full reason leaked into the message")
	}
}
