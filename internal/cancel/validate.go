package cancel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-event-system/internal/model"
)

// lateNoticeWindow is how close to the start a cancellation counts as
// late and therefore needs a reason.
const lateNoticeWindow = 24 * time.Hour

// ErrReasonRequired rejects a late cancellation with a blank reason.
var ErrReasonRequired = errors.New("cancellation reason required")

// Validation is the outcome of the late-cancellation policy check.
// Callers branch on the booleans; Message is for humans only.
type Validation struct {
	Valid            bool
	LateCancellation bool
	HoursUntilStart  float64
	Message          string
}

// ValidateCancellationReason applies the late-cancellation policy: an
// event starting in under 24 hours can only be canceled with a non-blank
// reason. Hours may be negative when the event already started; that is
// just a very late cancellation, not a separate case. The event is never
// mutated.
func ValidateCancellationReason(ev *model.Event, reason string, now time.Time) (Validation, error) {
	until := ev.StartsAt.Sub(now)
	hours := until.Hours()
	late := until < lateNoticeWindow

	v := Validation{
		Valid:            true,
		LateCancellation: late,
		HoursUntilStart:  hours,
	}

	trimmed := strings.TrimSpace(reason)
	switch {
	case late && trimmed == "":
		v.Valid = false
		v.Message = fmt.Sprintf(
			"a reason is required for events starting in less than 24 hours; this one starts in %.1f hours",
			hours)
		return v, fmt.Errorf("%w: event starts in %.1f hours", ErrReasonRequired, hours)
	case late:
		v.Message = fmt.Sprintf("late cancellation accepted, event starts in %.1f hours, reason: %s",
			hours, excerpt(trimmed))
	case trimmed != "":
		v.Message = fmt.Sprintf("cancellation accepted, event starts in %.1f hours, reason: %s",
			hours, excerpt(trimmed))
	default:
		v.Message = fmt.Sprintf("cancellation accepted, event starts in %.1f hours, no reason required",
			hours)
	}
	return v, nil
}

// excerpt keeps messages readable when reasons run long.
func excerpt(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:50] + "..."
}
