package model

import "fmt"

// AlertKind is the category of a subscription alert.
type AlertKind string

const (
	AlertReminder    AlertKind = "reminder"
	AlertNewEvent    AlertKind = "new_event"
	AlertMaintenance AlertKind = "maintenance"
)

// Alert is a subscription-based notice about an event. Disabled alerts
// exist but are not delivered.
type Alert struct {
	ID         string
	Kind       AlertKind
	EventID    string
	EventTitle string
	Enabled    bool
}

// Render composes the user-facing text for the alert kind.
func (a *Alert) Render() string {
	switch a.Kind {
	case AlertReminder:
		return fmt.Sprintf("Reminder: %s is coming up!", a.EventTitle)
	case AlertNewEvent:
		return fmt.Sprintf("New event: %s has been added!", a.EventTitle)
	case AlertMaintenance:
		return fmt.Sprintf("Site maintenance: details for %s may be temporarily unavailable.", a.EventTitle)
	default:
		return fmt.Sprintf("Alert: %s", a.EventTitle)
	}
}

// UpdatePreferences turns delivery on or off.
func (a *Alert) UpdatePreferences(on bool) { a.Enabled = on }
