package calsync

import (
	"fmt"
	"strings"

	"github.com/emersion/go-ical"

	"campus-event-system/internal/model"
)

// GenerateICS renders the event as an iCalendar document. A canceled
// event carries STATUS:CANCELLED and its reason appended to the
// description. Timestamps come from the event snapshot, not the wall
// clock, so regenerating a document never shifts its DTSTAMP.
func (a *Adapter) GenerateICS(ev *model.Event) (string, error) {
	if ev.ID == "" || ev.Title == "" {
		return "", fmt.Errorf("%w: event needs an id and a title", ErrICSGeneration)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Campus Event System//EN")

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", ev.ID, a.domain))
	ve.Props.SetText(ical.PropSummary, ev.Title)

	desc := ev.Description
	dtstamp := ev.StartsAt
	if ev.Status == model.StatusCanceled {
		ve.Props.SetText(ical.PropStatus, "CANCELLED")
		if !ev.CanceledAt.IsZero() {
			dtstamp = ev.CanceledAt
		}
		if ev.CancellationReason != "" {
			desc = fmt.Sprintf("%s\n\nCANCELED: %s", ev.Description, ev.CancellationReason)
		}
	} else {
		ve.Props.SetText(ical.PropStatus, "CONFIRMED")
	}
	ve.Props.SetText(ical.PropDescription, desc)

	ve.Props.SetDateTime(ical.PropDateTimeStamp, dtstamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.StartsAt)
	if !ev.EndsAt.IsZero() {
		ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.EndsAt)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	org := ical.NewProp(ical.PropOrganizer)
	org.SetText(fmt.Sprintf("mailto:%s@%s", ev.OrganizerID, a.domain))
	ve.Props.Add(org)

	cal.Children = append(cal.Children, ve)

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSGeneration, err)
	}
	return buf.String(), nil
}
