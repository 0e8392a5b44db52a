package model

import "time"

// RSVPStatus tracks whether a student still intends to attend.
type RSVPStatus string

const (
	RSVPConfirmed RSVPStatus = "CONFIRMED"
	RSVPCanceled  RSVPStatus = "CANCELED"
)

// RSVP records one student's intent to attend an event. RSVPs are never
// deleted; withdrawing flips the status to RSVPCanceled.
type RSVP struct {
	ID           string
	EventID      string
	StudentID    string
	StudentName  string
	StudentEmail string
	Status       RSVPStatus
	CreatedAt    time.Time
}
