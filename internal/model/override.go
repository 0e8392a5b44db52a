package model

import "time"

// OverrideStatus is the review state of an override request.
type OverrideStatus string

const (
	OverridePending  OverrideStatus = "pending"
	OverrideApproved OverrideStatus = "approved"
	OverrideDenied   OverrideStatus = "denied"
)

// EventDraft is a proposed event waiting on conflict resolution.
type EventDraft struct {
	Title         string
	Description   string
	StartsAt      time.Time
	EndsAt        time.Time
	Location      string
	OrganizerID   string
	OrganizerName string
	CourseCode    string
}

// OverrideRequest asks for approval of a draft that conflicts with the
// existing schedule.
type OverrideRequest struct {
	ID             string
	Draft          EventDraft
	ConflictReason string
	Status         OverrideStatus
	DenyReason     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Approve marks the request approved.
func (r *OverrideRequest) Approve(at time.Time) {
	r.Status = OverrideApproved
	r.UpdatedAt = at
}

// Deny marks the request denied with a reason.
func (r *OverrideRequest) Deny(reason string, at time.Time) {
	r.Status = OverrideDenied
	r.DenyReason = reason
	r.UpdatedAt = at
}
