package model

import (
	"errors"
	"fmt"
)

// Role is what a user is allowed to act as. The set is closed.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

var ErrInvalidRole = errors.New("invalid role")

// User is anyone who can organize, attend or cancel events.
type User struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	alerts []string
}

// NewUser builds a user. Roles outside student/teacher are rejected.
func NewUser(id, name, email string, role Role) (*User, error) {
	if role != RoleStudent && role != RoleTeacher {
		return nil, fmt.Errorf("%w: %q (must be student or teacher)", ErrInvalidRole, role)
	}
	return &User{ID: id, Name: name, Email: email, Role: role}, nil
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// SubscribeAlert adds an alert subscription. Subscribing twice is a no-op.
func (u *User) SubscribeAlert(alertID string) {
	for _, id := range u.alerts {
		if id == alertID {
			return
		}
	}
	u.alerts = append(u.alerts, alertID)
}

// UnsubscribeAlert drops a subscription. Unknown ids are a no-op.
func (u *User) UnsubscribeAlert(alertID string) {
	for i, id := range u.alerts {
		if id == alertID {
			u.alerts = append(u.alerts[:i], u.alerts[i+1:]...)
			return
		}
	}
}

// SubscribedAlerts returns a copy of the subscription list.
func (u *User) SubscribedAlerts() []string {
	out := make([]string, len(u.alerts))
	copy(out, u.alerts)
	return out
}
