package notify

import (
	"sync"
	"time"
)

// Kind labels what a notification was about.
type Kind string

const (
	KindCancellation Kind = "CANCELLATION"
	KindRestoration  Kind = "RESTORATION"
)

// LogEntry is one delivered notification. Entries are immutable once
// appended.
type LogEntry struct {
	StudentID    string
	StudentName  string
	StudentEmail string
	EventID      string
	EventTitle   string
	Kind         Kind
	SentAt       time.Time
	Urgent       bool
}

// Log is an append-only record of delivered notifications.
type Log struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLog() *Log { return &Log{} }

// Append records one delivery.
func (l *Log) Append(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns logged notifications, optionally filtered by event
// and/or student. Empty strings mean no filter; filters combine with AND.
func (l *Log) Entries(eventID, studentID string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if eventID != "" && e.EventID != eventID {
			continue
		}
		if studentID != "" && e.StudentID != studentID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len is the total number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
