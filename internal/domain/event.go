package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEvent marks events rejected by validation.
var ErrInvalidEvent = errors.New("invalid event")

// Event is the schedulable view of one calendar entry. Index is the entry's
// position in the caller's input and links it back to its passthrough fields.
type Event struct {
	Index int
	Start Timestamp
	End   Timestamp
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether e and o share any instant of positive length.
func (e Event) Overlaps(o Event) bool {
	return e.Start.Before(o.End) && o.Start.Before(e.End)
}

// SkippedEvent records an input entry dropped before scheduling.
type SkippedEvent struct {
	Index  int
	Reason string
}

// EventText is the raw start/end text of an input entry. A nil pointer means
// the field was absent or not a string.
type EventText struct {
	Index int
	Start *string
	End   *string
}

// StoredEvent is a calendar entry kept in the local event store.
type StoredEvent struct {
	ID        string
	Title     string
	Start     Timestamp
	End       Timestamp
	Tasks     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields required before an event can be stored.
func (e *StoredEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if e.Start.Time.IsZero() || e.End.Time.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if e.End.Before(e.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidEvent, e.End, e.Start)
	}
	return nil
}

// TasksText joins the task list the way the events table stores it.
func (e *StoredEvent) TasksText() string {
	return strings.Join(e.Tasks, "\n")
}

// SplitTasks is the inverse of TasksText.
func SplitTasks(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
