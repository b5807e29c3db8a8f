package testutil

import (
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/google/uuid"
)

// EventOption customises NewTestEvent.
type EventOption func(*domain.StoredEvent)

func WithTitle(title string) EventOption {
	return func(e *domain.StoredEvent) {
		e.Title = title
	}
}

func WithTasks(tasks ...string) EventOption {
	return func(e *domain.StoredEvent) {
		e.Tasks = tasks
	}
}

// NewTestEvent builds a valid one-hour naive event starting at start.
func NewTestEvent(start time.Time, opts ...EventOption) *domain.StoredEvent {
	now := time.Now().UTC().Truncate(time.Second)
	ts := domain.NaiveAt(start)
	e := &domain.StoredEvent{
		ID:        uuid.New().String(),
		Title:     "Test Event",
		Start:     ts,
		End:       ts.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
