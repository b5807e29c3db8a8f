package contract

import (
	"encoding/json"

	"github.com/alexanderramin/timeai/internal/domain"
)

// SkippedEvent reports an input entry dropped before scheduling.
type SkippedEvent struct {
	Index  int             `json:"index"`
	ID     json.RawMessage `json:"id"`
	Reason string          `json:"reason"`
}

// SmartSlotResponse is the result of smart_slot. The diagnostic fields are
// only set when the request asked for them.
type SmartSlotResponse struct {
	Slot  string            `json:"slot"`
	Tasks []json.RawMessage `json:"tasks"`

	Feasible     *bool          `json:"feasible,omitempty"`
	HorizonDay   *int           `json:"horizon_day,omitempty"`
	SlotEnd      string         `json:"slot_end,omitempty"`
	TotalMinutes *int           `json:"total_minutes,omitempty"`
	Skipped      []SkippedEvent `json:"skipped,omitempty"`
}

// RescheduleResponse is the result of reschedule: the input entries in start
// order with start/end rewritten where they were shifted.
type RescheduleResponse struct {
	Events []Fields `json:"events"`

	Shifted   *int           `json:"shifted,omitempty"`
	Conflicts *int           `json:"conflicts,omitempty"`
	Skipped   []SkippedEvent `json:"skipped,omitempty"`
}

// ConflictEvent is the id/start/end projection of a rescheduled entry.
type ConflictEvent struct {
	ID    json.RawMessage `json:"id"`
	Start string          `json:"start"`
	End   string          `json:"end"`
}

// ConflictsResponse is the result of reschedule_conflicts.
type ConflictsResponse struct {
	Events []ConflictEvent `json:"events"`

	Shifted   *int           `json:"shifted,omitempty"`
	Conflicts *int           `json:"conflicts,omitempty"`
	Skipped   []SkippedEvent `json:"skipped,omitempty"`
}

// EmptyResponse is printed for unknown operations and missing arguments.
type EmptyResponse struct{}

// EventView is the JSON form of a stored calendar event. It is also the
// entry shape fed to the scheduler for stored events.
type EventView struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Tasks []string `json:"tasks"`
}

func NewEventView(e *domain.StoredEvent) EventView {
	tasks := e.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	return EventView{
		ID:    e.ID,
		Title: e.Title,
		Start: e.Start.String(),
		End:   e.End.String(),
		Tasks: tasks,
	}
}

// ImportResponse lists the ids assigned to imported events and the entries
// that were dropped.
type ImportResponse struct {
	Imported []string       `json:"imported"`
	Skipped  []SkippedEvent `json:"skipped"`
}
