package formatter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/stretchr/testify/assert"
)

var fmtNow = time.Date(2025, 3, 16, 18, 30, 0, 0, time.UTC)

func intp(n int) *int    { return &n }
func boolp(b bool) *bool { return &b }

func TestFormatSlot_Plain(t *testing.T) {
	out := stripANSI(FormatSlot(&contract.SmartSlotResponse{
		Slot:  "2025-03-17T10:00:00",
		Tasks: []json.RawMessage{json.RawMessage(`"task 30m"`), json.RawMessage(`45`)},
	}, fmtNow))

	assert.Contains(t, out, "NEXT SLOT")
	assert.Contains(t, out, "2025-03-17T10:00:00")
	assert.Contains(t, out, "(Tomorrow)")
	assert.Contains(t, out, "task 30m, 45")
	assert.NotContains(t, out, "Status")
	assert.NotContains(t, out, "Length")
}

func TestFormatSlot_Diagnostics(t *testing.T) {
	out := stripANSI(FormatSlot(&contract.SmartSlotResponse{
		Slot:         "2025-03-23T09:00:00",
		SlotEnd:      "2025-03-23T19:00:00",
		Feasible:     boolp(false),
		HorizonDay:   intp(6),
		TotalMinutes: intp(600),
		Skipped:      []contract.SkippedEvent{{Index: 0, ID: json.RawMessage("null"), Reason: "not an object"}},
	}, fmtNow))

	assert.Contains(t, out, "2025-03-23T19:00:00")
	assert.Contains(t, out, "10h")
	assert.Contains(t, out, "BEST EFFORT")
	assert.Contains(t, out, "1 malformed event(s)")
	assert.Contains(t, out, "In 7d")
}

func TestFormatReschedule(t *testing.T) {
	out := stripANSI(FormatReschedule(&contract.RescheduleResponse{
		Events: []contract.Fields{
			contract.NewFields("id", `7`, "title", `"Standup"`, "start", `"2025-03-17T09:00:00"`, "end", `"2025-03-17T10:00:00"`),
			contract.NewFields("start", `"2025-03-17T10:00:00"`, "end", `"2025-03-17T11:00:00"`),
		},
		Shifted:   intp(1),
		Conflicts: intp(1),
	}))

	assert.Contains(t, out, "SCHEDULE")
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "2025-03-17T11:00:00")
	assert.Contains(t, out, "1 moved · 1 conflicting pair(s)")
}

func TestFormatReschedule_Empty(t *testing.T) {
	assert.Equal(t, "No events.\n", stripANSI(FormatReschedule(&contract.RescheduleResponse{})))
}

func TestFormatConflicts(t *testing.T) {
	out := stripANSI(FormatConflicts(&contract.ConflictsResponse{
		Events: []contract.ConflictEvent{
			{ID: json.RawMessage(`"a"`), Start: "2025-03-17T09:00:00", End: "2025-03-17T10:00:00"},
			{ID: json.RawMessage(`null`), Start: "2025-03-17T10:00:00", End: "2025-03-17T11:00:00"},
		},
	}))

	assert.Contains(t, out, "a  ")
	assert.Contains(t, out, "null")
	assert.NotContains(t, out, "moved")
}

func TestFormatEvents(t *testing.T) {
	start := domain.NaiveAt(time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC))
	out := stripANSI(FormatEvents([]*domain.StoredEvent{{
		ID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		Title: "Dentist",
		Start: start,
		End:   start.Add(90 * time.Minute),
		Tasks: []string{"a", "b"},
	}}, fmtNow))

	assert.Contains(t, out, "EVENTS")
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "d9cb")
	assert.Contains(t, out, "Dentist")
	assert.Contains(t, out, "Tomorrow")
	assert.Contains(t, out, "1h 30m")
}

func TestFormatEvents_Empty(t *testing.T) {
	assert.Equal(t, "No events stored.\n", stripANSI(FormatEvents(nil, fmtNow)))
}

func TestFormatImport(t *testing.T) {
	out := stripANSI(FormatImport(&contract.ImportResponse{
		Imported: []string{"x", "y"},
		Skipped:  []contract.SkippedEvent{{Index: 3, ID: json.RawMessage(`"bad"`), Reason: "missing end"}},
	}))

	assert.Contains(t, out, "Imported 2 event(s)")
	assert.Contains(t, out, "Skipped entry 3 (id bad): missing end")
}
