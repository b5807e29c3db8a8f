package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
)

// Operation names accepted on the command line and in batch requests.
type Operation string

const (
	OpSmartSlot           Operation = "smart_slot"
	OpReschedule          Operation = "reschedule"
	OpRescheduleConflicts Operation = "reschedule_conflicts"
)

// Operations lists the recognised operations in display order.
var Operations = []Operation{OpSmartSlot, OpReschedule, OpRescheduleConflicts}

func (o Operation) Valid() bool {
	switch o {
	case OpSmartSlot, OpReschedule, OpRescheduleConflicts:
		return true
	}
	return false
}

// Request is a decoded scheduling payload plus the run options the caller
// sets outside the JSON.
type Request struct {
	Tasks  []json.RawMessage `json:"tasks"`
	Events []json.RawMessage `json:"events"`

	// Now anchors the slot search horizon. Nil means the current time.
	Now *time.Time `json:"-"`
	// Diagnostics adds skipped entries and feasibility to responses.
	Diagnostics bool `json:"-"`
}

// DecodeRequest parses a `{tasks, events}` payload. Missing or null lists
// decode as empty.
func DecodeRequest(data []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("payload must be a JSON object")
	}
	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if req.Tasks == nil {
		req.Tasks = []json.RawMessage{}
	}
	if req.Events == nil {
		req.Events = []json.RawMessage{}
	}
	return &req, nil
}

// TaskTexts returns the task descriptions used for duration parsing. A JSON
// string yields its value; anything else yields its raw JSON text.
func (r *Request) TaskTexts() []string {
	texts := make([]string, len(r.Tasks))
	for i, raw := range r.Tasks {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			texts[i] = s
			continue
		}
		texts[i] = string(raw)
	}
	return texts
}

// Records splits the events list into per-entry fields. Entries that are not
// JSON objects have IsObject false.
func (r *Request) Records() []Record {
	records := make([]Record, len(r.Events))
	for i, raw := range r.Events {
		records[i].Index = i
		var fields Fields
		if err := json.Unmarshal(raw, &fields); err == nil {
			records[i].Fields = fields
			records[i].object = true
		}
	}
	return records
}

// Record is one entry of the events list with every field kept verbatim.
type Record struct {
	Index  int
	Fields Fields
	object bool
}

// IsObject reports whether the entry was a JSON object.
func (r Record) IsObject() bool {
	return r.object
}

// ID returns the entry's id field, or JSON null when it has none.
func (r Record) ID() json.RawMessage {
	if id, ok := r.Fields.Get("id"); ok {
		return id
	}
	return json.RawMessage("null")
}

// Text returns a string field's value. ok is false when the field is absent
// or not a JSON string.
func (r Record) Text(key string) (string, bool) {
	raw, ok := r.Fields.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// EventText extracts the start/end text for parsing.
func (r Record) EventText() domain.EventText {
	tx := domain.EventText{Index: r.Index}
	if s, ok := r.Text("start"); ok {
		tx.Start = &s
	}
	if s, ok := r.Text("end"); ok {
		tx.End = &s
	}
	return tx
}

// WithTimes returns a copy of the entry's fields with start and end replaced
// in place.
func (r Record) WithTimes(start, end domain.Timestamp) Fields {
	out := r.Fields.Clone()
	out.Set("start", quote(start.String()))
	out.Set("end", quote(end.String()))
	return out
}

// quote renders a formatted timestamp as a JSON string. Timestamps are plain
// ASCII, so Go quoting and JSON quoting agree.
func quote(s string) json.RawMessage {
	return json.RawMessage(strconv.Quote(s))
}
