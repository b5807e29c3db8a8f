package service

import (
	"sort"
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/scheduler"
)

// parsedPayload is a request's events split into schedulable events and
// dropped entries, with the raw records kept for passthrough.
type parsedPayload struct {
	records []contract.Record
	events  []domain.Event
	skipped []contract.SkippedEvent
}

// parsePayloadEvents parses req.Events in loc. Entries that are not objects or
// whose times are unusable are reported in input order.
func parsePayloadEvents(req *contract.Request, loc *time.Location) parsedPayload {
	records := req.Records()
	texts := make([]domain.EventText, 0, len(records))
	var dropped []domain.SkippedEvent
	for _, rec := range records {
		if !rec.IsObject() {
			dropped = append(dropped, domain.SkippedEvent{Index: rec.Index, Reason: scheduler.ReasonNotObject})
			continue
		}
		texts = append(texts, rec.EventText())
	}

	events, parseSkipped := scheduler.ParseEvents(texts, loc)
	dropped = append(dropped, parseSkipped...)
	sort.SliceStable(dropped, func(i, j int) bool { return dropped[i].Index < dropped[j].Index })

	out := parsedPayload{records: records, events: events}
	for _, d := range dropped {
		out.skipped = append(out.skipped, contract.SkippedEvent{
			Index:  d.Index,
			ID:     records[d.Index].ID(),
			Reason: d.Reason,
		})
	}
	return out
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }
