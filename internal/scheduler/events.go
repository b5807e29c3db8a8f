package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
)

// Skip reasons reported for dropped entries.
const (
	ReasonMissingStart = "missing start"
	ReasonMissingEnd   = "missing end"
	ReasonBadStart     = "unparsable start"
	ReasonBadEnd       = "unparsable end"
	ReasonEndBefore    = "end before start"
	ReasonNotObject    = "not an object"
)

// ParseEvents turns raw entries into events, dropping any entry whose start or
// end is missing, unparsable, or out of order. The survivors are sorted by
// start; entries with equal starts keep their input order.
func ParseEvents(texts []domain.EventText, loc *time.Location) ([]domain.Event, []domain.SkippedEvent) {
	events := make([]domain.Event, 0, len(texts))
	var skipped []domain.SkippedEvent

	for _, tx := range texts {
		ev, reason := parseEvent(tx, loc)
		if reason != "" {
			skipped = append(skipped, domain.SkippedEvent{Index: tx.Index, Reason: reason})
			continue
		}
		events = append(events, ev)
	}

	SortByStart(events)
	return events, skipped
}

func parseEvent(tx domain.EventText, loc *time.Location) (domain.Event, string) {
	if tx.Start == nil {
		return domain.Event{}, ReasonMissingStart
	}
	if tx.End == nil {
		return domain.Event{}, ReasonMissingEnd
	}
	start, err := domain.ParseTimestamp(*tx.Start, loc)
	if err != nil {
		return domain.Event{}, ReasonBadStart
	}
	end, err := domain.ParseTimestamp(*tx.End, loc)
	if err != nil {
		return domain.Event{}, ReasonBadEnd
	}
	if end.Before(start) {
		return domain.Event{}, ReasonEndBefore
	}
	return domain.Event{Index: tx.Index, Start: start, End: end}, ""
}

// SortByStart orders events by start ascending, stable on ties.
func SortByStart(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}
