package scheduler

import "github.com/alexanderramin/timeai/internal/domain"

// Placement is an event's position after conflict resolution.
type Placement struct {
	Event   domain.Event
	Shifted bool
}

// Reschedule removes overlaps by walking events in start order and pushing
// each one that starts before the previous event's end to begin exactly at
// that end. Durations are preserved. The result is start-ascending and every
// adjacent pair satisfies prev.End <= next.Start.
func Reschedule(events []domain.Event) []Placement {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	SortByStart(sorted)

	out := make([]Placement, 0, len(sorted))
	var cursor domain.Timestamp
	for i, ev := range sorted {
		p := Placement{Event: ev}
		if i > 0 && ev.Start.Before(cursor) {
			dur := ev.Duration()
			p.Event.Start = cursor
			p.Event.End = cursor.Add(dur)
			p.Shifted = true
		}
		cursor = p.Event.End
		out = append(out, p)
	}
	return out
}

// Conflicts lists every overlapping pair in events by their input indexes.
func Conflicts(events []domain.Event) [][2]int {
	var pairs [][2]int
	for i := range events {
		for j := i + 1; j < len(events); j++ {
			if events[i].Overlaps(events[j]) {
				pairs = append(pairs, [2]int{events[i].Index, events[j].Index})
			}
		}
	}
	return pairs
}
