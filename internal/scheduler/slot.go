package scheduler

import (
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
)

// DefaultHorizonDays is the number of days scanned for a free slot.
const DefaultHorizonDays = 7

// SlotOptions controls where FindSlot looks.
type SlotOptions struct {
	// Now anchors the horizon; scanning starts on the day after Now.
	Now         time.Time
	Location    *time.Location
	Window      domain.WorkWindow
	HorizonDays int
}

// DefaultSlotOptions returns options for a 7-day, 09:00-17:00 search
// anchored at now in now's location.
func DefaultSlotOptions(now time.Time) SlotOptions {
	return SlotOptions{
		Now:         now,
		Location:    now.Location(),
		Window:      domain.DefaultWorkWindow,
		HorizonDays: DefaultHorizonDays,
	}
}

// SlotResult is the outcome of a slot search. When Feasible is false no day
// in the horizon had room and Start is the last day's best-effort candidate,
// which may run past the end of that day's work window.
type SlotResult struct {
	Start      domain.Timestamp
	End        domain.Timestamp
	Feasible   bool
	HorizonDay int
}

// FindSlot returns the earliest start, first-fit, at which totalMin minutes
// fit inside a work window without overlapping any event that starts on the
// same day. events need not be sorted.
func FindSlot(totalMin int, events []domain.Event, opts SlotOptions) SlotResult {
	loc := opts.Location
	if loc == nil {
		loc = opts.Now.Location()
	}
	days := opts.HorizonDays
	if days < 1 {
		days = 1
	}
	need := time.Duration(totalMin) * time.Minute

	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	SortByStart(sorted)

	y, m, d := opts.Now.In(loc).Date()
	var last SlotResult
	for i := 0; i < days; i++ {
		day := time.Date(y, m, d+1+i, 12, 0, 0, 0, loc)
		dayStart, workEnd := opts.Window.Bounds(day, loc)

		start := domain.NaiveAt(dayStart)
		end := start.Add(need)
		for _, ev := range sorted {
			if !ev.Start.SameDay(day, loc) {
				continue
			}
			if !end.After(ev.Start) {
				break
			}
			if start.Before(ev.End) {
				start = ev.End
				end = start.Add(need)
			}
		}

		last = SlotResult{Start: start, End: end, HorizonDay: i}
		if !end.Time.After(workEnd) {
			last.Feasible = true
			return last
		}
	}
	return last
}
