package domain

import "time"

// WorkWindow is the daily interval [StartHour:00, EndHour:00) within which
// slots must fit.
type WorkWindow struct {
	StartHour int
	EndHour   int
}

// DefaultWorkWindow is 09:00 to 17:00.
var DefaultWorkWindow = WorkWindow{StartHour: 9, EndHour: 17}

// Bounds returns the window on the calendar day of day, in loc.
func (w WorkWindow) Bounds(day time.Time, loc *time.Location) (start, end time.Time) {
	y, m, d := day.In(loc).Date()
	start = time.Date(y, m, d, w.StartHour, 0, 0, 0, loc)
	end = time.Date(y, m, d, w.EndHour, 0, 0, 0, loc)
	return start, end
}

func (w WorkWindow) Length() time.Duration {
	return time.Duration(w.EndHour-w.StartHour) * time.Hour
}
