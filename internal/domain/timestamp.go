package domain

import (
	"fmt"
	"strings"
	"time"
)

// Layouts carrying a UTC offset. Fractional seconds are accepted after the
// seconds field even though the layouts do not spell them out.
var awareLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04-0700",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is an ISO-8601 instant that remembers whether its source text
// carried a UTC offset. Naive timestamps are wall-clock times in the location
// they were parsed in and format back without an offset.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

// ParseTimestamp parses an ISO-8601 date or date-time. Text without an offset
// is interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (Timestamp, error) {
	text := strings.TrimSpace(s)
	if len(text) > 10 && text[10] == ' ' {
		text = text[:10] + "T" + text[11:]
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

// NaiveAt returns a naive timestamp for the wall-clock time t.
func NaiveAt(t time.Time) Timestamp {
	return Timestamp{Time: t, Naive: true}
}

// String formats the timestamp as YYYY-MM-DDTHH:MM:SS[.ffffff][±HH:MM].
// Sub-microsecond instants get up to nine fractional digits so the text
// always round-trips to the same instant.
func (t Timestamp) String() string {
	var b strings.Builder
	b.WriteString(t.Time.Format("2006-01-02T15:04:05"))
	if ns := t.Time.Nanosecond(); ns%1000 != 0 {
		b.WriteString(strings.TrimRight(fmt.Sprintf(".%09d", ns), "0"))
	} else if ns != 0 {
		fmt.Fprintf(&b, ".%06d", ns/1000)
	}
	if !t.Naive {
		b.WriteString(t.Time.Format("-07:00"))
	}
	return b.String()
}

// Add shifts the instant by d, keeping the offset style.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{Time: t.Time.Add(d), Naive: t.Naive}
}

func (t Timestamp) Sub(u Timestamp) time.Duration {
	return t.Time.Sub(u.Time)
}

func (t Timestamp) Before(u Timestamp) bool {
	return t.Time.Before(u.Time)
}

func (t Timestamp) After(u Timestamp) bool {
	return t.Time.After(u.Time)
}

func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

// SameDay reports whether t falls on the calendar day of day, both observed
// in loc.
func (t Timestamp) SameDay(day time.Time, loc *time.Location) bool {
	y1, m1, d1 := t.Time.In(loc).Date()
	y2, m2, d2 := day.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
