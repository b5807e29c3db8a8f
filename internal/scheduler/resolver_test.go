package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReschedule_ShiftsOverlappingEvents(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 9, 0), at(0, 10, 0)),
		ev(1, at(0, 9, 30), at(0, 10, 30)),
		ev(2, at(0, 10, 15), at(0, 11, 0)),
	}

	out := Reschedule(events)
	require.Len(t, out, 3)

	assert.False(t, out[0].Shifted)
	assert.Equal(t, "2025-03-17T09:00:00", out[0].Event.Start.String())
	assert.Equal(t, "2025-03-17T10:00:00", out[0].Event.End.String())

	assert.True(t, out[1].Shifted)
	assert.Equal(t, "2025-03-17T10:00:00", out[1].Event.Start.String())
	assert.Equal(t, "2025-03-17T11:00:00", out[1].Event.End.String())

	assert.True(t, out[2].Shifted)
	assert.Equal(t, "2025-03-17T11:00:00", out[2].Event.Start.String())
	assert.Equal(t, "2025-03-17T11:45:00", out[2].Event.End.String())
}

func TestReschedule_NonOverlappingUnchanged(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 9, 0), at(0, 10, 0)),
		ev(1, at(0, 10, 0), at(0, 11, 0)),
		ev(2, at(0, 13, 0), at(0, 14, 0)),
	}

	out := Reschedule(events)
	for i, p := range out {
		assert.False(t, p.Shifted, "event %d", i)
		assert.Equal(t, events[i], p.Event)
	}
}

func TestReschedule_OutputIsStartOrdered(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 14, 0), at(0, 15, 0)),
		ev(1, at(0, 9, 0), at(0, 10, 0)),
		ev(2, at(0, 11, 0), at(0, 12, 0)),
	}

	out := Reschedule(events)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Event.Index)
	assert.Equal(t, 2, out[1].Event.Index)
	assert.Equal(t, 0, out[2].Event.Index)
}

func TestReschedule_EqualStartsKeepInputOrder(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 9, 0), at(0, 9, 30)),
		ev(1, at(0, 9, 0), at(0, 10, 0)),
	}

	out := Reschedule(events)
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].Event.Index)
	assert.Equal(t, 1, out[1].Event.Index)
	assert.Equal(t, "2025-03-17T09:30:00", out[1].Event.Start.String())
	assert.Equal(t, "2025-03-17T10:30:00", out[1].Event.End.String())
}

func TestReschedule_ContainedEventPushedAfterContainer(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 9, 0), at(0, 12, 0)),
		ev(1, at(0, 10, 0), at(0, 10, 30)),
	}

	out := Reschedule(events)
	assert.Equal(t, "2025-03-17T12:00:00", out[1].Event.Start.String())
	assert.Equal(t, "2025-03-17T12:30:00", out[1].Event.End.String())
}

func TestReschedule_ShiftTakesCursorOffsetStyle(t *testing.T) {
	first, err := domain.ParseTimestamp("2025-03-17T09:00:00+01:00", time.UTC)
	require.NoError(t, err)
	events := []domain.Event{
		ev(0, first, first.Add(time.Hour)),
		ev(1, domain.NaiveAt(first.Time.Add(30*time.Minute)), domain.NaiveAt(first.Time.Add(90*time.Minute))),
	}

	out := Reschedule(events)
	assert.Equal(t, "2025-03-17T10:00:00+01:00", out[1].Event.Start.String())
	assert.Equal(t, "2025-03-17T11:00:00+01:00", out[1].Event.End.String())
}

func TestReschedule_SubMicrosecondEndStaysOrderedAsText(t *testing.T) {
	s := func(v string) *string { return &v }
	events, skipped := ParseEvents([]domain.EventText{
		{Index: 0, Start: s("2025-03-17T09:00:00Z"), End: s("2025-03-17T10:00:00.0000005Z")},
		{Index: 1, Start: s("2025-03-17T09:30:00Z"), End: s("2025-03-17T10:30:00Z")},
	}, time.UTC)
	require.Empty(t, skipped)

	out := Reschedule(events)
	require.Len(t, out, 2)
	require.True(t, out[1].Shifted)

	prevEnd, err := domain.ParseTimestamp(out[0].Event.End.String(), time.UTC)
	require.NoError(t, err)
	nextStart, err := domain.ParseTimestamp(out[1].Event.Start.String(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17T10:00:00.0000005+00:00", out[1].Event.Start.String())
	assert.False(t, nextStart.Before(prevEnd), "printed start %s precedes printed end %s", nextStart, prevEnd)
}

func TestReschedule_Empty(t *testing.T) {
	assert.Empty(t, Reschedule(nil))
}

func TestReschedule_DoesNotMutateInput(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 10, 0), at(0, 11, 0)),
		ev(1, at(0, 9, 0), at(0, 10, 30)),
	}
	before := append([]domain.Event(nil), events...)

	Reschedule(events)
	assert.Equal(t, before, events)
}

func TestConflicts(t *testing.T) {
	events := []domain.Event{
		ev(0, at(0, 9, 0), at(0, 10, 0)),
		ev(1, at(0, 9, 30), at(0, 10, 30)),
		ev(2, at(0, 10, 30), at(0, 11, 0)),
	}

	assert.Equal(t, [][2]int{{0, 1}}, Conflicts(events))
	assert.Empty(t, Conflicts(events[2:]))
}

func TestParseEvents_DropsMalformed(t *testing.T) {
	s := func(v string) *string { return &v }
	texts := []domain.EventText{
		{Index: 0, Start: s("2025-03-17T11:00:00"), End: s("2025-03-17T12:00:00")},
		{Index: 1, Start: s("not a date"), End: s("2025-03-17T12:00:00")},
		{Index: 2, Start: s("2025-03-17T09:00:00"), End: s("2025-03-17T10:00:00")},
		{Index: 3, Start: nil, End: s("2025-03-17T10:00:00")},
		{Index: 4, Start: s("2025-03-17T10:00:00"), End: nil},
		{Index: 5, Start: s("2025-03-17T10:00:00"), End: s("garbage")},
		{Index: 6, Start: s("2025-03-17T10:00:00"), End: s("2025-03-17T09:00:00")},
	}

	events, skipped := ParseEvents(texts, time.UTC)

	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].Index, "sorted by start")
	assert.Equal(t, 0, events[1].Index)

	assert.Equal(t, []domain.SkippedEvent{
		{Index: 1, Reason: ReasonBadStart},
		{Index: 3, Reason: ReasonMissingStart},
		{Index: 4, Reason: ReasonMissingEnd},
		{Index: 5, Reason: ReasonBadEnd},
		{Index: 6, Reason: ReasonEndBefore},
	}, skipped)
}

func TestParseEvents_NaiveUsesLocation(t *testing.T) {
	s := func(v string) *string { return &v }
	tokyo := time.FixedZone("JST", 9*3600)

	events, skipped := ParseEvents([]domain.EventText{
		{Index: 0, Start: s("2025-03-17T09:00:00"), End: s("2025-03-17T10:00:00")},
	}, tokyo)

	require.Empty(t, skipped)
	require.Len(t, events, 1)
	assert.True(t, events[0].Start.Time.Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Hour, events[0].Duration())
}
