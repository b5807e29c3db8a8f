package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/repository"
	"github.com/alexanderramin/timeai/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(t *testing.T, observers ...UseCaseObserver) (EventService, repository.EventRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteEventRepo(database, time.UTC)
	return NewEventService(repo, testutil.NewTestUoW(database), time.UTC, observers...), repo
}

func mustStamp(t *testing.T, s string) domain.Timestamp {
	t.Helper()
	ts, err := domain.ParseTimestamp(s, time.UTC)
	require.NoError(t, err)
	return ts
}

func TestEventService_AddListDelete(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	e := &domain.StoredEvent{
		Title: "Dentist",
		Start: mustStamp(t, "2025-03-17T14:00:00"),
		End:   mustStamp(t, "2025-03-17T15:00:00"),
		Tasks: []string{"bring card 5m"},
	}
	require.NoError(t, svc.Add(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	events, err := svc.List(ctx, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.Equal(t, []string{"bring card 5m"}, events[0].Tasks)

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_AddRejectsInvalid(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		event domain.StoredEvent
	}{
		{"missing title", domain.StoredEvent{Start: mustStamp(t, "2025-03-17T09:00:00"), End: mustStamp(t, "2025-03-17T10:00:00")}},
		{"missing times", domain.StoredEvent{Title: "x"}},
		{"end before start", domain.StoredEvent{Title: "x", Start: mustStamp(t, "2025-03-17T10:00:00"), End: mustStamp(t, "2025-03-17T09:00:00")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			err := svc.Add(ctx, &e)
			assert.ErrorIs(t, err, domain.ErrInvalidEvent)
		})
	}

	events, err := svc.List(ctx, repository.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventService_Update(t *testing.T) {
	svc, _ := newTestEventService(t)
	ctx := context.Background()

	e := testutil.NewTestEvent(time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC))
	e.ID = ""
	require.NoError(t, svc.Add(ctx, e))

	e.End = e.Start.Add(-time.Minute)
	assert.ErrorIs(t, svc.Update(ctx, e), domain.ErrInvalidEvent)

	e.End = e.Start.Add(2 * time.Hour)
	require.NoError(t, svc.Update(ctx, e))

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17T11:00:00", got.End.String())

	missing := testutil.NewTestEvent(time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, svc.Update(ctx, missing), repository.ErrNotFound)
}

func TestEventService_Import(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := newTestEventService(t, obs)
	ctx := context.Background()

	req := decode(t, `{"events": [
		{"title": "Standup", "start": "2025-03-17T09:00:00", "end": "2025-03-17T09:15:00", "tasks": "notes 5m\nsync 10m"},
		{"id": "x", "start": "later", "end": "2025-03-17T10:00:00"},
		{"start": "2025-03-17T08:00:00", "end": "2025-03-17T08:30:00", "tasks": ["gym 30m"]},
		42
	]}`)

	res, err := svc.Import(ctx, req)
	require.NoError(t, err)
	assert.Len(t, res.IDs, 2)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 1, res.Skipped[0].Index)
	assert.JSONEq(t, `"x"`, string(res.Skipped[0].ID))
	assert.Equal(t, 3, res.Skipped[1].Index)

	events, err := svc.List(ctx, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Untitled", events[0].Title)
	assert.Equal(t, []string{"gym 30m"}, events[0].Tasks)
	assert.Equal(t, "Standup", events[1].Title)
	assert.Equal(t, []string{"notes 5m", "sync 10m"}, events[1].Tasks)

	ev := obs.last()
	assert.Equal(t, "import-events", ev.Name)
	assert.Equal(t, 2, ev.Fields["imported"])
}

func TestEventService_ImportIsAllOrNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteEventRepo(database, time.UTC)
	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom}
	svc := NewEventService(repo, uow, time.UTC)
	ctx := context.Background()

	_, err := svc.Import(ctx, decode(t, `{"events": [
		{"title": "a", "start": "2025-03-17T09:00:00", "end": "2025-03-17T10:00:00"},
		{"title": "b", "start": "2025-03-17T11:00:00", "end": "2025-03-17T12:00:00"},
		{"title": "c", "start": "2025-03-17T13:00:00", "end": "2025-03-17T14:00:00"}
	]}`))
	require.ErrorIs(t, err, boom)

	events, err := repo.List(ctx, repository.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events, "first insert must be rolled back")
}

func TestEventService_PayloadFeedsScheduler(t *testing.T) {
	events, _ := newTestEventService(t)
	sched, _ := newTestScheduler(t)
	ctx := context.Background()

	for _, span := range [][2]string{
		{"2025-03-17T11:00:00", "2025-03-17T12:00:00"},
		{"2025-03-17T09:00:00", "2025-03-17T10:00:00"},
	} {
		require.NoError(t, events.Add(ctx, &domain.StoredEvent{
			Title: "busy",
			Start: mustStamp(t, span[0]),
			End:   mustStamp(t, span[1]),
		}))
	}

	req, err := events.Payload(ctx, repository.EventFilter{})
	require.NoError(t, err)
	require.Len(t, req.Events, 2)
	assert.Empty(t, req.Tasks)

	recs := req.Records()
	start, ok := recs[0].Text("start")
	require.True(t, ok)
	assert.Equal(t, "2025-03-17T09:00:00", start, "payload is in start order")
	tasks, ok := recs[0].Fields.Get("tasks")
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(tasks))

	req.Tasks = []json.RawMessage{json.RawMessage(`"write 1h"`)}
	resp, err := sched.SmartSlot(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17T10:00:00", resp.Slot)
}

func TestEventService_PayloadEmptyStore(t *testing.T) {
	svc, _ := newTestEventService(t)

	req, err := svc.Payload(context.Background(), repository.EventFilter{})
	require.NoError(t, err)
	assert.NotNil(t, req.Events)
	assert.Empty(t, req.Events)
}

