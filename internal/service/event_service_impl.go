package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/db"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/repository"
	"github.com/google/uuid"
)

// untitled names imported entries that carry no title.
const untitled = "Untitled"

type eventService struct {
	events   repository.EventRepo
	uow      db.UnitOfWork
	loc      *time.Location
	observer UseCaseObserver
}

func NewEventService(events repository.EventRepo, uow db.UnitOfWork, loc *time.Location, observers ...UseCaseObserver) EventService {
	if loc == nil {
		loc = time.Local
	}
	return &eventService{
		events:   events,
		uow:      uow,
		loc:      loc,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *eventService) Add(ctx context.Context, e *domain.StoredEvent) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": e.Title}
	defer observe(ctx, s.observer, "add-event", startedAt, fields, &err)

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	fields["id"] = e.ID

	if err = e.Validate(); err != nil {
		return err
	}
	return s.events.Create(ctx, e)
}

func (s *eventService) Update(ctx context.Context, e *domain.StoredEvent) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-event", startedAt, map[string]any{"id": e.ID}, &err)

	if err = e.Validate(); err != nil {
		return err
	}
	e.UpdatedAt = time.Now().UTC()
	return s.events.Update(ctx, e)
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.StoredEvent, error) {
	return s.events.GetByID(ctx, id)
}

func (s *eventService) List(ctx context.Context, filter repository.EventFilter) ([]*domain.StoredEvent, error) {
	return s.events.List(ctx, filter)
}

func (s *eventService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-event", startedAt, map[string]any{"id": id}, &err)

	return s.events.Delete(ctx, id)
}

func (s *eventService) Import(ctx context.Context, req *contract.Request) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"events": len(req.Events)}
	defer observe(ctx, s.observer, "import-events", startedAt, fields, &err)

	parsed := parsePayloadEvents(req, s.loc)
	now := time.Now().UTC()

	toStore := make([]*domain.StoredEvent, 0, len(parsed.events))
	for _, ev := range parsed.events {
		rec := parsed.records[ev.Index]
		title, ok := rec.Text("title")
		if !ok || title == "" {
			title = untitled
		}
		toStore = append(toStore, &domain.StoredEvent{
			ID:        uuid.New().String(),
			Title:     title,
			Start:     ev.Start,
			End:       ev.End,
			Tasks:     recordTasks(rec),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEvents := repository.NewSQLiteEventRepo(tx, s.loc)
		for _, e := range toStore {
			if err := txEvents.Create(ctx, e); err != nil {
				return fmt.Errorf("importing event %q: %w", e.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{Skipped: parsed.skipped}
	for _, e := range toStore {
		result.IDs = append(result.IDs, e.ID)
	}
	fields["imported"] = len(result.IDs)
	fields["skipped"] = len(result.Skipped)
	return result, nil
}

func (s *eventService) Payload(ctx context.Context, filter repository.EventFilter) (*contract.Request, error) {
	stored, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading stored events: %w", err)
	}

	req := &contract.Request{
		Tasks:  []json.RawMessage{},
		Events: make([]json.RawMessage, 0, len(stored)),
	}
	for _, e := range stored {
		raw, err := json.Marshal(contract.NewEventView(e))
		if err != nil {
			return nil, fmt.Errorf("encoding event %s: %w", e.ID, err)
		}
		req.Events = append(req.Events, raw)
	}
	return req, nil
}

// recordTasks reads an entry's tasks field, either a list of strings or the
// newline-joined form the desktop app stored.
func recordTasks(rec contract.Record) []string {
	raw, ok := rec.Fields.Get("tasks")
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if s, ok := rec.Text("tasks"); ok {
		return domain.SplitTasks(s)
	}
	return nil
}
