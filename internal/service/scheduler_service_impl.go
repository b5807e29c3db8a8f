package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/scheduler"
)

// SchedulerConfig holds the scheduling knobs that are not part of a payload.
type SchedulerConfig struct {
	Window          domain.WorkWindow
	HorizonDays     int
	FallbackMinutes int
	// Location interprets naive timestamps and decides calendar days.
	Location *time.Location
	// Now supplies the reference time when a request does not carry one.
	Now func() time.Time
}

// DefaultSchedulerConfig searches 09:00-17:00 over seven days in the local
// zone with a 30 minute fallback per task.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Window:          domain.DefaultWorkWindow,
		HorizonDays:     scheduler.DefaultHorizonDays,
		FallbackMinutes: scheduler.FallbackMinutes,
		Location:        time.Local,
		Now:             time.Now,
	}
}

type schedulerService struct {
	cfg      SchedulerConfig
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewSchedulerService(cfg SchedulerConfig, logger *slog.Logger, observers ...UseCaseObserver) SchedulerService {
	def := DefaultSchedulerConfig()
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.Window == (domain.WorkWindow{}) {
		cfg.Window = def.Window
	}
	if cfg.HorizonDays < 1 {
		cfg.HorizonDays = def.HorizonDays
	}
	if cfg.FallbackMinutes < 1 {
		cfg.FallbackMinutes = def.FallbackMinutes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &schedulerService{
		cfg:      cfg,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *schedulerService) Run(ctx context.Context, op contract.Operation, req *contract.Request) (any, error) {
	switch op {
	case contract.OpSmartSlot:
		return s.SmartSlot(ctx, req)
	case contract.OpReschedule:
		return s.Reschedule(ctx, req)
	case contract.OpRescheduleConflicts:
		return s.RescheduleConflicts(ctx, req)
	}
	s.logger.DebugContext(ctx, "unknown operation", "op", string(op))
	return contract.EmptyResponse{}, nil
}

func (s *schedulerService) SmartSlot(ctx context.Context, req *contract.Request) (resp *contract.SmartSlotResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"tasks": len(req.Tasks), "events": len(req.Events)}
	defer observe(ctx, s.observer, "smart-slot", startedAt, fields, &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	parsed := s.parse(ctx, req)
	total := scheduler.TotalMinutes(req.TaskTexts(), s.cfg.FallbackMinutes)
	res := scheduler.FindSlot(total, parsed.events, scheduler.SlotOptions{
		Now:         s.now(req),
		Location:    s.cfg.Location,
		Window:      s.cfg.Window,
		HorizonDays: s.cfg.HorizonDays,
	})
	fields["skipped"] = len(parsed.skipped)
	fields["total_minutes"] = total
	fields["feasible"] = res.Feasible

	resp = &contract.SmartSlotResponse{
		Slot:  res.Start.String(),
		Tasks: req.Tasks,
	}
	if req.Diagnostics {
		resp.Feasible = boolPtr(res.Feasible)
		resp.HorizonDay = intPtr(res.HorizonDay)
		resp.SlotEnd = res.End.String()
		resp.TotalMinutes = intPtr(total)
		resp.Skipped = parsed.skipped
	}
	return resp, nil
}

func (s *schedulerService) Reschedule(ctx context.Context, req *contract.Request) (resp *contract.RescheduleResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"events": len(req.Events)}
	defer observe(ctx, s.observer, "reschedule", startedAt, fields, &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	res := s.reschedule(ctx, req, fields)

	resp = &contract.RescheduleResponse{Events: make([]contract.Fields, 0, len(res.placed))}
	for _, p := range res.placed {
		if !p.Shifted {
			resp.Events = append(resp.Events, p.record.Fields)
			continue
		}
		resp.Events = append(resp.Events, p.record.WithTimes(p.Event.Start, p.Event.End))
	}
	if req.Diagnostics {
		resp.Shifted, resp.Conflicts, resp.Skipped = res.diagnostics()
	}
	return resp, nil
}

func (s *schedulerService) RescheduleConflicts(ctx context.Context, req *contract.Request) (resp *contract.ConflictsResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"events": len(req.Events)}
	defer observe(ctx, s.observer, "reschedule-conflicts", startedAt, fields, &err)

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	res := s.reschedule(ctx, req, fields)

	resp = &contract.ConflictsResponse{Events: make([]contract.ConflictEvent, 0, len(res.placed))}
	for _, p := range res.placed {
		resp.Events = append(resp.Events, contract.ConflictEvent{
			ID:    p.record.ID(),
			Start: p.text("start", p.Event.Start),
			End:   p.text("end", p.Event.End),
		})
	}
	if req.Diagnostics {
		resp.Shifted, resp.Conflicts, resp.Skipped = res.diagnostics()
	}
	return resp, nil
}

// placedRecord is a resolved event together with the entry it came from.
type placedRecord struct {
	scheduler.Placement
	record contract.Record
}

// text is the entry's time field as it will be printed: the caller's text
// when the event stayed put, the new time otherwise.
func (p placedRecord) text(key string, ts domain.Timestamp) string {
	if !p.Shifted {
		if s, ok := p.record.Text(key); ok {
			return s
		}
	}
	return ts.String()
}

type rescheduleResult struct {
	placed    []placedRecord
	shifted   int
	conflicts int
	skipped   []contract.SkippedEvent
}

func (r rescheduleResult) diagnostics() (shifted, conflicts *int, skipped []contract.SkippedEvent) {
	return intPtr(r.shifted), intPtr(r.conflicts), r.skipped
}

func (s *schedulerService) reschedule(ctx context.Context, req *contract.Request, fields map[string]any) rescheduleResult {
	parsed := s.parse(ctx, req)
	placements := scheduler.Reschedule(parsed.events)

	res := rescheduleResult{
		placed:    make([]placedRecord, 0, len(placements)),
		conflicts: len(scheduler.Conflicts(parsed.events)),
		skipped:   parsed.skipped,
	}
	for _, p := range placements {
		if p.Shifted {
			res.shifted++
		}
		res.placed = append(res.placed, placedRecord{Placement: p, record: parsed.records[p.Event.Index]})
	}
	fields["skipped"] = len(res.skipped)
	fields["shifted"] = res.shifted
	fields["conflicts"] = res.conflicts
	return res
}

// parse splits the payload and logs every dropped entry.
func (s *schedulerService) parse(ctx context.Context, req *contract.Request) parsedPayload {
	parsed := parsePayloadEvents(req, s.cfg.Location)
	for _, sk := range parsed.skipped {
		s.logger.WarnContext(ctx, "skipping malformed event",
			"index", sk.Index,
			"id", string(sk.ID),
			"reason", sk.Reason,
		)
	}
	return parsed
}

func (s *schedulerService) now(req *contract.Request) time.Time {
	if req.Now != nil {
		return req.Now.In(s.cfg.Location)
	}
	return s.cfg.Now().In(s.cfg.Location)
}
