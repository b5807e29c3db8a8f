package service

import (
	"context"
	"io"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/repository"
)

// SchedulerService runs the scheduling operations on a decoded payload.
type SchedulerService interface {
	SmartSlot(ctx context.Context, req *contract.Request) (*contract.SmartSlotResponse, error)
	Reschedule(ctx context.Context, req *contract.Request) (*contract.RescheduleResponse, error)
	RescheduleConflicts(ctx context.Context, req *contract.Request) (*contract.ConflictsResponse, error)
	// Run dispatches op. Unknown operations yield contract.EmptyResponse.
	Run(ctx context.Context, op contract.Operation, req *contract.Request) (any, error)
}

// EventService manages the local calendar store.
type EventService interface {
	Add(ctx context.Context, e *domain.StoredEvent) error
	Update(ctx context.Context, e *domain.StoredEvent) error
	Get(ctx context.Context, id string) (*domain.StoredEvent, error)
	List(ctx context.Context, filter repository.EventFilter) ([]*domain.StoredEvent, error)
	Delete(ctx context.Context, id string) error
	// Import stores every well-formed entry of req.Events in one transaction.
	Import(ctx context.Context, req *contract.Request) (*ImportResult, error)
	// Payload builds a scheduling request from the stored events.
	Payload(ctx context.Context, filter repository.EventFilter) (*contract.Request, error)
}

// BatchService runs newline-delimited scheduling requests.
type BatchService interface {
	RunBatch(ctx context.Context, in io.Reader, out io.Writer, prepare func(*contract.Request)) error
}

// ImportResult reports what an import stored and what it dropped.
type ImportResult struct {
	IDs     []string
	Skipped []contract.SkippedEvent
}
