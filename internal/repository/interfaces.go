package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// EventFilter narrows List to events starting in [From, To). Nil bounds are
// open.
type EventFilter struct {
	From *time.Time
	To   *time.Time
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.StoredEvent) error
	GetByID(ctx context.Context, id string) (*domain.StoredEvent, error)
	List(ctx context.Context, filter EventFilter) ([]*domain.StoredEvent, error)
	Update(ctx context.Context, e *domain.StoredEvent) error
	Delete(ctx context.Context, id string) error
}
