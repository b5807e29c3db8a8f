package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timeai/internal/db"
	"github.com/alexanderramin/timeai/internal/domain"
)

// SQLiteEventRepo implements EventRepo on the events table. Stored start/end
// text keeps the caller's offset style; naive values are read back in loc.
type SQLiteEventRepo struct {
	db  db.DBTX
	loc *time.Location
}

func NewSQLiteEventRepo(conn db.DBTX, loc *time.Location) *SQLiteEventRepo {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteEventRepo{db: conn, loc: loc}
}

const eventColumns = `id, title, start, "end", tasks, created_at, updated_at`

func (r *SQLiteEventRepo) Create(ctx context.Context, e *domain.StoredEvent) error {
	query := `INSERT INTO events (id, title, start, "end", start_utc, end_utc, tasks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Start.String(),
		e.End.String(),
		utcKey(e.Start),
		utcKey(e.End),
		e.TasksText(),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepo) GetByID(ctx context.Context, id string) (*domain.StoredEvent, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := r.scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (r *SQLiteEventRepo) List(ctx context.Context, filter EventFilter) ([]*domain.StoredEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.From != nil {
		where = append(where, `start_utc >= ?`)
		args = append(args, filter.From.UTC().Format(db.UTCLayout))
	}
	if filter.To != nil {
		where = append(where, `start_utc < ?`)
		args = append(args, filter.To.UTC().Format(db.UTCLayout))
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY start_utc, created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*domain.StoredEvent
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func (r *SQLiteEventRepo) Update(ctx context.Context, e *domain.StoredEvent) error {
	query := `UPDATE events SET title = ?, start = ?, "end" = ?, start_utc = ?, end_utc = ?, tasks = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Title,
		e.Start.String(),
		e.End.String(),
		utcKey(e.Start),
		utcKey(e.End),
		e.TasksText(),
		e.UpdatedAt.UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		return fmt.Errorf("updating event %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteEventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteEventRepo) scanEvent(s scanner) (*domain.StoredEvent, error) {
	var (
		e                    domain.StoredEvent
		start, end, tasks    string
		createdAt, updatedAt sql.NullString
	)
	if err := s.Scan(&e.ID, &e.Title, &start, &end, &tasks, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	var err error
	if e.Start, err = domain.ParseTimestamp(start, r.loc); err != nil {
		return nil, fmt.Errorf("event %s start: %w: %v", e.ID, domain.ErrInvalidEvent, err)
	}
	if e.End, err = domain.ParseTimestamp(end, r.loc); err != nil {
		return nil, fmt.Errorf("event %s end: %w: %v", e.ID, domain.ErrInvalidEvent, err)
	}
	e.Tasks = domain.SplitTasks(tasks)
	e.CreatedAt = parseStamp(createdAt)
	e.UpdatedAt = parseStamp(updatedAt)
	return &e, nil
}
