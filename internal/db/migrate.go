package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/timeai/internal/domain"
)

// UTCLayout is the fixed-width form of the start_utc/end_utc columns, so
// that text order matches time order.
const UTCLayout = "2006-01-02T15:04:05.000000Z"

// Migrate brings the schema up to date. It is safe to run repeatedly.
func Migrate(db *sql.DB) error {
	if err := migrateLegacyEvents(db); err != nil {
		return fmt.Errorf("upgrading legacy events table: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		start      TEXT NOT NULL,
		"end"      TEXT NOT NULL,
		start_utc  TEXT NOT NULL,
		end_utc    TEXT NOT NULL,
		tasks      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_start_utc ON events(start_utc)`,
}

// migrateLegacyEvents rebuilds an events table created by the desktop app
// (integer ids, no UTC ordering columns) into the current layout. Legacy
// timestamps without an offset are read in the local zone; rows whose times
// do not parse keep their raw text in the ordering columns.
func migrateLegacyEvents(db *sql.DB) error {
	ctx := context.Background()

	var createSQL string
	err := db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'events'`).Scan(&createSQL)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading events schema: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL), "start_utc") {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS events_new`); err != nil {
		return fmt.Errorf("dropping stale events_new: %w", err)
	}
	if _, err := tx.ExecContext(ctx, strings.Replace(migrations[0], "IF NOT EXISTS events", "events_new", 1)); err != nil {
		return fmt.Errorf("creating events_new: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, title, start, "end", tasks FROM events ORDER BY id`)
	if err != nil {
		return fmt.Errorf("reading legacy events: %w", err)
	}
	type legacyRow struct {
		id                       int64
		title, start, end, tasks sql.NullString
	}
	var legacy []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.id, &r.title, &r.start, &r.end, &r.tasks); err != nil {
			rows.Close()
			return fmt.Errorf("scanning legacy event: %w", err)
		}
		legacy = append(legacy, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating legacy events: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range legacy {
		_, err := tx.ExecContext(ctx, `INSERT INTO events_new
			(id, title, start, "end", start_utc, end_utc, tasks, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			strconv.FormatInt(r.id, 10),
			r.title.String,
			r.start.String,
			r.end.String,
			legacyUTC(r.start.String),
			legacyUTC(r.end.String),
			r.tasks.String,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("copying legacy event %d: %w", r.id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE events`); err != nil {
		return fmt.Errorf("dropping legacy events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE events_new RENAME TO events`); err != nil {
		return fmt.Errorf("renaming events_new: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events migration: %w", err)
	}
	committed = true
	return nil
}

func legacyUTC(s string) string {
	ts, err := domain.ParseTimestamp(s, time.Local)
	if err != nil {
		return s
	}
	return ts.Time.UTC().Format(UTCLayout)
}
