package repository

import (
	"database/sql"
	"time"

	"github.com/alexanderramin/timeai/internal/db"
	"github.com/alexanderramin/timeai/internal/domain"
)

// utcKey formats an instant for the start_utc/end_utc ordering columns.
func utcKey(ts domain.Timestamp) string {
	return ts.Time.UTC().Format(db.UTCLayout)
}

// parseStamp parses an RFC3339 audit column, returning the zero time for
// NULL or malformed values.
func parseStamp(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// rowsAffectedOrNotFound turns a zero-row write into ErrNotFound.
func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
