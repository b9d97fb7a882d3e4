// Package sqlite stores the ledger in a SQLite database through database/sql.
// Amounts are kept as decimal strings, entry dates as YYYY-MM-DD and
// timestamps as fixed-width UTC text, so every ordering the ledger needs is a
// plain text comparison.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB *sql.DB
}

// withTx runs fn in a transaction and commits when fn succeeds. The pool has a
// single connection, so fn must use tx for every statement.
func (r *BaseRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func constraintCode(err error) sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode
	}
	return 0
}

func internalError(format string, err error, args ...any) error {
	return apperrors.NewAppError(500, fmt.Sprintf(format, args...), err)
}

// placeholders renders n comma-separated bind parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatNullTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

func asText(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported time column type %T", src)
	}
}

// textTime scans a TEXT column written with layout into dest.
type textTime struct {
	dest   *time.Time
	layout string
}

func (t textTime) Scan(src any) error {
	s, err := asText(src)
	if err != nil {
		return err
	}
	parsed, err := time.Parse(t.layout, s)
	if err != nil {
		return err
	}
	*t.dest = parsed
	return nil
}

// nullTextTime is textTime for nullable columns.
type nullTextTime struct {
	dest   **time.Time
	layout string
}

func (t nullTextTime) Scan(src any) error {
	if src == nil {
		*t.dest = nil
		return nil
	}
	var parsed time.Time
	if err := (textTime{dest: &parsed, layout: t.layout}).Scan(src); err != nil {
		return err
	}
	*t.dest = &parsed
	return nil
}

func dateCol(dest *time.Time) textTime {
	return textTime{dest: dest, layout: dateLayout}
}

func timestampCol(dest *time.Time) textTime {
	return textTime{dest: dest, layout: timestampLayout}
}

func nullTimestampCol(dest **time.Time) nullTextTime {
	return nullTextTime{dest: dest, layout: timestampLayout}
}
