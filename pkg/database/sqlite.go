package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
)

// MemorySQLitePath opens a private in-memory database.
const MemorySQLitePath = ":memory:"

// OpenSQLite opens the SQLite database at path with foreign keys enforced.
// The pool is limited to one connection: SQLite has a single writer, and an
// in-memory database only lives as long as its connection.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	dsn := path
	params := "_foreign_keys=on&_busy_timeout=5000"
	if path != MemorySQLitePath {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(dsn, "?") {
		dsn += "&" + params
	} else {
		dsn += "?" + params
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}
