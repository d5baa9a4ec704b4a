// Package history keeps an append-only journal of display apply and reset
// results in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yllada/display-panel/display"

	_ "modernc.org/sqlite" // SQLite
)

const schema = `
CREATE TABLE IF NOT EXISTS applies (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT    NOT NULL UNIQUE,
	action      TEXT    NOT NULL,
	output      TEXT    NOT NULL,
	applied_at  TEXT    NOT NULL,
	mode_index  INTEGER NOT NULL,
	scale_index INTEGER NOT NULL,
	mode        TEXT    NOT NULL,
	scale       TEXT    NOT NULL,
	outcome     TEXT    NOT NULL,
	mode_error  TEXT    NOT NULL DEFAULT '',
	scale_error TEXT    NOT NULL DEFAULT ''
)`

// Entry is one journal row.
type Entry struct {
	ID         uuid.UUID
	Action     display.Action
	Output     string
	Time       time.Time
	ModeIndex  int
	ScaleIndex int
	Mode       display.DisplayMode
	Scale      display.ScaleOption
	Outcome    string
	ModeError  string
	ScaleError string
}

// Failed reports whether either step failed.
func (e Entry) Failed() bool {
	return e.ModeError != "" || e.ScaleError != ""
}

// Journal records apply results. It satisfies display.Journal.
type Journal struct {
	db   *sql.DB
	path string
}

var _ display.Journal = (*Journal)(nil)

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer keeps SQLite from returning "database is locked".
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

// Path returns the database file.
func (j *Journal) Path() string {
	return j.path
}

// Record appends result.
func (j *Journal) Record(ctx context.Context, result display.ApplyResult) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO applies (id, action, output, applied_at, mode_index, scale_index, mode, scale, outcome, mode_error, scale_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID.String(),
		string(result.Action),
		result.Output,
		result.Time.UTC().Format(time.RFC3339Nano),
		result.ModeIndex,
		result.ScaleIndex,
		string(result.Mode),
		string(result.Scale),
		result.Outcome.String(),
		errorText(result.ModeErr),
		errorText(result.ScaleErr),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", result.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, action, output, applied_at, mode_index, scale_index, mode, scale, outcome, mode_error, scale_error
		FROM applies ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			id, action, appliedAt string
			mode, scale           string
		)
		if err := rows.Scan(&id, &action, &e.Output, &appliedAt, &e.ModeIndex, &e.ScaleIndex,
			&mode, &scale, &e.Outcome, &e.ModeError, &e.ScaleError); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", appliedAt, err)
		}
		e.Action = display.Action(action)
		e.Mode = display.DisplayMode(mode)
		e.Scale = display.ScaleOption(scale)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
