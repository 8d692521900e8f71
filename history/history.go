package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/waldirborbajr/appstorecheck/logger"
	_ "modernc.org/sqlite"
)

// Entry is one completed check
type Entry struct {
	ID            int64
	AppID         string
	LocalVersion  string
	RemoteVersion string
	HasNewer      bool
	FailureKind   string // empty on success
	Message       string
	CheckedAt     time.Time
}

// Store is an append-only log of checks kept in SQLite. It is never read to skip a lookup.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS checks (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    app_id         TEXT    NOT NULL,
    local_version  TEXT    NOT NULL,
    remote_version TEXT    NOT NULL DEFAULT '',
    has_newer      INTEGER NOT NULL DEFAULT 0,
    failure_kind   TEXT    NOT NULL DEFAULT '',
    message        TEXT    NOT NULL DEFAULT '',
    checked_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks (checked_at);
`

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	log := logger.GetLogger()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing history database")
		}
		return nil, fmt.Errorf("history database is not accessible: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing history database")
		}
		return nil, fmt.Errorf("error initializing history schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("History database ready")
	return &Store{db: db}, nil
}

// Record appends e. A zero CheckedAt is replaced by the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CheckedAt.IsZero() {
		e.CheckedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO checks (app_id, local_version, remote_version, has_newer, failure_kind, message, checked_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, e.AppID, e.LocalVersion, e.RemoteVersion, e.HasNewer, e.FailureKind, e.Message, e.CheckedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("error recording check: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, app_id, local_version, remote_version, has_newer, failure_kind, message, checked_at
        FROM checks
        ORDER BY checked_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			checkedAt int64
		)
		if err := rows.Scan(&e.ID, &e.AppID, &e.LocalVersion, &e.RemoteVersion, &e.HasNewer, &e.FailureKind, &e.Message, &checkedAt); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		e.CheckedAt = time.UnixMilli(checkedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading history: %w", err)
	}
	return entries, nil
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
