package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/night-owl-018/seapay-certifier/internal/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id           TEXT PRIMARY KEY,
  started_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  finished_at  DATETIME,
  status       TEXT NOT NULL DEFAULT 'PROCESSING',
  total_files  INTEGER NOT NULL DEFAULT 0,
  processed    INTEGER NOT NULL DEFAULT 0,
  failed       INTEGER NOT NULL DEFAULT 0,
  message      TEXT
);
CREATE TABLE IF NOT EXISTS file_hashes (
  sha256      TEXT PRIMARY KEY,
  file_name   TEXT NOT NULL,
  run_id      TEXT NOT NULL,
  seen_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS overrides (
  member_key   TEXT NOT NULL,
  sheet_file   TEXT NOT NULL,
  event_index  INTEGER NOT NULL,
  make_valid   INTEGER NOT NULL CHECK (make_valid IN (0,1)),
  reason       TEXT,
  signature    TEXT NOT NULL DEFAULT '',
  updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (member_key, sheet_file, event_index)
);
CREATE INDEX IF NOT EXISTS idx_overrides_member ON overrides(member_key);
CREATE TABLE IF NOT EXISTS ships (
  name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS roster (
  last  TEXT NOT NULL,
  first TEXT NOT NULL DEFAULT '',
  rate  TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (last, first)
);
`

// DB wraps the sqlite handle shared by the repositories.
type DB struct {
	sql    *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the sqlite database and applies the schema.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, "open database", err)
	}
	if err := db.Ping(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, "ping database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, common.WrapError(common.ErrDatabase, "apply schema", err)
	}
	logger.Debug("database ready", "path", path)
	return &DB{sql: db, logger: logger}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Health reports whether the database is reachable.
func (d *DB) Health(ctx context.Context) error {
	if err := d.ping(ctx); err != nil {
		return common.WrapError(common.ErrDatabase, "database unreachable", err)
	}
	return nil
}
