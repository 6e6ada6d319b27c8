// Package sqlite is the single-node backend. It implements the leave,
// notification, calendar, audit and job-run stores on one database file.
// SQLite has no row locks, so leave mutations always run through
// leave.FallbackStore on this backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

type Store struct {
	db *sql.DB
}

// New opens the database at path and applies the schema. Use ":memory:"
// for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(path, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the handle for tests that need to seed or corrupt rows directly.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS leave_balances (
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	granted REAL NOT NULL DEFAULT 0,
	used REAL NOT NULL DEFAULT 0 CHECK (used >= 0),
	available_hours NUMERIC,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (user_id, category)
);

CREATE TABLE IF NOT EXISTS leave_requests (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	start_half INTEGER NOT NULL DEFAULT 0,
	end_half INTEGER NOT NULL DEFAULT 0,
	days REAL NOT NULL CHECK (days > 0),
	reason TEXT,
	status TEXT NOT NULL,
	approver_id TEXT,
	decision_note TEXT,
	decided_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leave_requests_user ON leave_requests(user_id, created_at);

CREATE TABLE IF NOT EXISTS accrual_credits (
	user_id TEXT NOT NULL,
	work_date TEXT NOT NULL,
	category TEXT NOT NULL,
	hours REAL NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (user_id, work_date, category)
);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	read_at TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_contacts (
	user_id TEXT PRIMARY KEY,
	email TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calendar_events (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	action TEXT NOT NULL,
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	amount REAL NOT NULL,
	unit TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (source_id, action)
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor_user_id TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	before_json TEXT,
	after_json TEXT,
	request_id TEXT,
	ip TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_windows (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	standard_weekly_hours REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS work_policies (
	id TEXT PRIMARY KEY,
	active INTEGER NOT NULL DEFAULT 1,
	night_start_minute INTEGER,
	night_end_minute INTEGER,
	night_rate REAL,
	overtime_threshold_hours REAL,
	overtime_rate REAL,
	break_tier_hours REAL,
	break_tier_minutes INTEGER,
	lunch_minutes INTEGER,
	dinner_minutes INTEGER,
	dinner_threshold_hours REAL,
	standard_weekly_hours REAL,
	saturday_base_rate REAL,
	saturday_overtime_rate REAL,
	sunday_base_rate REAL,
	sunday_overtime_rate REAL,
	accrual_base_hours REAL,
	accrual_max_balance_hours REAL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS holidays (
	holiday_date TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS job_runs (
	id TEXT PRIMARY KEY,
	job_type TEXT NOT NULL,
	subject_id TEXT,
	status TEXT NOT NULL,
	details_json TEXT,
	started_at TEXT NOT NULL,
	completed_at TEXT
);
`

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isCheckViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}
