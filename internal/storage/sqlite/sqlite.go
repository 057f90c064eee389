// Package sqlite provides a SQLite-backed implementation of the
// storage.Registrations interface using Go's standard database/sql package.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded; we never call anything from it directly.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/google/uuid"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// schema is applied on every startup. CREATE TABLE IF NOT EXISTS is
// idempotent, so an existing table is left alone.
//
// Timestamps are stored as unix milliseconds. The CHECK constraints are the
// last line against malformed rows: a friends value that is not a JSON array
// of at most 7 entries, or an unknown status, aborts the INSERT.
const schema = `
	CREATE TABLE IF NOT EXISTS registrations (
		id             TEXT    PRIMARY KEY,
		full_name      TEXT    NOT NULL,
		national_id    TEXT    NOT NULL,
		age            INTEGER NOT NULL,
		university     TEXT    NOT NULL,
		college        TEXT    NOT NULL,
		course         TEXT    NOT NULL,
		phone          TEXT    NOT NULL,
		email          TEXT    NOT NULL,
		guardian_phone TEXT    NOT NULL,
		address        TEXT    NOT NULL,
		friends        TEXT    NOT NULL DEFAULT '[]'
			CHECK (json_valid(friends)
				AND json_type(friends) = 'array'
				AND json_array_length(friends) <= 7),
		photo_url      TEXT,
		status         TEXT    NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS registrations_created_at
		ON registrations (created_at DESC);
`

// columns is the explicit column list for every SELECT/RETURNING.
// Scan order in scanRegistration must match it.
const columns = `id, full_name, national_id, age, university, college, course,
	phone, email, guardian_phone, address, friends, photo_url, status,
	created_at, updated_at`

// SQLite is the concrete implementation of storage.Registrations.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB

	now   func() time.Time
	newID func() string
}

// Option customises a SQLite store.
type Option func(*SQLite)

// WithClock replaces time.Now, for tests that need stable timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLite) { s.newID = newID }
}

// New opens the SQLite database at path, creates the registrations table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(path string, opts ...Option) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite.New: storage path is required")
	}

	// sql.Open does NOT open a real connection yet; it just validates
	// the driver name and data source name (DSN). Ping forces one.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: ping db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	s := &SQLite{
		Db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	if s == nil || s.Db == nil {
		return nil
	}
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateRegistration inserts one row and reads it back with RETURNING, so
// the caller gets exactly what was stored.
//
// All values travel as ? placeholders; nothing from the request is ever
// concatenated into the SQL text.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateRegistration(ctx context.Context, reg types.Registration) (types.Registration, error) {
	friends := reg.Friends
	if friends == nil {
		friends = []types.Friend{}
	}
	friendsJSON, err := json.Marshal(friends)
	if err != nil {
		return types.Registration{}, fmt.Errorf("CreateRegistration: encode friends: %w", err)
	}

	now := toMillis(s.now())

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO registrations (
			id, full_name, national_id, age, university, college, course,
			phone, email, guardian_phone, address, friends, photo_url,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+columns)
	if err != nil {
		return types.Registration{}, fmt.Errorf("CreateRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	created, err := scanRegistration(stmt.QueryRowContext(ctx,
		s.newID(),
		reg.FullName,
		reg.NationalID,
		reg.Age,
		reg.University,
		reg.College,
		reg.Course,
		reg.Phone,
		reg.Email,
		reg.GuardianPhone,
		reg.Address,
		string(friendsJSON),
		reg.PhotoURL,
		string(types.StatusPending),
		now,
		now,
	))
	if err != nil {
		return types.Registration{}, fmt.Errorf("CreateRegistration: exec: %w", err)
	}

	return created, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListRegistrations returns all rows, newest first. Rows created in the same
// millisecond fall back to insertion order (rowid), still newest first.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ListRegistrations(ctx context.Context) ([]types.Registration, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM registrations ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// An empty table encodes as [] rather than null.
	registrations := make([]types.Registration, 0)

	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRegistrations: scan row: %w", err)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRegistrations: rows iteration: %w", err)
	}

	return registrations, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateRegistrationStatus changes status and updated_at in one statement.
// No other column is touched.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateRegistrationStatus(ctx context.Context, id string, status types.Status) (types.Registration, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE registrations SET status = ?, updated_at = ? WHERE id = ? RETURNING "+columns,
	)
	if err != nil {
		return types.Registration{}, fmt.Errorf("UpdateRegistrationStatus: prepare: %w", err)
	}
	defer stmt.Close()

	updated, err := scanRegistration(stmt.QueryRowContext(ctx, string(status), toMillis(s.now()), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Registration{}, storage.ErrNotFound
		}
		return types.Registration{}, fmt.Errorf("UpdateRegistrationStatus: exec: %w", err)
	}

	return updated, nil
}

// DeleteRegistration removes a row by id. A missing id affects zero rows and
// is still a success.
func (s *SQLite) DeleteRegistration(ctx context.Context, id string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM registrations WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("DeleteRegistration: exec: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (types.Registration, error) {
	var (
		reg       types.Registration
		friends   string
		photo     sql.NullString
		status    string
		createdAt int64
		updatedAt int64
	)

	// Order must match the columns constant.
	if err := row.Scan(
		&reg.ID,
		&reg.FullName,
		&reg.NationalID,
		&reg.Age,
		&reg.University,
		&reg.College,
		&reg.Course,
		&reg.Phone,
		&reg.Email,
		&reg.GuardianPhone,
		&reg.Address,
		&friends,
		&photo,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return types.Registration{}, err
	}

	reg.Friends = []types.Friend{}
	if err := json.Unmarshal([]byte(friends), &reg.Friends); err != nil {
		return types.Registration{}, fmt.Errorf("decode friends: %w", err)
	}
	if photo.Valid {
		reg.PhotoURL = &photo.String
	}
	reg.Status = types.Status(status)
	reg.CreatedAt = fromMillis(createdAt)
	reg.UpdatedAt = fromMillis(updatedAt)

	return reg, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
