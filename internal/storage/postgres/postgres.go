// Package postgres implements storage.Registrations on PostgreSQL through a
// pgx connection pool. It is selected when database_url is configured.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS registrations (
		id             UUID        PRIMARY KEY,
		full_name      TEXT        NOT NULL,
		national_id    TEXT        NOT NULL,
		age            INTEGER     NOT NULL,
		university     TEXT        NOT NULL,
		college        TEXT        NOT NULL,
		course         TEXT        NOT NULL,
		phone          TEXT        NOT NULL,
		email          TEXT        NOT NULL,
		guardian_phone TEXT        NOT NULL,
		address        TEXT        NOT NULL,
		friends        JSONB       NOT NULL DEFAULT '[]'::jsonb
			CHECK (jsonb_typeof(friends) = 'array' AND jsonb_array_length(friends) <= 7),
		photo_url      TEXT,
		status         TEXT        NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS registrations_created_at ON registrations (created_at DESC);
`

const columns = `id::text, full_name, national_id, age, university, college, course,
	phone, email, guardian_phone, address, friends, photo_url, status,
	created_at, updated_at`

// Postgres is the pgx-backed registration store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New connects to dsn and creates the registrations table if needed.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres.New: database url is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Postgres) CreateRegistration(ctx context.Context, reg types.Registration) (types.Registration, error) {
	friends := reg.Friends
	if friends == nil {
		friends = []types.Friend{}
	}
	friendsJSON, err := json.Marshal(friends)
	if err != nil {
		return types.Registration{}, fmt.Errorf("CreateRegistration: encode friends: %w", err)
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO registrations (
			id, full_name, national_id, age, university, college, course,
			phone, email, guardian_phone, address, friends, photo_url, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'pending')
		RETURNING `+columns,
		uuid.New(),
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
		friendsJSON,
		reg.PhotoURL,
	)

	created, err := scanRegistration(row)
	if err != nil {
		return types.Registration{}, fmt.Errorf("CreateRegistration: %s: %w", describe(err), err)
	}
	return created, nil
}

func (p *Postgres) ListRegistrations(ctx context.Context) ([]types.Registration, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+columns+" FROM registrations ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: query: %w", err)
	}
	defer rows.Close()

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

func (p *Postgres) UpdateRegistrationStatus(ctx context.Context, id string, status types.Status) (types.Registration, error) {
	// A malformed id cannot match a UUID column; treat it like a missing row
	// instead of letting the cast fail.
	parsed, err := uuid.Parse(id)
	if err != nil {
		return types.Registration{}, storage.ErrNotFound
	}

	row := p.pool.QueryRow(ctx,
		"UPDATE registrations SET status = $1, updated_at = now() WHERE id = $2 RETURNING "+columns,
		string(status), parsed,
	)
	updated, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Registration{}, storage.ErrNotFound
		}
		return types.Registration{}, fmt.Errorf("UpdateRegistrationStatus: %s: %w", describe(err), err)
	}
	return updated, nil
}

func (p *Postgres) DeleteRegistration(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	if _, err := p.pool.Exec(ctx, "DELETE FROM registrations WHERE id = $1", parsed); err != nil {
		return fmt.Errorf("DeleteRegistration: exec: %w", err)
	}
	return nil
}

func scanRegistration(row pgx.Row) (types.Registration, error) {
	var (
		reg       types.Registration
		friends   []byte
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
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
		&reg.PhotoURL,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return types.Registration{}, err
	}

	reg.Friends = []types.Friend{}
	if err := json.Unmarshal(friends, &reg.Friends); err != nil {
		return types.Registration{}, fmt.Errorf("decode friends: %w", err)
	}
	reg.Status = types.Status(status)
	reg.CreatedAt = createdAt.UTC()
	reg.UpdatedAt = updatedAt.UTC()
	return reg, nil
}

// describe names the failing constraint when Postgres reports one, so the
// server log says which rule a rejected row broke.
func describe(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.ConstraintName != "" {
			return "violates " + pgErr.ConstraintName
		}
		return "sqlstate " + pgErr.Code
	}
	return "exec"
}
