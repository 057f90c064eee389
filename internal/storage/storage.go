// Package storage defines the contracts that any persistence backend must
// satisfy to work with this application.
//
// Handlers (HTTP layer) only know these interfaces. The concrete backends
// live in the sub-packages:
//
//   - sqlite: registrations in a local SQLite file (default)
//   - postgres: registrations in PostgreSQL (when DATABASE_URL is set)
//   - bolt: the durable mirror of the site content store
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/lamp-api/internal/types"
)

// ErrNotFound is returned when a statement targets a registration id that
// does not exist.
var ErrNotFound = errors.New("registration not found")

// Registrations is the registration table contract.
// Every method is a single statement; there is no in-process cache.
type Registrations interface {
	// CreateRegistration inserts reg and returns the stored row, including
	// the generated id and timestamps. The input id, status and timestamps
	// are ignored: status always starts as pending.
	CreateRegistration(ctx context.Context, reg types.Registration) (types.Registration, error)

	// ListRegistrations returns every row, newest first.
	// Returns an empty slice (not nil) if there are none.
	ListRegistrations(ctx context.Context) ([]types.Registration, error)

	// UpdateRegistrationStatus sets status and refreshes updated_at.
	// Returns ErrNotFound if no row has the given id.
	UpdateRegistrationStatus(ctx context.Context, id string, status types.Status) (types.Registration, error)

	// DeleteRegistration removes the row. Deleting a missing id is not an error.
	DeleteRegistration(ctx context.Context, id string) error

	Close() error
}

// Mirror is a durable key/value blob store used by the content store.
type Mirror interface {
	// Load returns the blob stored under key, or (nil, nil) if there is none.
	Load(key string) ([]byte, error)

	// Save replaces the blob stored under key.
	Save(key string, value []byte) error
}
