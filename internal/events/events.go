// Package events publishes registration lifecycle events for downstream
// consumers such as a mail service that notifies applicants.
//
// Publishing is fire-and-forget from the caller's point of view: the HTTP
// handlers log a failed publish and carry on.
package events

import (
	"context"
	"time"

	"github.com/aanand-mishra/lamp-api/internal/types"
)

// Event types.
const (
	TypeRegistrationCreated       = "registration.created"
	TypeRegistrationStatusChanged = "registration.status_changed"
)

// Event is the JSON payload sent for each lifecycle change.
type Event struct {
	Type           string       `json:"type"`
	RegistrationID string       `json:"registration_id"`
	FullName       string       `json:"full_name"`
	Email          string       `json:"email"`
	Status         types.Status `json:"status"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New builds an event of the given type from a stored registration.
func New(eventType string, reg types.Registration) Event {
	return Event{
		Type:           eventType,
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Email:          reg.Email,
		Status:         reg.Status,
		OccurredAt:     reg.UpdatedAt,
	}
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
