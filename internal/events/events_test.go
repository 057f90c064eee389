package events

import (
	"context"
	"testing"
	"time"

	"github.com/aanand-mishra/lamp-api/internal/types"
)

func TestNewCopiesRegistrationFields(t *testing.T) {
	at := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)
	reg := types.Registration{
		ID:        "reg-1",
		FullName:  "Mona Adel",
		Email:     "mona@example.com",
		Status:    types.StatusApproved,
		UpdatedAt: at,
	}

	got := New(TypeRegistrationStatusChanged, reg)
	want := Event{
		Type:           TypeRegistrationStatusChanged,
		RegistrationID: "reg-1",
		FullName:       "Mona Adel",
		Email:          "mona@example.com",
		Status:         types.StatusApproved,
		OccurredAt:     at,
	}
	if got != want {
		t.Fatalf("event = %+v, want %+v", got, want)
	}
}

func TestNopAndNilKafkaDropEvents(t *testing.T) {
	var nilKafka *Kafka
	for name, p := range map[string]Publisher{"nop": Nop{}, "nil kafka": nilKafka} {
		if err := p.Publish(context.Background(), Event{Type: TypeRegistrationCreated}); err != nil {
			t.Fatalf("%s publish: %v", name, err)
		}
	}
	if err := nilKafka.Close(); err != nil {
		t.Fatalf("nil kafka close: %v", err)
	}
}
