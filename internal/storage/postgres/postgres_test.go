package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/types"
)

// openTestStore connects to LAMP_TEST_DATABASE_URL and empties the table.
// The tests are skipped when the variable is not set.
func openTestStore(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("LAMP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LAMP_TEST_DATABASE_URL not set")
	}

	store, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.pool.Exec(context.Background(), "TRUNCATE registrations"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("expected empty dsn error")
	}
}

func TestRegistrationLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateRegistration(ctx, types.CreateRegistrationRequest{
		FullName:      "Mona Adel",
		NationalID:    "12345678901234",
		Age:           17,
		University:    "Cairo University",
		College:       "Engineering",
		Course:        "Full Stack Development",
		Phone:         "01001234567",
		Email:         "mona@example.com",
		GuardianPhone: "01007654321",
		Address:       "12 Tahrir Square, Cairo",
		Friends:       []types.Friend{{Name: "Alice", Phone: "5551234567"}},
	}.NewRegistration())
	if err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if created.Status != types.StatusPending || len(created.Friends) != 1 || created.Age != 17 {
		t.Fatalf("created = %+v", created)
	}

	updated, err := store.UpdateRegistrationStatus(ctx, created.ID, types.StatusRejected)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != types.StatusRejected {
		t.Fatalf("status = %q, want rejected", updated.Status)
	}

	if err := store.DeleteRegistration(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteRegistration(ctx, created.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	_, err = store.UpdateRegistrationStatus(ctx, created.ID, types.StatusApproved)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update deleted error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUpdateRegistrationStatusMalformedID(t *testing.T) {
	store := openTestStore(t)

	_, err := store.UpdateRegistrationStatus(context.Background(), "not-a-uuid", types.StatusApproved)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}
