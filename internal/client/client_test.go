package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aanand-mishra/lamp-api/internal/events"
	"github.com/aanand-mishra/lamp-api/internal/http/handlers/registration"
	"github.com/aanand-mishra/lamp-api/internal/storage/sqlite"
	"github.com/aanand-mishra/lamp-api/internal/types"
)

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "lamp.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/registrations", registration.New(store, events.Nop{}))
	mux.HandleFunc("GET /api/registrations", registration.List(store))
	mux.HandleFunc("PATCH /api/registrations/{id}/status", registration.UpdateStatus(store, events.Nop{}))
	mux.HandleFunc("DELETE /api/registrations/{id}", registration.Delete(store))

	hits := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func validForm() types.CreateRegistrationRequest {
	return types.CreateRegistrationRequest{
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
	}
}

func TestSubmitAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	created, err := c.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created.ID == "" || created.Status != types.StatusPending || created.FullName != "Mona Adel" {
		t.Fatalf("created = %+v", created)
	}

	regs, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(regs) != 1 || regs[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created row", regs)
	}
}

func TestSubmitValidatesBeforeSending(t *testing.T) {
	srv, hits := newTestServer(t)
	c := New(srv.URL, srv.Client())

	tests := []struct {
		name   string
		mutate func(*types.CreateRegistrationRequest)
	}{
		{"short name", func(r *types.CreateRegistrationRequest) { r.FullName = "M" }},
		{"national id length", func(r *types.CreateRegistrationRequest) { r.NationalID = "123" }},
		{"too young", func(r *types.CreateRegistrationRequest) { r.Age = 15 }},
		{"no university", func(r *types.CreateRegistrationRequest) { r.University = "" }},
		{"bad email", func(r *types.CreateRegistrationRequest) { r.Email = "not-an-email" }},
		{"short address", func(r *types.CreateRegistrationRequest) { r.Address = "Cairo" }},
		{"bad friend", func(r *types.CreateRegistrationRequest) {
			r.Friends = []types.Friend{{Name: "A", Phone: "123"}}
		}},
		{"eight friends", func(r *types.CreateRegistrationRequest) {
			r.Friends = make([]types.Friend, 8)
			for i := range r.Friends {
				r.Friends[i] = types.Friend{Name: "Friend", Phone: "5551234567"}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, err := c.Submit(context.Background(), form)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Error() == "" {
				t.Fatal("empty validation message")
			}
		})
	}

	if n := hits.Load(); n != 0 {
		t.Fatalf("server hits = %d, want 0", n)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	_, err := c.UpdateStatus(ctx, "missing", types.StatusApproved)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 APIError", err)
	}

	created, err := c.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err = c.UpdateStatus(ctx, created.ID, "archived")
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 APIError", err)
	}
}

func TestEnvelopeFailureIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to fetch registrations"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/", srv.Client()).List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusOK || apiErr.Message != "Failed to fetch registrations" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestReviewRefreshesAfterChanges(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	first, err := c.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, err := c.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	review := NewReview(c)
	if len(review.Items()) != 0 {
		t.Fatal("view should start empty")
	}
	if err := review.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if n := len(review.Items()); n != 2 {
		t.Fatalf("items = %d, want 2", n)
	}

	if err := review.SetStatus(ctx, first.ID, types.StatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	for _, reg := range review.Items() {
		if reg.ID == first.ID && reg.Status != types.StatusApproved {
			t.Fatalf("status = %q, want approved", reg.Status)
		}
	}

	if err := review.Remove(ctx, second.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items := review.Items()
	if len(items) != 1 || items[0].ID != first.ID {
		t.Fatalf("items = %+v, want only the approved row", items)
	}

	if err := review.Remove(ctx, second.ID); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestReviewKeepsListOnFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	if _, err := c.Submit(ctx, validForm()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	review := NewReview(c)
	if err := review.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := review.SetStatus(ctx, "missing", types.StatusRejected); err == nil {
		t.Fatal("expected error for unknown id")
	}
	if n := len(review.Items()); n != 1 {
		t.Fatalf("items = %d, want previous list kept", n)
	}
}
