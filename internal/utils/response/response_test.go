package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestWriteJSONEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body Response
		want string
	}{
		{name: "bare success", body: OK(nil), want: `{"success":true}`},
		{name: "empty list", body: OK([]string{}), want: `{"success":true,"data":[]}`},
		{name: "failure", body: Failure("Failed to update status"), want: `{"success":false,"message":"Failed to update status"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteJSON(rec, http.StatusTeapot, tt.body); err != nil {
				t.Fatalf("write json: %v", err)
			}
			if rec.Code != http.StatusTeapot {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content-type = %q", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
				t.Fatalf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidationMessage(t *testing.T) {
	type payload struct {
		Status string `validate:"required,oneof=pending approved rejected"`
		Email  string `validate:"email"`
	}

	err := validator.New().Struct(payload{Status: "archived", Email: "nope"})
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want validator.ValidationErrors", err)
	}

	got := ValidationMessage(errs)
	want := "field Status must be one of: pending approved rejected, field Email must be a valid email address"
	if got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}
