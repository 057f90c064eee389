// Package registration contains the HTTP handlers for student registrations.
//
// HANDLER PATTERN: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────
// Each exported function receives its dependencies once, at route
// registration, and returns the http.HandlerFunc the router calls on every
// request:
//
//	router.HandleFunc("POST /api/registrations", registration.New(store, publisher))
//
// Every handler answers with the response envelope. Persistence errors are
// logged with their cause and answered with a fixed message; the cause never
// reaches the client.
package registration

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/lamp-api/internal/events"
	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/aanand-mishra/lamp-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Messages sent to clients on failure.
const (
	msgCreateFailed = "Failed to submit registration"
	msgListFailed   = "Failed to fetch registrations"
	msgUpdateFailed = "Failed to update status"
	msgDeleteFailed = "Failed to delete registration"
	msgNotFound     = "Registration not found"
	msgEmptyBody    = "request body is empty"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = validator.New()

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/registrations
// Stores a public form submission.
//
// Request body (JSON, camelCase):
//
//	{ "fullName": "Mona Adel", "nationalId": "12345678901234", "age": "17",
//	  "university": "Cairo University", ..., "friends": [{"name": "Alice", "phone": "5551234567"}] }
//
// Success response (200 OK):
//
//	{ "success": true, "data": { "id": "…", "full_name": "Mona Adel", "status": "pending", ... } }
//
// Error responses:
//
//	400 Bad Request: empty body or malformed JSON
//	500 Internal: the database rejected or failed the insert
//
// Field rules (name length, national id length, age ≥ 16, …) are the form's
// job and are not checked here.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Registrations, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a registration")

		var req types.CreateRegistrationRequest
		if !decode(w, r, &req, msgCreateFailed) {
			return
		}

		created, err := store.CreateRegistration(r.Context(), req.NewRegistration())
		if err != nil {
			slog.Error("registration error", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgCreateFailed))
			return
		}

		slog.Info("registration created", slog.String("id", created.ID))
		publish(r, publisher, events.New(events.TypeRegistrationCreated, created))

		response.WriteJSON(w, http.StatusOK, response.OK(created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /api/registrations
// Returns every registration, newest first. No pagination: the full set is
// returned on every call, and an empty table gives "data": [].
// ─────────────────────────────────────────────────────────────────────────────
func List(store storage.Registrations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing registrations")

		registrations, err := store.ListRegistrations(r.Context())
		if err != nil {
			slog.Error("fetch registrations error", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgListFailed))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(registrations))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStatus handles PATCH /api/registrations/{id}/status
//
// Request body:
//
//	{ "status": "approved" }
//
// Error responses:
//
//	400 Bad Request: empty/malformed body or a status outside pending|approved|rejected
//	404 Not Found: no registration has this id
//	500 Internal: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func UpdateStatus(store storage.Registrations, publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating registration status", slog.String("id", id))

		var req types.StatusRequest
		if !decode(w, r, &req, msgUpdateFailed) {
			return
		}

		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.Failure(msgUpdateFailed))
			return
		}

		updated, err := store.UpdateRegistrationStatus(r.Context(), id, req.Status)
		if errors.Is(err, storage.ErrNotFound) {
			slog.Info("registration not found", slog.String("id", id))
			response.WriteJSON(w, http.StatusNotFound, response.Failure(msgNotFound))
			return
		}
		if err != nil {
			slog.Error("update status error",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgUpdateFailed))
			return
		}

		slog.Info("registration status updated",
			slog.String("id", id),
			slog.String("status", string(updated.Status)))
		publish(r, publisher, events.New(events.TypeRegistrationStatusChanged, updated))

		response.WriteJSON(w, http.StatusOK, response.OK(updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/registrations/{id}
// Idempotent: deleting an id that does not exist still answers
//
//	{ "success": true }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Registrations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a registration", slog.String("id", id))

		if err := store.DeleteRegistration(r.Context(), id); err != nil {
			slog.Error("delete registration error",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgDeleteFailed))
			return
		}

		slog.Info("registration deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.OK(nil))
	}
}

// decode reads the JSON body into dst. On failure it writes a 400 envelope
// and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any, fallback string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.Failure(msgEmptyBody))
		return false
	}
	if err != nil {
		slog.Info("malformed request body", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusBadRequest, response.Failure(fallback+": malformed request body"))
		return false
	}
	return true
}

func publish(r *http.Request, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(r.Context(), event); err != nil {
		slog.Warn("publish event failed",
			slog.String("type", event.Type),
			slog.String("id", event.RegistrationID),
			slog.String("error", err.Error()))
	}
}
