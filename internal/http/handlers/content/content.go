// Package content contains the HTTP handlers of the content admin API.
//
// The handlers are thin: they decode the body, call one content store
// method and answer with the resulting collection, so the admin UI always
// renders what the store now holds.
package content

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	sitecontent "github.com/aanand-mishra/lamp-api/internal/content"
	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/aanand-mishra/lamp-api/internal/utils/response"
)

const (
	msgReadFailed  = "Failed to load content"
	msgSaveFailed  = "Failed to save content"
	msgDuplicateID = "An item with this id already exists"
	msgEmptyBody   = "request body is empty"
	msgMalformed   = "malformed request body"
)

// Register mounts every content route on mux.
//
//	GET    /api/content                          → snapshot of everything
//	GET    /api/content/hero                     → hero banner
//	PUT    /api/content/hero                     → replace hero banner
//	GET    /api/content/courses                  → course catalog
//	POST   /api/content/courses                  → add a course
//	PUT    /api/content/courses/{id}             → replace a course
//	DELETE /api/content/courses/{id}             → remove a course
//
// and the same four list routes under /api/content/universities and
// /api/content/available-courses.
func Register(mux *http.ServeMux, store *sitecontent.Store) {
	mux.HandleFunc("GET /api/content", Snapshot(store))
	mux.HandleFunc("GET /api/content/hero", GetHero(store))
	mux.HandleFunc("PUT /api/content/hero", UpdateHero(store))

	courses := collection[types.Course]{
		name:   "course",
		list:   store.Courses,
		add:    store.AddCourse,
		update: store.UpdateCourse,
		remove: store.DeleteCourse,
		setID:  func(c *types.Course, id string) { c.ID = id },
	}
	courses.register(mux, "/api/content/courses")

	universities := collection[types.FormOption]{
		name:   "university",
		list:   store.Universities,
		add:    store.AddUniversity,
		update: store.UpdateUniversity,
		remove: store.RemoveUniversity,
		setID:  setOptionID,
	}
	universities.register(mux, "/api/content/universities")

	available := collection[types.FormOption]{
		name:   "available course",
		list:   store.AvailableCourses,
		add:    store.AddAvailableCourse,
		update: store.UpdateAvailableCourse,
		remove: store.RemoveAvailableCourse,
		setID:  setOptionID,
	}
	available.register(mux, "/api/content/available-courses")
}

func setOptionID(o *types.FormOption, id string) { o.ID = id }

// Snapshot handles GET /api/content.
func Snapshot(store *sitecontent.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := store.Snapshot()
		if err != nil {
			fail(w, "snapshot", err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK(snap))
	}
}

// GetHero handles GET /api/content/hero.
func GetHero(store *sitecontent.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hero, err := store.Hero()
		if err != nil {
			fail(w, "get hero", err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK(hero))
	}
}

// UpdateHero handles PUT /api/content/hero. The body replaces the banner
// whole; fields left out become empty strings.
func UpdateHero(store *sitecontent.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating hero content")

		var hero types.HeroContent
		if !decode(w, r, &hero) {
			return
		}
		if err := store.UpdateHero(hero); err != nil {
			fail(w, "update hero", err)
			return
		}

		current, err := store.Hero()
		if err != nil {
			fail(w, "get hero", err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK(current))
	}
}

// collection wires one list of the store to its four routes.
type collection[T any] struct {
	name   string
	list   func() ([]T, error)
	add    func(T) error
	update func(string, T) error
	remove func(string) error
	setID  func(*T, string)
}

func (c collection[T]) register(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET "+base, c.handleList)
	mux.HandleFunc("POST "+base, c.handleAdd)
	mux.HandleFunc("PUT "+base+"/{id}", c.handleUpdate)
	mux.HandleFunc("DELETE "+base+"/{id}", c.handleRemove)
}

func (c collection[T]) handleList(w http.ResponseWriter, r *http.Request) {
	c.respond(w, http.StatusOK)
}

func (c collection[T]) handleAdd(w http.ResponseWriter, r *http.Request) {
	slog.Info("adding " + c.name)

	var item T
	if !decode(w, r, &item) {
		return
	}
	if err := c.add(item); err != nil {
		fail(w, "add "+c.name, err)
		return
	}
	c.respond(w, http.StatusCreated)
}

// handleUpdate replaces the item at {id}. The path id always wins over an id
// in the body. An unknown id changes nothing and still answers 200.
func (c collection[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Info("updating "+c.name, slog.String("id", id))

	var item T
	if !decode(w, r, &item) {
		return
	}
	c.setID(&item, id)
	if err := c.update(id, item); err != nil {
		fail(w, "update "+c.name, err)
		return
	}
	c.respond(w, http.StatusOK)
}

// handleRemove deletes the item at {id}. An unknown id still answers 200.
func (c collection[T]) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Info("removing "+c.name, slog.String("id", id))

	if err := c.remove(id); err != nil {
		fail(w, "remove "+c.name, err)
		return
	}
	c.respond(w, http.StatusOK)
}

func (c collection[T]) respond(w http.ResponseWriter, status int) {
	items, err := c.list()
	if err != nil {
		fail(w, "list "+c.name, err)
		return
	}
	response.WriteJSON(w, status, response.OK(items))
}

// fail maps store errors onto the envelope.
func fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, sitecontent.ErrDuplicateID):
		response.WriteJSON(w, http.StatusConflict, response.Failure(msgDuplicateID))
	case errors.Is(err, sitecontent.ErrNotInitialized):
		slog.Error("content store used before initialization", slog.String("op", op))
		response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgReadFailed))
	default:
		slog.Error("content error", slog.String("op", op), slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.Failure(msgSaveFailed))
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.Failure(msgEmptyBody))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.Failure(msgMalformed))
		return false
	}
	return true
}
