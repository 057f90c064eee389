// Package content is the editable site content: the hero banner, the course
// catalog and the two option lists of the registration form.
//
// State lives in memory and every mutation is written through to a
// storage.Mirror before it becomes visible. The mirror always holds the full
// collection for a key, never a delta.
//
// A *Store is built once with Open and handed to whoever needs it. Any method
// called on a nil or zero-value *Store returns ErrNotInitialized.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/types"
	"github.com/google/uuid"
)

// Mirror keys, one JSON blob each.
const (
	KeyHero             = "lamp_hero"
	KeyCourses          = "lamp_courses"
	KeyUniversities     = "lamp_universities"
	KeyAvailableCourses = "lamp_available_courses"
)

var (
	// ErrNotInitialized is returned by every method of a Store that was not
	// built with Open.
	ErrNotInitialized = errors.New("content store is not initialized")

	// ErrDuplicateID is returned when an add or update would leave two
	// records with the same id in one collection.
	ErrDuplicateID = errors.New("content id already exists")
)

// Store holds the site content.
type Store struct {
	mu     sync.Mutex
	mirror storage.Mirror
	log    *slog.Logger
	newID  func() string

	hero             types.HeroContent
	courses          []types.Course
	universities     []types.FormOption
	availableCourses []types.FormOption
}

// Open loads every collection from mirror. A key that is missing, cannot be
// read, or does not decode falls back to the built-in defaults; the defaults
// are then written back so the mirror matches memory. Only a nil mirror is
// an error.
func Open(mirror storage.Mirror, log *slog.Logger) (*Store, error) {
	if mirror == nil {
		return nil, fmt.Errorf("content.Open: mirror is required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		mirror: mirror,
		log:    log,
		newID:  uuid.NewString,
	}
	s.hero = load(s, KeyHero, defaultHero)
	s.courses = load(s, KeyCourses, defaultCourses)
	s.universities = load(s, KeyUniversities, defaultUniversities)
	s.availableCourses = load(s, KeyAvailableCourses, defaultAvailableCourses)

	return s, nil
}

// load decodes the blob under key, or falls back to def().
func load[T any](s *Store, key string, def func() T) T {
	data, err := s.mirror.Load(key)
	if err != nil {
		s.log.Warn("content: cannot read stored value, using defaults",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return seed(s, key, def())
	}
	if data == nil {
		return seed(s, key, def())
	}

	// Decoding into a pointer makes a stored "null" look like no value.
	var stored *T
	if err := json.Unmarshal(data, &stored); err != nil || stored == nil {
		msg := "null value"
		if err != nil {
			msg = err.Error()
		}
		s.log.Warn("content: stored value is corrupt, using defaults",
			slog.String("key", key),
			slog.String("error", msg))
		return seed(s, key, def())
	}
	return *stored
}

// seed writes value under key, logging instead of failing, and returns it.
func seed[T any](s *Store, key string, value T) T {
	if err := s.write(key, value); err != nil {
		s.log.Warn("content: cannot mirror defaults",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return value
}

func (s *Store) ready() error {
	if s == nil || s.mirror == nil {
		return ErrNotInitialized
	}
	return nil
}

// write encodes value and saves it under key.
func (s *Store) write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", key, err)
	}
	if err := s.mirror.Save(key, data); err != nil {
		return fmt.Errorf("content: mirror %s: %w", key, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads. Slices are cloned so callers never share backing arrays with the
// store.
// ─────────────────────────────────────────────────────────────────────────────

// Snapshot returns every collection at once.
func (s *Store) Snapshot() (types.ContentSnapshot, error) {
	if err := s.ready(); err != nil {
		return types.ContentSnapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.ContentSnapshot{
		Hero:             s.hero,
		Courses:          slices.Clone(s.courses),
		Universities:     slices.Clone(s.universities),
		AvailableCourses: slices.Clone(s.availableCourses),
	}, nil
}

func (s *Store) Hero() (types.HeroContent, error) {
	if err := s.ready(); err != nil {
		return types.HeroContent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hero, nil
}

func (s *Store) Courses() ([]types.Course, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.courses), nil
}

func (s *Store) Universities() ([]types.FormOption, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.universities), nil
}

func (s *Store) AvailableCourses() ([]types.FormOption, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.availableCourses), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Hero
// ─────────────────────────────────────────────────────────────────────────────

// UpdateHero replaces the hero banner. There is no validation and no partial
// patch: every field of hero is taken as given.
func (s *Store) UpdateHero(hero types.HeroContent) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(KeyHero, hero); err != nil {
		return err
	}
	s.hero = hero
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

func courseID(c types.Course) string { return c.ID }

// AddCourse appends course to the catalog. An empty id is replaced by a
// generated one.
func (s *Store) AddCourse(course types.Course) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if course.ID == "" {
		course.ID = s.newID()
	}
	next, err := added(s.courses, course, courseID)
	if err != nil {
		return err
	}
	return s.commitCourses(next)
}

// UpdateCourse replaces the course with the given id. An unknown id is a
// no-op.
func (s *Store) UpdateCourse(id string, course types.Course) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if course.ID == "" {
		course.ID = id
	}
	next, changed, err := updated(s.courses, id, course, courseID)
	if err != nil || !changed {
		return err
	}
	return s.commitCourses(next)
}

// DeleteCourse removes the course with the given id. An unknown id is a
// no-op.
func (s *Store) DeleteCourse(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := removed(s.courses, id, courseID)
	if !changed {
		return nil
	}
	return s.commitCourses(next)
}

func (s *Store) commitCourses(next []types.Course) error {
	if err := s.write(KeyCourses, next); err != nil {
		return err
	}
	s.courses = next
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Form options: universities and available courses share one implementation
// and differ only in which slice and key they use.
// ─────────────────────────────────────────────────────────────────────────────

func optionID(o types.FormOption) string { return o.ID }

type optionList int

const (
	universityList optionList = iota
	availableCourseList
)

// list returns the slice and mirror key behind l. Callers hold s.mu.
func (s *Store) list(l optionList) (*[]types.FormOption, string) {
	if l == universityList {
		return &s.universities, KeyUniversities
	}
	return &s.availableCourses, KeyAvailableCourses
}

func (s *Store) AddUniversity(opt types.FormOption) error {
	return s.addOption(universityList, opt)
}

func (s *Store) UpdateUniversity(id string, opt types.FormOption) error {
	return s.updateOption(universityList, id, opt)
}

func (s *Store) RemoveUniversity(id string) error {
	return s.removeOption(universityList, id)
}

func (s *Store) AddAvailableCourse(opt types.FormOption) error {
	return s.addOption(availableCourseList, opt)
}

func (s *Store) UpdateAvailableCourse(id string, opt types.FormOption) error {
	return s.updateOption(availableCourseList, id, opt)
}

func (s *Store) RemoveAvailableCourse(id string) error {
	return s.removeOption(availableCourseList, id)
}

func (s *Store) addOption(l optionList, opt types.FormOption) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if opt.ID == "" {
		opt.ID = s.newID()
	}
	items, key := s.list(l)
	next, err := added(*items, opt, optionID)
	if err != nil {
		return err
	}
	return s.commitOptions(items, key, next)
}

func (s *Store) updateOption(l optionList, id string, opt types.FormOption) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if opt.ID == "" {
		opt.ID = id
	}
	items, key := s.list(l)
	next, changed, err := updated(*items, id, opt, optionID)
	if err != nil || !changed {
		return err
	}
	return s.commitOptions(items, key, next)
}

func (s *Store) removeOption(l optionList, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, key := s.list(l)
	next, changed := removed(*items, id, optionID)
	if !changed {
		return nil
	}
	return s.commitOptions(items, key, next)
}

func (s *Store) commitOptions(items *[]types.FormOption, key string, next []types.FormOption) error {
	if err := s.write(key, next); err != nil {
		return err
	}
	*items = next
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Copy-on-write list helpers. They never modify items; the result is a new
// slice so a failed mirror write leaves the current state untouched.
// ─────────────────────────────────────────────────────────────────────────────

func added[T any](items []T, item T, idOf func(T) string) ([]T, error) {
	id := idOf(item)
	if slices.ContainsFunc(items, func(v T) bool { return idOf(v) == id }) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	next := make([]T, len(items), len(items)+1)
	copy(next, items)
	return append(next, item), nil
}

func updated[T any](items []T, id string, item T, idOf func(T) string) ([]T, bool, error) {
	if !slices.ContainsFunc(items, func(v T) bool { return idOf(v) == id }) {
		return nil, false, nil
	}
	// Renaming the id is allowed as long as it stays unique.
	if newID := idOf(item); newID != id &&
		slices.ContainsFunc(items, func(v T) bool { return idOf(v) == newID }) {
		return nil, false, fmt.Errorf("%w: %s", ErrDuplicateID, newID)
	}

	next := make([]T, len(items))
	for i, v := range items {
		if idOf(v) == id {
			next[i] = item
		} else {
			next[i] = v
		}
	}
	return next, true, nil
}

func removed[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	next := make([]T, 0, len(items))
	for _, v := range items {
		if idOf(v) != id {
			next = append(next, v)
		}
	}
	return next, len(next) != len(items)
}
