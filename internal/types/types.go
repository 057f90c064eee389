// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, content and the client can all import types without
// depending on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Registrations
// ─────────────────────────────────────────────────────────────────────────────

// Status is the review state of a registration.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three review states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Friend is a person the applicant registers with.
type Friend struct {
	Name  string `json:"name"  validate:"min=2"`
	Phone string `json:"phone" validate:"min=10"`
}

// Age accepts either a JSON number (17) or a numeric string ("17").
// HTML forms submit every field as text, so both shapes arrive in practice.
type Age int

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("age must be an integer, got %q", raw)
	}
	*a = Age(n)
	return nil
}

// Registration is one row of the registrations table.
//
// JSON keys mirror the column names (snake_case), which is what the admin
// review screen reads.
type Registration struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	NationalID    string    `json:"national_id"`
	Age           int       `json:"age"`
	University    string    `json:"university"`
	College       string    `json:"college"`
	Course        string    `json:"course"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	GuardianPhone string    `json:"guardian_phone"`
	Address       string    `json:"address"`
	Friends       []Friend  `json:"friends"`
	PhotoURL      *string   `json:"photo_url"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRegistrationRequest is the public form submission (camelCase keys).
//
// The validate:"..." tags are the form rules. The server does not run them;
// the client checks them before submitting (see internal/client).
type CreateRegistrationRequest struct {
	FullName      string   `json:"fullName"      validate:"min=2"`
	NationalID    string   `json:"nationalId"    validate:"len=14"`
	Age           Age      `json:"age"           validate:"min=16"`
	University    string   `json:"university"    validate:"required"`
	College       string   `json:"college"       validate:"min=2"`
	Course        string   `json:"course"        validate:"required"`
	Phone         string   `json:"phone"         validate:"min=10"`
	Email         string   `json:"email"         validate:"required,email"`
	GuardianPhone string   `json:"guardianPhone" validate:"min=10"`
	Address       string   `json:"address"       validate:"min=10"`
	Friends       []Friend `json:"friends"       validate:"max=7,dive"`
	PhotoURL      string   `json:"photoUrl,omitempty"`
}

// NewRegistration converts a submission into the row to insert.
// Missing friends become an empty list and an empty photo URL becomes NULL.
func (r CreateRegistrationRequest) NewRegistration() Registration {
	friends := r.Friends
	if friends == nil {
		friends = []Friend{}
	}

	var photo *string
	if url := strings.TrimSpace(r.PhotoURL); url != "" {
		photo = &url
	}

	return Registration{
		FullName:      r.FullName,
		NationalID:    r.NationalID,
		Age:           int(r.Age),
		University:    r.University,
		College:       r.College,
		Course:        r.Course,
		Phone:         r.Phone,
		Email:         r.Email,
		GuardianPhone: r.GuardianPhone,
		Address:       r.Address,
		Friends:       friends,
		PhotoURL:      photo,
		Status:        StatusPending,
	}
}

// StatusRequest is the body of PATCH /api/registrations/{id}/status.
type StatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Site content
// ─────────────────────────────────────────────────────────────────────────────

// HeroContent is the landing page banner. It is always replaced whole.
type HeroContent struct {
	Badge        string `json:"badge"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	CTAPrimary   string `json:"ctaPrimary"`
	CTASecondary string `json:"ctaSecondary"`
	Image        string `json:"image"`
}

// Course is one card of the course catalog. Students and Price are display
// strings ("1.2k Students", "$999"), not numbers.
type Course struct {
	ID       string `json:"id"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Students string `json:"students"`
	Price    string `json:"price"`
}

// FormOption is one entry of a select control on the registration form.
type FormOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ContentSnapshot is every content collection at one point in time.
type ContentSnapshot struct {
	Hero             HeroContent  `json:"hero"`
	Courses          []Course     `json:"courses"`
	Universities     []FormOption `json:"universities"`
	AvailableCourses []FormOption `json:"availableCourses"`
}
