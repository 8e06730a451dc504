// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event represents an event with a fixed attendee capacity.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	EventDate    time.Time `json:"event_date"`
	MaxAttendees int       `json:"max_attendees"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is an accepted registration for one event. It is never mutated
// after acceptance.
type Registration struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Locale      string    `json:"locale,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string    `json:"title" validate:"required,max=255"`
	Description  string    `json:"description" validate:"max=5000"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	MaxAttendees int       `json:"max_attendees" validate:"required,min=1,max=100000"`
}

// RegisterRequest is the public registration form submission.
type RegisterRequest struct {
	EventID  string `json:"eventId"`
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Locale   string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// RegisterResponse acknowledges an accepted registration.
type RegisterResponse struct {
	Message      string       `json:"message"`
	Registration Registration `json:"registration"`
}

// Report is a point-in-time roster for one event.
type Report struct {
	Event         Event          `json:"event"`
	Registrations []Registration `json:"registrations"`
	Count         int            `json:"count"`
	Remaining     int            `json:"remaining"`
}

// FieldError names one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code,omitempty"`
	Fields []FieldError `json:"fields,omitempty"`
}
