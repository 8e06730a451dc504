// Package repository declares the persistence boundaries of the registration
// workflow. Backends live in the postgres, sqlite and badgerstore subpackages.
package repository

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

// EventCatalog is a read-only view over persisted events.
type EventCatalog interface {
	// GetEvent returns apperr.ErrUnknownEvent when the id is unknown or the
	// event is disabled.
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// ListEvents returns enabled events ordered by event date, then title.
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// EventWriter seeds the catalog. Events are never resized once created.
type EventWriter interface {
	CreateEvent(ctx context.Context, event model.Event) error
}

// RegistrationStore owns accepted registrations.
type RegistrationStore interface {
	CountFor(ctx context.Context, eventID string) (int, error)
	// Append durably records reg only if the event holds fewer than
	// maxAttendees registrations at write time. It returns apperr.ErrConflict
	// when the write would exceed capacity and apperr.ErrDuplicate when the
	// email is already on the roster.
	Append(ctx context.Context, reg model.Registration, maxAttendees int) (*model.Registration, error)
	// ListFor returns registrations in insertion order.
	ListFor(ctx context.Context, eventID string) ([]model.Registration, error)
}

// Store is implemented by every backend.
type Store interface {
	EventCatalog
	EventWriter
	RegistrationStore
	Close() error
}

// NormalizeEmail is the canonical form used for duplicate detection.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
