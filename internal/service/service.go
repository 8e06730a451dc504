// Package service implements the registration workflow: event catalog
// operations, the admission controller and the report projector.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/google/uuid"
)

// Clock returns the current time. Injected so tests control timestamps.
type Clock func() time.Time

// IDGenerator returns a new opaque identifier.
type IDGenerator func() string

// UTCNow is the production Clock.
func UTCNow() time.Time { return time.Now().UTC() }

// EventService orchestrates catalog operations.
type EventService struct {
	catalog repository.EventCatalog
	writer  repository.EventWriter
	now     Clock
	newID   IDGenerator
	log     *slog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	catalog repository.EventCatalog,
	writer repository.EventWriter,
	now Clock,
	log *slog.Logger,
) *EventService {
	return &EventService{catalog: catalog, writer: writer, now: now, newID: uuid.NewString, log: log}
}

// CreateEvent validates the request and stores a new enabled event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	event := model.Event{
		ID:           s.newID(),
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    req.EventDate.UTC(),
		MaxAttendees: req.MaxAttendees,
		Enabled:      true,
		CreatedAt:    s.now(),
	}
	if err := s.writer.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("title", event.Title),
		slog.Int("max_attendees", event.MaxAttendees),
	)
	return &event, nil
}

// ListEvents returns all enabled events for the selection control.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.catalog.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return getEvent(ctx, s.catalog, id)
}

// getEvent resolves id through the catalog, keeping apperr codes intact and
// wrapping infrastructure failures.
func getEvent(ctx context.Context, catalog repository.EventCatalog, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.ErrUnknownEvent
	}
	event, err := catalog.GetEvent(ctx, id)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeUnknownEvent {
			return nil, apperr.ErrUnknownEvent
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
