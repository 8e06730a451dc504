package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/google/uuid"
)

//go:generate go run go.uber.org/mock/mockgen -source=admission.go -destination=../mocks/mock_notifier.go -package=mocks

// admitAttempts bounds the read-check-write cycle: the first try plus one
// retry after a store conflict.
const admitAttempts = 2

// Notifier receives accepted registrations. Notify must not block and has no
// way to fail the admission that triggered it.
type Notifier interface {
	Notify(reg model.Registration, event model.Event)
}

// Admission decides whether a registration may be accepted against the
// event's remaining capacity.
//
// Concurrency: decisions for one event run inside a mutual-exclusion scope
// keyed by event id, so two callers can never both observe the last free
// slot. Each store's Append is also a conditional write that refuses to go
// past capacity, which keeps the invariant when several processes share one
// store; a refused write surfaces as apperr.ErrConflict and is retried once.
type Admission struct {
	catalog  repository.EventCatalog
	regs     repository.RegistrationStore
	notifier Notifier
	locks    *eventLocks
	now      Clock
	newID    IDGenerator
	log      *slog.Logger
}

// AdmissionOption customises an Admission.
type AdmissionOption func(*Admission)

// WithIDGenerator overrides registration id generation.
func WithIDGenerator(gen IDGenerator) AdmissionOption {
	return func(a *Admission) { a.newID = gen }
}

// NewAdmission constructs the admission controller.
func NewAdmission(
	catalog repository.EventCatalog,
	regs repository.RegistrationStore,
	notifier Notifier,
	now Clock,
	log *slog.Logger,
	opts ...AdmissionOption,
) *Admission {
	a := &Admission{
		catalog:  catalog,
		regs:     regs,
		notifier: notifier,
		locks:    newEventLocks(),
		now:      now,
		newID:    uuid.NewString,
		log:      log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register admits req or rejects it with an apperr validation, unknown-event
// or event-full error.
//
// Cancelling ctx while waiting for the event's critical section abandons the
// attempt. Once inside, the read-check-write runs to completion regardless,
// so an abandoned caller never leaves a partial write behind.
func (a *Admission) Register(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	event, err := getEvent(ctx, a.catalog, req.EventID)
	if err != nil {
		return nil, err
	}

	req.EventID = event.ID
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = repository.NormalizeEmail(req.Email)
	req.Locale = strings.TrimSpace(req.Locale)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	release, err := a.locks.acquire(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("wait for event %s: %w", event.ID, err)
	}
	reg, err := a.admit(context.WithoutCancel(ctx), event, req)
	release()

	if err != nil {
		if apperr.CodeOf(err).UserVisible() {
			a.log.Info("registration rejected",
				slog.String("event_id", event.ID),
				slog.String("code", string(apperr.CodeOf(err))),
			)
		}
		return nil, err
	}

	a.log.Info("registration accepted",
		slog.String("event_id", event.ID),
		slog.String("registration_id", reg.ID),
	)
	a.notifier.Notify(*reg, *event)
	return reg, nil
}

// admit is the critical section. Callers must hold the event's lock.
func (a *Admission) admit(ctx context.Context, event *model.Event, req model.RegisterRequest) (*model.Registration, error) {
	for attempt := 1; attempt <= admitAttempts; attempt++ {
		count, err := a.regs.CountFor(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if count >= event.MaxAttendees {
			return nil, apperr.ErrEventFull
		}

		reg := model.Registration{
			ID:          a.newID(),
			EventID:     event.ID,
			FullName:    req.FullName,
			Email:       req.Email,
			Locale:      req.Locale,
			SubmittedAt: a.now(),
		}
		stored, err := a.regs.Append(ctx, reg, event.MaxAttendees)
		if err == nil {
			return stored, nil
		}

		switch apperr.CodeOf(err) {
		case apperr.CodeConflict:
			a.log.Warn("registration write conflicted, retrying",
				slog.String("event_id", event.ID),
				slog.Int("attempt", attempt),
			)
		case apperr.CodeDuplicate:
			return nil, apperr.Validation(model.FieldError{
				Field:  "email",
				Reason: "is already registered for this event",
			})
		case apperr.CodeUnknownEvent:
			return nil, apperr.ErrUnknownEvent
		default:
			return nil, fmt.Errorf("append registration: %w", err)
		}
	}
	return nil, apperr.ErrEventFull
}
