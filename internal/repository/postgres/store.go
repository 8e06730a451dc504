// Package postgres implements the repository interfaces on PostgreSQL using
// pgx directly (no ORM).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Store = (*Store)(nil)

// Store handles persistence for events and registrations.
type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

// New constructs a Store on an open pool. The store takes ownership of db.
func New(db *pgxpool.Pool, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO events (id, title, description, event_date, max_attendees, enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Title, e.Description, e.EventDate, e.MaxAttendees, e.Enabled, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns enabled events ordered by event date.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, description, event_date, max_attendees, enabled, created_at
		 FROM events
		 WHERE enabled
		 ORDER BY event_date ASC, title ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.MaxAttendees, &e.Enabled, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent returns a single enabled event or apperr.ErrUnknownEvent.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.QueryRow(ctx,
		`SELECT id, title, description, event_date, max_attendees, enabled, created_at
		 FROM events WHERE id = $1 AND enabled`,
		id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.MaxAttendees, &e.Enabled, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUnknownEvent
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CountFor returns the number of registrations recorded for an event.
func (s *Store) CountFor(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// Append records a registration inside a transaction that holds the event
// row lock.
//
// SELECT … FOR UPDATE acquires a row-level exclusive lock on the event row.
// Any other transaction appending to the same event blocks on that SELECT
// until this one commits or rolls back, so the count read below cannot go
// stale before the insert. Appends for different events lock different rows
// and never contend.
func (s *Store) Append(ctx context.Context, reg model.Registration, maxAttendees int) (_ *model.Registration, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT max_attendees FROM events WHERE id = $1 AND enabled FOR UPDATE`,
		reg.EventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrUnknownEvent
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	limit := min(capacity, maxAttendees)

	var count int
	if err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, reg.EventID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if count >= limit {
		return nil, apperr.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, full_name, email, locale, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.EventID, reg.FullName, reg.Email, reg.Locale, reg.SubmittedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.Wrap(apperr.CodeDuplicate, apperr.ErrDuplicate.Message, pgErr)
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.log.Debug("registration appended",
		slog.String("event_id", reg.EventID),
		slog.String("registration_id", reg.ID),
		slog.Int("count", count+1),
		slog.Int("capacity", limit),
	)
	return &reg, nil
}

// ListFor returns all registrations for an event in insertion order.
func (s *Store) ListFor(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, full_name, email, locale, submitted_at
		 FROM registrations
		 WHERE event_id = $1
		 ORDER BY seq ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.FullName, &reg.Email, &reg.Locale, &reg.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
