// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/database"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	_ "modernc.org/sqlite"
)

var _ repository.Store = (*Store)(nil)

// Store persists events and registrations in SQLite. Timestamps are stored
// as unix nanoseconds.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database file at path and applies
// migrations.
func Open(path string, log *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer; one connection keeps statements in this
	// process from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := database.MigrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, log), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, event_date, max_attendees, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.EventDate.UnixNano(), e.MaxAttendees, e.Enabled, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

const eventColumns = `id, title, description, event_date, max_attendees, enabled, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (model.Event, error) {
	var (
		e                  model.Event
		eventDate, created int64
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &eventDate, &e.MaxAttendees, &e.Enabled, &created); err != nil {
		return model.Event{}, err
	}
	e.EventDate = time.Unix(0, eventDate).UTC()
	e.CreatedAt = time.Unix(0, created).UTC()
	return e, nil
}

// ListEvents returns enabled events ordered by event date.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE enabled = 1 ORDER BY event_date ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent returns a single enabled event or apperr.ErrUnknownEvent.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND enabled = 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrUnknownEvent
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CountFor returns the number of registrations recorded for an event.
func (s *Store) CountFor(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// Append inserts reg only while the event is below capacity. The capacity
// check and the insert are one statement, which SQLite executes atomically
// under its write lock.
func (s *Store) Append(ctx context.Context, reg model.Registration, maxAttendees int) (*model.Registration, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations (id, event_id, full_name, email, locale, submitted_at)
		 SELECT ?, ?, ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM registrations WHERE event_id = ?) < ?`,
		reg.ID, reg.EventID, reg.FullName, reg.Email, reg.Locale, reg.SubmittedAt.UnixNano(),
		reg.EventID, maxAttendees,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.CodeDuplicate, apperr.ErrDuplicate.Message, err)
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	if n == 0 {
		return nil, apperr.ErrConflict
	}

	s.log.Debug("registration appended",
		slog.String("event_id", reg.EventID),
		slog.String("registration_id", reg.ID),
	)
	return &reg, nil
}

// ListFor returns all registrations for an event in insertion order.
func (s *Store) ListFor(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, full_name, email, locale, submitted_at
		 FROM registrations
		 WHERE event_id = ?
		 ORDER BY seq ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var (
			reg       model.Registration
			submitted int64
		)
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.FullName, &reg.Email, &reg.Locale, &submitted); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.SubmittedAt = time.Unix(0, submitted).UTC()
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed: registrations.event_id, registrations.email")
}
