package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedEvent(t *testing.T, s *Store, title string, date time.Time, maxAttendees int, enabled bool) model.Event {
	t.Helper()
	e := model.Event{
		ID:           uuid.NewString(),
		Title:        title,
		EventDate:    date,
		MaxAttendees: maxAttendees,
		Enabled:      enabled,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateEvent(context.Background(), e))
	return e
}

func newRegistration(eventID string, i int) model.Registration {
	return model.Registration{
		ID:          uuid.NewString(),
		EventID:     eventID,
		FullName:    fmt.Sprintf("Guest %d", i),
		Email:       fmt.Sprintf("guest%d@example.com", i),
		SubmittedAt: time.Now().UTC(),
	}
}

func TestStore_CatalogOrderingAndVisibility(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()

	later := seedEvent(t, s, "Workshop", time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC), 10, true)
	sooner := seedEvent(t, s, "Meetup", time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC), 10, true)
	hidden := seedEvent(t, s, "Retired", time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC), 10, false)

	events, err := s.ListEvents(ctx)
	req.NoError(err)
	req.Len(events, 2)
	req.Equal(sooner.ID, events[0].ID)
	req.Equal(later.ID, events[1].ID)
	req.True(events[0].EventDate.Equal(sooner.EventDate))

	got, err := s.GetEvent(ctx, later.ID)
	req.NoError(err)
	req.Equal("Workshop", got.Title)
	req.Equal(10, got.MaxAttendees)

	_, err = s.GetEvent(ctx, hidden.ID)
	req.ErrorIs(err, apperr.ErrUnknownEvent)

	_, err = s.GetEvent(ctx, "does-not-exist")
	req.ErrorIs(err, apperr.ErrUnknownEvent)
}

func TestStore_AppendRespectsCapacity(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 2, true)

	for i := range 2 {
		_, err := s.Append(ctx, newRegistration(e.ID, i), e.MaxAttendees)
		req.NoError(err)
	}

	_, err := s.Append(ctx, newRegistration(e.ID, 2), e.MaxAttendees)
	req.ErrorIs(err, apperr.ErrConflict)

	n, err := s.CountFor(ctx, e.ID)
	req.NoError(err)
	req.Equal(2, n)
}

func TestStore_AppendRejectsDuplicateEmail(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 5, true)

	_, err := s.Append(ctx, newRegistration(e.ID, 1), e.MaxAttendees)
	req.NoError(err)

	_, err = s.Append(ctx, newRegistration(e.ID, 1), e.MaxAttendees)
	req.ErrorIs(err, apperr.ErrDuplicate)

	other := seedEvent(t, s, "Other", time.Now().UTC(), 5, true)
	_, err = s.Append(ctx, newRegistration(other.ID, 1), other.MaxAttendees)
	req.NoError(err, "same email may register for a different event")
}

func TestStore_ListForKeepsInsertionOrder(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 3, true)

	var ids []string
	for i := range 3 {
		reg, err := s.Append(ctx, newRegistration(e.ID, i), e.MaxAttendees)
		req.NoError(err)
		ids = append(ids, reg.ID)
	}

	regs, err := s.ListFor(ctx, e.ID)
	req.NoError(err)
	req.Len(regs, 3)
	for i, reg := range regs {
		req.Equal(ids[i], reg.ID)
		req.Equal(e.ID, reg.EventID)
	}

	empty, err := s.ListFor(ctx, uuid.NewString())
	req.NoError(err)
	req.Empty(empty)
}

func TestStore_ConcurrentAppendNeverOverbooks(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 4, true)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Append(ctx, newRegistration(e.ID, i), e.MaxAttendees)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperr.ErrConflict)
		}()
	}
	wg.Wait()

	req.Equal(4, accepted)
	n, err := s.CountFor(ctx, e.ID)
	req.NoError(err)
	req.Equal(4, n)
}

func TestStore_AppendConflictWhenNoRowInserted(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO registrations`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = New(db, discard).Append(context.Background(), newRegistration("evt-1", 1), 1)
	req.ErrorIs(err, apperr.ErrConflict)
	req.NoError(mock.ExpectationsWereMet())
}

func TestStore_AppendMapsUniqueViolation(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO registrations`)).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: registrations.event_id, registrations.email (2067)"))

	_, err = New(db, discard).Append(context.Background(), newRegistration("evt-1", 1), 5)
	req.ErrorIs(err, apperr.ErrDuplicate)
	req.NoError(mock.ExpectationsWereMet())
}

func TestStore_AppendWrapsDriverErrors(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO registrations`)).WillReturnError(boom)

	_, err = New(db, discard).Append(context.Background(), newRegistration("evt-1", 1), 5)
	req.ErrorIs(err, boom)
	req.NotErrorIs(err, apperr.ErrConflict)
	req.NoError(mock.ExpectationsWereMet())
}

func TestStore_CountForWrapsDriverErrors(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM registrations`)).
		WithArgs("evt-1").
		WillReturnError(errors.New("database is locked"))

	_, err = New(db, discard).CountFor(context.Background(), "evt-1")
	req.ErrorContains(err, "count registrations")
	req.NoError(mock.ExpectationsWereMet())
}
