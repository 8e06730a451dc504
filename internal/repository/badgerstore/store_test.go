package badgerstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SetupTestStore opens an in-memory Badger store for testing.
func SetupTestStore(t *testing.T) *Store {
	s, err := Open("", slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedEvent(t *testing.T, s *Store, title string, date time.Time, maxAttendees int) model.Event {
	t.Helper()
	e := model.Event{
		ID:           uuid.NewString(),
		Title:        title,
		EventDate:    date,
		MaxAttendees: maxAttendees,
		Enabled:      true,
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

func TestStore_Catalog(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	b := seedEvent(t, s, "Book club", day, 5)
	a := seedEvent(t, s, "Art walk", day, 5)
	early := seedEvent(t, s, "Zumba", day.Add(-24*time.Hour), 5)

	retired := model.Event{ID: uuid.NewString(), Title: "Retired", EventDate: day, MaxAttendees: 1}
	req.NoError(s.CreateEvent(ctx, retired))

	events, err := s.ListEvents(ctx)
	req.NoError(err)
	req.Len(events, 3)
	req.Equal([]string{early.ID, a.ID, b.ID}, []string{events[0].ID, events[1].ID, events[2].ID},
		"ordered by date, then title")

	_, err = s.GetEvent(ctx, retired.ID)
	req.ErrorIs(err, apperr.ErrUnknownEvent)
	_, err = s.GetEvent(ctx, "does-not-exist")
	req.ErrorIs(err, apperr.ErrUnknownEvent)

	req.Error(s.CreateEvent(ctx, a), "ids are unique")
}

func TestStore_AppendRespectsCapacity(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 1)

	_, err := s.Append(ctx, newRegistration(e.ID, 0), e.MaxAttendees)
	req.NoError(err)

	_, err = s.Append(ctx, newRegistration(e.ID, 1), e.MaxAttendees)
	req.ErrorIs(err, apperr.ErrConflict)

	n, err := s.CountFor(ctx, e.ID)
	req.NoError(err)
	req.Equal(1, n)
}

func TestStore_AppendUsesStoredCapacity(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 1)

	_, err := s.Append(ctx, newRegistration(e.ID, 0), 10)
	req.NoError(err)
	_, err = s.Append(ctx, newRegistration(e.ID, 1), 10)
	req.ErrorIs(err, apperr.ErrConflict, "a stale caller limit cannot raise capacity")
}

func TestStore_AppendUnknownEvent(t *testing.T) {
	s := SetupTestStore(t)
	_, err := s.Append(context.Background(), newRegistration("does-not-exist", 0), 5)
	require.ErrorIs(t, err, apperr.ErrUnknownEvent)
}

func TestStore_AppendRejectsDuplicateEmail(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 5)

	_, err := s.Append(ctx, newRegistration(e.ID, 7), e.MaxAttendees)
	req.NoError(err)

	dup := newRegistration(e.ID, 7)
	dup.Email = "  GUEST7@example.com "
	_, err = s.Append(ctx, dup, e.MaxAttendees)
	req.ErrorIs(err, apperr.ErrDuplicate)

	n, err := s.CountFor(ctx, e.ID)
	req.NoError(err)
	req.Equal(1, n)
}

func TestStore_ListForKeepsInsertionOrder(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 12)
	other := seedEvent(t, s, "Other", time.Now().UTC(), 12)

	var ids []string
	for i := range 12 {
		reg, err := s.Append(ctx, newRegistration(e.ID, i), e.MaxAttendees)
		req.NoError(err)
		ids = append(ids, reg.ID)
	}
	_, err := s.Append(ctx, newRegistration(other.ID, 0), other.MaxAttendees)
	req.NoError(err)

	regs, err := s.ListFor(ctx, e.ID)
	req.NoError(err)
	req.Len(regs, 12)
	for i, reg := range regs {
		req.Equal(ids[i], reg.ID)
	}
}

func TestStore_ConcurrentAppendNeverOverbooks(t *testing.T) {
	req := require.New(t)
	s := SetupTestStore(t)
	ctx := context.Background()
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 3)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := range 24 {
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

	// Optimistic conflicts may reject more than the surplus, never fewer.
	req.LessOrEqual(accepted, 3)
	n, err := s.CountFor(ctx, e.ID)
	req.NoError(err)
	req.Equal(accepted, n)

	regs, err := s.ListFor(ctx, e.ID)
	req.NoError(err)
	req.Len(regs, n)
}

func TestStore_SurvivesReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")
	logger := slog.Default()

	s, err := Open(dir, logger)
	req.NoError(err)
	e := seedEvent(t, s, "Meetup", time.Now().UTC(), 2)
	reg, err := s.Append(ctx, newRegistration(e.ID, 0), e.MaxAttendees)
	req.NoError(err)
	req.NoError(s.Close())

	s, err = Open(dir, logger)
	req.NoError(err)
	defer s.Close()

	regs, err := s.ListFor(ctx, e.ID)
	req.NoError(err)
	req.Len(regs, 1)
	req.Equal(reg.ID, regs[0].ID)
}
