// Package badgerstore implements the repository interfaces on BadgerDB. With
// an empty path it runs fully in memory, which is what tests and local demos
// use.
package badgerstore

import (
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/dgraph-io/badger/v4"
)

var _ repository.Store = (*Store)(nil)

// Key layout:
//
//	event:<event id>                     -> JSON model.Event
//	count:<event id>                     -> uint64 big endian
//	reg:<event id>:<seq, 20 digits>      -> JSON model.Registration
//	email:<event id>:<normalised email>  -> registration id
const (
	prefixEvent = "event:"
	prefixCount = "count:"
	prefixReg   = "reg:"
	prefixEmail = "email:"
)

// Store persists events and registrations in BadgerDB.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens a Badger database at path, or an in-memory one when path is empty.
func Open(path string, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return New(db, log), nil
}

// New wraps an open database. The store takes ownership of db.
func New(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func eventKey(id string) []byte { return []byte(prefixEvent + id) }
func countKey(id string) []byte { return []byte(prefixCount + id) }
func regPrefix(eventID string) []byte {
	return []byte(prefixReg + eventID + ":")
}
func regKey(eventID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", prefixReg, eventID, seq))
}
func emailKey(eventID, email string) []byte {
	return []byte(prefixEmail + eventID + ":" + repository.NormalizeEmail(email))
}

// CreateEvent stores a new event.
func (s *Store) CreateEvent(_ context.Context, e model.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(eventKey(e.ID)); err == nil {
			return fmt.Errorf("event %s already exists", e.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(eventKey(e.ID), data)
	})
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns enabled events ordered by event date, then title.
func (s *Store) ListEvents(_ context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixEvent)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e model.Event
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			if e.Enabled {
				events = append(events, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	slices.SortFunc(events, func(a, b model.Event) int {
		if c := a.EventDate.Compare(b.EventDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return events, nil
}

// GetEvent returns a single enabled event or apperr.ErrUnknownEvent.
func (s *Store) GetEvent(_ context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.View(func(txn *badger.Txn) error {
		return getEvent(txn, id, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func getEvent(txn *badger.Txn, id string, e *model.Event) error {
	item, err := txn.Get(eventKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperr.ErrUnknownEvent
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, e)
	}); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if !e.Enabled {
		return apperr.ErrUnknownEvent
	}
	return nil
}

// CountFor returns the number of registrations recorded for an event.
func (s *Store) CountFor(_ context.Context, eventID string) (int, error) {
	var n uint64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readCount(txn, eventID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return int(n), nil
}

func readCount(txn *badger.Txn, eventID string) (uint64, error) {
	item, err := txn.Get(countKey(eventID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n uint64
	err = item.Value(func(v []byte) error {
		if len(v) != 8 {
			return fmt.Errorf("corrupt counter for event %s", eventID)
		}
		n = binary.BigEndian.Uint64(v)
		return nil
	})
	return n, err
}

// Append records reg and bumps the event counter in one transaction. Badger
// transactions are optimistic: if another transaction committed a write to
// the same counter after this one read it, Commit fails with
// badger.ErrConflict, reported here as apperr.ErrConflict.
func (s *Store) Append(_ context.Context, reg model.Registration, maxAttendees int) (*model.Registration, error) {
	data, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("marshal registration: %w", err)
	}

	var count uint64
	err = s.db.Update(func(txn *badger.Txn) error {
		var e model.Event
		if err := getEvent(txn, reg.EventID, &e); err != nil {
			return err
		}
		limit := uint64(min(e.MaxAttendees, maxAttendees))

		n, err := readCount(txn, reg.EventID)
		if err != nil {
			return err
		}
		count = n
		if count >= limit {
			return apperr.ErrConflict
		}

		ek := emailKey(reg.EventID, reg.Email)
		if _, err := txn.Get(ek); err == nil {
			return apperr.ErrDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		count++
		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, count)
		if err := txn.Set(countKey(reg.EventID), next); err != nil {
			return err
		}
		if err := txn.Set(ek, []byte(reg.ID)); err != nil {
			return err
		}
		return txn.Set(regKey(reg.EventID, count), data)
	})
	switch {
	case err == nil:
	case errors.Is(err, badger.ErrConflict):
		return nil, apperr.Wrap(apperr.CodeConflict, apperr.ErrConflict.Message, err)
	case apperr.CodeOf(err) != apperr.CodeInternal:
		return nil, err
	default:
		return nil, fmt.Errorf("append registration: %w", err)
	}

	s.log.Debug("registration appended",
		slog.String("event_id", reg.EventID),
		slog.String("registration_id", reg.ID),
		slog.Uint64("count", count),
	)
	return &reg, nil
}

// ListFor returns all registrations for an event in insertion order.
func (s *Store) ListFor(_ context.Context, eventID string) ([]model.Registration, error) {
	var regs []model.Registration
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := regPrefix(eventID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var reg model.Registration
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &reg)
			}); err != nil {
				return fmt.Errorf("unmarshal registration: %w", err)
			}
			regs = append(regs, reg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
