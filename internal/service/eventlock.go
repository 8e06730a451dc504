package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// eventLocks hands out one mutual-exclusion scope per event id. Entries are
// reference counted and dropped once nobody holds or waits on them, so the
// map only grows with the number of events under active contention.
type eventLocks struct {
	mu    sync.Mutex
	locks map[string]*eventLock
}

type eventLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[string]*eventLock)}
}

// acquire blocks until the scope for eventID is free or ctx is done. The
// returned release func must be called exactly once.
func (l *eventLocks) acquire(ctx context.Context, eventID string) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[eventID]
	if !ok {
		lk = &eventLock{sem: semaphore.NewWeighted(1)}
		l.locks[eventID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	if err := lk.sem.Acquire(ctx, 1); err != nil {
		l.unref(eventID, lk)
		return nil, err
	}
	return func() {
		lk.sem.Release(1)
		l.unref(eventID, lk)
	}, nil
}

func (l *eventLocks) unref(eventID string, lk *eventLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, eventID)
	}
}

func (l *eventLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
