package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often expired windows are purged.
const sweepEvery = time.Minute

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Suitable for a single
// instance; counters are lost on restart.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
	closed    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return newMemoryStoreWithClock(time.Now)
}

func newMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		windows:   make(map[string]*window),
		now:       now,
		lastSweep: now(),
	}
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, d time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, time.Time{}, ErrStoreClosed
	}

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// sweep drops expired windows at most once per sweepEvery.
// Caller must hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
	s.lastSweep = now
}

// Len returns the number of tracked keys, expired ones included until the
// next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.windows = nil
	return nil
}
