package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStore_WindowLifecycle(t *testing.T) {
	clock := newClock()
	s := newMemoryStoreWithClock(clock.Now)
	ctx := context.Background()
	window := 10 * time.Minute

	for want := int64(1); want <= 5; want++ {
		got, resetAt, err := s.Increment(ctx, "client", window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("count = %d, want %d", got, want)
		}
		if !resetAt.Equal(clock.Now().Add(window)) {
			t.Errorf("resetAt = %s, want window opened at first increment", resetAt)
		}
	}

	clock.Advance(window)

	got, resetAt, _ := s.Increment(ctx, "client", window)
	if got != 1 {
		t.Errorf("expected new window to start at 1, got %d", got)
	}
	if !resetAt.Equal(clock.Now().Add(window)) {
		t.Errorf("expected fresh reset time, got %s", resetAt)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, _ = s.Increment(ctx, "a", time.Minute)
	_, _, _ = s.Increment(ctx, "a", time.Minute)
	got, _, _ := s.Increment(ctx, "b", time.Minute)

	if got != 1 {
		t.Errorf("expected independent counter for b, got %d", got)
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, _, err := s.Increment(ctx, "shared", time.Hour); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	got, _, _ := s.Increment(ctx, "shared", time.Hour)
	if want := int64(workers*perWorker + 1); got != want {
		t.Errorf("lost increments: got %d, want %d", got, want)
	}
}

func TestMemoryStore_SweepsExpiredKeys(t *testing.T) {
	clock := newClock()
	s := newMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _, _ = s.Increment(ctx, k, 30*time.Second)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", s.Len())
	}

	clock.Advance(2 * sweepEvery)
	_, _, _ = s.Increment(ctx, "d", 30*time.Second)

	if s.Len() != 1 {
		t.Errorf("expected expired keys swept, %d remain", s.Len())
	}
}

func TestMemoryStore_Close(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.Increment(context.Background(), "a", time.Minute); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}
