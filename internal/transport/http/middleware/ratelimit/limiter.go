package ratelimit

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Decision is the outcome of one Check.
type Decision struct {
	Allowed   bool
	Count     int64
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter applies a budget of Max requests per Window to each client.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter over store.
func NewLimiter(store Store, max int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{store: store, max: max, window: window, logger: logger, now: time.Now}
}

// Max returns the per-window budget.
func (l *Limiter) Max() int { return l.max }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Check consumes one unit of the client's budget. Store failures fail
// open: the request is allowed and the error is logged.
func (l *Limiter) Check(ctx context.Context, clientID string) Decision {
	count, resetAt, err := l.store.Increment(ctx, HashKey(clientID), l.window)
	if err != nil {
		l.logger.Warn("rate limit store failed, allowing request", "error", err)
		return Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max,
			ResetAt:   l.now().Add(l.window),
		}
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(l.max),
		Count:     count,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// HashKey derives the store key for a client identity so raw addresses
// never reach the store or its logs.
func HashKey(clientID string) string {
	sum := blake2b.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:16])
}
