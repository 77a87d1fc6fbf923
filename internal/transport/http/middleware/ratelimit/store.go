// Package ratelimit enforces a fixed-window request budget per client.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrStoreClosed is returned by a store after Close.
var ErrStoreClosed = errors.New("rate limit store is closed")

// Store counts requests per key within fixed windows.
//
// Increment atomically adds one to the counter for key and returns the new
// count together with the time the current window ends. The first
// increment for a key, or the first after its window elapsed, opens a new
// window of the given length.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
	Close() error
}
