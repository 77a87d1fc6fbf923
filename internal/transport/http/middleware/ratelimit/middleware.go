package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type contextKey struct{}

// DecisionFrom returns the decision recorded by Middleware, if any.
func DecisionFrom(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(contextKey{}).(Decision)
	return d, ok
}

// Middleware checks every request against limiter. Allowed requests
// continue to next; denied ones are answered by onDeny. Both carry the
// RateLimit-* headers, denials additionally Retry-After.
func Middleware(limiter *Limiter, keyFunc func(*http.Request) string, onDeny http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Check(r.Context(), keyFunc(r))
			reset := secondsUntil(d.ResetAt, limiter.now())

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(reset))

			ctx := context.WithValue(r.Context(), contextKey{}, d)
			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(reset))
				onDeny.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func secondsUntil(t, now time.Time) int {
	s := int(math.Ceil(t.Sub(now).Seconds()))
	if s < 0 {
		return 0
	}
	return s
}

// ClientIP returns the key function identifying clients by source address.
// With trustProxy the first X-Forwarded-For hop is used when present.
func ClientIP(trustProxy bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if trustProxy {
			if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
				first, _, _ := strings.Cut(fwd, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
				return ip
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}
