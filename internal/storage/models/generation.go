package models

import "time"

// GenerationLog records the outcome of one generation request. It never
// holds the prompt or the caller's address.
type GenerationLog struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	Provider   string    `json:"provider,omitempty"`
	Outcome    string    `json:"outcome"`
	StatusCode int       `json:"status_code"`
	IsFallback bool      `json:"is_fallback"`
	Attempts   int       `json:"attempts"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// OutcomeCount is the number of requests per provider and outcome.
// Provider is empty for requests that never reached a provider.
type OutcomeCount struct {
	Provider string `json:"provider"`
	Outcome  string `json:"outcome"`
	Count    int    `json:"count"`
}

// GenerationStats aggregates the generation log
type GenerationStats struct {
	TotalRequests int             `json:"total_requests"`
	FallbackCount int             `json:"fallback_count"`
	AvgDurationMs float64         `json:"avg_duration_ms"`
	Breakdown     []*OutcomeCount `json:"breakdown"`
}

// StatsFilter limits aggregation to a time range
type StatsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}
