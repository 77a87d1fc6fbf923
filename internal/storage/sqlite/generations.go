package sqlite

import (
	"context"
	"time"

	"github.com/mandalnilabja/inkgate/internal/storage/models"
)

// LogGeneration stores a generation log entry
func (s *Storage) LogGeneration(ctx context.Context, log *models.GenerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if log.ID == "" {
		log.ID = generateID("gen")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_logs (id, request_id, provider, outcome, status_code,
			is_fallback, attempts, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.RequestID, nullString(log.Provider), log.Outcome, log.StatusCode,
		boolToInt(log.IsFallback), log.Attempts, log.DurationMs,
		log.CreatedAt.UTC().Format(timeFormat))

	return err
}

// GetGenerationStats aggregates the generation log
func (s *Storage) GetGenerationStats(ctx context.Context, filter models.StatsFilter) (*models.GenerationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	where := " WHERE 1=1"
	var args []any

	if filter.StartDate != nil {
		where += " AND created_at >= ?"
		args = append(args, filter.StartDate.UTC().Format(timeFormat))
	}
	if filter.EndDate != nil {
		where += " AND created_at <= ?"
		args = append(args, filter.EndDate.UTC().Format(timeFormat))
	}

	stats := &models.GenerationStats{Breakdown: []*models.OutcomeCount{}}

	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(is_fallback), 0),
		COALESCE(AVG(duration_ms), 0)
		FROM generation_logs`+where, args...,
	).Scan(&stats.TotalRequests, &stats.FallbackCount, &stats.AvgDurationMs)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(provider, ''), outcome, COUNT(*)
		FROM generation_logs`+where+`
		GROUP BY provider, outcome
		ORDER BY provider ASC, outcome ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var oc models.OutcomeCount
		if err := rows.Scan(&oc.Provider, &oc.Outcome, &oc.Count); err != nil {
			return nil, err
		}
		stats.Breakdown = append(stats.Breakdown, &oc)
	}

	return stats, rows.Err()
}
