package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/faceclock/internal/audit"
)

// AttemptStore is the PostgreSQL-backed verification attempt log.
type AttemptStore struct {
	pool *Pool
}

// NewAttemptStore creates an attempt store over the given pool.
func NewAttemptStore(pool *Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// Insert appends an attempt record.
func (s *AttemptStore) Insert(ctx context.Context, attempt audit.Attempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attempts (id, identity_id, occurred_at, confidence, probe_token, outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		attempt.ID,
		attempt.IdentityID,
		attempt.OccurredAt,
		attempt.Confidence,
		attempt.ProbeToken,
		string(attempt.Outcome),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns the newest attempts, most recent first.
func (s *AttemptStore) Recent(ctx context.Context, limit int) ([]audit.Attempt, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, identity_id, occurred_at, confidence, probe_token, outcome
		FROM attempts
		ORDER BY occurred_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []audit.Attempt
	for rows.Next() {
		var attempt audit.Attempt
		var outcome string
		err := rows.Scan(
			&attempt.ID,
			&attempt.IdentityID,
			&attempt.OccurredAt,
			&attempt.Confidence,
			&attempt.ProbeToken,
			&outcome,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.Outcome = audit.Outcome(outcome)
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// Stats computes aggregates over the whole log.
func (s *AttemptStore) Stats(ctx context.Context) (audit.Stats, error) {
	stats := audit.Stats{CountByOutcome: make(map[audit.Outcome]int)}

	rows, err := s.pool.Query(ctx, "SELECT outcome, COUNT(*) FROM attempts GROUP BY outcome")
	if err != nil {
		return stats, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return stats, fmt.Errorf("scan outcome count: %w", err)
		}
		stats.CountByOutcome[audit.Outcome(outcome)] = count
		stats.TotalAttempts += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate outcome counts: %w", err)
	}
	stats.TotalSuccesses = stats.CountByOutcome[audit.OutcomeSuccess]

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM attempts
		WHERE outcome = $1 AND occurred_at >= $2
	`, string(audit.OutcomeSuccess), startOfDay).Scan(&stats.TodaySuccesses)
	if err != nil {
		return stats, fmt.Errorf("count today's successes: %w", err)
	}

	if stats.TotalSuccesses > 0 {
		err = s.pool.QueryRow(ctx, `
			SELECT AVG(confidence) FROM attempts WHERE outcome = $1
		`, string(audit.OutcomeSuccess)).Scan(&stats.AvgConfidence)
		if err != nil {
			return stats, fmt.Errorf("average confidence: %w", err)
		}
	}
	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.TotalSuccesses) / float64(stats.TotalAttempts) * 100
	}

	return stats, nil
}
