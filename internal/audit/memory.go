package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory attempt log used in tests and when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts []Attempt
}

// NewMemoryStore creates an empty in-memory attempt log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends an attempt record.
func (s *MemoryStore) Insert(ctx context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// Recent returns the newest attempts, most recent first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.attempts) {
		limit = len(s.attempts)
	}
	recent := make([]Attempt, 0, limit)
	for i := len(s.attempts) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.attempts[i])
	}
	return recent, nil
}

// Stats computes aggregates over the whole log.
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalAttempts:  len(s.attempts),
		CountByOutcome: make(map[Outcome]int),
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var confidenceSum float64
	for _, attempt := range s.attempts {
		stats.CountByOutcome[attempt.Outcome]++
		if attempt.Outcome != OutcomeSuccess {
			continue
		}
		stats.TotalSuccesses++
		confidenceSum += attempt.Confidence
		if !attempt.OccurredAt.Before(startOfDay) {
			stats.TodaySuccesses++
		}
	}

	if stats.TotalSuccesses > 0 {
		stats.AvgConfidence = confidenceSum / float64(stats.TotalSuccesses)
	}
	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.TotalSuccesses) / float64(stats.TotalAttempts) * 100
	}
	return stats, nil
}
