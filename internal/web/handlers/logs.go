package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/faceclock/internal/audit"
)

// LogsHandler serves the attempt log and its aggregates.
type LogsHandler struct {
	attempts audit.Reader
}

// NewLogsHandler creates a logs handler.
func NewLogsHandler(attempts audit.Reader) *LogsHandler {
	return &LogsHandler{attempts: attempts}
}

type attemptResponse struct {
	ID         string        `json:"id"`
	EmployeeID *string       `json:"employee_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Confidence float64       `json:"confidence"`
	Outcome    audit.Outcome `json:"outcome"`
}

// List returns the most recent verification attempts plus aggregate stats.
// The limit query parameter caps the number of attempts (default 100).
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	attempts, err := h.attempts.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not read attempt log")
		return
	}

	stats, err := h.attempts.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not compute stats")
		return
	}

	responses := make([]attemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, attemptResponse{
			ID:         attempt.ID,
			EmployeeID: attempt.IdentityID,
			OccurredAt: attempt.OccurredAt,
			Confidence: attempt.Confidence,
			Outcome:    attempt.Outcome,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attempts": responses,
		"stats": map[string]any{
			"total_attempts":   stats.TotalAttempts,
			"total_successes":  stats.TotalSuccesses,
			"today_successes":  stats.TodaySuccesses,
			"success_rate":     stats.SuccessRate,
			"avg_confidence":   stats.AvgConfidence,
			"count_by_outcome": stats.CountByOutcome,
		},
	})
}
