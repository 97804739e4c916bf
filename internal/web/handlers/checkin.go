package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/checkin"
)

// CheckinHandler serves the verification endpoint.
type CheckinHandler struct {
	service *checkin.Service
}

// NewCheckinHandler creates a check-in handler.
func NewCheckinHandler(service *checkin.Service) *CheckinHandler {
	return &CheckinHandler{service: service}
}

type checkinRequest struct {
	Image string `json:"image"` // base64-encoded capture
}

type checkinEmployee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type checkinResponse struct {
	Outcome    audit.Outcome    `json:"outcome"`
	Employee   *checkinEmployee `json:"employee,omitempty"`
	Confidence float64          `json:"confidence"`
	AttemptID  string           `json:"attempt_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Verify matches a capture against the enrolled employees. Every completed
// verification answers 200 with its outcome; only invalid input is an
// HTTP-level error.
func (h *CheckinHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	result, err := h.service.Verify(r.Context(), imageData)
	if err != nil {
		if errors.Is(err, checkin.ErrEmptyImage) {
			respondError(w, http.StatusBadRequest, "image is required")
			return
		}
		respondError(w, http.StatusBadRequest, "could not process image")
		return
	}

	resp := checkinResponse{
		Outcome:    result.Outcome,
		Confidence: result.Confidence,
		AttemptID:  result.AttemptID,
		OccurredAt: result.OccurredAt,
	}
	if result.Identity != nil {
		resp.Employee = &checkinEmployee{ID: result.Identity.ID, Name: result.Identity.Name}
	}
	respondJSON(w, http.StatusOK, resp)
}
