package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kozaktomas/faceclock/internal/checkin"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/registry"
)

// EmployeesHandler serves the enrollment and listing endpoints.
type EmployeesHandler struct {
	service  *checkin.Service
	registry registry.Reader
}

// NewEmployeesHandler creates an employees handler.
func NewEmployeesHandler(service *checkin.Service, reg registry.Reader) *EmployeesHandler {
	return &EmployeesHandler{service: service, registry: reg}
}

type createEmployeeRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"` // base64-encoded capture
}

type employeeResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Quality    float64 `json:"quality"`
	Blur       float64 `json:"blur"`
	EnrolledAt string  `json:"enrolled_at"`
}

func toEmployeeResponse(identity registry.Identity) employeeResponse {
	return employeeResponse{
		ID:         identity.ID,
		Name:       identity.Name,
		Quality:    identity.Quality,
		Blur:       identity.Blur,
		EnrolledAt: identity.EnrolledAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create enrolls a new employee from a base64-encoded capture.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	identity, err := h.service.Register(r.Context(), req.ID, req.Name, imageData)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, toEmployeeResponse(*identity))
	case errors.Is(err, checkin.ErrEmptyImage):
		respondError(w, http.StatusBadRequest, "image is required")
	case errors.Is(err, facepp.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in the image")
	case errors.Is(err, checkin.ErrMultipleFaces):
		respondError(w, http.StatusUnprocessableEntity, "image must contain exactly one face")
	case errors.Is(err, checkin.ErrLowQuality):
		respondError(w, http.StatusUnprocessableEntity, "face quality too low for enrollment")
	case errors.Is(err, registry.ErrDuplicateIdentity):
		respondError(w, http.StatusConflict, "employee already enrolled")
	default:
		respondError(w, http.StatusBadGateway, "enrollment failed")
	}
}

// List returns the enrolled employees, optionally filtered by name. The
// name filter is diacritics- and case-insensitive.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.registry.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not list employees")
		return
	}

	filter := registry.NormalizeName(r.URL.Query().Get("name"))
	employees := make([]employeeResponse, 0, len(identities))
	for _, identity := range identities {
		if filter != "" && registry.NormalizeName(identity.Name) != filter {
			continue
		}
		employees = append(employees, toEmployeeResponse(identity))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"employees": employees,
		"count":     len(employees),
	})
}
