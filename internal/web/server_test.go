package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/checkin"
	"github.com/kozaktomas/faceclock/internal/config"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/quality"
	"github.com/kozaktomas/faceclock/internal/registry"
)

type noopProvider struct{}

func (noopProvider) Detect(ctx context.Context, imageBase64 string) ([]facepp.Face, error) {
	return nil, facepp.ErrNoFace
}

func (noopProvider) AddFace(ctx context.Context, faceToken, setToken string) error {
	return nil
}

func (noopProvider) CreateSet(ctx context.Context, faceToken, displayName string) (string, error) {
	return "", nil
}

func (noopProvider) SearchInSet(ctx context.Context, probeToken, setToken string) ([]facepp.Candidate, error) {
	return nil, nil
}

func (noopProvider) Compare(ctx context.Context, tokenA, tokenB string) (float64, error) {
	return 0, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := registry.NewMemoryStore()
	attempts := audit.NewMemoryStore()

	var thresholds config.ThresholdsConfig
	thresholds.Match.Threshold = 80
	thresholds.Quality.EnrollMin = 50
	thresholds.Quality.VerifyMin = 40
	thresholds.Quality.BlurMax = 80

	service := checkin.NewService(noopProvider{}, quality.NewGate(thresholds), reg, audit.NewLogger(attempts), "employee_faceset", 80)
	return NewServer(service, reg, attempts, "127.0.0.1", 0)
}

func TestHealthRoute(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestRoutesRegistered(t *testing.T) {
	server := newTestServer(t)

	// Unknown routes must 404 while registered ones do not.
	tests := []struct {
		method string
		path   string
		want   bool // registered
	}{
		{http.MethodGet, "/api/v1/employees", true},
		{http.MethodPost, "/api/v1/employees", true},
		{http.MethodPost, "/api/v1/checkin", true},
		{http.MethodGet, "/api/v1/logs", true},
		{http.MethodGet, "/api/v1/missing", false},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		recorder := httptest.NewRecorder()
		server.Router().ServeHTTP(recorder, req)

		registered := recorder.Code != http.StatusNotFound
		if registered != tc.want {
			t.Errorf("%s %s: registered=%v, want %v", tc.method, tc.path, registered, tc.want)
		}
	}
}
