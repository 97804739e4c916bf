package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"testing"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/checkin"
	"github.com/kozaktomas/faceclock/internal/config"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/quality"
	"github.com/kozaktomas/faceclock/internal/registry"
)

// scriptedProvider is a scriptable recognition client for handler tests.
type scriptedProvider struct {
	detectFaces   []facepp.Face
	detectErr     error
	searchResults []facepp.Candidate
	searchErr     error
	confidences   map[string]float64
}

func (p *scriptedProvider) Detect(ctx context.Context, imageBase64 string) ([]facepp.Face, error) {
	if p.detectErr != nil {
		return nil, p.detectErr
	}
	return p.detectFaces, nil
}

func (p *scriptedProvider) AddFace(ctx context.Context, faceToken, setToken string) error {
	return nil
}

func (p *scriptedProvider) CreateSet(ctx context.Context, faceToken, displayName string) (string, error) {
	return setTokenForTests, nil
}

func (p *scriptedProvider) SearchInSet(ctx context.Context, probeToken, setToken string) ([]facepp.Candidate, error) {
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.searchResults, nil
}

func (p *scriptedProvider) Compare(ctx context.Context, tokenA, tokenB string) (float64, error) {
	return p.confidences[tokenB], nil
}

const setTokenForTests = "employee_faceset"

type env struct {
	provider *scriptedProvider
	registry *registry.MemoryStore
	attempts *audit.MemoryStore
	service  *checkin.Service
}

func newEnv(t *testing.T, provider *scriptedProvider) *env {
	t.Helper()
	reg := registry.NewMemoryStore()
	attempts := audit.NewMemoryStore()

	var thresholds config.ThresholdsConfig
	thresholds.Match.Threshold = 80
	thresholds.Quality.EnrollMin = 50
	thresholds.Quality.VerifyMin = 40
	thresholds.Quality.BlurMax = 80

	service := checkin.NewService(provider, quality.NewGate(thresholds), reg, audit.NewLogger(attempts), setTokenForTests, 80)
	return &env{provider: provider, registry: reg, attempts: attempts, service: service}
}

// encodedTestImage renders a small JPEG and base64-encodes it for request
// payloads.
func encodedTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func detectedFace(token string, qualityScore float64) facepp.Face {
	return facepp.Face{
		Token:     token,
		Rectangle: facepp.Rectangle{Top: 10, Left: 20, Width: 100, Height: 110},
		Quality:   qualityScore,
		Blur:      15,
	}
}
