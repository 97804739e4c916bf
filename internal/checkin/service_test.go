package checkin

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/config"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/quality"
	"github.com/kozaktomas/faceclock/internal/registry"
)

// fakeProvider is a scriptable recognition client for service tests.
type fakeProvider struct {
	detectFaces []facepp.Face
	detectErr   error

	addFaceErr     error
	addFaceCalls   int
	createSetToken string
	createSetErr   error
	createSetCalls int

	searchResults []facepp.Candidate
	searchErr     error
	confidences   map[string]float64
}

func (p *fakeProvider) Detect(ctx context.Context, imageBase64 string) ([]facepp.Face, error) {
	if p.detectErr != nil {
		return nil, p.detectErr
	}
	return p.detectFaces, nil
}

func (p *fakeProvider) AddFace(ctx context.Context, faceToken, setToken string) error {
	p.addFaceCalls++
	return p.addFaceErr
}

func (p *fakeProvider) CreateSet(ctx context.Context, faceToken, displayName string) (string, error) {
	p.createSetCalls++
	if p.createSetErr != nil {
		return "", p.createSetErr
	}
	return p.createSetToken, nil
}

func (p *fakeProvider) SearchInSet(ctx context.Context, probeToken, setToken string) ([]facepp.Candidate, error) {
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.searchResults, nil
}

func (p *fakeProvider) Compare(ctx context.Context, tokenA, tokenB string) (float64, error) {
	return p.confidences[tokenB], nil
}

type fixture struct {
	provider *fakeProvider
	registry *registry.MemoryStore
	attempts *audit.MemoryStore
	service  *Service
}

func newFixture(t *testing.T, provider *fakeProvider) *fixture {
	t.Helper()
	reg := registry.NewMemoryStore()
	attempts := audit.NewMemoryStore()
	var thresholds config.ThresholdsConfig
	thresholds.Match.Threshold = 80
	thresholds.Quality.EnrollMin = 50
	thresholds.Quality.VerifyMin = 40
	thresholds.Quality.BlurMax = 80

	service := NewService(provider, quality.NewGate(thresholds), reg, audit.NewLogger(attempts), "employee_faceset", 80)
	return &fixture{provider: provider, registry: reg, attempts: attempts, service: service}
}

// testImage renders a small JPEG so the decode step sees real data.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return buf.Bytes()
}

func goodFace(token string) facepp.Face {
	return facepp.Face{
		Token:     token,
		Rectangle: facepp.Rectangle{Top: 10, Left: 20, Width: 100, Height: 110},
		Quality:   70,
		Blur:      20,
	}
}

func (f *fixture) lastAttempt(t *testing.T) audit.Attempt {
	t.Helper()
	attempts, err := f.attempts.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("could not read attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected one attempt, got %d", len(attempts))
	}
	return attempts[0]
}

func TestRegisterAndVerify(t *testing.T) {
	provider := &fakeProvider{detectFaces: []facepp.Face{goodFace("face-e1")}}
	f := newFixture(t, provider)
	ctx := context.Background()

	identity, err := f.service.Register(ctx, "E1", "Jana Novakova", testImage(t))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if identity.FaceToken != "face-e1" {
		t.Errorf("expected face token face-e1, got %s", identity.FaceToken)
	}
	if identity.FaceSetToken != "employee_faceset" {
		t.Errorf("expected default face set token, got %s", identity.FaceSetToken)
	}
	if identity.Quality != 70 || identity.Blur != 20 {
		t.Errorf("identity must carry enrollment scores, got %+v", identity)
	}

	provider.searchResults = []facepp.Candidate{{Token: "face-e1", Confidence: 92}}
	result, err := f.service.Verify(ctx, testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeSuccess {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Identity == nil || result.Identity.ID != "E1" {
		t.Errorf("expected identity E1, got %+v", result.Identity)
	}
	if result.Confidence != 92 {
		t.Errorf("expected confidence 92, got %f", result.Confidence)
	}

	attempt := f.lastAttempt(t)
	if attempt.Outcome != audit.OutcomeSuccess {
		t.Errorf("audit outcome must match the result, got %s", attempt.Outcome)
	}
	if attempt.IdentityID == nil || *attempt.IdentityID != "E1" {
		t.Errorf("audit attempt must reference the matched identity, got %v", attempt.IdentityID)
	}
	if attempt.ID != result.AttemptID {
		t.Errorf("result must reference its audit attempt")
	}
}

func TestRegisterEmptyImage(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	_, err := f.service.Register(context.Background(), "E1", "Jana", nil)
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

func TestRegisterLowQuality(t *testing.T) {
	face := goodFace("face-e1")
	face.Quality = 45 // passes verification, fails the stricter enrollment gate
	f := newFixture(t, &fakeProvider{detectFaces: []facepp.Face{face}})

	_, err := f.service.Register(context.Background(), "E1", "Jana", testImage(t))
	if !errors.Is(err, ErrLowQuality) {
		t.Fatalf("expected ErrLowQuality, got %v", err)
	}
	if n, _ := f.registry.Count(context.Background()); n != 0 {
		t.Errorf("rejected enrollment must not create an identity")
	}
}

func TestRegisterMultipleFaces(t *testing.T) {
	f := newFixture(t, &fakeProvider{
		detectFaces: []facepp.Face{goodFace("a"), goodFace("b")},
	})

	_, err := f.service.Register(context.Background(), "E1", "Jana", testImage(t))
	if !errors.Is(err, ErrMultipleFaces) {
		t.Fatalf("expected ErrMultipleFaces, got %v", err)
	}
}

func TestRegisterNoFace(t *testing.T) {
	f := newFixture(t, &fakeProvider{detectErr: facepp.ErrNoFace})

	_, err := f.service.Register(context.Background(), "E1", "Jana", testImage(t))
	if !errors.Is(err, facepp.ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t, &fakeProvider{detectFaces: []facepp.Face{goodFace("face-e1")}})
	ctx := context.Background()

	if _, err := f.service.Register(ctx, "E1", "Jana", testImage(t)); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := f.service.Register(ctx, "E1", "Jana", testImage(t))
	if !errors.Is(err, registry.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRegisterCreatesSetWhenMissing(t *testing.T) {
	provider := &fakeProvider{
		detectFaces:    []facepp.Face{goodFace("face-e1")},
		addFaceErr:     errors.New("INVALID_FACESET_TOKEN"),
		createSetToken: "created_set",
	}
	f := newFixture(t, provider)

	identity, err := f.service.Register(context.Background(), "E1", "Jana", testImage(t))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if identity.FaceSetToken != "created_set" {
		t.Errorf("expected created set token, got %s", identity.FaceSetToken)
	}
	if provider.createSetCalls != 1 {
		t.Errorf("expected one create call, got %d", provider.createSetCalls)
	}
}

func TestRegisterSurvivesIndexingFailure(t *testing.T) {
	provider := &fakeProvider{
		detectFaces:  []facepp.Face{goodFace("face-e1")},
		addFaceErr:   errors.New("unreachable"),
		createSetErr: errors.New("unreachable"),
	}
	f := newFixture(t, provider)

	identity, err := f.service.Register(context.Background(), "E1", "Jana", testImage(t))
	if err != nil {
		t.Fatalf("enrollment must not fail when only indexing fails: %v", err)
	}
	if identity.FaceSetToken != "employee_faceset" {
		t.Errorf("expected the default set token to be kept, got %s", identity.FaceSetToken)
	}
}

func TestVerifyNoFace(t *testing.T) {
	f := newFixture(t, &fakeProvider{detectErr: facepp.ErrNoFace})

	result, err := f.service.Verify(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeNoFace {
		t.Fatalf("expected no-face outcome, got %s", result.Outcome)
	}
	if attempt := f.lastAttempt(t); attempt.Outcome != audit.OutcomeNoFace {
		t.Errorf("audit outcome must match, got %s", attempt.Outcome)
	}
}

func TestVerifyEmptyDetection(t *testing.T) {
	// A provider answering with zero faces and no error still counts as no
	// face detected, not as a quality rejection.
	f := newFixture(t, &fakeProvider{detectFaces: []facepp.Face{}})

	result, err := f.service.Verify(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeNoFace {
		t.Fatalf("expected no-face outcome, got %s", result.Outcome)
	}
	if attempt := f.lastAttempt(t); attempt.Outcome != audit.OutcomeNoFace {
		t.Errorf("audit outcome must match, got %s", attempt.Outcome)
	}
}

func TestVerifyProviderError(t *testing.T) {
	f := newFixture(t, &fakeProvider{detectErr: facepp.ErrUnavailable})

	result, err := f.service.Verify(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeProviderError {
		t.Fatalf("expected provider-error outcome, got %s", result.Outcome)
	}
}

func TestVerifyLowQuality(t *testing.T) {
	face := goodFace("blurry")
	face.Quality = 30
	f := newFixture(t, &fakeProvider{detectFaces: []facepp.Face{face}})

	result, err := f.service.Verify(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeLowQuality {
		t.Fatalf("expected low-quality outcome, got %s", result.Outcome)
	}
	if attempt := f.lastAttempt(t); attempt.ProbeToken != "blurry" {
		t.Errorf("attempt must carry the probe token, got %q", attempt.ProbeToken)
	}
}

func TestVerifyNotRecognized(t *testing.T) {
	f := newFixture(t, &fakeProvider{
		detectFaces:   []facepp.Face{goodFace("stranger")},
		searchResults: []facepp.Candidate{},
	})

	result, err := f.service.Verify(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Outcome != audit.OutcomeNotRecognized {
		t.Fatalf("expected not recognized, got %s", result.Outcome)
	}
	if result.Identity != nil {
		t.Errorf("unrecognized verification must not bind an identity")
	}
	if attempt := f.lastAttempt(t); attempt.IdentityID != nil {
		t.Errorf("unrecognized attempt must not reference an identity")
	}
}

func TestVerifyEmptyImage(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	_, err := f.service.Verify(context.Background(), nil)
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if attempts, _ := f.attempts.Recent(context.Background(), 10); len(attempts) != 0 {
		t.Errorf("rejected input must not produce an audit attempt")
	}
}

func TestPrepareImageDownscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}

	encoded, err := prepareImage(buf.Bytes())
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if encoded == "" {
		t.Fatal("expected base64 output")
	}
}
