// Package checkin orchestrates the two user-facing flows: enrolling a new
// employee and verifying a capture against everyone already enrolled. It
// wires the provider client, the quality gate, the identity registry, the
// matcher and the audit log together.
package checkin

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/matcher"
	"github.com/kozaktomas/faceclock/internal/quality"
	"github.com/kozaktomas/faceclock/internal/registry"
)

var (
	// ErrEmptyImage is returned when a flow is called without image data.
	ErrEmptyImage = errors.New("no image data provided")
	// ErrMultipleFaces is returned when an enrollment capture contains more
	// than one face.
	ErrMultipleFaces = errors.New("multiple faces detected")
	// ErrLowQuality is returned when an enrollment capture fails the
	// quality gate.
	ErrLowQuality = errors.New("face quality too low for enrollment")
)

// Provider is the full recognition client surface the service needs.
// *facepp.Client satisfies it.
type Provider interface {
	Detect(ctx context.Context, imageBase64 string) ([]facepp.Face, error)
	AddFace(ctx context.Context, faceToken, setToken string) error
	CreateSet(ctx context.Context, faceToken, displayName string) (string, error)
	SearchInSet(ctx context.Context, probeToken, setToken string) ([]facepp.Candidate, error)
	Compare(ctx context.Context, tokenA, tokenB string) (float64, error)
}

// Result is the outcome of one verification, as reported to the caller and
// (with the same outcome) to the audit log. Identity is non-nil only for a
// successful match.
type Result struct {
	Outcome    audit.Outcome
	Identity   *registry.Identity
	Confidence float64
	AttemptID  string
	OccurredAt time.Time
}

// Service implements the enrollment and verification flows.
type Service struct {
	provider Provider
	gate     *quality.Gate
	registry registry.Store
	auditor  *audit.Logger
	matcher  *matcher.Matcher
	setToken string
}

// NewService wires a check-in service. The face-set token names the
// provider-side index enrollment adds to and verification searches.
func NewService(provider Provider, gate *quality.Gate, reg registry.Store, auditor *audit.Logger, setToken string, threshold float64) *Service {
	return &Service{
		provider: provider,
		gate:     gate,
		registry: reg,
		auditor:  auditor,
		matcher:  matcher.New(provider, reg, setToken, threshold),
		setToken: setToken,
	}
}

// Register enrolls a new employee from a single capture. The capture must
// contain exactly one face that passes the enrollment quality gate. The face
// is added to the provider's face set; when the set does not exist yet it is
// created on the fly, and when even that fails enrollment still succeeds
// with the face reachable through the linear fallback only.
func (s *Service) Register(ctx context.Context, id, name string, imageData []byte) (*registry.Identity, error) {
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, errors.New("employee id and name are required")
	}

	encoded, err := prepareImage(imageData)
	if err != nil {
		return nil, err
	}

	faces, err := s.provider.Detect(ctx, encoded)
	if err != nil {
		return nil, err
	}

	verdict := s.gate.Assess(faces, quality.Enrollment)
	if !verdict.OK {
		switch verdict.Rejection {
		case quality.RejectionMultipleFaces:
			return nil, ErrMultipleFaces
		case quality.RejectionLowQuality:
			return nil, ErrLowQuality
		default:
			return nil, facepp.ErrNoFace
		}
	}
	face := verdict.Face

	setToken := s.enrollFace(ctx, face.Token)

	identity := registry.Identity{
		ID:           id,
		Name:         name,
		FaceToken:    face.Token,
		FaceSetToken: setToken,
		Quality:      face.Quality,
		Blur:         face.Blur,
		FaceRect: []float64{
			float64(face.Rectangle.Left),
			float64(face.Rectangle.Top),
			float64(face.Rectangle.Width),
			float64(face.Rectangle.Height),
		},
		EnrolledAt: time.Now(),
	}
	if err := s.registry.Insert(ctx, identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

// enrollFace adds a face token to the configured face set, creating the set
// when the add fails because it does not exist yet. Indexing failures are
// not fatal: the identity stays matchable through the pairwise fallback.
func (s *Service) enrollFace(ctx context.Context, faceToken string) string {
	err := s.provider.AddFace(ctx, faceToken, s.setToken)
	if err == nil {
		return s.setToken
	}
	log.Printf("warning: could not add face to set %s, trying to create it: %v", s.setToken, err)

	created, err := s.provider.CreateSet(ctx, faceToken, s.setToken)
	if err != nil {
		log.Printf("warning: could not create face set, face will only match via pairwise comparison: %v", err)
		return s.setToken
	}
	return created
}

// Verify matches a capture against the registry and records exactly one
// audit attempt reflecting the outcome. Provider failures become outcomes,
// not errors; the returned error covers invalid input only.
func (s *Service) Verify(ctx context.Context, imageData []byte) (Result, error) {
	if len(imageData) == 0 {
		return Result{}, ErrEmptyImage
	}

	encoded, err := prepareImage(imageData)
	if err != nil {
		return Result{}, err
	}

	faces, err := s.provider.Detect(ctx, encoded)
	if err != nil {
		if errors.Is(err, facepp.ErrNoFace) {
			return s.record(ctx, Result{Outcome: audit.OutcomeNoFace}, ""), nil
		}
		log.Printf("warning: face detection failed: %v", err)
		return s.record(ctx, Result{Outcome: audit.OutcomeProviderError}, ""), nil
	}

	verdict := s.gate.Assess(faces, quality.Verification)
	if !verdict.OK {
		switch verdict.Rejection {
		case quality.RejectionNoFace:
			return s.record(ctx, Result{Outcome: audit.OutcomeNoFace}, ""), nil
		case quality.RejectionMultipleFaces:
			return s.record(ctx, Result{Outcome: audit.OutcomeMultipleFaces}, ""), nil
		default:
			return s.record(ctx, Result{Outcome: audit.OutcomeLowQuality}, verdict.Face.Token), nil
		}
	}

	decision := s.matcher.Verify(ctx, verdict.Face.Token)
	result := Result{
		Outcome:    decision.Outcome,
		Identity:   decision.Identity,
		Confidence: decision.Confidence,
	}
	return s.record(ctx, result, verdict.Face.Token), nil
}

// record writes the audit attempt for a finished verification and stamps
// the result with the attempt's identity and time.
func (s *Service) record(ctx context.Context, result Result, probeToken string) Result {
	attempt := audit.Attempt{
		ID:         uuid.NewString(),
		OccurredAt: time.Now(),
		Confidence: result.Confidence,
		ProbeToken: probeToken,
		Outcome:    result.Outcome,
	}
	if result.Identity != nil {
		id := result.Identity.ID
		attempt.IdentityID = &id
	}
	s.auditor.Record(ctx, attempt)

	result.AttemptID = attempt.ID
	result.OccurredAt = attempt.OccurredAt
	return result
}
