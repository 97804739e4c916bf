// Package quality validates detected faces before any matching happens.
package quality

import (
	"github.com/kozaktomas/faceclock/internal/config"
	"github.com/kozaktomas/faceclock/internal/facepp"
)

// Purpose selects which thresholds apply; enrollment is stricter than
// verification and additionally checks blur.
type Purpose int

const (
	Enrollment Purpose = iota
	Verification
)

// Rejection says why a capture failed the gate.
type Rejection int

const (
	RejectionNone Rejection = iota
	RejectionNoFace
	RejectionMultipleFaces
	RejectionLowQuality
)

// Verdict is the result of assessing a capture.
type Verdict struct {
	OK        bool
	Rejection Rejection
	Face      facepp.Face // the single detected face when OK
}

// Gate holds the configured thresholds. Assess is a pure function of the
// detection result and these values.
type Gate struct {
	enrollMin float64
	verifyMin float64
	blurMax   float64
}

// NewGate creates a gate from the configured thresholds.
func NewGate(t config.ThresholdsConfig) *Gate {
	return &Gate{
		enrollMin: t.Quality.EnrollMin,
		verifyMin: t.Quality.VerifyMin,
		blurMax:   t.Quality.BlurMax,
	}
}

// Assess checks a detection result against the gate rules, in order:
// exactly one face, minimum quality for the purpose, and (enrollment only)
// maximum blur.
func (g *Gate) Assess(faces []facepp.Face, purpose Purpose) Verdict {
	if len(faces) == 0 {
		return Verdict{Rejection: RejectionNoFace}
	}
	if len(faces) > 1 {
		return Verdict{Rejection: RejectionMultipleFaces}
	}

	face := faces[0]
	minQuality := g.verifyMin
	if purpose == Enrollment {
		minQuality = g.enrollMin
	}
	if face.Quality < minQuality {
		return Verdict{Rejection: RejectionLowQuality, Face: face}
	}
	if purpose == Enrollment && face.Blur > g.blurMax {
		return Verdict{Rejection: RejectionLowQuality, Face: face}
	}

	return Verdict{OK: true, Face: face}
}
