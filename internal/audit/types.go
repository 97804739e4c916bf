package audit

import "time"

// Outcome classifies how a verification attempt terminated. Exactly one
// outcome is recorded per attempt, decided by the pipeline stage that
// stopped processing.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeNoFace        Outcome = "no_face_detected"
	OutcomeMultipleFaces Outcome = "multiple_faces_detected"
	OutcomeLowQuality    Outcome = "low_quality"
	OutcomeNotRecognized Outcome = "not_recognized"
	OutcomeLowConfidence Outcome = "low_confidence"
	OutcomeProviderError Outcome = "provider_error"
)

// Attempt is the write-once audit record of a single verification attempt.
// IdentityID is nil when no match was resolved. ProbeToken is the provider
// token of the captured face, retained only for this record.
type Attempt struct {
	ID         string
	IdentityID *string
	OccurredAt time.Time
	Confidence float64
	ProbeToken string
	Outcome    Outcome
}

// Stats are read-side aggregates over the attempt log, used by reporting.
type Stats struct {
	TotalAttempts  int
	TotalSuccesses int
	TodaySuccesses int
	SuccessRate    float64 // percentage of attempts that succeeded
	AvgConfidence  float64 // mean confidence over successful attempts
	CountByOutcome map[Outcome]int
}
