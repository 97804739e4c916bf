package registry

import (
	"time"
)

// Identity represents an enrolled employee. ID is externally assigned and
// immutable; FaceToken is the provider-issued reference for the enrolled
// face and is never shared between two identities.
type Identity struct {
	ID           string
	Name         string
	FaceToken    string
	FaceSetToken string    // face set the token was added to at enrollment
	Quality      float64   // face quality score at enrollment (0-100)
	Blur         float64   // blur score at enrollment (0-100)
	FaceRect     []float64 // [left, top, width, height] of the enrolled face
	EnrolledAt   time.Time
}
