// Package registry owns the set of enrolled identities and their
// uniqueness invariants.
package registry

import (
	"context"
	"errors"
)

// ErrDuplicateIdentity is returned when inserting an identity whose ID is
// already enrolled. The existing record is never touched.
var ErrDuplicateIdentity = errors.New("identity already enrolled")

// Reader provides read-only registry lookups. Implementations must be safe
// for concurrent use; all results are snapshots.
type Reader interface {
	// FindByID returns the identity with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*Identity, error)
	// FindByToken returns the identity holding the given face token, or nil.
	FindByToken(ctx context.Context, faceToken string) (*Identity, error)
	// List returns all identities ordered by enrollment time (earliest first).
	List(ctx context.Context) ([]Identity, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
}

// Writer persists new enrollments. Insert must be atomic per ID: concurrent
// inserts of the same ID result in exactly one success and ErrDuplicateIdentity
// for the rest.
type Writer interface {
	Insert(ctx context.Context, identity Identity) error
}

// Store combines the read and write sides.
type Store interface {
	Reader
	Writer
}
