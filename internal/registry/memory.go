package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory registry used in tests and when no database
// is configured. Insert order is preserved so List reflects enrollment time.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Identity
	byToken map[string]*Identity
	ordered []*Identity
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Identity),
		byToken: make(map[string]*Identity),
	}
}

// Insert adds a new identity. The write lock makes the exists-checks and the
// insert a single atomic step, which upholds both uniqueness rules under
// concurrency: an ID is enrolled at most once, and a face token is never
// shared by two identities.
func (s *MemoryStore) Insert(ctx context.Context, identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[identity.ID]; ok {
		return ErrDuplicateIdentity
	}
	if _, ok := s.byToken[identity.FaceToken]; ok {
		return ErrDuplicateIdentity
	}
	if identity.EnrolledAt.IsZero() {
		identity.EnrolledAt = time.Now()
	}

	stored := identity
	s.byID[identity.ID] = &stored
	s.byToken[identity.FaceToken] = &stored
	s.ordered = append(s.ordered, &stored)
	return nil
}

// FindByID returns the identity with the given ID, or nil if absent.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

// FindByToken returns the identity holding the given face token, or nil.
func (s *MemoryStore) FindByToken(ctx context.Context, faceToken string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byToken[faceToken]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

// List returns all identities in enrollment order.
func (s *MemoryStore) List(ctx context.Context) ([]Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities := make([]Identity, 0, len(s.ordered))
	for _, identity := range s.ordered {
		identities = append(identities, *identity)
	}
	return identities, nil
}

// Count returns the number of enrolled identities.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
