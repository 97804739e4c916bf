package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kozaktomas/faceclock/internal/registry"
)

// IdentityStore is the PostgreSQL-backed identity registry.
type IdentityStore struct {
	pool *Pool
}

// NewIdentityStore creates an identity store over the given pool.
func NewIdentityStore(pool *Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

const identityColumns = "id, name, face_token, face_set_token, quality, blur, face_rect, enrolled_at"

func scanIdentity(row interface{ Scan(...any) error }) (*registry.Identity, error) {
	var identity registry.Identity
	var rect pq.Float64Array
	err := row.Scan(
		&identity.ID,
		&identity.Name,
		&identity.FaceToken,
		&identity.FaceSetToken,
		&identity.Quality,
		&identity.Blur,
		&rect,
		&identity.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	identity.FaceRect = []float64(rect)
	return &identity, nil
}

// Insert stores a new identity. A primary key or face token collision maps
// to registry.ErrDuplicateIdentity.
func (s *IdentityStore) Insert(ctx context.Context, identity registry.Identity) error {
	query := fmt.Sprintf(`
		INSERT INTO identities (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, identityColumns)

	_, err := s.pool.Exec(ctx, query,
		identity.ID,
		identity.Name,
		identity.FaceToken,
		identity.FaceSetToken,
		identity.Quality,
		identity.Blur,
		pq.Array(identity.FaceRect),
		identity.EnrolledAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return registry.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// FindByID returns the identity with the given ID, or nil when absent.
func (s *IdentityStore) FindByID(ctx context.Context, id string) (*registry.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM identities WHERE id = $1", identityColumns)
	identity, err := scanIdentity(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity by id: %w", err)
	}
	return identity, nil
}

// FindByToken returns the identity owning the given face token, or nil when
// absent.
func (s *IdentityStore) FindByToken(ctx context.Context, faceToken string) (*registry.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM identities WHERE face_token = $1", identityColumns)
	identity, err := scanIdentity(s.pool.QueryRow(ctx, query, faceToken))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity by token: %w", err)
	}
	return identity, nil
}

// List returns all identities in enrollment order.
func (s *IdentityStore) List(ctx context.Context) ([]registry.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM identities ORDER BY enrolled_at, id", identityColumns)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []registry.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// Count returns the number of enrolled identities.
func (s *IdentityStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}
