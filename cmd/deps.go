package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/checkin"
	"github.com/kozaktomas/faceclock/internal/config"
	"github.com/kozaktomas/faceclock/internal/database/postgres"
	"github.com/kozaktomas/faceclock/internal/facepp"
	"github.com/kozaktomas/faceclock/internal/quality"
	"github.com/kozaktomas/faceclock/internal/registry"
)

// deps bundles everything a command needs: configuration, the provider
// client, the stores and the wired check-in service. The stores are backed
// by PostgreSQL when DATABASE_URL is set and kept in memory otherwise.
type deps struct {
	cfg      *config.Config
	client   *facepp.Client
	registry registry.Store
	attempts audit.Store
	service  *checkin.Service
}

// buildDeps wires the service stack from the environment. The returned
// cleanup function closes the database pool when one was opened.
func buildDeps(ctx context.Context) (*deps, func(), error) {
	cfg := config.Load()

	client, err := facepp.New(cfg.FacePP.BaseURL, cfg.FacePP.APIKey, cfg.FacePP.APISecret, cfg.FacePP.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create provider client: %w", err)
	}

	var (
		reg      registry.Store
		attempts audit.Store
		cleanup  = func() {}
	)
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to database: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("could not run migrations: %w", err)
		}
		reg = postgres.NewIdentityStore(pool)
		attempts = postgres.NewAttemptStore(pool)
		cleanup = func() { pool.Close() }
	} else {
		reg = registry.NewMemoryStore()
		attempts = audit.NewMemoryStore()
	}

	service := checkin.NewService(
		client,
		quality.NewGate(cfg.Thresholds),
		reg,
		audit.NewLogger(attempts),
		cfg.FacePP.FaceSetToken,
		cfg.Thresholds.Match.Threshold,
	)

	return &deps{
		cfg:      cfg,
		client:   client,
		registry: reg,
		attempts: attempts,
		service:  service,
	}, cleanup, nil
}
