// Package storage opens the collection repository selected by configuration.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/deckdraw/internal/config"
	"github.com/cory-johannsen/deckdraw/internal/deck"
	"github.com/cory-johannsen/deckdraw/internal/storage/postgres"
	"github.com/cory-johannsen/deckdraw/internal/storage/sqlite"
)

// Backend is an opened repository together with the connection behind it.
type Backend struct {
	deck.Repository
	name   string
	health func(ctx context.Context, timeout time.Duration) error
	close  func()
}

// Name returns the configured backend name.
func (b *Backend) Name() string { return b.name }

// Health reports whether the underlying database answers within timeout.
func (b *Backend) Health(ctx context.Context, timeout time.Duration) error {
	return b.health(ctx, timeout)
}

// Close releases the backend.
//
// Postcondition: the Backend is no longer usable.
func (b *Backend) Close() { b.close() }

// Open connects the backend named by cfg.Storage.Backend.
//
// Postcondition: On success Close must be called exactly once.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Backend {
	case config.StorageSQLite:
		repo, err := sqlite.OpenConfig(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("sqlite store opened", zap.String("path", cfg.SQLite.Path))
		return &Backend{
			Repository: repo,
			name:       config.StorageSQLite,
			health:     repo.Health,
			close:      func() { _ = repo.Close() },
		}, nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		logger.Debug("postgres store opened", zap.String("host", cfg.Database.Host))
		return &Backend{
			Repository: postgres.NewCollectionRepository(pool.DB()),
			name:       config.StoragePostgres,
			health:     pool.Health,
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
