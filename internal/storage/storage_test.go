package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/deckdraw/internal/config"
	"github.com/cory-johannsen/deckdraw/internal/deck"
	"github.com/cory-johannsen/deckdraw/internal/storage"
)

func TestOpen_SQLite(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "decks.db")

	repo, err := storage.Open(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, config.StorageSQLite, repo.Name())
	assert.NoError(t, repo.Health(context.Background(), time.Second))

	s := deck.New()
	s.Create("x")
	require.NoError(t, repo.Save(context.Background(), s))
	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Names())
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Storage.Backend = "mongo"
	_, err = storage.Open(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
