// ABOUTME: Tests for store backend selection
// ABOUTME: Only the SQLite path runs without external services
package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carepath/internal/config"
	"github.com/harper/carepath/internal/storage/fixture"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{Store: config.StoreSQLite, DBPath: filepath.Join(t.TempDir(), "c.db")}

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Seed(context.Background(), fixture.Demo()))
	p, err := s.ResolvePatient(context.Background(), "pat1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", p.Name)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: "mongo"})
	assert.Error(t, err)
}
