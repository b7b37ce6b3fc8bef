// ABOUTME: Opens the configured graph store backend
// ABOUTME: Keeps CLI, MCP and HTTP surfaces agnostic of the concrete store
package backend

import (
	"context"
	"fmt"

	"github.com/harper/carepath/internal/config"
	"github.com/harper/carepath/internal/storage"
	"github.com/harper/carepath/internal/storage/neo4jstore"
	"github.com/harper/carepath/internal/storage/postgres"
	"github.com/harper/carepath/internal/storage/sqlite"
)

// SeedableStore is a store that can also be reseeded
type SeedableStore interface {
	storage.Store
	storage.Seeder
}

// Open connects to the store named by cfg.Store
func Open(ctx context.Context, cfg *config.Config) (SeedableStore, error) {
	var (
		s   SeedableStore
		err error
	)
	switch cfg.Store {
	case config.StoreSQLite, "":
		s, err = sqlite.NewStorageWithPath(cfg.DBPath)
	case config.StorePostgres:
		s, err = postgres.Open(ctx, cfg.DatabaseURL)
	case config.StoreNeo4j:
		s, err = neo4jstore.Open(ctx, neo4jstore.Config{
			URI:      cfg.Neo4jURI,
			User:     cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		})
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	return s, nil
}
