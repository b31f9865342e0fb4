package storage

import (
	"fmt"

	"gatekeeper/internal/models"
)

// New instantiates a role store based on the provided configuration.
// Supported providers:
//   - postgres: the platform's PostgreSQL database (production)
//   - sqlite: SQLite database (lightweight deployments)
//   - memory: in-memory store seeded from config (testing/development)
func New(cfg models.RoleStoreConfig) (RoleStore, error) {
	switch cfg.Type {
	case models.RoleStoreTypePostgres:
		return NewPostgresStore(cfg.DSN)
	case models.RoleStoreTypeSQLite:
		return NewSQLiteStore(cfg.DSN)
	case models.RoleStoreTypeMemory:
		return NewMemoryStore(cfg.Roles), nil
	default:
		return nil, fmt.Errorf("unsupported role store type: %s", cfg.Type)
	}
}
