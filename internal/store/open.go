package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tasklist/internal/config"
)

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		ids, err := NewIDGenerator(cfg.IDScheme)
		if err != nil {
			return nil, err
		}
		return NewMemoryStore(ids), nil

	case "sqlite":
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.SQLitePath)

	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("store.mongo_uri is required for the mongo driver")
		}
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)

	default:
		return nil, fmt.Errorf("unknown store driver %q (want memory, sqlite or mongo)", cfg.Driver)
	}
}
