// Package app builds the retrieval stack from configuration. It is shared by the HTTP server and refctl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"referensi/internal/config"
	"referensi/internal/database"
	"referensi/internal/database/migration"
	"referensi/internal/jsonlog"
	"referensi/internal/query"
	"referensi/internal/repository/sqlstore"
	"referensi/internal/service"
	"referensi/internal/storage"
)

// Stack holds the opened resources. Close releases them.
type Stack struct {
	DB      *sql.DB
	Store   *sqlstore.Store
	Service service.ReferenceService
}

// Close closes the database pool.
func (s *Stack) Close() error {
	return s.DB.Close()
}

// Open connects to the configured store, migrates it when enabled and wires the service.
// A configured but unreachable mirror is logged and skipped.
func Open(ctx context.Context, cfg *config.AppConfig) (*Stack, error) {
	loc := cfg.Location()

	dialect, ok := query.DialectFor(cfg.Database.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, dialect.Name(), loc, dbHost(cfg.Database)); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	store := sqlstore.New(db, dialect, sqlstore.WithSnapshot(cfg.Query.Snapshot))

	opts := []service.Option{service.WithDiscoverSize(cfg.Query.DiscoverSize)}
	if cfg.MinIO.Enabled() {
		mirror, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			jsonlog.Log(loc, map[string]any{
				"level":     "warn",
				"component": "storage",
				"event":     "mirror_disabled",
				"error":     err.Error(),
			})
		} else {
			expiry := time.Duration(cfg.MinIO.PresignExpirySec) * time.Second
			opts = append(opts, service.WithMirror(mirror, cfg.MinIO.Prefix, expiry))
		}
	}

	return &Stack{
		DB:      db,
		Store:   store,
		Service: service.NewReferenceService(store, opts...),
	}, nil
}

func dbHost(c config.DatabaseConfig) string {
	if c.Driver == config.DriverSQLite {
		return c.SQLitePath
	}
	return c.Host
}
