package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"referensi/internal/config"
	"referensi/internal/jsonlog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// The search index on Postgres is a stored generated column, so it can never
// drift from referensi.name. The 'simple' configuration lowercases without stemming.
var postgresSteps = []migrationStep{
	{
		Name: "create_table_category",
		SQL: `CREATE TABLE IF NOT EXISTS category (
  id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  name TEXT   NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_referensi",
		SQL: `CREATE TABLE IF NOT EXISTS referensi (
  id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  name          TEXT   NOT NULL,
  folder_id     TEXT   NOT NULL,
  file_id       TEXT   NOT NULL,
  download_url  TEXT   NOT NULL,
  category_id   BIGINT NULL REFERENCES category (id),
  search_vector TSVECTOR GENERATED ALWAYS AS (to_tsvector('simple', name)) STORED
);`,
	},
	{
		Name: "create_index_referensi_search_vector",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_referensi_search_vector ON referensi USING GIN (search_vector);`,
	},
	{
		Name: "create_index_referensi_category_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_referensi_category_id ON referensi (category_id);`,
	},
	{
		Name: "seed_category",
		SQL:  `INSERT INTO category (id, name) VALUES (1, 'Syafii'), (2, 'Hanbali') ON CONFLICT (id) DO NOTHING;`,
	},
}

// On SQLite the index is an external-content FTS5 table; the triggers keep
// exactly one index row per referensi row.
var sqliteSteps = []migrationStep{
	{
		Name: "create_table_category",
		SQL: `CREATE TABLE IF NOT EXISTS category (
  id   INTEGER PRIMARY KEY,
  name TEXT    NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_referensi",
		SQL: `CREATE TABLE IF NOT EXISTS referensi (
  id           INTEGER PRIMARY KEY,
  name         TEXT    NOT NULL,
  folder_id    TEXT    NOT NULL,
  file_id      TEXT    NOT NULL,
  download_url TEXT    NOT NULL,
  category_id  INTEGER NULL REFERENCES category (id)
);`,
	},
	{
		Name: "create_index_referensi_category_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_referensi_category_id ON referensi (category_id);`,
	},
	{
		Name: "create_table_referensi_fts",
		SQL:  `CREATE VIRTUAL TABLE IF NOT EXISTS referensi_fts USING fts5(name, content='referensi', content_rowid='id');`,
	},
	{
		Name: "create_trigger_referensi_ai",
		SQL: `CREATE TRIGGER IF NOT EXISTS referensi_ai AFTER INSERT ON referensi BEGIN
  INSERT INTO referensi_fts (rowid, name) VALUES (new.id, new.name);
END;`,
	},
	{
		Name: "create_trigger_referensi_ad",
		SQL: `CREATE TRIGGER IF NOT EXISTS referensi_ad AFTER DELETE ON referensi BEGIN
  INSERT INTO referensi_fts (referensi_fts, rowid, name) VALUES ('delete', old.id, old.name);
END;`,
	},
	{
		Name: "create_trigger_referensi_au",
		SQL: `CREATE TRIGGER IF NOT EXISTS referensi_au AFTER UPDATE ON referensi BEGIN
  INSERT INTO referensi_fts (referensi_fts, rowid, name) VALUES ('delete', old.id, old.name);
  INSERT INTO referensi_fts (rowid, name) VALUES (new.id, new.name);
END;`,
	},
	{
		// rows that predate the triggers
		Name: "rebuild_referensi_fts",
		SQL:  `INSERT INTO referensi_fts (referensi_fts) VALUES ('rebuild');`,
	},
	{
		Name: "seed_category",
		SQL:  `INSERT OR IGNORE INTO category (id, name) VALUES (1, 'Syafii'), (2, 'Hanbali');`,
	},
}

var sentinelQueries = map[string]string{
	config.DriverPostgres: "SELECT to_regclass('public.referensi') IS NOT NULL",
	config.DriverSQLite:   "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'referensi_fts'",
}

func stepsFor(driver string) ([]migrationStep, string, error) {
	if driver == "" {
		driver = config.DriverPostgres
	}
	q, ok := sentinelQueries[driver]
	if !ok {
		return nil, "", fmt.Errorf("no migrations for driver %q", driver)
	}
	if driver == config.DriverSQLite {
		return sqliteSteps, q, nil
	}
	return postgresSteps, q, nil
}

// EnsureMigrated checks if the 'referensi' schema exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, driver string, loc *time.Location, dbHost string) error {
	start := time.Now()

	steps, sentinel, err := stepsFor(driver)
	if err != nil {
		return err
	}

	jsonlog.Log(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_driver": driver,
		"db_host":   dbHost,
	})

	var exists bool
	if err := db.QueryRowContext(ctx, sentinel).Scan(&exists); err != nil {
		jsonlog.Log(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		jsonlog.Log(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	jsonlog.Log(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			jsonlog.Log(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		jsonlog.Log(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	jsonlog.Log(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
