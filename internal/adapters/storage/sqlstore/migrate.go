package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"portfolio/internal/domain/record"
)

type migration struct {
	version int
	name    string
	stmts   func() []string
}

// migrations are applied in order; a version is never edited once released.
var migrations = []migration{
	{1, "collection tables", func() []string {
		var out []string
		for _, c := range record.All {
			out = append(out, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`, c))
		}
		return out
	}},
	{2, "created_at indexes", func() []string {
		var out []string
		for _, c := range record.All {
			out = append(out, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at)`, c, c))
		}
		return out
	}},
}

// LatestVersion is the schema version after Migrate succeeds.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate brings the schema up to LatestVersion. It is safe to call on every start.
// PRE: db is reachable
// POST: schema_version holds one row per applied migration
func Migrate(ctx context.Context, db DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return mapErr("migrate", "schema_version", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, d, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "dialect", d.String(), "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 on a fresh database.
func SchemaVersion(ctx context.Context, db DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, mapErr("migrate", "schema_version", err)
	}
	return int(v.Int64), nil
}

func apply(ctx context.Context, db DB, d Dialect, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("migrate", "begin", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, mapErr("migrate", "exec", err))
		}
	}
	if _, err := tx.ExecContext(ctx, d.Rebind(`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`),
		m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return mapErr("migrate", "schema_version", err)
	}
	return tx.Commit()
}
