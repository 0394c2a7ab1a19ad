package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/adapters/storage/filestore"
	"portfolio/internal/adapters/storage/neo4jstore"
	"portfolio/internal/adapters/storage/sqlstore"
	"portfolio/internal/config"
	"portfolio/internal/domain/record"
)

// Backend is an opened Record Store plus its lifecycle hooks.
type Backend struct {
	Name  string
	Store record.Store
	close func(context.Context) error
}

// Close releases connections held by the backend.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open builds the backend named by cfg.Backend, runs its schema setup and
// wraps it with tracing. collector may be nil.
// PRE: cfg passed Validate
// POST: Store is ready for use
func Open(ctx context.Context, cfg config.Config, collector *perf.Collector) (*Backend, error) {
	slowQuery := time.Duration(cfg.SlowQueryMs) * time.Millisecond

	var (
		store   record.Store
		closeFn func(context.Context) error
	)
	switch cfg.Backend {
	case config.BackendFile:
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = fs

	case config.BackendSQLite:
		dsn := cfg.SQLitePath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
		db, err := openSQL(ctx, "sqlite", dsn)
		if err != nil {
			return nil, err
		}
		s, err := migrateSQL(ctx, db, sqlstore.SQLite, slowQuery, collector)
		if err != nil {
			db.Close()
			return nil, err
		}
		store, closeFn = s, func(context.Context) error { return db.Close() }

	case config.BackendPostgres:
		db, err := openSQL(ctx, "postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s, err := migrateSQL(ctx, db, sqlstore.Postgres, slowQuery, collector)
		if err != nil {
			db.Close()
			return nil, err
		}
		store, closeFn = s, func(context.Context) error { return db.Close() }

	case config.BackendNeo4j:
		runner, err := neo4jstore.Dial(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, err
		}
		s := neo4jstore.New(runner)
		if err := s.EnsureSchema(ctx); err != nil {
			runner.Close(ctx)
			return nil, err
		}
		store, closeFn = s, runner.Close

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}

	slog.Info("store_opened", "backend", cfg.Backend)
	return &Backend{
		Name:  cfg.Backend,
		Store: NewTraced(store, cfg.Backend, 2*slowQuery, collector),
		close: closeFn,
	}, nil
}

func openSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", record.ErrUnavailable, driver, err)
	}
	return db, nil
}

func migrateSQL(ctx context.Context, db *sql.DB, d sqlstore.Dialect, slow time.Duration, collector *perf.Collector) (*sqlstore.Store, error) {
	timed := NewTimedDB(db, slow, collector)
	if err := sqlstore.Migrate(ctx, timed, d); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", d, err)
	}
	return sqlstore.New(timed, d), nil
}
