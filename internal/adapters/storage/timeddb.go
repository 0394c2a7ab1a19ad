package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/adapters/storage/sqlstore"
)

// DefaultSlowQuery is used when NewTimedDB gets a non-positive threshold.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and record them to a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var (
	_ sqlstore.DB = (*TimedDB)(nil)
	_ sqlstore.Tx = (*TimedTx)(nil)
)

// NewTimedDB wraps db with timing instrumentation. collector may be nil.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs queries slower than threshold at WARN
func NewTimedDB(db *sql.DB, threshold time.Duration, collector *perf.Collector) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying *sql.DB for pool configuration and Close.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

func (t *TimedDB) observe(op string, start time.Time, err error) {
	d := time.Since(start)
	durationMs := float64(d.Microseconds()) / 1000.0
	if d >= t.threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "op", op, "duration_ms", durationMs)
	}
	t.collector.Record(perf.Entry{
		Kind:     perf.KindQuery,
		Name:     op,
		Failed:   err != nil,
		Duration: d,
		At:       start,
	})
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe("ExecContext", start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe("QueryContext", start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
// Row errors surface on Scan, so the sample is never marked failed.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe("QueryRowContext", start, nil)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing. Statements run on the returned
// transaction are timed too.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (sqlstore.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BeginTx", start, err)
	if err != nil {
		return nil, err
	}
	return &TimedTx{tx: tx, timer: t}, nil
}

// TimedTx wraps a *sql.Tx so statements inside a transaction reach the
// slow-query log and the collector like any other query.
type TimedTx struct {
	tx    *sql.Tx
	timer *TimedDB
}

// ExecContext wraps sql.Tx.ExecContext with timing.
func (x *TimedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, query, args...)
	x.timer.observe("Tx.ExecContext", start, err)
	return result, err
}

// QueryContext wraps sql.Tx.QueryContext with timing.
func (x *TimedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := x.tx.QueryContext(ctx, query, args...)
	x.timer.observe("Tx.QueryContext", start, err)
	return rows, err
}

// QueryRowContext wraps sql.Tx.QueryRowContext with timing.
func (x *TimedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, query, args...)
	x.timer.observe("Tx.QueryRowContext", start, nil)
	return row
}

// Commit wraps sql.Tx.Commit with timing.
func (x *TimedTx) Commit() error {
	start := time.Now()
	err := x.tx.Commit()
	x.timer.observe("Commit", start, err)
	return err
}

// Rollback is not timed: callers defer it after Commit, where it is a no-op.
func (x *TimedTx) Rollback() error {
	return x.tx.Rollback()
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}
