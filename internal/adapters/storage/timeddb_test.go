package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/adapters/storage/sqlstore"
	"portfolio/internal/domain/record"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_RecordsEachCall verifies every wrapped call lands in the collector.
func TestTimedDB_RecordsEachCall(t *testing.T) {
	ctx := context.Background()
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), time.Second, collector)

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	if got := collector.TotalRecorded(); got != 4 {
		t.Errorf("TotalRecorded = %d, want 4", got)
	}
}

// TestTimedDB_FailedQueryMarked verifies failing calls are flagged in the snapshot.
func TestTimedDB_FailedQueryMarked(t *testing.T) {
	collector := perf.NewCollector(10)
	tdb := NewTimedDB(openTimedTestDB(t), 0, collector)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO missing VALUES (1)"); err == nil {
		t.Fatal("expected error for missing table")
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 5)
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Errors != 1 {
		t.Errorf("SlowestQueries = %+v, want one failed ExecContext", snap.SlowestQueries)
	}
}

func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), time.Second, nil)
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

// TestTimedDB_TransactionStatementsRecorded verifies writes inside a
// transaction are timed, not just the BeginTx call.
func TestTimedDB_TransactionStatementsRecorded(t *testing.T) {
	ctx := context.Background()
	collector := perf.NewCollector(256)
	tdb := NewTimedDB(openTimedTestDB(t), time.Second, collector)
	if err := sqlstore.Migrate(ctx, tdb, sqlstore.SQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	s := sqlstore.New(tdb, sqlstore.SQLite)

	before := collector.TotalRecorded()
	since := time.Now()
	id, err := s.Create(ctx, record.Skills, record.Fields{"name": "Go"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// BeginTx, SELECT ids, INSERT, Commit
	if got := collector.TotalRecorded() - before; got != 4 {
		t.Errorf("Create recorded %d entries, want 4", got)
	}

	before = collector.TotalRecorded()
	if err := s.Update(ctx, record.Skills, id, record.Fields{"name": "Rust"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// BeginTx, SELECT row, UPDATE, Commit
	if got := collector.TotalRecorded() - before; got != 4 {
		t.Errorf("Update recorded %d entries, want 4", got)
	}

	names := map[string]int{}
	for _, op := range collector.Snapshot(since, 20).SlowestQueries {
		names[op.Name] = op.Count
	}
	for _, want := range []string{"Tx.QueryContext", "Tx.QueryRowContext", "Tx.ExecContext", "Commit"} {
		if names[want] == 0 {
			t.Errorf("no %s entries in snapshot %v", want, names)
		}
	}
	if names["Tx.ExecContext"] != 2 {
		t.Errorf("Tx.ExecContext count = %d, want 2", names["Tx.ExecContext"])
	}
}
