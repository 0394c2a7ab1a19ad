package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"portfolio/internal/domain/record"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := Migrate(context.Background(), Wrap(db), SQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := Migrate(ctx, Wrap(db), SQLite); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	v, err := SchemaVersion(ctx, Wrap(db))
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != LatestVersion() {
		t.Errorf("version = %d, want %d", v, LatestVersion())
	}
	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", rows, len(migrations))
	}
}

func TestStore_CreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(Wrap(openTestDB(t)), SQLite).WithClock(clock.now)

	for i := 1; i <= 3; i++ {
		id, err := s.Create(ctx, record.Skills, record.Fields{"name": fmt.Sprintf("skill-%d", i)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id != fmt.Sprint(i) {
			t.Errorf("id = %q, want %d", id, i)
		}
	}

	recs, err := s.List(ctx, record.Skills)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 || recs[0].ID != "3" {
		t.Fatalf("List order = %v, want newest (3) first", recs)
	}
}

func TestStore_UpdateMergesAndStamps(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(Wrap(openTestDB(t)), SQLite).WithClock(clock.now)

	id, _ := s.Create(ctx, record.Skills, record.Fields{"name": "Go", "proficiency": 80})
	if err := s.Update(ctx, record.Skills, id, record.Fields{"proficiency": 95}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(ctx, record.Skills, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Fields["name"] != "Go" || got.Fields["proficiency"] != float64(95) {
		t.Errorf("Fields = %v", got.Fields)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v should be after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	err = s.Update(ctx, record.Skills, "99", record.Fields{"name": "x"})
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
}

func TestStore_PutKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(Wrap(openTestDB(t)), SQLite).WithClock(clock.now)

	if err := s.Put(ctx, record.PersonalInfo, record.SingletonID, record.Fields{"name": "Ada"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, _ := s.Get(ctx, record.PersonalInfo, record.SingletonID)

	if err := s.Put(ctx, record.PersonalInfo, record.SingletonID, record.Fields{"name": "Ada L."}); err != nil {
		t.Fatalf("Put again: %v", err)
	}
	second, _ := s.Get(ctx, record.PersonalInfo, record.SingletonID)

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", first.CreatedAt, second.CreatedAt)
	}
	if second.Fields["name"] != "Ada L." {
		t.Errorf("name = %v", second.Fields["name"])
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New(Wrap(openTestDB(t)), SQLite)

	id, _ := s.Create(ctx, record.Projects, record.Fields{"title": "A"})
	if err := s.Delete(ctx, record.Projects, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, record.Projects, id); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, record.Projects, id); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestStore_InvalidCollection(t *testing.T) {
	s := New(Wrap(openTestDB(t)), SQLite)
	_, err := s.List(context.Background(), record.Collection("users; DROP TABLE projects"))
	if !errors.Is(err, record.ErrInvalidCollection) {
		t.Errorf("List = %v, want ErrInvalidCollection", err)
	}
}

func TestDialect_Rebind(t *testing.T) {
	q := `UPDATE t SET a = ?, b = ? WHERE id = ?`
	if got := SQLite.Rebind(q); got != q {
		t.Errorf("sqlite Rebind changed query: %q", got)
	}
	want := `UPDATE t SET a = $1, b = $2 WHERE id = $3`
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("postgres Rebind = %q, want %q", got, want)
	}
}

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"insufficient privilege", &pq.Error{Code: "42501", Message: "permission denied for table projects"}, record.ErrPermission},
		{"bad password", &pq.Error{Code: "28P01", Message: "password authentication failed"}, record.ErrPermission},
		{"connection failure", &pq.Error{Code: "08006"}, record.ErrUnavailable},
		{"bad conn", sql.ErrConnDone, record.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, record.ErrUnavailable},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}, ErrIDTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr("get", "projects", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("mapErr = %v, want %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("mapErr lost the driver error: %v", got)
			}
		})
	}
	if mapErr("get", "x", nil) != nil {
		t.Error("mapErr(nil) should be nil")
	}
}

// collidingDB fails the next `collisions` INSERTs with a unique violation, the
// way Postgres does when two transactions allocate the same id.
type collidingDB struct {
	DB
	collisions int
}

func (c *collidingDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := c.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return collidingTx{Tx: tx, db: c}, nil
}

type collidingTx struct {
	Tx
	db *collidingDB
}

func (t collidingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.HasPrefix(query, "INSERT") && t.db.collisions > 0 {
		t.db.collisions--
		return nil, &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	return t.Tx.ExecContext(ctx, query, args...)
}

func TestStore_CreateRetriesLostIDRace(t *testing.T) {
	ctx := context.Background()
	db := &collidingDB{DB: Wrap(openTestDB(t)), collisions: 1}
	s := New(db, SQLite)

	id, err := s.Create(ctx, record.Skills, record.Fields{"name": "Go"})
	if err != nil {
		t.Fatalf("Create after one collision: %v", err)
	}
	if id != "1" {
		t.Errorf("id = %q, want 1", id)
	}

	db.collisions = createAttempts
	_, err = s.Create(ctx, record.Skills, record.Fields{"name": "Rust"})
	if !errors.Is(err, ErrIDTaken) {
		t.Fatalf("Create after repeated collisions = %v, want ErrIDTaken", err)
	}
	recs, err := s.List(ctx, record.Skills)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1 (failed insert rolled back)", len(recs))
	}
}
