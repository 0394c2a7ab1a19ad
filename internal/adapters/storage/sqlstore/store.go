package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio/internal/domain/record"
)

// DB is the database surface this package needs. Wrap(*sql.DB) and the timing
// wrapper in the parent storage package both satisfy it.
type DB interface {
	querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// Tx is an open transaction. *sql.Tx satisfies it.
type Tx interface {
	querier
	Commit() error
	Rollback() error
}

// querier is satisfied by DB and Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// plainDB adapts *sql.DB to DB without instrumentation.
type plainDB struct {
	*sql.DB
}

// Wrap adapts a *sql.DB for New and Migrate.
func Wrap(db *sql.DB) DB {
	return plainDB{DB: db}
}

func (p plainDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := p.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Store keeps each collection in its own table with the payload as a JSON column.
type Store struct {
	db      DB
	dialect Dialect
	now     func() time.Time
}

var _ record.Store = (*Store)(nil)

// New returns a Store. Call Migrate first.
func New(db DB, d Dialect) *Store {
	return &Store{db: db, dialect: d, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decode(raw string) (record.Fields, error) {
	f := record.Fields{}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("decode data column: %w", err)
	}
	return f, nil
}

func encode(f record.Fields) (string, error) {
	raw, err := json.Marshal(f.Clean())
	if err != nil {
		return "", fmt.Errorf("encode data column: %w", err)
	}
	return string(raw), nil
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, c record.Collection, id string) (record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return record.Record{}, err
	}
	return s.get(ctx, s.db, c, id)
}

func (s *Store) get(ctx context.Context, q querier, c record.Collection, id string) (record.Record, error) {
	var raw, created, updated string
	err := q.QueryRowContext(ctx,
		s.q(fmt.Sprintf(`SELECT data, created_at, updated_at FROM %s WHERE id = ?`, c)), id,
	).Scan(&raw, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, fmt.Errorf("%s/%s: %w", c, id, record.ErrNotFound)
	}
	if err != nil {
		return record.Record{}, mapErr("get", string(c), err)
	}
	f, err := decode(raw)
	if err != nil {
		return record.Record{}, err
	}
	return record.Record{ID: id, Fields: f, CreatedAt: parseStamp(created), UpdatedAt: parseStamp(updated)}, nil
}

// List returns every record of c, newest first.
func (s *Store) List(ctx context.Context, c record.Collection) ([]record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %s`, c))
	if err != nil {
		return nil, mapErr("list", string(c), err)
	}
	defer rows.Close()

	recs := []record.Record{}
	for rows.Next() {
		var id, raw, created, updated string
		if err := rows.Scan(&id, &raw, &created, &updated); err != nil {
			return nil, mapErr("list", string(c), err)
		}
		f, err := decode(raw)
		if err != nil {
			return nil, err
		}
		recs = append(recs, record.Record{ID: id, Fields: f, CreatedAt: parseStamp(created), UpdatedAt: parseStamp(updated)})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list", string(c), err)
	}
	record.SortNewestFirst(recs)
	return recs, nil
}

// createAttempts bounds how often Create re-reads the ids after losing an
// allocation race.
const createAttempts = 2

// Create inserts f under the next free integer id.
// POST: created_at == updated_at == now
func (s *Store) Create(ctx context.Context, c record.Collection, f record.Fields) (string, error) {
	if err := record.CheckCollection(c); err != nil {
		return "", err
	}
	data, err := encode(f)
	if err != nil {
		return "", err
	}

	for attempt := 1; ; attempt++ {
		id, err := s.createOnce(ctx, c, data)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrIDTaken) || attempt == createAttempts {
			return "", err
		}
		slog.Warn("store_event", "event", "create_id_retry", "collection", string(c), "id", id)
	}
}

func (s *Store) createOnce(ctx context.Context, c record.Collection, data string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", mapErr("create", string(c), err)
	}
	defer tx.Rollback()

	ids, err := s.ids(ctx, tx, c)
	if err != nil {
		return "", err
	}
	id := record.NextID(ids)
	now := stamp(s.now())
	if _, err := tx.ExecContext(ctx,
		s.q(fmt.Sprintf(`INSERT INTO %s (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`, c)),
		id, data, now, now,
	); err != nil {
		return id, mapErr("create", string(c), err)
	}
	if err := tx.Commit(); err != nil {
		return id, mapErr("create", string(c), err)
	}
	return id, nil
}

func (s *Store) ids(ctx context.Context, q querier, c record.Collection) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s`, c))
	if err != nil {
		return nil, mapErr("create", string(c), err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr("create", string(c), err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update merges partial into the stored fields.
func (s *Store) Update(ctx context.Context, c record.Collection, id string, partial record.Fields) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("update", string(c), err)
	}
	defer tx.Rollback()

	cur, err := s.get(ctx, tx, c, id)
	if err != nil {
		return err
	}
	data, err := encode(cur.Fields.Merge(partial))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		s.q(fmt.Sprintf(`UPDATE %s SET data = ?, updated_at = ? WHERE id = ?`, c)),
		data, stamp(s.now()), id,
	); err != nil {
		return mapErr("update", string(c), err)
	}
	return mapErr("update", string(c), tx.Commit())
}

// Put replaces the record at id, creating it when absent.
// POST: an existing record keeps its created_at
func (s *Store) Put(ctx context.Context, c record.Collection, id string, f record.Fields) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	data, err := encode(f)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("put", string(c), err)
	}
	defer tx.Rollback()

	now := stamp(s.now())
	res, err := tx.ExecContext(ctx,
		s.q(fmt.Sprintf(`UPDATE %s SET data = ?, updated_at = ? WHERE id = ?`, c)),
		data, now, id,
	)
	if err != nil {
		return mapErr("put", string(c), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx,
			s.q(fmt.Sprintf(`INSERT INTO %s (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`, c)),
			id, data, now, now,
		); err != nil {
			return mapErr("put", string(c), err)
		}
	}
	return mapErr("put", string(c), tx.Commit())
}

// Delete removes the record at id.
func (s *Store) Delete(ctx context.Context, c record.Collection, id string) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c)), id)
	if err != nil {
		return mapErr("delete", string(c), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, record.ErrNotFound)
	}
	return nil
}
