package neo4jstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"portfolio/internal/domain/record"
)

// Store keeps each collection as nodes under one label. The payload lives in
// a JSON string property so nested about/stats objects survive unchanged.
type Store struct {
	run   Runner
	now   func() time.Time
	newID func() string
}

var _ record.Store = (*Store)(nil)

// New returns a Store issuing statements through r.
func New(r Runner) *Store {
	return &Store{run: r, now: time.Now, newID: uuid.NewString}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

const returnProps = `RETURN n.id AS id, n.data AS data, n.created_at AS created_at, n.updated_at AS updated_at`

// EnsureSchema creates a uniqueness constraint on id for every label.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, c := range record.All {
		label := c.Label()
		cypher := fmt.Sprintf(`CREATE CONSTRAINT %s_id IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE`, strings.ToLower(label), label)
		if _, err := s.run.Run(ctx, cypher, nil); err != nil {
			return mapErr("schema", string(c), err)
		}
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func str(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func toRecord(rec *neo4j.Record) (record.Record, error) {
	f := record.Fields{}
	if raw := str(rec, "data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return record.Record{}, fmt.Errorf("decode data property: %w", err)
		}
	}
	created, _ := time.Parse(time.RFC3339Nano, str(rec, "created_at"))
	updated, _ := time.Parse(time.RFC3339Nano, str(rec, "updated_at"))
	return record.Record{ID: str(rec, "id"), Fields: f, CreatedAt: created, UpdatedAt: updated}, nil
}

func encode(f record.Fields) (string, error) {
	raw, err := json.Marshal(f.Clean())
	if err != nil {
		return "", fmt.Errorf("encode data property: %w", err)
	}
	return string(raw), nil
}

func notFound(c record.Collection, id string) error {
	return fmt.Errorf("%s/%s: %w", c, id, record.ErrNotFound)
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, c record.Collection, id string) (record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return record.Record{}, err
	}
	res, err := s.run.Run(ctx,
		fmt.Sprintf(`MATCH (n:%s {id: $id}) %s`, c.Label(), returnProps),
		map[string]any{"id": id})
	if err != nil {
		return record.Record{}, mapErr("get", string(c), err)
	}
	if len(res.Records) == 0 {
		return record.Record{}, notFound(c, id)
	}
	return toRecord(res.Records[0])
}

// List returns every node of the collection's label, newest first.
func (s *Store) List(ctx context.Context, c record.Collection) ([]record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return nil, err
	}
	res, err := s.run.Run(ctx, fmt.Sprintf(`MATCH (n:%s) %s`, c.Label(), returnProps), nil)
	if err != nil {
		return nil, mapErr("list", string(c), err)
	}
	recs := make([]record.Record, 0, len(res.Records))
	for _, row := range res.Records {
		r, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	record.SortNewestFirst(recs)
	return recs, nil
}

// Create stores f under a fresh UUID.
func (s *Store) Create(ctx context.Context, c record.Collection, f record.Fields) (string, error) {
	if err := record.CheckCollection(c); err != nil {
		return "", err
	}
	data, err := encode(f)
	if err != nil {
		return "", err
	}
	id := s.newID()
	now := stamp(s.now())
	_, err = s.run.Run(ctx,
		fmt.Sprintf(`CREATE (n:%s {id: $id, data: $data, created_at: $now, updated_at: $now}) %s`, c.Label(), returnProps),
		map[string]any{"id": id, "data": data, "now": now})
	if err != nil {
		return "", mapErr("create", string(c), err)
	}
	return id, nil
}

// Update merges partial into the stored fields. Read and write are separate
// statements; the last writer wins.
func (s *Store) Update(ctx context.Context, c record.Collection, id string, partial record.Fields) error {
	cur, err := s.Get(ctx, c, id)
	if err != nil {
		return err
	}
	data, err := encode(cur.Fields.Merge(partial))
	if err != nil {
		return err
	}
	res, err := s.run.Run(ctx,
		fmt.Sprintf(`MATCH (n:%s {id: $id}) SET n.data = $data, n.updated_at = $now %s`, c.Label(), returnProps),
		map[string]any{"id": id, "data": data, "now": stamp(s.now())})
	if err != nil {
		return mapErr("update", string(c), err)
	}
	if len(res.Records) == 0 {
		return notFound(c, id)
	}
	return nil
}

// Put replaces the node at id, creating it when absent.
func (s *Store) Put(ctx context.Context, c record.Collection, id string, f record.Fields) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	data, err := encode(f)
	if err != nil {
		return err
	}
	_, err = s.run.Run(ctx,
		fmt.Sprintf(`MERGE (n:%s {id: $id}) ON CREATE SET n.created_at = $now SET n.data = $data, n.updated_at = $now %s`, c.Label(), returnProps),
		map[string]any{"id": id, "data": data, "now": stamp(s.now())})
	if err != nil {
		return mapErr("put", string(c), err)
	}
	return nil
}

// Delete removes the node at id.
func (s *Store) Delete(ctx context.Context, c record.Collection, id string) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	res, err := s.run.Run(ctx,
		fmt.Sprintf(`MATCH (n:%s {id: $id}) WITH n, n.id AS id DETACH DELETE n RETURN id`, c.Label()),
		map[string]any{"id": id})
	if err != nil {
		return mapErr("delete", string(c), err)
	}
	if len(res.Records) == 0 {
		return notFound(c, id)
	}
	return nil
}

// mapErr classifies driver errors onto the record sentinels.
func mapErr(op, where string, err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w: %w", op, where, record.ErrUnavailable, err)
	}
	var ne *neo4j.Neo4jError
	if errors.As(err, &ne) && strings.HasPrefix(ne.Code, "Neo.ClientError.Security.") {
		return fmt.Errorf("%s %s: %w: %w", op, where, record.ErrPermission, err)
	}
	return fmt.Errorf("%s %s: %w", op, where, err)
}
