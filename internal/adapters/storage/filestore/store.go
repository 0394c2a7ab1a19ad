package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"portfolio/internal/domain/record"
)

// FilePrefix is prepended to the collection name to form each file name.
const FilePrefix = "portfolio_"

// Store keeps each collection as a JSON array of flat objects in its own file.
// A single mutex serialises access; the process is assumed to be the only writer.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

var _ record.Store = (*Store)(nil)

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", mapErr(err))
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path returns the file backing collection c.
func (s *Store) Path(c record.Collection) string {
	return filepath.Join(s.dir, FilePrefix+string(c)+".json")
}

// load reads a collection. Missing and malformed files both read as empty.
func (s *Store) load(c record.Collection) ([]record.Fields, error) {
	raw, err := os.ReadFile(s.Path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err)
	}
	var items []record.Fields
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("store_event", "event", "malformed_collection_file", "collection", c, "path", s.Path(c), "error", err)
		return nil, nil
	}
	return items, nil
}

// save writes items atomically via a temp file and rename.
func (s *Store) save(c record.Collection, items []record.Fields) error {
	if items == nil {
		items = []record.Fields{}
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, FilePrefix+string(c)+".*.tmp")
	if err != nil {
		return mapErr(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return mapErr(err)
	}
	if err := tmp.Close(); err != nil {
		return mapErr(err)
	}
	return mapErr(os.Rename(tmp.Name(), s.Path(c)))
}

func idOf(f record.Fields) string {
	switch v := f[record.KeyID].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprint(int64(v))
	}
	return ""
}

func stampOf(f record.Fields, key string) time.Time {
	v, _ := f[key].(string)
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func toRecord(f record.Fields) record.Record {
	return record.Record{
		ID:        idOf(f),
		Fields:    f.Clean(),
		CreatedAt: stampOf(f, record.KeyCreatedAt),
		UpdatedAt: stampOf(f, record.KeyUpdatedAt),
	}
}

func flatten(id string, f record.Fields, created, updated time.Time) record.Fields {
	out := f.Clean()
	out[record.KeyID] = id
	out[record.KeyCreatedAt] = created.UTC().Format(time.RFC3339Nano)
	out[record.KeyUpdatedAt] = updated.UTC().Format(time.RFC3339Nano)
	return out
}

func indexOf(items []record.Fields, id string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}

func notFound(c record.Collection, id string) error {
	return fmt.Errorf("%s/%s: %w", c, id, record.ErrNotFound)
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, c record.Collection, id string) (record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return record.Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(c)
	if err != nil {
		return record.Record{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return record.Record{}, notFound(c, id)
	}
	return toRecord(items[i]), nil
}

// List returns every record of c, newest first.
func (s *Store) List(ctx context.Context, c record.Collection) ([]record.Record, error) {
	if err := record.CheckCollection(c); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	items, err := s.load(c)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	recs := make([]record.Record, 0, len(items))
	for _, it := range items {
		recs = append(recs, toRecord(it))
	}
	record.SortNewestFirst(recs)
	return recs, nil
}

// Create appends f under id max+1.
func (s *Store) Create(ctx context.Context, c record.Collection, f record.Fields) (string, error) {
	if err := record.CheckCollection(c); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(c)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, idOf(it))
	}
	id := record.NextID(ids)
	now := s.now()
	items = append(items, flatten(id, f, now, now))
	if err := s.save(c, items); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges partial into the stored fields.
func (s *Store) Update(ctx context.Context, c record.Collection, id string, partial record.Fields) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(c)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return notFound(c, id)
	}
	cur := toRecord(items[i])
	items[i] = flatten(id, cur.Fields.Merge(partial), cur.CreatedAt, s.now())
	return s.save(c, items)
}

// Put replaces the record at id, creating it when absent.
func (s *Store) Put(ctx context.Context, c record.Collection, id string, f record.Fields) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(c)
	if err != nil {
		return err
	}
	now := s.now()
	if i := indexOf(items, id); i >= 0 {
		items[i] = flatten(id, f, toRecord(items[i]).CreatedAt, now)
	} else {
		items = append(items, flatten(id, f, now, now))
	}
	return s.save(c, items)
}

// Delete removes the record at id.
func (s *Store) Delete(ctx context.Context, c record.Collection, id string) error {
	if err := record.CheckCollection(c); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(c)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return notFound(c, id)
	}
	items = append(items[:i], items[i+1:]...)
	return s.save(c, items)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", record.ErrPermission, err)
	}
	return fmt.Errorf("%w: %w", record.ErrUnavailable, err)
}
