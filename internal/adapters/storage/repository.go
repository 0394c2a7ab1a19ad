package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portfolio/internal/domain/record"
)

// Repository gives typed access to one collection. T is an entity struct whose
// JSON tags name the stored fields; its id, created_at and updated_at tags are
// filled from the Record envelope on read and stripped on write.
type Repository[T any] struct {
	store      record.Store
	collection record.Collection
}

// NewRepository binds a store to collection c.
func NewRepository[T any](s record.Store, c record.Collection) *Repository[T] {
	return &Repository[T]{store: s, collection: c}
}

// Collection returns the bound collection.
func (r *Repository[T]) Collection() record.Collection {
	return r.collection
}

// ToFields converts an entity to stored fields via its JSON encoding.
// POST: reserved keys are absent
func ToFields(v any) (record.Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	f := record.Fields{}
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return f.Clean(), nil
}

// FromRecord decodes a Record into T, filling the envelope keys.
func FromRecord[T any](rec record.Record) (T, error) {
	var out T
	f := make(record.Fields, len(rec.Fields)+3)
	for k, v := range rec.Fields {
		f[k] = v
	}
	f[record.KeyID] = rec.ID
	if !rec.CreatedAt.IsZero() {
		f[record.KeyCreatedAt] = rec.CreatedAt.Format(time.RFC3339Nano)
	}
	if !rec.UpdatedAt.IsZero() {
		f[record.KeyUpdatedAt] = rec.UpdatedAt.Format(time.RFC3339Nano)
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", rec.ID, err)
	}
	return out, nil
}

// Get loads one entity.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return FromRecord[T](rec)
}

// List loads every entity, newest first.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	recs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := FromRecord[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Create stores v and returns its new id.
func (r *Repository[T]) Create(ctx context.Context, v T) (string, error) {
	f, err := ToFields(v)
	if err != nil {
		return "", err
	}
	return r.store.Create(ctx, r.collection, f)
}

// Update overwrites every field of the stored entity with v's values.
func (r *Repository[T]) Update(ctx context.Context, id string, v T) error {
	f, err := ToFields(v)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, r.collection, id, f)
}

// Patch changes only the given fields.
func (r *Repository[T]) Patch(ctx context.Context, id string, partial record.Fields) error {
	return r.store.Update(ctx, r.collection, id, partial)
}

// Put replaces the entity at id wholesale.
func (r *Repository[T]) Put(ctx context.Context, id string, v T) error {
	f, err := ToFields(v)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, r.collection, id, f)
}

// Delete removes the entity at id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}
