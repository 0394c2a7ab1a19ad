package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/domain/export"
	"portfolio/internal/domain/record"
)

// ParseContent reads seed content in the export document layout.
// Both YAML and JSON are accepted.
func ParseContent(data []byte) (export.Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return export.Document{}, fmt.Errorf("parse content: %w", err)
	}
	if raw == nil {
		return export.Document{}, errors.New("parse content: document is empty")
	}
	// yaml.v3 yields map[string]any for string-keyed mappings, so JSON can re-encode it.
	buf, err := json.Marshal(raw)
	if err != nil {
		return export.Document{}, fmt.Errorf("parse content: %w", err)
	}
	var doc export.Document
	if err := json.Unmarshal(buf, &doc); err != nil {
		return export.Document{}, fmt.Errorf("parse content: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// SeedContentDeps holds dependencies for SeedContent.
type SeedContentDeps struct {
	Store record.Store
}

// SeedContentResult counts what was written.
type SeedContentResult struct {
	Singletons int
	Created    int
	Skipped    []record.Collection
}

// ExecuteSeedContent writes doc into the store without clobbering existing content.
// PRE: doc came from ParseContent or ExecuteExport
// POST: singletons are written when absent (always when overwrite is set);
// list collections are filled only when empty, preserving doc's newest-first order
func ExecuteSeedContent(ctx context.Context, doc export.Document, overwrite bool, deps SeedContentDeps) (SeedContentResult, error) {
	var res SeedContentResult

	singletons := []struct {
		c record.Collection
		v any
	}{
		{record.PersonalInfo, doc.PersonalInfo},
		{record.AboutInfo, doc.AboutInfo},
	}
	for _, s := range singletons {
		wrote, err := seedSingleton(ctx, deps.Store, s.c, s.v, overwrite)
		if err != nil {
			return res, err
		}
		if wrote {
			res.Singletons++
		} else {
			res.Skipped = append(res.Skipped, s.c)
		}
	}

	lists := []struct {
		c     record.Collection
		items []any
	}{
		{record.Projects, toAny(doc.Projects)},
		{record.Skills, toAny(doc.Skills)},
		{record.Experience, toAny(doc.Experience)},
		{record.Messages, toAny(doc.Messages)},
	}
	for _, l := range lists {
		n, err := seedList(ctx, deps.Store, l.c, l.items)
		if err != nil {
			return res, err
		}
		if n == 0 && len(l.items) > 0 {
			res.Skipped = append(res.Skipped, l.c)
		}
		res.Created += n
	}

	slog.Info("seed_event", "event", "content_seeded", "singletons", res.Singletons, "created", res.Created, "skipped", len(res.Skipped))
	return res, nil
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

// seedSingleton reports whether v was written. A nil v is never written.
func seedSingleton(ctx context.Context, s record.Store, c record.Collection, v any, overwrite bool) (bool, error) {
	if isNull(v) {
		return false, nil
	}
	if !overwrite {
		_, err := s.Get(ctx, c, record.SingletonID)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, record.ErrNotFound) {
			return false, err
		}
	}
	f, err := storage.ToFields(v)
	if err != nil {
		return false, err
	}
	if err := s.Put(ctx, c, record.SingletonID, f); err != nil {
		return false, err
	}
	return true, nil
}

// isNull reports whether v encodes as JSON null, which covers nil and typed nil pointers.
func isNull(v any) bool {
	b, err := json.Marshal(v)
	return err == nil && string(b) == "null"
}

// seedList creates items oldest first so the stored order matches items.
func seedList(ctx context.Context, s record.Store, c record.Collection, items []any) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	existing, err := s.List(ctx, c)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		slog.Info("seed_event", "event", "collection_not_empty", "collection", c, "records", len(existing))
		return 0, nil
	}
	created := 0
	for i := len(items) - 1; i >= 0; i-- {
		f, err := storage.ToFields(items[i])
		if err != nil {
			return created, err
		}
		if _, err := s.Create(ctx, c, f); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
