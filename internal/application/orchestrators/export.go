package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/domain/about"
	"portfolio/internal/domain/experience"
	"portfolio/internal/domain/export"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/profile"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/record"
	"portfolio/internal/domain/skill"
)

// ExportDeps holds dependencies for Export.
type ExportDeps struct {
	Store record.Store
}

// getSingleton loads the well-known singleton record, returning nil when absent.
func getSingleton[T any](ctx context.Context, s record.Store, c record.Collection) (*T, error) {
	v, err := storage.NewRepository[T](s, c).Get(ctx, record.SingletonID)
	if errors.Is(err, record.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ExecuteExport reads every exported collection into one document.
// Collections load concurrently; the first failure aborts the export.
// POST: list fields are non-nil; absent singletons are nil
func ExecuteExport(ctx context.Context, deps ExportDeps) (export.Document, error) {
	var doc export.Document
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		doc.PersonalInfo, err = getSingleton[profile.PersonalInfo](gctx, deps.Store, record.PersonalInfo)
		return err
	})
	g.Go(func() (err error) {
		doc.AboutInfo, err = getSingleton[about.AboutInfo](gctx, deps.Store, record.AboutInfo)
		return err
	})
	g.Go(func() (err error) {
		doc.Projects, err = storage.NewRepository[project.Project](deps.Store, record.Projects).List(gctx)
		return err
	})
	g.Go(func() (err error) {
		doc.Skills, err = storage.NewRepository[skill.Skill](deps.Store, record.Skills).List(gctx)
		return err
	})
	g.Go(func() (err error) {
		doc.Experience, err = storage.NewRepository[experience.Experience](deps.Store, record.Experience).List(gctx)
		return err
	})
	g.Go(func() (err error) {
		doc.Messages, err = storage.NewRepository[message.Message](deps.Store, record.Messages).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return export.Document{}, err
	}

	doc.Normalize()
	slog.Info("export_event", "event", "exported", "records", doc.RecordCount())
	return doc, nil
}
