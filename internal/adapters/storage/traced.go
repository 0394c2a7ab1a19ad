package storage

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/domain/record"
)

// TracerName is the instrumentation scope for store spans.
const TracerName = "portfolio/storage"

// DefaultSlowOp is used when NewTraced gets a non-positive threshold.
const DefaultSlowOp = 100 * time.Millisecond

// Traced decorates a record.Store with one span per call, slow-op logging and
// perf samples. It changes no results.
type Traced struct {
	next      record.Store
	backend   string
	tracer    trace.Tracer
	slow      time.Duration
	collector *perf.Collector
}

var _ record.Store = (*Traced)(nil)

// NewTraced wraps next. collector may be nil.
func NewTraced(next record.Store, backend string, slow time.Duration, collector *perf.Collector) *Traced {
	if slow <= 0 {
		slow = DefaultSlowOp
	}
	return &Traced{
		next:      next,
		backend:   backend,
		tracer:    otel.Tracer(TracerName),
		slow:      slow,
		collector: collector,
	}
}

// WithTracerProvider swaps the provider used for spans. Intended for tests.
func (t *Traced) WithTracerProvider(tp trace.TracerProvider) *Traced {
	t.tracer = tp.Tracer(TracerName)
	return t
}

// Unwrap returns the decorated store.
func (t *Traced) Unwrap() record.Store {
	return t.next
}

func (t *Traced) start(ctx context.Context, op string, c record.Collection, id string) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", t.backend),
		attribute.String("db.collection.name", string(c)),
		attribute.String("db.operation.name", op),
	}
	if id != "" {
		attrs = append(attrs, attribute.String("record.id", id))
	}
	ctx, span := t.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	began := time.Now()

	return ctx, func(err error) {
		d := time.Since(began)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		durationMs := float64(d.Microseconds()) / 1000.0
		if d >= t.slow {
			slog.Warn("slow_store_op", "backend", t.backend, "op", op, "collection", c, "id", id, "duration_ms", durationMs)
		} else {
			slog.Debug("store_op", "backend", t.backend, "op", op, "collection", c, "id", id, "duration_ms", durationMs)
		}
		t.collector.Record(perf.Entry{
			Kind:     perf.KindStoreOp,
			Name:     string(c) + "." + op,
			Failed:   err != nil,
			Duration: d,
			At:       began,
		})
	}
}

func (t *Traced) Get(ctx context.Context, c record.Collection, id string) (record.Record, error) {
	ctx, done := t.start(ctx, "get", c, id)
	r, err := t.next.Get(ctx, c, id)
	done(err)
	return r, err
}

func (t *Traced) List(ctx context.Context, c record.Collection) ([]record.Record, error) {
	ctx, done := t.start(ctx, "list", c, "")
	recs, err := t.next.List(ctx, c)
	done(err)
	return recs, err
}

func (t *Traced) Create(ctx context.Context, c record.Collection, f record.Fields) (string, error) {
	ctx, done := t.start(ctx, "create", c, "")
	id, err := t.next.Create(ctx, c, f)
	done(err)
	return id, err
}

func (t *Traced) Update(ctx context.Context, c record.Collection, id string, partial record.Fields) error {
	ctx, done := t.start(ctx, "update", c, id)
	err := t.next.Update(ctx, c, id, partial)
	done(err)
	return err
}

func (t *Traced) Put(ctx context.Context, c record.Collection, id string, f record.Fields) error {
	ctx, done := t.start(ctx, "put", c, id)
	err := t.next.Put(ctx, c, id, f)
	done(err)
	return err
}

func (t *Traced) Delete(ctx context.Context, c record.Collection, id string) error {
	ctx, done := t.start(ctx, "delete", c, id)
	err := t.next.Delete(ctx, c, id)
	done(err)
	return err
}
