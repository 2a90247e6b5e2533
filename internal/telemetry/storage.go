package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/types"
)

const storageScopeName = "github.com/mtodo/mtodo/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in mtodo.storage.* metrics.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner     storage.Storage
	tracer    trace.Tracer
	ops       metric.Int64Counter
	dur       metric.Float64Histogram
	errs      metric.Int64Counter
	todoGauge metric.Int64Gauge
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("mtodo.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("mtodo.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("mtodo.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	todoGauge, _ := m.Int64Gauge("mtodo.todo.count",
		metric.WithDescription("Rows returned by the last count, by filter"),
	)
	return &InstrumentedStorage{
		inner:     s,
		tracer:    Tracer(storageScopeName),
		ops:       ops,
		dur:       dur,
		errs:      errs,
		todoGauge: todoGauge,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func idAttr(id int64) attribute.KeyValue {
	return attribute.Int64("mtodo.todo.id", id)
}

func (s *InstrumentedStorage) CreateTodo(ctx context.Context, t *types.Todo) error {
	attrs := []attribute.KeyValue{attribute.Bool("mtodo.todo.important", t.IsImportant)}
	ctx, span, start := s.op(ctx, "CreateTodo", attrs...)
	err := s.inner.CreateTodo(ctx, t)
	if err == nil {
		span.SetAttributes(idAttr(t.ID))
	}
	s.done(ctx, span, start, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetTodo(ctx context.Context, id int64) (*types.Todo, error) {
	ctx, span, start := s.op(ctx, "GetTodo", idAttr(id))
	v, err := s.inner.GetTodo(ctx, id)
	s.done(ctx, span, start, err)
	return v, err
}

func (s *InstrumentedStorage) UpdateTodo(ctx context.Context, id int64, d types.Draft) error {
	ctx, span, start := s.op(ctx, "UpdateTodo", idAttr(id))
	err := s.inner.UpdateTodo(ctx, id, d)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) SetDone(ctx context.Context, id int64, done bool) error {
	ctx, span, start := s.op(ctx, "SetDone", idAttr(id), attribute.Bool("mtodo.todo.done", done))
	err := s.inner.SetDone(ctx, id, done)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) SetImportant(ctx context.Context, id int64, important bool) error {
	ctx, span, start := s.op(ctx, "SetImportant", idAttr(id), attribute.Bool("mtodo.todo.important", important))
	err := s.inner.SetImportant(ctx, id, important)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) DeleteTodo(ctx context.Context, id int64) error {
	ctx, span, start := s.op(ctx, "DeleteTodo", idAttr(id))
	err := s.inner.DeleteTodo(ctx, id)
	s.done(ctx, span, start, err)
	return err
}

func (s *InstrumentedStorage) ListTodos(ctx context.Context, filter types.Filter) ([]*types.Todo, error) {
	attrs := []attribute.KeyValue{attribute.String("mtodo.filter", filter.String())}
	ctx, span, start := s.op(ctx, "ListTodos", attrs...)
	v, err := s.inner.ListTodos(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("mtodo.result.count", len(v)))
	}
	s.done(ctx, span, start, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) CountTodos(ctx context.Context, filter types.Filter) (int, error) {
	attrs := []attribute.KeyValue{attribute.String("mtodo.filter", filter.String())}
	ctx, span, start := s.op(ctx, "CountTodos", attrs...)
	n, err := s.inner.CountTodos(ctx, filter)
	if err == nil {
		s.todoGauge.Record(ctx, int64(n), metric.WithAttributes(attrs...))
	}
	s.done(ctx, span, start, err, attrs...)
	return n, err
}

func (s *InstrumentedStorage) Path() string {
	return s.inner.Path()
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}

// Unwrap returns the underlying store.
func (s *InstrumentedStorage) Unwrap() storage.Storage {
	return s.inner
}
