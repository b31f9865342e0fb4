package observability

import (
	"context"
	"time"

	"gatekeeper/internal/counter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedStore wraps a counter.Store implementation with OpenTelemetry
// tracing and metrics instrumentation. Store errors are counted but still
// returned unchanged so the limiter's fail-open behavior is unaffected.
type InstrumentedStore struct {
	inner    counter.Store
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedStore creates a counter store wrapper that records trace
// spans, operation latency histograms, and error counters for every call.
func NewInstrumentedStore(inner counter.Store) (*InstrumentedStore, error) {
	tracer := otel.Tracer("gatekeeper/counter")
	meter := otel.Meter("gatekeeper/counter")

	duration, err := meter.Float64Histogram(
		"counter.operation.duration",
		metric.WithDescription("Duration of counter store operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"counter.operation.errors",
		metric.WithDescription("Number of counter store operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStore{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedStore) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	s.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		s.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func (s *InstrumentedStore) Increment(ctx context.Context, key string, window time.Duration) (counter.Sample, error) {
	ctx, span := s.tracer.Start(ctx, "counter.Increment",
		trace.WithAttributes(
			attribute.String("counter.key", key),
			attribute.String("counter.window", window.String()),
		),
	)
	start := time.Now()
	sample, err := s.inner.Increment(ctx, key, window)
	s.record(ctx, span, "Increment", start, err)
	return sample, err
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}
