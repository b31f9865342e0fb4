package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gatekeeper/internal/counter"

	promclient "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// setupMeterRegistry points the global meter provider at a private Prometheus
// registry so each test can inspect exactly what it exported.
func setupMeterRegistry(t *testing.T) *promclient.Registry {
	t.Helper()

	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { mp.Shutdown(context.Background()) })

	return registry
}

func newMemoryInner(t *testing.T) counter.Store {
	t.Helper()
	store := counter.NewMemoryStore(5 * time.Minute)
	t.Cleanup(func() { store.Close() })
	return store
}

type errorStore struct {
	err error
}

func (s *errorStore) Increment(ctx context.Context, key string, window time.Duration) (counter.Sample, error) {
	return counter.Sample{}, s.err
}

func (s *errorStore) Close() error { return nil }

func TestNewInstrumentedStore(t *testing.T) {
	setupMeterRegistry(t)

	instrumented, err := NewInstrumentedStore(newMemoryInner(t))
	require.NoError(t, err)
	assert.NotNil(t, instrumented)
}

func TestInstrumentedStore_IncrementPassesThrough(t *testing.T) {
	setupMeterRegistry(t)

	instrumented, err := NewInstrumentedStore(newMemoryInner(t))
	require.NoError(t, err)

	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		sample, err := instrumented.Increment(ctx, "ratelimit:public:1h0m0s:203.0.113.5", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, sample.Count)
	}
}

func TestInstrumentedStore_ErrorPassesThrough(t *testing.T) {
	setupMeterRegistry(t)

	innerErr := errors.New("connection refused")
	instrumented, err := NewInstrumentedStore(&errorStore{err: innerErr})
	require.NoError(t, err)

	_, err = instrumented.Increment(context.Background(), "key", time.Minute)
	assert.ErrorIs(t, err, innerErr, "store errors must reach the limiter untouched")
}

func TestInstrumentedStore_ExportsMetrics(t *testing.T) {
	registry := setupMeterRegistry(t)

	instrumented, err := NewInstrumentedStore(newMemoryInner(t))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = instrumented.Increment(ctx, "key", time.Minute)
	require.NoError(t, err)

	failing, err := NewInstrumentedStore(&errorStore{err: errors.New("down")})
	require.NoError(t, err)
	_, _ = failing.Increment(ctx, "key", time.Minute)

	families, err := registry.Gather()
	require.NoError(t, err)

	var duration, errCount *dto.MetricFamily
	for _, fam := range families {
		switch {
		case strings.HasPrefix(fam.GetName(), "counter_operation_duration"):
			duration = fam
		case strings.HasPrefix(fam.GetName(), "counter_operation_errors"):
			errCount = fam
		}
	}

	require.NotNil(t, duration, "duration histogram not exported")
	require.NotNil(t, errCount, "error counter not exported")
	assert.Equal(t, dto.MetricType_HISTOGRAM, duration.GetType())
}

func TestInstrumentedStore_Close(t *testing.T) {
	setupMeterRegistry(t)

	instrumented, err := NewInstrumentedStore(newMemoryInner(t))
	require.NoError(t, err)
	assert.NoError(t, instrumented.Close())
}

func TestInstrumentedStore_ImplementsInterface(t *testing.T) {
	setupMeterRegistry(t)

	instrumented, err := NewInstrumentedStore(newMemoryInner(t))
	require.NoError(t, err)

	var _ counter.Store = instrumented
}
