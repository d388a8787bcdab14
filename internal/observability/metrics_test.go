package observability

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"atsresume/internal/config"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func counterTotal(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTrackGeneration(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.TrackGeneration(ctx, "polish", 1200*time.Millisecond,
		&TokenUsage{InputTokens: 100, OutputTokens: 40, TotalTokens: 140}, nil)
	metrics.TrackGeneration(ctx, "analysis", time.Second, nil, fmt.Errorf("boom"))

	data := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, data["atsresume_generation_requests_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsresume_generation_errors_total"]))

	tokens, ok := data["atsresume_generation_tokens"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3)

	duration, ok := data["atsresume_generation_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, duration.DataPoints, 2)
}

func TestBusinessMetrics(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordScored(ctx, 72, "upload")
	metrics.RecordScored(ctx, 40, "text")
	metrics.RecordEnhanced(ctx, "pdf", false)
	metrics.RecordConverted(ctx, true)
	metrics.RecordCoverLetter(ctx, "template")
	metrics.RecordCertReload(ctx, true)

	data := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, data["atsresume_resumes_scored_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsresume_resumes_enhanced_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsresume_documents_converted_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsresume_cover_letters_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsresume_cert_reloads_total"]))

	scores, ok := data["atsresume_ats_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	for _, dp := range scores.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.TrackGeneration(ctx, "polish", time.Second, &TokenUsage{TotalTokens: 1}, nil)
		metrics.RecordScored(ctx, 50, "upload")
		metrics.RecordEnhanced(ctx, "json", true)
		metrics.RecordConverted(ctx, false)
		metrics.RecordCoverLetter(ctx, "generator")
		metrics.RecordCertReload(ctx, false)
	})
}

func TestDisabledManager(t *testing.T) {
	manager, err := NewManager(Config{Enabled: false, ServiceName: "atsresume"}, nil)
	require.NoError(t, err)

	assert.Nil(t, manager.Metrics())
	assert.NotNil(t, manager.Tracer("test"))
	assert.NoError(t, manager.Shutdown(context.Background()))

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	manager.HTTPMiddleware()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "atsresume"
	cfg.Observability.SampleRate = 0.5
	cfg.Observability.Prometheus = config.PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "9090"}

	obs := FromConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, 0.5, obs.SampleRate)
	assert.Equal(t, "9090", obs.Prometheus.Port)

	cfg.Observability.ServiceVersion = "custom"
	assert.Equal(t, "custom", FromConfig(cfg, "1.2.3").ServiceVersion)

	assert.False(t, FromConfig(nil, "dev").Enabled)
}
