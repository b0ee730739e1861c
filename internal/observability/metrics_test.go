package observability

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"resumescreen/internal/ai"
	"resumescreen/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func allMetricsOn() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		AIOperations:    config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true, TrackFallbacks: true},
		BusinessMetrics: config.BusinessMetricsConfig{Enabled: true, TrackSuccessRates: true, TrackMatchScores: true},
		Infrastructure:  config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true},
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			found[m.Name] = m.Data
		}
	}
	return found
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestMetrics(t *testing.T, settings config.CustomMetricsConfig) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := newMetrics(provider.Meter("test"), settings)
	require.NoError(t, err)
	return m, reader
}

func TestRecordAICall(t *testing.T) {
	m, reader := newTestMetrics(t, allMetricsOn())
	ctx := context.Background()

	usage := &ai.TokenUsage{InputTokens: 100, OutputTokens: 40, TotalTokens: 140}
	m.RecordAICall(ctx, config.OperationAnalyze, "openrouter", time.Second, usage, nil)
	m.RecordAICall(ctx, config.OperationAnalyze, "openrouter", time.Second, nil, stdErrors.New("boom"))

	found := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, found["resumescreen_ai_requests_total"]))
	assert.Equal(t, int64(1), sumOf(t, found["resumescreen_ai_errors_total"]))

	tokens, ok := found["resumescreen_ai_token_usage_total"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3, "Expected one series per token type")
}

func TestScreeningMetrics(t *testing.T) {
	m, reader := newTestMetrics(t, allMetricsOn())
	ctx := context.Background()

	m.RecordAnalysis(ctx, "ai", false, 20*time.Millisecond)
	m.RecordFallback(ctx, "ai_rate_limited")
	m.RecordMatchScore(ctx, 82)
	m.RecordBatchItem(ctx, "completed", time.Millisecond)
	m.RecordBatchItem(ctx, "failed", time.Millisecond)
	m.RecordRateLimitHit(ctx, "/analyze")

	found := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, found["resumescreen_resumes_analyzed_total"]))
	assert.Equal(t, int64(1), sumOf(t, found["resumescreen_ai_fallbacks_total"]))
	assert.Equal(t, int64(2), sumOf(t, found["resumescreen_batch_items_total"]))
	assert.Equal(t, int64(1), sumOf(t, found["resumescreen_rate_limit_hits_total"]))

	scores, ok := found["resumescreen_match_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, scores.DataPoints, 1)
	assert.Equal(t, int64(82), scores.DataPoints[0].Sum)
}

func TestDisabledMetricsRecordNothing(t *testing.T) {
	m, reader := newTestMetrics(t, config.CustomMetricsConfig{})
	ctx := context.Background()

	m.RecordAICall(ctx, config.OperationAnalyze, "gemini", time.Second, nil, nil)
	m.RecordFallback(ctx, "unknown")
	m.RecordMatchScore(ctx, 50)

	found := collect(t, reader)
	assert.Empty(t, found)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordAICall(ctx, "analyze", "gemini", time.Second, nil, nil)
		m.RecordAnalysis(ctx, "rule", false, time.Second)
		m.RecordFallback(ctx, "unknown")
		m.RecordMatchScore(ctx, 10)
		m.RecordBatchItem(ctx, "completed", time.Second)
		m.RecordRateLimitHit(ctx, "/score")
	})

	disabled, err := NewTelemetry(Settings{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NotNil(t, disabled.Metrics())
	assert.NotPanics(t, func() {
		_, span := disabled.Tracer("test").Start(ctx, "noop")
		span.End()
	})
	assert.NoError(t, disabled.Shutdown(ctx))
}

func TestSettingsFrom(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "resumescreen"
	cfg.Observability.SampleRate = 0.5
	cfg.Observability.Tracing.SampleRate = 0.25
	cfg.Observability.Console.Enabled = true
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.CustomMetrics = allMetricsOn()

	s := SettingsFrom(cfg, "1.2.3")
	if s.ServiceVersion != "1.2.3" {
		t.Errorf("Expected app version fallback, got '%s'", s.ServiceVersion)
	}
	if s.SampleRate != 0.25 {
		t.Errorf("Expected tracing sample rate 0.25, got %v", s.SampleRate)
	}
	assert.True(t, s.Console)
	assert.Equal(t, defaultCollectInterval, s.CollectInterval)
	assert.True(t, s.Instruments.AIOperations.Enabled)

	cfg.Observability.Metrics.Enabled = false
	s = SettingsFrom(cfg, "1.2.3")
	assert.False(t, s.Instruments.AIOperations.Enabled, "Expected instruments off when metrics are disabled")

	s = SettingsFrom(nil, "dev")
	assert.False(t, s.Enabled)
	assert.Equal(t, "resumescreen", s.ServiceName)
}
