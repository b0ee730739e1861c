package observability

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/ai"
	"resumescreen/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom metrics for the screening service. A zero or nil
// Metrics records nothing.
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram
	AIFallbacks      metric.Int64Counter

	// Screening metrics
	ResumesAnalyzed  metric.Int64Counter
	AnalysisDuration metric.Float64Histogram
	MatchScores      metric.Int64Histogram
	BatchItems       metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter

	settings config.CustomMetricsConfig
}

// newMetrics creates every instrument on meter
func newMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	if err := m.createAIMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createScreeningMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createRateLimitMetrics(meter); err != nil {
		return nil, err
	}
	return m, nil
}

// createAIMetrics creates AI-related metrics
func (m *Metrics) createAIMetrics(meter metric.Meter) error {
	var err error

	m.AIProcessingTime, err = meter.Float64Histogram(
		"resumescreen_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AIRequestCount, err = meter.Int64Counter(
		"resumescreen_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.AIErrorCount, err = meter.Int64Counter(
		"resumescreen_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"resumescreen_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	m.AIFallbacks, err = meter.Int64Counter(
		"resumescreen_ai_fallbacks_total",
		metric.WithDescription("Analyses that fell back from AI to rule-based screening"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI fallback metric: %w", err)
	}

	return nil
}

// createScreeningMetrics creates screening throughput and outcome metrics
func (m *Metrics) createScreeningMetrics(meter metric.Meter) error {
	var err error

	m.ResumesAnalyzed, err = meter.Int64Counter(
		"resumescreen_resumes_analyzed_total",
		metric.WithDescription("Total number of resumes analyzed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resumes analyzed metric: %w", err)
	}

	m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescreen_analysis_duration_seconds",
		metric.WithDescription("End-to-end analysis time per resume"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	m.MatchScores, err = meter.Int64Histogram(
		"resumescreen_match_score",
		metric.WithDescription("Distribution of overall match scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return fmt.Errorf("failed to create match score metric: %w", err)
	}

	m.BatchItems, err = meter.Int64Counter(
		"resumescreen_batch_items_total",
		metric.WithDescription("Batch items processed, by outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create batch items metric: %w", err)
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (m *Metrics) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	m.RateLimitHits, err = meter.Int64Counter(
		"resumescreen_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// RecordAICall records one AI backend call
func (m *Metrics) RecordAICall(ctx context.Context, operation, provider string, duration time.Duration, usage *ai.TokenUsage, err error) {
	if m == nil || m.AIRequestCount == nil || !m.settings.AIOperations.Enabled {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	}

	if m.settings.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.recordTokenUsage(ctx, usage, attrs)
}

// recordTokenUsage records token usage metrics and span attributes
func (m *Metrics) recordTokenUsage(ctx context.Context, usage *ai.TokenUsage, attrs []attribute.KeyValue) {
	if usage == nil {
		return
	}

	// Token counts always go on the span for debugging
	oteltrace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)

	if !m.settings.AIOperations.TrackTokenUsage {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}
	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordFallback counts an AI failure that was answered by the rule-based path
func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil || m.AIFallbacks == nil || !m.settings.AIOperations.TrackFallbacks {
		return
	}
	m.AIFallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordAnalysis records one finished resume analysis
func (m *Metrics) RecordAnalysis(ctx context.Context, requested string, aiPowered bool, duration time.Duration) {
	if m == nil || m.ResumesAnalyzed == nil || !m.settings.BusinessMetrics.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", requested),
		attribute.Bool("ai_powered", aiPowered),
	)
	m.ResumesAnalyzed.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMatchScore records an overall match score
func (m *Metrics) RecordMatchScore(ctx context.Context, score int) {
	if m == nil || m.MatchScores == nil || !m.settings.BusinessMetrics.TrackMatchScores {
		return
	}
	m.MatchScores.Record(ctx, int64(score))
}

// RecordBatchItem records the outcome of one batch item
func (m *Metrics) RecordBatchItem(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.BatchItems == nil || !m.settings.BusinessMetrics.TrackSuccessRates {
		return
	}
	m.BatchItems.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordRateLimitHit counts a request rejected by the HTTP rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, route string) {
	if m == nil || m.RateLimitHits == nil || !m.settings.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
