// Package observability wires OpenTelemetry tracing and metrics for the
// screening service and exposes the screening-specific instruments.
package observability

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultCollectInterval = 15 * time.Second

// Settings is the resolved telemetry setup for one process
type Settings struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	InstanceID      string
	Console         bool
	PrettyPrint     bool
	SampleRate      float64
	CollectInterval time.Duration
	OTLP            config.OTLPConfig
	Prometheus      config.PrometheusConfig
	Instruments     config.CustomMetricsConfig
}

// SettingsFrom resolves Settings from the loaded configuration. The tracing
// sample rate wins over the global one, and the app version is used when no
// service version is configured.
func SettingsFrom(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{ServiceName: "resumescreen", ServiceVersion: version, SampleRate: 1}
	}
	obs := cfg.Observability

	s := Settings{
		Enabled:         obs.Enabled,
		ServiceName:     obs.ServiceName,
		ServiceVersion:  obs.ServiceVersion,
		InstanceID:      obs.ServiceInstance,
		Console:         obs.ConsoleOutput || obs.Console.Enabled,
		PrettyPrint:     obs.Console.PrettyPrint,
		SampleRate:      obs.SampleRate,
		CollectInterval: obs.Metrics.CollectionInterval,
		OTLP:            obs.OTLP,
		Prometheus:      obs.Prometheus,
		Instruments:     obs.CustomMetrics,
	}
	if s.ServiceVersion == "" {
		s.ServiceVersion = version
	}
	if obs.Tracing.SampleRate > 0 {
		s.SampleRate = obs.Tracing.SampleRate
	}
	if !obs.Metrics.Enabled {
		s.Instruments = config.CustomMetricsConfig{}
	}
	if s.CollectInterval <= 0 {
		s.CollectInterval = defaultCollectInterval
	}
	return s
}

// Telemetry owns the tracer and meter providers. A disabled Telemetry hands
// out no-op tracers and metrics that record nothing.
type Telemetry struct {
	settings       Settings
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	closers        []func(context.Context) error
	logger         *errors.Logger
}

// NewTelemetry starts the providers and exporters described by settings and
// installs them as the global OpenTelemetry providers.
func NewTelemetry(settings Settings, logger *errors.Logger) (*Telemetry, error) {
	t := &Telemetry{settings: settings, logger: logger}
	if !settings.Enabled {
		return t, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(settings.ServiceName),
		semconv.ServiceVersion(settings.ServiceVersion),
		attribute.String("service.instance.id", settings.InstanceID),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := t.startTracing(res); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.startMetrics(res); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("Telemetry started",
		"service", settings.ServiceName,
		"instance", settings.InstanceID,
		"console", settings.Console,
		"otlp", settings.OTLP.Enabled,
		"prometheus", settings.Prometheus.Enabled)
	return t, nil
}

func (t *Telemetry) startTracing(res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.settings.SampleRate))),
	}

	exporter, err := newSpanExporter(t.settings)
	if err != nil {
		return err
	}
	// Without an exporter spans are still sampled so trace IDs propagate
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	t.tracerProvider = tp
	t.closers = append(t.closers, tp.Shutdown)
	return nil
}

func (t *Telemetry) startMetrics(res *resource.Resource) error {
	readers, err := t.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	t.meterProvider = mp
	t.closers = append(t.closers, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(t.settings.ServiceName), t.settings.Instruments)
	if err != nil {
		return err
	}
	t.metrics = metrics
	return nil
}

// Metrics returns the screening instruments. It never returns nil.
func (t *Telemetry) Metrics() *Metrics {
	if t == nil || t.metrics == nil {
		return &Metrics{}
	}
	return t.metrics
}

// HTTPMiddleware instruments an HTTP handler with server spans and metrics
func (t *Telemetry) HTTPMiddleware() func(http.Handler) http.Handler {
	if t == nil || !t.settings.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		t.settings.ServiceName,
		otelhttp.WithTracerProvider(t.tracerProvider),
		otelhttp.WithMeterProvider(t.meterProvider),
	)
}

// Tracer returns a named tracer
func (t *Telemetry) Tracer(name string) trace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return t.tracerProvider.Tracer(name)
}

// Shutdown flushes exporters and stops the metrics endpoint
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return stdErrors.Join(errs...)
}
