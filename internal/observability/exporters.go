package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSpanExporter picks the console exporter first, then OTLP. It returns
// nil when neither is configured.
func newSpanExporter(s Settings) (sdktrace.SpanExporter, error) {
	switch {
	case s.Console:
		var opts []stdouttrace.Option
		if s.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	case s.OTLP.Enabled:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(s.OTLP.Endpoint)}
		if s.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(s.OTLP.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(s.OTLP.Headers))
		}
		exporter, err := otlptracehttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		return exporter, nil
	}
	return nil, nil
}

// metricReaders returns one reader per configured sink. A manual reader keeps
// the instruments valid when nothing exports.
func (t *Telemetry) metricReaders() ([]sdkmetric.Reader, error) {
	s := t.settings
	var readers []sdkmetric.Reader

	if s.Console {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(s.CollectInterval)))
	}

	if s.OTLP.Enabled {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(s.OTLP.Endpoint)}
		if s.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(s.OTLP.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(s.OTLP.Headers))
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(s.CollectInterval)))
	}

	if s.Prometheus.Enabled {
		// Registers with the default registry that promhttp serves
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		t.servePrometheus()
		readers = append(readers, exporter)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// servePrometheus exposes the scrape endpoint on its own port
func (t *Telemetry) servePrometheus() {
	endpoint := t.settings.Prometheus.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + t.settings.Prometheus.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	t.logger.Info("Serving Prometheus metrics", "address", srv.Addr, "path", endpoint)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logger.LogError(err, "Prometheus endpoint stopped")
		}
	}()
	t.closers = append(t.closers, srv.Shutdown)
}
