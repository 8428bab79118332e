package runtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
)

// telemetry owns the process-wide trace and metric providers. scrape is the
// Prometheus handler for the runtime mux, nil when the exporter could not be
// built (counters still work, they just are not exported).
type telemetry struct {
	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	scrape  http.Handler
}

func newTelemetry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.RuntimeName),
			semconv.ServiceVersion(Version),
			semconv.ServiceInstanceID(uuid.NewString()),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	spans, exporterName, err := newSpanExporter(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	t := &telemetry{
		traces: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spans),
			sdktrace.WithResource(res),
		),
	}
	otel.SetTracerProvider(t.traces)

	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if promExporter, promErr := prometheus.New(); promErr != nil {
		logger.Warn("prometheus exporter unavailable, scrape endpoint disabled",
			slog.String("error", promErr.Error()))
	} else {
		metricOpts = append(metricOpts, sdkmetric.WithReader(promExporter))
		t.scrape = promhttp.Handler()
	}
	t.metrics = sdkmetric.NewMeterProvider(metricOpts...)
	otel.SetMeterProvider(t.metrics)

	// Export failures (a dead collector, a slow scrape) are operational noise,
	// not turn failures.
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("telemetry export error", slog.String("error", err.Error()))
	}))

	logger.Info("telemetry initialized",
		slog.String("traces", exporterName),
		slog.Bool("metrics_scrape", t.scrape != nil))
	return t, nil
}

func newSpanExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, string, error) {
	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		return exporter, "otlp", err
	}
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	return exporter, "stdout", err
}

// Close flushes and stops both providers; safe to call once at shutdown.
func (t *telemetry) Close(ctx context.Context) error {
	return errors.Join(
		t.metrics.Shutdown(ctx),
		t.traces.Shutdown(ctx),
	)
}
