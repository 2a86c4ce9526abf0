package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"

	"codeberg.org/snonux/signspeak/internal"
)

const meterName = "codeberg.org/snonux/signspeak"

// Metrics records pipeline outcomes. A nil *Metrics discards everything.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	outcomes metric.Int64Counter
	duration metric.Float64Histogram
	frames   metric.Int64Counter
}

// NewMetrics creates a meter provider backed by its own Prometheus
// registry
func NewMetrics(serviceName string) (*Metrics, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(internal.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(meterName)

	outcomes, err := meter.Int64Counter("signspeak.pipeline.outcomes",
		metric.WithDescription("Pipeline invocations by final stage and result"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("signspeak.pipeline.duration",
		metric.WithDescription("Pipeline latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	frames, err := meter.Int64Counter("signspeak.frames.assembled",
		metric.WithDescription("Frames written into animations"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		outcomes: outcomes,
		duration: duration,
		frames:   frames,
	}, nil
}

// RecordOutcome counts one pipeline run. stage is the stage a failure
// happened in, or "done" for successful runs.
func (m *Metrics) RecordOutcome(ctx context.Context, stage string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", success),
	)
	m.outcomes.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordFrames counts frames written into an animation
func (m *Metrics) RecordFrames(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.frames.Add(ctx, int64(n))
}

// Handler serves the Prometheus exposition. It responds 404 for a nil
// *Metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Shutdown flushes and stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
