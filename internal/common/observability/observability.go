// Package observability wires OpenTelemetry metrics, exported through
// Prometheus, and tracing spans around chat handling.
package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"partyplnr/internal/common/logger"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	replyCounter   otelmetric.Int64Counter
	replyDuration  otelmetric.Float64Histogram
}

type options struct {
	registerer     promclient.Registerer
	spanProcessors []sdktrace.SpanProcessor
}

// Option customizes New.
type Option func(*options)

// WithRegisterer sends exported metrics to reg instead of the default
// Prometheus registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSpanProcessor attaches sp to the tracer provider, e.g. a batch
// exporter or a tracetest.SpanRecorder.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, sp := range o.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	obs := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	var exporterOpts []prometheus.Option
	if o.registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(o.registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	replyCounter, _ := meter.Int64Counter(
		"chat.replies",
		otelmetric.WithDescription("Number of chat replies produced"),
	)

	replyDuration, _ := meter.Float64Histogram(
		"chat.reply.duration",
		otelmetric.WithDescription("Chat reply latency"),
		otelmetric.WithUnit("ms"),
	)

	obs.meterProvider = provider
	obs.meter = meter
	obs.replyCounter = replyCounter
	obs.replyDuration = replyDuration
	return obs
}

// StartSpan starts a span on the service tracer. A nil receiver uses the
// global tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("partyplnr")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordReply(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	if o.replyCounter != nil {
		o.replyCounter.Add(ctx, 1, attrs)
	}
	if o.replyDuration != nil {
		o.replyDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
}
