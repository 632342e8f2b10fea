// Package observability provides the optional OpenTelemetry provider for
// API calls and webhook dispatches.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/feishubot/config"
)

// Telemetry provides tracing and metrics for the SDK
type Telemetry struct {
	config        *config.TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	messagesSent     metric.Int64Counter
	messagesFailed   metric.Int64Counter
	eventsDispatched metric.Int64Counter
	eventsDropped    metric.Int64Counter
	sendDuration     metric.Float64Histogram
	dispatchDuration metric.Float64Histogram
}

// New creates a telemetry provider. A nil or disabled config yields a
// no-op provider that is safe to call.
func New(cfg *config.TelemetryConfig) (*Telemetry, error) {
	if cfg == nil {
		cfg = &config.TelemetryConfig{Enabled: false}
	}

	t := &Telemetry{config: cfg}

	if !cfg.Enabled {
		t.tracer = otel.Tracer("feishubot")
		t.meter = otel.Meter("feishubot")
		return t, nil
	}

	if err := t.initTracing(); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if err := t.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return t, nil
}

func (t *Telemetry) initTracing() error {
	serviceName := t.config.ServiceName
	if serviceName == "" {
		serviceName = "feishubot"
	}
	sampleRate := t.config.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(t.config.ServiceVersion),
			semconv.DeploymentEnvironment(t.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(t.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(t.config.OTLPHeaders),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	t.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRate)),
	)

	otel.SetTracerProvider(t.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.tracer = otel.Tracer("feishubot",
		trace.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

func (t *Telemetry) initMetrics() error {
	t.meter = otel.Meter("feishubot",
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error
	t.messagesSent, err = t.meter.Int64Counter(
		"feishubot_messages_sent_total",
		metric.WithDescription("Total number of messages sent"),
	)
	if err != nil {
		return fmt.Errorf("create messages_sent counter: %w", err)
	}

	t.messagesFailed, err = t.meter.Int64Counter(
		"feishubot_messages_failed_total",
		metric.WithDescription("Total number of message sends that failed"),
	)
	if err != nil {
		return fmt.Errorf("create messages_failed counter: %w", err)
	}

	t.eventsDispatched, err = t.meter.Int64Counter(
		"feishubot_events_dispatched_total",
		metric.WithDescription("Total number of webhook events dispatched to a handler"),
	)
	if err != nil {
		return fmt.Errorf("create events_dispatched counter: %w", err)
	}

	t.eventsDropped, err = t.meter.Int64Counter(
		"feishubot_events_dropped_total",
		metric.WithDescription("Total number of webhook events with no registered handler"),
	)
	if err != nil {
		return fmt.Errorf("create events_dropped counter: %w", err)
	}

	t.sendDuration, err = t.meter.Float64Histogram(
		"feishubot_send_duration_seconds",
		metric.WithDescription("Duration of message API calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create send_duration histogram: %w", err)
	}

	t.dispatchDuration, err = t.meter.Float64Histogram(
		"feishubot_dispatch_duration_seconds",
		metric.WithDescription("Duration of webhook dispatches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create dispatch_duration histogram: %w", err)
	}

	return nil
}

// StartSend opens a span for a message API call
func (t *Telemetry) StartSend(ctx context.Context, operation, msgType string) (context.Context, trace.Span) {
	if t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("feishubot.operation", operation),
			attribute.String("feishubot.msg_type", msgType),
		),
	)
}

// RecordSend records the outcome of a message API call and closes the span
func (t *Telemetry) RecordSend(ctx context.Context, span trace.Span, msgType string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("msg_type", msgType))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if t.messagesFailed != nil {
			t.messagesFailed.Add(ctx, 1, attrs)
		}
	} else {
		span.SetStatus(codes.Ok, "")
		if t.messagesSent != nil {
			t.messagesSent.Add(ctx, 1, attrs)
		}
	}
	if t.sendDuration != nil {
		t.sendDuration.Record(ctx, duration.Seconds(), attrs)
	}
	span.End()
}

// RecordDispatch records the outcome of a webhook dispatch
func (t *Telemetry) RecordDispatch(ctx context.Context, eventType string, handled bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("event_type", eventType))

	if handled {
		if t.eventsDispatched != nil {
			t.eventsDispatched.Add(ctx, 1, attrs)
		}
	} else if t.eventsDropped != nil {
		t.eventsDropped.Add(ctx, 1, attrs)
	}
	if t.dispatchDuration != nil {
		t.dispatchDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// Shutdown flushes and stops the trace provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.traceProvider != nil {
		return t.traceProvider.Shutdown(ctx)
	}
	return nil
}
