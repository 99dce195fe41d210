// Package otelhelper provides distributed tracing for automation dispatch monitoring.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Common attribute keys.
	TenantIDKey        = "fieldline.tenant.id"
	WorkOrderIDKey     = "fieldline.work_order.id"
	WorkOrderNumberKey = "fieldline.work_order.number"
	StatusNameKey      = "fieldline.status.name"
	TriggerIDKey       = "fieldline.trigger.id"
	TriggerEventKey    = "fieldline.trigger.event"
	ActionTypeKey      = "fieldline.action.type"
	RunIDKey           = "fieldline.run.id"
	EventIDKey         = "fieldline.event.id"
	ServiceIDKey       = "fieldline.service.id"
	WorkerIDKey        = "fieldline.worker.id"
)

// InitTracer installs the global tracer provider with an OTLP http exporter
// and returns it; the caller owns shutdown. The exporter endpoint comes from
// the standard OTEL_EXPORTER_OTLP_* environment variables.
func InitTracer(ctx context.Context, serviceName string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return tp, nil
}

// nolint:spancheck // The caller ends the span.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
