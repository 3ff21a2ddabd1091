package telemetry

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// LogExporter writes finished spans to a logrus logger at debug level
type LogExporter struct {
	logger *logrus.Logger
}

// NewLogExporter creates a span exporter backed by logger
func NewLogExporter(logger *logrus.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans logs one line per span
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := logrus.Fields{
			"span":        span.Name(),
			"trace_id":    span.SpanContext().TraceID().String(),
			"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
			"status":      span.Status().Code.String(),
		}
		for _, attr := range span.Attributes() {
			fields[string(attr.Key)] = attr.Value.Emit()
		}
		entry := e.logger.WithFields(fields)
		if desc := span.Status().Description; desc != "" {
			entry = entry.WithField("error", desc)
		}
		entry.Debug("Span finished")
	}
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter
func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}

// Setup installs a global tracer provider that logs spans through logger.
// The returned function flushes and stops it.
func Setup(serviceName, version string, logger *logrus.Logger) func(context.Context) error {
	res := resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
		attribute.String("telemetry.exporter", "logrus"),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewLogExporter(logger)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.WithField("service", serviceName).Info("Tracing enabled")
	return provider.Shutdown
}
