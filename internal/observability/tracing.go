package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/internal/config"
)

// ZapSpanExporter implements sdktrace.SpanExporter by writing every finished
// span to a zap logger at debug level.
type ZapSpanExporter struct {
	logger *zap.Logger
}

// NewZapSpanExporter creates an exporter that logs spans through logger.
func NewZapSpanExporter(logger *zap.Logger) *ZapSpanExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSpanExporter{logger: logger.Named("trace")}
}

// ExportSpans logs each span. It never fails.
func (e *ZapSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := []zap.Field{
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
			zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
			zap.String("status", span.Status().Code.String()),
		}
		if parent := span.Parent(); parent.IsValid() {
			fields = append(fields, zap.String("parent_span_id", parent.SpanID().String()))
		}
		for _, kv := range span.Attributes() {
			fields = append(fields, attributeField(kv))
		}
		e.logger.Debug(span.Name(), fields...)
	}
	return nil
}

// Shutdown has nothing to release; the logger is owned by the caller.
func (e *ZapSpanExporter) Shutdown(context.Context) error {
	return nil
}

func attributeField(kv attribute.KeyValue) zap.Field {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.BOOL:
		return zap.Bool(key, kv.Value.AsBool())
	case attribute.INT64:
		return zap.Int64(key, kv.Value.AsInt64())
	case attribute.FLOAT64:
		return zap.Float64(key, kv.Value.AsFloat64())
	default:
		return zap.String(key, kv.Value.Emit())
	}
}

// TracerProvider is what the rest of the service needs from a tracer
// provider: tracers plus a way to flush on exit.
type TracerProvider interface {
	trace.TracerProvider
	Shutdown(ctx context.Context) error
}

type noopProvider struct {
	noop.TracerProvider
}

func (noopProvider) Shutdown(context.Context) error { return nil }

// NewTracerProvider returns an SDK provider that exports spans to the logger
// when tracing is enabled, and a no-op provider otherwise.
func NewTracerProvider(cfg config.TracingConfig, logger *zap.Logger) TracerProvider {
	if !cfg.Enabled {
		return noopProvider{noop.NewTracerProvider()}
	}
	exporter := NewZapSpanExporter(logger)
	// Spans are logged as soon as they end; there is nothing to batch for.
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
}
