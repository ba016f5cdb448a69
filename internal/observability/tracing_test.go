package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pitist/mi-orquestador-mvp/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp := NewTracerProvider(config.TracingConfig{Enabled: false}, zap.NewNop())

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()

	assert.False(t, span.SpanContext().IsValid(), "disabled tracing should hand out non-recording spans")
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_LogsSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp := NewTracerProvider(config.TracingConfig{Enabled: true, ServiceName: "svc"}, zap.New(core))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	_, child := tp.Tracer("test").Start(ctx, "child")
	child.SetAttributes(
		attribute.Int("audit.findings", 2),
		attribute.String("audit.id", "abc"),
		attribute.Bool("flag", true),
	)
	child.End()
	parent.End()

	entries := logs.FilterMessage("child").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["audit.findings"])
	assert.Equal(t, "abc", fields["audit.id"])
	assert.Equal(t, true, fields["flag"])
	assert.Equal(t, parent.SpanContext().SpanID().String(), fields["parent_span_id"])
	assert.Equal(t, "trace", entries[0].LoggerName)

	assert.Len(t, logs.FilterMessage("parent").All(), 1)
}

func TestZapSpanExporter_ImplementsExporter(t *testing.T) {
	var _ sdktrace.SpanExporter = NewZapSpanExporter(nil)
}
