package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmalink/backend/internal/infrastructure/telemetry"
)

func newTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return tp, exporter
}

func TestStartSpan(t *testing.T) {
	tp, exporter := newTestTracer(t)
	tracer := tp.Tracer(telemetry.TracerName)

	ctx, span := tracer.Start(context.Background(), "order_tracking.transition")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, "o-1",
		telemetry.SpanAttrTrackingStatus, "ON_THE_WAY",
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "order_tracking.transition", spans[0].Name)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
}

func TestRecordError(t *testing.T) {
	tp, exporter := newTestTracer(t)
	tracer := tp.Tracer(telemetry.TracerName)

	_, span := tracer.Start(context.Background(), "stock.append_movement")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestRecordError_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.RecordError(trace.SpanFromContext(context.Background()), nil)
	})
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Equal(t, "", telemetry.GetTraceID(context.Background()))
	assert.Equal(t, "", telemetry.GetSpanID(context.Background()))
}

func TestAddEvent(t *testing.T) {
	tp, exporter := newTestTracer(t)
	tracer := tp.Tracer(telemetry.TracerName)

	_, span := tracer.Start(context.Background(), "stock.reconcile")
	telemetry.AddEvent(span, "drift_detected", "expected", int64(70), "actual", int64(68))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "drift_detected", spans[0].Events[0].Name)
}
