package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"consentd/internal/platform/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanRegionDetect,
		tracer.String(tracer.AttrStrategy, "timezone"),
		tracer.Bool(tracer.AttrCacheHit, true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.String(tracer.AttrRegion, "eu"))
	span.AddEvent("fallback", tracer.Int64("attempts", 4))
	span.End(errors.New("ignored"))
}

func TestOTelTracer_WithInjectedTracer(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanGeoIPLookup,
		tracer.String("a", "b"),
		tracer.Int64("n", 1),
		tracer.Duration("latency", 150*time.Millisecond),
	)
	require.NotNil(t, ctx)
	span.SetAttributes(tracer.Bool(tracer.AttrFallback, false))
	span.AddEvent("cache.miss")
	span.End(errors.New("lookup failed"))
}

func TestHashSubject(t *testing.T) {
	assert.Empty(t, tracer.HashSubject(""))
	assert.Len(t, tracer.HashSubject("visitor:abc"), 16)
	assert.Equal(t, tracer.HashSubject("user:1"), tracer.HashSubject("user:1"))
	assert.NotEqual(t, tracer.HashSubject("user:1"), tracer.HashSubject("user:2"))
}

func TestDurationAttribute(t *testing.T) {
	attr := tracer.Duration("latency", 150*time.Millisecond)
	assert.Equal(t, int64(150), attr.Value)
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, tracer.TraceID(context.Background()))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", tracer.TraceID(ctx))
}
