package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/tact/internal/tracing"
)

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStopTimer_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := newFixture(t, WithTracer(tp.Tracer("test")))
	tm := f.store.StartNewTimer("write docs")

	_, err := f.store.StopTimer(context.Background(), tm.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, tracing.SpanStopTimer, spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.Equal(t, tm.ID, attrs[tracing.AttrTimerID].AsString())
	assert.Equal(t, "1m write docs", attrs[tracing.AttrEntryText].AsString())
	assert.Equal(t, tracing.OutcomeSubmitted, attrs[tracing.AttrOutcome].AsString())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestStopTimer_SpanRecordsFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := newFixture(t, WithTracer(tp.Tracer("test")))
	tm := f.store.StartNewTimer("x")
	f.sub.err = errors.New("boom")

	_, err := f.store.StopTimer(context.Background(), tm.ID)
	require.Error(t, err)

	_, err = f.store.StopTimer(context.Background(), "missing")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, tracing.OutcomeFailed, spanAttrs(spans[0])[tracing.AttrOutcome].AsString())
	assert.Equal(t, tracing.OutcomeRejected, spanAttrs(spans[1])[tracing.AttrOutcome].AsString())
}
