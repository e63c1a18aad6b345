package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestFileExporter_AppendsJSONL(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"existing":"data"}`+"\n"), 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stubs := tracetest.SpanStubs{
		{Name: "a", StartTime: start, EndTime: start.Add(150 * time.Millisecond)},
		{Name: "b", StartTime: start, EndTime: start.Add(time.Second)},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), stubs.Snapshots()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	content, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)

	var rec SpanRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, "a", rec.Name)
	require.InDelta(t, 150.0, rec.DurationMs, 0.001)
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "second shutdown is a no-op")

	stub := tracetest.SpanStub{Name: "late"}
	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err)
}

func TestNewSpanRecord(t *testing.T) {
	traceID := trace.TraceID{1, 2, 3}
	parent := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{9}})
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	stub := tracetest.SpanStub{
		Name: SpanCreateEntry,
		SpanContext: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  trace.SpanID{7},
		}),
		Parent:     parent,
		SpanKind:   trace.SpanKindClient,
		StartTime:  start,
		EndTime:    start.Add(2 * time.Millisecond),
		Status:     sdktrace.Status{Code: codes.Error, Description: "server error (500): boom"},
		Attributes: []attribute.KeyValue{attribute.Int(AttrHTTPStatusCode, 500)},
		Events: []sdktrace.Event{{
			Name:       "exception",
			Time:       start.Add(time.Millisecond),
			Attributes: []attribute.KeyValue{attribute.String("exception.message", "boom")},
		}},
	}

	rec := NewSpanRecord(stub.Snapshot())

	require.Equal(t, traceID.String(), rec.TraceID)
	require.Equal(t, trace.SpanID{9}.String(), rec.ParentSpanID)
	require.Equal(t, "client", rec.Kind)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "server error (500): boom", rec.StatusMsg)
	require.Equal(t, int64(500), rec.Attributes[AttrHTTPStatusCode])
	require.Len(t, rec.Events, 1)
	require.Equal(t, "boom", rec.Events[0].Attributes["exception.message"])
	require.InDelta(t, 2.0, rec.DurationMs, 0.001)
}
