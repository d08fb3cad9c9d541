package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	line := strings.TrimSpace(buf.String())
	out := make(map[string]any)
	if err := sonic.UnmarshalString(line, &out); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return out
}

func TestLoggerWritesServiceAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, ServiceName: "fantasy-settlement", ServiceVersion: "v1"})
	logger.With("component", "settlement").Info("round settled", "round", 3, "error", errors.New("boom"))

	got := decodeLine(t, &buf)
	if got["msg"] != "round settled" {
		t.Fatalf("unexpected msg: %v", got["msg"])
	}
	if got["service"] != "fantasy-settlement" || got["version"] != "v1" {
		t.Fatalf("missing service fields: %v", got)
	}
	if got["component"] != "settlement" {
		t.Fatalf("missing With field: %v", got)
	}
	if got["round"] != float64(3) {
		t.Fatalf("unexpected round: %v", got["round"])
	}
	if got["error"] != "boom" {
		t.Fatalf("unexpected error field: %v", got["error"])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf})
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestLoggerAddsTraceFields(t *testing.T) {
	t.Parallel()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	var buf bytes.Buffer
	New(Options{Level: LevelInfo, Output: &buf}).InfoContext(ctx, "traced")

	got := decodeLine(t, &buf)
	if got["trace_id"] != traceID.String() || got["span_id"] != spanID.String() {
		t.Fatalf("unexpected trace fields: %v", got)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger from nil With")
	}
}

func TestLoggerPairsDanglingKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(Options{Level: LevelInfo, Output: &buf}).Info("odd", 7, "first", "dangling")

	got := decodeLine(t, &buf)
	if got["arg"] != "first" {
		t.Fatalf("expected non-string key to become arg, got %v", got)
	}
	if v, ok := got["dangling"]; !ok || v != nil {
		t.Fatalf("expected dangling key with null value, got %v", got)
	}
}

func TestLoggerSyncOnce(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	child := logger.With("k", "v")
	if err := child.Sync(); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("second sync should be a no-op: %v", err)
	}
}
