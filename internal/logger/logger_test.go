package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	logger := Init("test-service", slog.LevelInfo)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// No trace ID set
	if tid := TraceID(ctx); tid != "" {
		t.Errorf("expected empty trace id, got %q", tid)
	}

	// Set and retrieve
	ctx = WithTraceID(ctx, "test-trace-123")
	if tid := TraceID(ctx); tid != "test-trace-123" {
		t.Errorf("expected 'test-trace-123', got %q", tid)
	}
}

func TestIngestTrace(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)
	tid := IngestTrace("AAPL", ts)

	if tid != "AAPL@20240115T103000.123456789" {
		t.Errorf("trace id = %q", tid)
	}
	if !strings.HasPrefix(tid, "AAPL@") {
		t.Errorf("expected trace id to start with the ticker, got %s", tid)
	}
}

func TestIngestTrace_NormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, est)

	if got, want := IngestTrace("MSFT", ts), "MSFT@20240115T153000.000000000"; got != want {
		t.Errorf("trace id = %q, want %q", got, want)
	}
}

func TestLogWithTrace(t *testing.T) {
	ctx := context.Background()

	// No trace ID
	attrs := LogWithTrace(ctx)
	if attrs != nil {
		t.Errorf("expected nil attrs when no trace id, got %v", attrs)
	}

	// With trace ID — returns [slog.Attr] which is a single element
	ctx = WithTraceID(ctx, "abc-123")
	attrs = LogWithTrace(ctx)
	if len(attrs) == 0 {
		t.Fatal("expected non-empty attrs with trace id set")
	}
}
