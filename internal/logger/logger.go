// Package logger sets up the shared slog JSON logger and threads per-ticker
// ingest trace IDs through context.Context, so one ticker's fetch, normalize,
// and store steps can be correlated across log lines.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

type traceKey struct{}

// Init configures a JSON logger with the service name attached to every
// record and installs it as the slog default.
func Init(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	l := slog.New(handler).With(slog.String("service", service))
	slog.SetDefault(l)
	return l
}

// IngestTrace builds the trace ID for one ticker's trip through the
// fetch-normalize-store pipeline. Format: "{ticker}@{UTC pass timestamp}",
// greppable by either half.
func IngestTrace(ticker string, ts time.Time) string {
	return ticker + "@" + ts.UTC().Format("20060102T150405.000000000")
}

// WithTraceID stores a trace ID in the context for downstream propagation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID extracts the trace ID from context. Returns "" if not set.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}

// LogWithTrace returns slog attributes including the trace ID from context.
// Usage: slog.Info("msg", logger.LogWithTrace(ctx)...)
func LogWithTrace(ctx context.Context) []any {
	tid := TraceID(ctx)
	if tid == "" {
		return nil
	}
	return []any{slog.String("trace_id", tid)}
}
