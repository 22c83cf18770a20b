// Package infrastructure carries the cross-cutting runtime pieces: the JSON
// slog logger with trace_id injection, OpenTelemetry providers exporting to
// Prometheus, and the application metrics.
package infrastructure
