// Package services is the application layer between the HTTP handlers and
// the table engine.
//
// TableService serializes access to a session.Session, wraps each call in an
// OpenTelemetry span, records the table metrics and publishes WebSocket
// events once a change succeeded. HealthService answers the health,
// readiness and liveness probes.
//
// Errors are returned unchanged so handlers can map the engine sentinels
// (session.ErrNoDataset, registry.ErrNotFound, ...) to problem responses.
package services
