// Package app wires the table viewer together and runs it.
//
// New opens the configured store, builds the session and the table service
// on top of it, restores the previously loaded dataset and mounts the REST
// API, the WebSocket event stream and the Prometheus endpoint on one chi
// router:
//
//	/api/...   REST handlers (see internal/transport/http)
//	/ws        dataset and view change events
//	/metrics   Prometheus exposition
//	/*         web interface from the configured web directory
//
// Run blocks until SIGINT or SIGTERM and then shuts the server, hub, store
// and telemetry providers down in that order.
package app
