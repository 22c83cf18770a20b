// Package websocket pushes table events to connected browsers.
//
// A single Hub goroutine owns the client set. Services publish events
// through Hub.Publish, which never blocks the caller, and each Client runs
// a read pump and a write pump over its gorilla/websocket connection.
package websocket
