// Package events contains the event contracts pushed to browsers over the
// WebSocket connection.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Sent once to a client right after it connects
	MessageTypeConnect MessageType = "connect"

	// A new file replaced the current dataset
	MessageTypeDatasetLoaded MessageType = "dataset:loaded"

	// Filters, visibility, the derived column or the page changed
	MessageTypeViewChanged MessageType = "view:changed"

	// A saved table or one of its charts was created or removed
	MessageTypeTablesChanged MessageType = "tables:changed"

	MessageTypeError MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message with the current time
func NewMessage(msgType MessageType, data interface{}, traceID string) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}

// ConnectEvent greets a newly registered client
type ConnectEvent struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// DatasetLoadedEvent describes the dataset that was just loaded
type DatasetLoadedEvent struct {
	FileName    string   `json:"file_name"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
	Fingerprint string   `json:"fingerprint"`
}

// View change reasons
const (
	ReasonFilters    = "filters"
	ReasonColumns    = "columns"
	ReasonDerived    = "derived_column"
	ReasonPagination = "page"
)

// ViewChangedEvent tells clients to refetch the current page
type ViewChangedEvent struct {
	Reason    string `json:"reason"`
	Column    string `json:"column,omitempty"`
	Page      int    `json:"page"`
	Pages     int    `json:"pages"`
	TotalRows int    `json:"total_rows"`
}

// Saved table actions
const (
	ActionCreated      = "created"
	ActionDeleted      = "deleted"
	ActionChartAdded   = "chart_added"
	ActionChartRemoved = "chart_removed"
)

// TablesChangedEvent reports a change in the saved table registry
type TablesChangedEvent struct {
	Action  string `json:"action"`
	TableID string `json:"table_id"`
	ChartID string `json:"chart_id,omitempty"`
	Count   int    `json:"count"`
}

// ErrorEvent reports a failure that happened outside a request
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
