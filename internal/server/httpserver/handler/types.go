package handler

import "time"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Error codes.
const (
	CodeNotReady = "NOT_READY"
	CodeInternal = "INTERNAL"
)

// StatusSummary is the body of GET /admin/v1/status/summary.
type StatusSummary struct {
	Version          string `json:"version"`
	Commit           string `json:"commit"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Keys             int    `json:"keys"`
	VolatileKeys     int    `json:"volatile_keys"`
	ExpiredKeys      uint64 `json:"expired_keys"`
	ConnectedClients int    `json:"connected_clients"`
	TotalConnections uint64 `json:"total_connections"`
	CommandsTotal    uint64 `json:"commands_processed"`
}

// ExpireTriggerResult is the body of POST /admin/v1/expire/trigger.
type ExpireTriggerResult struct {
	Removed     int    `json:"removed"`
	TriggeredAt string `json:"triggered_at"`
}
