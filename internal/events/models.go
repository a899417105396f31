package events

import (
	"encoding/json"
	"time"
)

// Ingest response statuses.
const (
	StatusAccepted  = "accepted"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// IngestPayload is the body accepted by the events endpoint.
type IngestPayload struct {
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// IngestResponse is returned for every ingest attempt. RequestID echoes the
// correlation identifier assigned to the request so callers can retry
// idempotently and quote it in support requests.
type IngestResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Message   string `json:"message,omitempty"`
}

// ValidationErrorResponse is returned for payloads that fail validation.
type ValidationErrorResponse struct {
	Status    string   `json:"status"`
	RequestID string   `json:"request_id"`
	Errors    []string `json:"errors"`
}

// Envelope is the message published to the events queue and decoded by the
// worker. RequestID carries the originating request's identifier end-to-end.
type Envelope struct {
	RequestID  string          `json:"request_id"`
	Source     string          `json:"source"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}
