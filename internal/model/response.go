package model

// Status is the outcome class of one delivery attempt.
type Status string

const (
	// StatusSuccess means the collector accepted the event.
	StatusSuccess Status = "success"
	// StatusFailed means the delivery did not complete or the collector
	// rejected the event. The reason travels in the accompanying error.
	StatusFailed Status = "failed"
)

// Response reports the outcome of one transport send.
type Response struct {
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	EventID    string `json:"event_id,omitempty"`
}
