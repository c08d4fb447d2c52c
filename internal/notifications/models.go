package notifications

import (
	"time"
)

// Event types published for certificate request lifecycle changes
const (
	EventRequestSubmitted = "request.submitted"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
)

// WebSocket message types
const (
	WSMessageTypeNotification = "notification"
	WSMessageTypeStatus       = "status"
	WSMessageTypePresence     = "presence"
)

// Event describes a change to a certificate request
type Event struct {
	Type            string    `json:"type"`
	RequestID       string    `json:"requestId"`
	StudentName     string    `json:"studentName"`
	CertificateType string    `json:"certificateType"`
	Status          string    `json:"status"`
	ActedBy         string    `json:"actedBy,omitempty"`
	DownloadURL     string    `json:"downloadUrl,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Subject is a short human readable summary, used as the SNS subject.
func (e Event) Subject() string {
	switch e.Type {
	case EventRequestSubmitted:
		return "Certificate request submitted"
	case EventRequestApproved:
		return "Certificate request approved"
	case EventRequestRejected:
		return "Certificate request rejected"
	default:
		return "Certificate request updated"
	}
}

// WebSocketMessage represents WebSocket message format
type WebSocketMessage struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Channel   string                 `json:"channel"`
}
