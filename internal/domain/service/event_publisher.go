package service

import (
	"context"
)

// ParcelEvent mirrors a parcel state change onto the message queue so that
// downstream consumers (analytics, audit) stay in sync with the live feed.
type ParcelEvent struct {
	RequestID    string   `json:"request_id,omitempty"` // For distributed tracing
	ParcelID     string   `json:"parcel_id"`
	TrackingCode string   `json:"tracking_code"`
	Status       string   `json:"status"`
	AgentID      string   `json:"agent_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	EtaMinutes   *int     `json:"eta_minutes,omitempty"`
	OccurredAt   int64    `json:"occurred_at"` // Unix milliseconds
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishParcelEvent publishes a parcel event for async processing
	PublishParcelEvent(ctx context.Context, event *ParcelEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
