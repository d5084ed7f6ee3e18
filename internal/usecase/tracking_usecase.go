package usecase

import (
	"context"

	"courier/internal/domain/entity"
)

// AgentStatusOutput is the read-side view of one agent's live state
type AgentStatusOutput struct {
	AgentID  string           `json:"agent_id"`
	Online   bool             `json:"online"`
	Location *entity.Location `json:"location,omitempty"`
	SpeedKmh *float64         `json:"speed_kmh,omitempty"`
}

// StatusSummaryOutput counts parcels per lifecycle state for the dashboard
type StatusSummaryOutput struct {
	Counts map[entity.Status]int64 `json:"counts"`
}

// TrackingUsecase defines the read-side interface for the tracking surfaces
type TrackingUsecase interface {
	// GetParcelByTrackingCode retrieves a parcel via its public code.
	GetParcelByTrackingCode(ctx context.Context, trackingCode string) (*entity.Parcel, error)

	// GetTrackingQR renders the QR image pointing at the tracking page.
	GetTrackingQR(ctx context.Context, trackingCode string) ([]byte, error)

	// GetAgentStatus reports an agent's last known location, derived speed
	// and online flag.
	GetAgentStatus(ctx context.Context, agentID string) (*AgentStatusOutput, error)

	// ListActiveParcels retrieves all parcels not yet in a terminal status.
	ListActiveParcels(ctx context.Context) ([]*entity.Parcel, error)

	// GetStatusSummary counts parcels per status.
	GetStatusSummary(ctx context.Context) (*StatusSummaryOutput, error)
}
