package usecase

import (
	"context"

	"courier/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateParcelInput represents the input for registering a new parcel
type CreateParcelInput struct {
	TrackingCode    string `json:"tracking_code"`
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
	RecipientToken  string `json:"recipient_token"`
}

// UpdateParcelLocationInput represents a location sample attached to a parcel
type UpdateParcelLocationInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"` // Unix milliseconds
}

// ParcelUsecase defines the interface for parcel lifecycle use cases
type ParcelUsecase interface {
	// CreateParcel registers a new parcel in Pending status.
	CreateParcel(ctx context.Context, input *CreateParcelInput) (*entity.Parcel, error)

	// GetParcel retrieves a parcel by ID.
	GetParcel(ctx context.Context, parcelID uuid.UUID) (*entity.Parcel, error)

	// AssignAgent moves a Pending parcel to Assigned, or re-assigns an
	// Assigned parcel to another agent.
	AssignAgent(ctx context.Context, parcelID, agentID uuid.UUID) (*entity.Parcel, error)

	// Transition advances the parcel along the delivery pipeline. Delivered
	// is never reachable through this operation; use ConfirmDeliveryOtp.
	Transition(ctx context.Context, parcelID uuid.UUID, target entity.Status) (*entity.Parcel, error)

	// UpdateParcelLocation attaches a fresh location sample to an in-flight
	// parcel and refreshes its ETA.
	UpdateParcelLocation(ctx context.Context, parcelID uuid.UUID, input *UpdateParcelLocationInput) (*entity.Parcel, error)

	// RequestDeliveryOtp issues a delivery confirmation code for an
	// InTransit parcel and pushes it to the recipient.
	RequestDeliveryOtp(ctx context.Context, parcelID uuid.UUID) (*entity.Parcel, error)

	// ConfirmDeliveryOtp verifies the code and, on success, completes the
	// delivery. This is the only path to the Delivered status.
	ConfirmDeliveryOtp(ctx context.Context, parcelID uuid.UUID, code string) (*entity.Parcel, error)
}
