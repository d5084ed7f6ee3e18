package entity

import (
	"time"

	"github.com/google/uuid"
)

// Parcel is the core entity for a tracked shipment. The service holds only the
// in-flight view needed to validate transitions and OTP checks; durability is
// owned by the repository.
type Parcel struct {
	ID              uuid.UUID    // Internal identifier.
	TrackingCode    string       // Human-facing tracking code.
	Status          Status       // Current lifecycle state.
	AgentID         *uuid.UUID   // Assigned delivery agent; nil until assignment.
	CurrentLocation *Location    // Last location pushed for this parcel specifically.
	EtaMinutes      *int         // Derived estimate; nil when no coordinates are known.
	DeliveryOtp     *DeliveryOtp // Pending delivery confirmation code, if any.
	PickupAddress   string       // Free-form pickup address, resolved by the geocoding collaborator.
	DeliveryAddress string       // Free-form delivery address.
	RecipientToken  string       // Push token of the recipient device, used for OTP delivery.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DeliveryOtp is the pending one-time passcode gating the Delivered transition.
// At most one live OTP exists per parcel; a new request replaces any prior code.
type DeliveryOtp struct {
	Code              string
	ExpiresAt         time.Time
	AttemptsRemaining int
}

// Expired reports whether the code is no longer usable at the given time.
func (o DeliveryOtp) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// CanReassign reports whether the parcel may be (re)assigned to an agent.
// Assignment is locked once the parcel has been picked up.
func (p *Parcel) CanReassign() bool {
	return p.Status == StatusPending || p.Status == StatusAssigned
}
