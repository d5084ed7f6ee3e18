// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"courier/internal/domain/entity"
	"courier/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for parcel persistence.
var (
	// ErrParcelNotFound is returned when a parcel is not found.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrTrackingCodeConflict is returned when a tracking code is already taken.
	ErrTrackingCodeConflict = errors.New("tracking code already exists")
)

// ParcelRepository defines the interface for parcel-related database operations.
type ParcelRepository interface {
	// CreateParcel persists a new parcel.
	CreateParcel(ctx context.Context, parcel *entity.Parcel) error

	// FindParcelByID retrieves a parcel by its unique ID.
	// Returns ErrParcelNotFound if no parcel exists.
	FindParcelByID(ctx context.Context, id uuid.UUID) (*entity.Parcel, error)

	// FindParcelByTrackingCode retrieves a parcel by its public tracking code.
	// Returns ErrParcelNotFound if no parcel exists.
	FindParcelByTrackingCode(ctx context.Context, trackingCode string) (*entity.Parcel, error)

	// FindParcelsByAgent retrieves all parcels currently assigned to an agent.
	FindParcelsByAgent(ctx context.Context, agentID uuid.UUID) ([]*entity.Parcel, error)

	// FindActiveParcels retrieves all parcels not yet in a terminal status.
	FindActiveParcels(ctx context.Context) ([]*entity.Parcel, error)

	// UpdateParcel updates an existing parcel record.
	UpdateParcel(ctx context.Context, parcel *entity.Parcel) error

	// CountParcelsByStatus returns the total count of parcels in a given status.
	// Used by the dashboard summary.
	CountParcelsByStatus(ctx context.Context, status entity.Status) (int64, error)
}
