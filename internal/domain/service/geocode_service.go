package service

import (
	"context"

	"courier/internal/domain/entity"
)

// GeocodeService resolves a postal address into coordinates. Implementations
// may call an external provider; callers must treat failures as non-fatal and
// fall back to parcels without a destination point.
type GeocodeService interface {
	// Resolve returns the coordinates of a postal address.
	Resolve(ctx context.Context, address string) (*entity.Location, error)
}
