// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"courier/internal/errors"
)

// ErrInvalidCoordinates is returned when a sample carries out-of-range coordinates
var ErrInvalidCoordinates = errors.New("latitude or longitude out of range")

// Location is a single GPS sample reported for an agent or a parcel.
type Location struct {
	Latitude   float64   // The geographic latitude, in [-90, 90].
	Longitude  float64   // The geographic longitude, in [-180, 180].
	CapturedAt time.Time // When the sample was taken on the reporting device.
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 || l.Longitude < -180 || l.Longitude > 180 {
		return ErrInvalidCoordinates
	}

	return nil
}
