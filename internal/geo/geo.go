// Package geo provides the pure derived-metric computations for tracking:
// great-circle distance, instantaneous speed and ETA estimation.
package geo

import (
	"math"

	"courier/internal/domain/entity"

	"github.com/paulmach/orb"
)

// earthRadiusKm is the mean Earth radius used for haversine distances.
const earthRadiusKm = 6371.0

// Point converts a location sample to an orb lon/lat point.
func Point(l entity.Location) orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// DistanceKm returns the haversine great-circle distance between two samples
// in kilometers.
func DistanceKm(a, b entity.Location) float64 {
	return distanceKm(Point(a), Point(b))
}

func distanceKm(a, b orb.Point) float64 {
	latA := a.Lat() * math.Pi / 180
	latB := b.Lat() * math.Pi / 180
	dLat := latB - latA
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SpeedKmh derives the speed implied by two consecutive samples. It returns
// false when the time delta is not positive or when the result falls outside
// the plausibility band (0, maxPlausibleKmh]; implausible GPS jumps are
// suppressed rather than reported.
func SpeedKmh(prev, curr entity.Location, maxPlausibleKmh float64) (float64, bool) {
	delta := curr.CapturedAt.Sub(prev.CapturedAt)
	if delta <= 0 {
		return 0, false
	}

	speed := DistanceKm(prev, curr) / delta.Hours()
	if speed <= 0 || speed > maxPlausibleKmh {
		return 0, false
	}

	return speed, true
}

// ETAMinutes estimates the travel time from origin to destination at the given
// planning speed, rounded to whole minutes.
func ETAMinutes(origin, destination entity.Location, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		return 0
	}

	return int(math.Round(60 * DistanceKm(origin, destination) / avgSpeedKmh))
}
