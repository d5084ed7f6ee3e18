package geo

import (
	"testing"
	"time"

	"courier/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func sample(lat, lng float64, at time.Time) entity.Location {
	return entity.Location{Latitude: lat, Longitude: lng, CapturedAt: at}
}

func TestDistanceKm(t *testing.T) {
	t0 := time.Now()

	tests := []struct {
		name  string
		a     entity.Location
		b     entity.Location
		want  float64
		delta float64
	}{
		{
			name:  "same point",
			a:     sample(23.81, 90.40, t0),
			b:     sample(23.81, 90.40, t0),
			want:  0,
			delta: 0.0001,
		},
		{
			name:  "dhaka north hop",
			a:     sample(23.81, 90.40, t0),
			b:     sample(23.90, 90.40, t0),
			want:  10.0,
			delta: 0.5,
		},
		{
			name:  "one degree of longitude at the equator",
			a:     sample(0, 0, t0),
			b:     sample(0, 1, t0),
			want:  111.19,
			delta: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), tt.delta)
			// Distance is symmetric
			assert.InDelta(t, DistanceKm(tt.a, tt.b), DistanceKm(tt.b, tt.a), 0.0001)
		})
	}
}

func TestSpeedKmh_PlausibleSpeed(t *testing.T) {
	t0 := time.Now()
	prev := sample(23.8100, 90.40, t0)
	curr := sample(23.8109, 90.40, t0.Add(6*time.Second)) // ~100m in 6s => ~60 km/h

	speed, ok := SpeedKmh(prev, curr, 120)
	assert.True(t, ok)
	assert.InDelta(t, 60, speed, 3)
}

func TestSpeedKmh_SuppressesImplausibleJump(t *testing.T) {
	t0 := time.Now()
	// ~10km in 60s implies ~600 km/h, outside the plausibility band
	prev := sample(23.81, 90.40, t0)
	curr := sample(23.90, 90.40, t0.Add(60*time.Second))

	_, ok := SpeedKmh(prev, curr, 120)
	assert.False(t, ok)
}

func TestSpeedKmh_TimeGoingBackwards(t *testing.T) {
	t0 := time.Now()
	prev := sample(23.81, 90.40, t0)

	_, ok := SpeedKmh(prev, sample(23.82, 90.40, t0), 120)
	assert.False(t, ok, "zero delta must be suppressed")

	_, ok = SpeedKmh(prev, sample(23.82, 90.40, t0.Add(-time.Second)), 120)
	assert.False(t, ok, "negative delta must be suppressed")
}

func TestSpeedKmh_ZeroDistance(t *testing.T) {
	t0 := time.Now()
	prev := sample(23.81, 90.40, t0)
	curr := sample(23.81, 90.40, t0.Add(10*time.Second))

	_, ok := SpeedKmh(prev, curr, 120)
	assert.False(t, ok, "standing still reports no speed")
}

func TestETAMinutes(t *testing.T) {
	t0 := time.Now()
	origin := sample(23.81, 90.40, t0)
	dest := sample(23.90, 90.40, t0)

	// ~10 km at 30 km/h => ~20 minutes
	assert.InDelta(t, 20, ETAMinutes(origin, dest, 30), 1)
	assert.Equal(t, 0, ETAMinutes(origin, dest, 0))
	assert.Equal(t, 0, ETAMinutes(origin, origin, 30))
}
