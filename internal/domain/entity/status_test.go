package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanAdvanceTo_ForwardChainOnly(t *testing.T) {
	all := []Status{
		StatusPending, StatusAssigned, StatusPickedUp,
		StatusInTransit, StatusDelivered, StatusFailed,
	}

	forward := map[Status]Status{
		StatusPending:   StatusAssigned,
		StatusAssigned:  StatusPickedUp,
		StatusPickedUp:  StatusInTransit,
		StatusInTransit: StatusDelivered,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			if !from.IsTerminal() {
				if to == StatusFailed {
					want = true
				} else if to != StatusDelivered && forward[from] == to {
					want = true
				}
			}

			got := from.CanAdvanceTo(to)
			assert.Equalf(t, want, got, "from=%s to=%s", from, to)
		}
	}
}

func TestStatus_DeliveredNeverDirect(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusAssigned, StatusPickedUp, StatusInTransit} {
		assert.Falsef(t, from.CanAdvanceTo(StatusDelivered), "from=%s", from)
	}
}

func TestStatus_TerminalStatesReject(t *testing.T) {
	for _, from := range []Status{StatusDelivered, StatusFailed} {
		assert.False(t, from.CanAdvanceTo(StatusFailed))
		next, ok := from.Next()
		assert.False(t, ok)
		assert.Empty(t, next)
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusFailed.IsValid())
	assert.False(t, Status("lost").IsValid())
}

func TestLocation_Validate(t *testing.T) {
	assert.NoError(t, Location{Latitude: 23.81, Longitude: 90.40}.Validate())
	assert.ErrorIs(t, Location{Latitude: 91, Longitude: 0}.Validate(), ErrInvalidCoordinates)
	assert.ErrorIs(t, Location{Latitude: 0, Longitude: -181}.Validate(), ErrInvalidCoordinates)
}
