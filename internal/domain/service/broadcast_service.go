package service

import (
	"courier/internal/domain/entity"
)

// ParcelBroadcaster pushes live parcel changes to connected clients. Only
// successful, persisted changes may be broadcast; rejected operations stay
// invisible to subscribers.
type ParcelBroadcaster interface {
	// BroadcastParcelCreated announces a newly registered parcel.
	BroadcastParcelCreated(parcel *entity.Parcel)

	// BroadcastParcelUpdate announces a status or assignment change.
	BroadcastParcelUpdate(parcel *entity.Parcel)

	// BroadcastParcelLocation announces a location and ETA refresh.
	BroadcastParcelLocation(parcel *entity.Parcel)
}
