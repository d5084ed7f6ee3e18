// Package realtime implements the event distribution core: the topic
// registry, the shared agent location cache and the router translating
// inbound connection events into topic broadcasts.
package realtime

// Inbound event types carried over the socket transport.
const (
	EventAgentLocationUpdate  = "agent:location:update"
	EventAgentLocationRequest = "request:agent:location"
	EventSubscribeParcel      = "subscribe:parcel"
	EventUnsubscribeParcel    = "unsubscribe:parcel"
)

// Outbound event types.
const (
	EventParcelLocation = "parcel:location"
	EventParcelUpdate   = "parcel:update"
	EventParcelCreated  = "parcel:created"
)

// Event is the unit of distribution: a type tag plus a JSON-marshalable payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// LocationPayload is the wire form of a coordinate pair.
type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AgentLocationPayload is the outbound form of an agent location sample.
// Timestamp is unix milliseconds, matching what agent devices report.
type AgentLocationPayload struct {
	AgentID   string          `json:"agentId"`
	Location  LocationPayload `json:"location"`
	Timestamp int64           `json:"timestamp"`
	SpeedKmh  *float64        `json:"speedKmh,omitempty"`
}

// AgentLocationRequestPayload asks the agent's own client to push a fresh sample.
type AgentLocationRequestPayload struct {
	AgentID string `json:"agentId"`
}

// ParcelLocationPayload is the outbound parcel-scoped location event.
type ParcelLocationPayload struct {
	ID              string           `json:"id"`
	CurrentLocation *LocationPayload `json:"currentLocation"`
	EtaMinutes      *int             `json:"etaMinutes"`
}

// ParcelUpdatePayload is the outbound status change event.
type ParcelUpdatePayload struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Agent  *string `json:"agent"`
}

// ParcelCreatedPayload announces a new parcel on the global feed.
type ParcelCreatedPayload struct {
	ID           string `json:"id"`
	TrackingCode string `json:"trackingCode"`
	Status       string `json:"status"`
}
