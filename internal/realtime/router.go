package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"courier/internal/domain/entity"
	"courier/internal/errors"

	"github.com/go-playground/validator/v10"
)

// inboundAgentLocation is the payload of an agent's own location report.
type inboundAgentLocation struct {
	AgentID  string `json:"agentId" validate:"required"`
	Location struct {
		Lat float64 `json:"lat" validate:"min=-90,max=90"`
		Lng float64 `json:"lng" validate:"min=-180,max=180"`
	} `json:"location"`
	Timestamp int64 `json:"timestamp" validate:"required,gt=0"`
}

// inboundAgentLocationRequest asks for an agent's last known location.
type inboundAgentLocationRequest struct {
	AgentID string `json:"agentId" validate:"required"`
}

// inboundParcelSubscription joins or leaves a parcel topic.
type inboundParcelSubscription struct {
	ParcelID string `json:"parcelId" validate:"required"`
}

type inboundHandler func(sub Subscriber, data json.RawMessage) error

// EventRouter translates inbound connection events into cache updates and
// topic broadcasts. One router instance serves all connections; every handler
// is safe for concurrent use. A malformed event is dropped with a warning and
// never disturbs other connections.
type EventRouter struct {
	cache    *LocationCache
	topics   *TopicRegistry
	validate *validator.Validate
	logger   *slog.Logger
	handlers map[string]inboundHandler
}

// NewEventRouter wires the dispatch table.
func NewEventRouter(cache *LocationCache, topics *TopicRegistry, logger *slog.Logger) *EventRouter {
	router := &EventRouter{
		cache:    cache,
		topics:   topics,
		validate: validator.New(),
		logger:   logger,
	}

	router.handlers = map[string]inboundHandler{
		EventAgentLocationUpdate:  router.handleAgentLocation,
		EventAgentLocationRequest: router.handleAgentLocationRequest,
		EventSubscribeParcel:      router.handleSubscribeParcel,
		EventUnsubscribeParcel:    router.handleUnsubscribeParcel,
	}

	return router
}

// AttachConnection registers a new connection. A connection carrying a user ID
// is auto-subscribed to its direct reply topic; this is the only implicit
// subscription.
func (r *EventRouter) AttachConnection(sub Subscriber, userID string) {
	if userID != "" {
		r.topics.Subscribe(UserTopic(userID), sub)
	}
	r.topics.SubscribeGlobal(sub)
}

// DetachConnection removes a disconnecting connection from every topic.
func (r *EventRouter) DetachConnection(sub Subscriber) {
	r.topics.DropConnection(sub)
}

// HandleInbound dispatches one inbound event from a connection. Unknown types
// and malformed payloads are logged and dropped; the dispatch loop never fails.
func (r *EventRouter) HandleInbound(sub Subscriber, eventType string, data json.RawMessage) {
	handler, ok := r.handlers[eventType]
	if !ok {
		r.logger.Warn("unknown inbound event",
			slog.String("event", eventType),
			slog.String("subscriber", sub.ID()),
		)

		return
	}

	if err := handler(sub, data); err != nil {
		r.logger.Warn("dropped inbound event",
			slog.String("event", eventType),
			slog.String("subscriber", sub.ID()),
			slog.Any("error", err),
		)
	}
}

func (r *EventRouter) decode(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return errors.Wrap(err, "unmarshal payload")
	}
	if err := r.validate.Struct(payload); err != nil {
		return errors.Wrap(err, "validate payload")
	}

	return nil
}

// handleAgentLocation applies a location report to the cache and fans the
// update out on the agent's direct topic and the global dashboard feed.
// Stale samples are dropped silently; subscribers never see them.
func (r *EventRouter) handleAgentLocation(sub Subscriber, data json.RawMessage) error {
	var payload inboundAgentLocation
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	sample := entity.Location{
		Latitude:   payload.Location.Lat,
		Longitude:  payload.Location.Lng,
		CapturedAt: time.UnixMilli(payload.Timestamp),
	}

	if err := r.cache.Report(payload.AgentID, sample); err != nil {
		if errors.Is(err, ErrStaleSample) {
			r.logger.Debug("stale location sample dropped",
				slog.String("agentId", payload.AgentID),
			)

			return nil
		}

		return err
	}

	event := Event{Type: EventAgentLocationUpdate, Data: r.agentLocationPayload(payload.AgentID, sample)}
	r.topics.Publish(UserTopic(payload.AgentID), event)
	r.topics.PublishGlobal(event)

	return nil
}

// handleAgentLocationRequest replies directly with the cached sample when one
// exists and always broadcasts the request so the agent's own client can push
// a fresh sample.
func (r *EventRouter) handleAgentLocationRequest(sub Subscriber, data json.RawMessage) error {
	var payload inboundAgentLocationRequest
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	if current, ok := r.cache.CurrentOf(payload.AgentID); ok {
		sub.Send(Event{
			Type: EventAgentLocationUpdate,
			Data: r.agentLocationPayload(payload.AgentID, current),
		})
	}

	r.topics.PublishGlobal(Event{
		Type: EventAgentLocationRequest,
		Data: AgentLocationRequestPayload{AgentID: payload.AgentID},
	})

	return nil
}

func (r *EventRouter) handleSubscribeParcel(sub Subscriber, data json.RawMessage) error {
	var payload inboundParcelSubscription
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	r.topics.Subscribe(ParcelTopic(payload.ParcelID), sub)

	return nil
}

func (r *EventRouter) handleUnsubscribeParcel(sub Subscriber, data json.RawMessage) error {
	var payload inboundParcelSubscription
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	r.topics.Unsubscribe(ParcelTopic(payload.ParcelID), sub)

	return nil
}

func (r *EventRouter) agentLocationPayload(agentID string, sample entity.Location) AgentLocationPayload {
	payload := AgentLocationPayload{
		AgentID:   agentID,
		Location:  LocationPayload{Lat: sample.Latitude, Lng: sample.Longitude},
		Timestamp: sample.CapturedAt.UnixMilli(),
	}
	if speed, ok := r.cache.SpeedOf(agentID); ok {
		payload.SpeedKmh = &speed
	}

	return payload
}

// BroadcastParcelUpdate publishes a successful status change to the parcel's
// topic and the global feed. Rejected transitions are never broadcast.
func (r *EventRouter) BroadcastParcelUpdate(parcel *entity.Parcel) {
	payload := ParcelUpdatePayload{
		ID:     parcel.ID.String(),
		Status: string(parcel.Status),
	}
	if parcel.AgentID != nil {
		agent := parcel.AgentID.String()
		payload.Agent = &agent
	}

	event := Event{Type: EventParcelUpdate, Data: payload}
	r.topics.Publish(ParcelTopic(payload.ID), event)
	r.topics.PublishGlobal(event)
}

// BroadcastParcelLocation publishes a parcel-scoped location update to the
// parcel's viewers.
func (r *EventRouter) BroadcastParcelLocation(parcel *entity.Parcel) {
	payload := ParcelLocationPayload{
		ID:         parcel.ID.String(),
		EtaMinutes: parcel.EtaMinutes,
	}
	if parcel.CurrentLocation != nil {
		payload.CurrentLocation = &LocationPayload{
			Lat: parcel.CurrentLocation.Latitude,
			Lng: parcel.CurrentLocation.Longitude,
		}
	}

	r.topics.Publish(ParcelTopic(payload.ID), Event{Type: EventParcelLocation, Data: payload})
}

// BroadcastParcelCreated announces a new parcel on the global feed only; no
// per-entity topic exists for it yet.
func (r *EventRouter) BroadcastParcelCreated(parcel *entity.Parcel) {
	r.topics.PublishGlobal(Event{Type: EventParcelCreated, Data: ParcelCreatedPayload{
		ID:           parcel.ID.String(),
		TrackingCode: parcel.TrackingCode,
		Status:       string(parcel.Status),
	}})
}
