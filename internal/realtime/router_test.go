package realtime

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"courier/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*EventRouter, *LocationCache, *TopicRegistry) {
	cache := NewLocationCache(120)
	topics := NewTopicRegistry(newDiscardLogger())
	router := NewEventRouter(cache, topics, newDiscardLogger())

	return router, cache, topics
}

func rawJSON(t *testing.T, format string, args ...any) json.RawMessage {
	t.Helper()

	return json.RawMessage(fmt.Sprintf(format, args...))
}

func TestEventRouter_AgentLocationUpdate(t *testing.T) {
	router, cache, _ := newTestRouter()

	agentConn := newFakeSubscriber("conn-agent")
	dashboard := newFakeSubscriber("conn-dashboard")
	router.AttachConnection(agentConn, "agent-1")
	router.AttachConnection(dashboard, "")

	ts := time.Now().UnixMilli()
	router.HandleInbound(agentConn, EventAgentLocationUpdate,
		rawJSON(t, `{"agentId":"agent-1","location":{"lat":23.81,"lng":90.40},"timestamp":%d}`, ts))

	current, ok := cache.CurrentOf("agent-1")
	require.True(t, ok)
	assert.Equal(t, 23.81, current.Latitude)

	// The agent's direct topic and the global feed both receive the update;
	// the agent connection is on both, the dashboard only on global.
	assert.Equal(t, []string{EventAgentLocationUpdate, EventAgentLocationUpdate}, agentConn.EventTypes())
	assert.Equal(t, []string{EventAgentLocationUpdate}, dashboard.EventTypes())
}

func TestEventRouter_StaleSampleNotBroadcast(t *testing.T) {
	router, _, _ := newTestRouter()

	agentConn := newFakeSubscriber("conn-agent")
	dashboard := newFakeSubscriber("conn-dashboard")
	router.AttachConnection(agentConn, "agent-1")
	router.AttachConnection(dashboard, "")

	ts := time.Now().UnixMilli()
	router.HandleInbound(agentConn, EventAgentLocationUpdate,
		rawJSON(t, `{"agentId":"agent-1","location":{"lat":23.81,"lng":90.40},"timestamp":%d}`, ts))
	// Same timestamp again: dropped silently, no second broadcast.
	router.HandleInbound(agentConn, EventAgentLocationUpdate,
		rawJSON(t, `{"agentId":"agent-1","location":{"lat":23.99,"lng":90.40},"timestamp":%d}`, ts))

	assert.Len(t, dashboard.Events(), 1)
}

func TestEventRouter_LocationRequest(t *testing.T) {
	router, cache, _ := newTestRouter()

	requester := newFakeSubscriber("conn-admin")
	agentConn := newFakeSubscriber("conn-agent")
	router.AttachConnection(requester, "admin-1")
	router.AttachConnection(agentConn, "agent-1")

	// No cached sample yet: only the global request broadcast goes out.
	router.HandleInbound(requester, EventAgentLocationRequest, rawJSON(t, `{"agentId":"agent-1"}`))
	assert.Equal(t, []string{EventAgentLocationRequest}, requester.EventTypes())
	assert.Equal(t, []string{EventAgentLocationRequest}, agentConn.EventTypes())

	// With a cached sample the requester additionally gets a direct reply.
	require.NoError(t, cache.Report("agent-1", entity.Location{
		Latitude: 23.81, Longitude: 90.40, CapturedAt: time.Now(),
	}))
	router.HandleInbound(requester, EventAgentLocationRequest, rawJSON(t, `{"agentId":"agent-1"}`))

	types := requester.EventTypes()
	assert.Contains(t, types, EventAgentLocationUpdate)
	assert.Len(t, types, 3)
}

func TestEventRouter_ParcelSubscription(t *testing.T) {
	router, _, topics := newTestRouter()

	viewer := newFakeSubscriber("conn-viewer")
	router.AttachConnection(viewer, "user-9")

	router.HandleInbound(viewer, EventSubscribeParcel, rawJSON(t, `{"parcelId":"42"}`))
	assert.Equal(t, 1, topics.SubscriberCount(ParcelTopic("42")))

	router.HandleInbound(viewer, EventUnsubscribeParcel, rawJSON(t, `{"parcelId":"42"}`))
	assert.Equal(t, 0, topics.SubscriberCount(ParcelTopic("42")))
}

func TestEventRouter_MalformedEventsDropped(t *testing.T) {
	router, _, topics := newTestRouter()

	conn := newFakeSubscriber("conn-1")
	router.AttachConnection(conn, "")

	router.HandleInbound(conn, EventAgentLocationUpdate, rawJSON(t, `{"not json"`))
	router.HandleInbound(conn, EventAgentLocationUpdate, rawJSON(t, `{"location":{"lat":1,"lng":2},"timestamp":5}`))
	router.HandleInbound(conn, EventSubscribeParcel, rawJSON(t, `{}`))
	router.HandleInbound(conn, "no:such:event", rawJSON(t, `{}`))

	// The connection survives and nothing was subscribed or broadcast.
	assert.Empty(t, conn.Events())
	assert.Equal(t, 1, topics.TopicCount(), "only the global topic exists")
}

func TestEventRouter_ParcelUpdateReachesExactlyItsViewers(t *testing.T) {
	router, _, _ := newTestRouter()

	viewer1 := newFakeSubscriber("conn-1")
	viewer2 := newFakeSubscriber("conn-2")
	bystander := newFakeSubscriber("conn-3")
	router.AttachConnection(viewer1, "")
	router.AttachConnection(viewer2, "")
	router.AttachConnection(bystander, "7")

	parcelID := uuid.New()
	router.HandleInbound(viewer1, EventSubscribeParcel, rawJSON(t, `{"parcelId":%q}`, parcelID))
	router.HandleInbound(viewer2, EventSubscribeParcel, rawJSON(t, `{"parcelId":%q}`, parcelID))

	agentID := uuid.New()
	router.BroadcastParcelUpdate(&entity.Parcel{
		ID:      parcelID,
		Status:  entity.StatusInTransit,
		AgentID: &agentID,
	})

	// Viewers see the parcel topic copy plus the global copy; the bystander
	// sees only the global copy.
	assert.Len(t, viewer1.Events(), 2)
	assert.Len(t, viewer2.Events(), 2)
	assert.Len(t, bystander.Events(), 1)

	payload, ok := viewer1.Events()[0].Data.(ParcelUpdatePayload)
	require.True(t, ok)
	assert.Equal(t, string(entity.StatusInTransit), payload.Status)
	require.NotNil(t, payload.Agent)
	assert.Equal(t, agentID.String(), *payload.Agent)
}

func TestEventRouter_ParcelLocationBroadcast(t *testing.T) {
	router, _, _ := newTestRouter()

	viewer := newFakeSubscriber("conn-1")
	router.AttachConnection(viewer, "")

	parcelID := uuid.New()
	router.HandleInbound(viewer, EventSubscribeParcel, rawJSON(t, `{"parcelId":%q}`, parcelID))

	eta := 20
	router.BroadcastParcelLocation(&entity.Parcel{
		ID:              parcelID,
		CurrentLocation: &entity.Location{Latitude: 23.81, Longitude: 90.40, CapturedAt: time.Now()},
		EtaMinutes:      &eta,
	})

	events := viewer.Events()
	require.Len(t, events, 1)
	payload, ok := events[0].Data.(ParcelLocationPayload)
	require.True(t, ok)
	require.NotNil(t, payload.CurrentLocation)
	assert.Equal(t, 23.81, payload.CurrentLocation.Lat)
	require.NotNil(t, payload.EtaMinutes)
	assert.Equal(t, 20, *payload.EtaMinutes)
}

func TestEventRouter_ParcelCreatedGlobalOnly(t *testing.T) {
	router, _, _ := newTestRouter()

	dashboard := newFakeSubscriber("conn-dash")
	router.AttachConnection(dashboard, "")

	router.BroadcastParcelCreated(&entity.Parcel{
		ID:           uuid.New(),
		TrackingCode: "TRK-0001",
		Status:       entity.StatusPending,
	})

	events := dashboard.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventParcelCreated, events[0].Type)
}

func TestEventRouter_DetachConnection(t *testing.T) {
	router, _, topics := newTestRouter()

	viewer := newFakeSubscriber("conn-1")
	router.AttachConnection(viewer, "user-1")
	router.HandleInbound(viewer, EventSubscribeParcel, rawJSON(t, `{"parcelId":"42"}`))

	router.DetachConnection(viewer)

	assert.Equal(t, 0, topics.SubscriberCount(ParcelTopic("42")))
	assert.Equal(t, 0, topics.SubscriberCount(UserTopic("user-1")))

	topics.PublishGlobal(Event{Type: EventParcelCreated})
	assert.Empty(t, viewer.Events())
}
