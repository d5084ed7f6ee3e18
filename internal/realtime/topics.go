package realtime

import (
	"log/slog"
	"sync"
)

// globalTopic is the reserved key receiving every dashboard-wide event.
const globalTopic = "global"

// UserTopic returns the topic key for a user's direct reply path.
func UserTopic(userID string) string {
	return "user:" + userID
}

// ParcelTopic returns the topic key for parcel-scoped viewers.
func ParcelTopic(parcelID string) string {
	return "parcel:" + parcelID
}

// TopicRegistry maps topic keys to the set of subscribed connections.
// Topics are created lazily on first subscribe and garbage-collected when
// their subscriber set becomes empty. All methods are safe for concurrent use.
type TopicRegistry struct {
	mu sync.RWMutex

	// topics maps topic key -> subscriber ID -> subscriber.
	topics map[string]map[string]Subscriber

	// memberships maps subscriber ID -> set of topic keys, so dropping a
	// connection does not scan every topic.
	memberships map[string]map[string]struct{}

	logger *slog.Logger
}

// NewTopicRegistry creates an empty registry.
func NewTopicRegistry(logger *slog.Logger) *TopicRegistry {
	return &TopicRegistry{
		topics:      make(map[string]map[string]Subscriber),
		memberships: make(map[string]map[string]struct{}),
		logger:      logger,
	}
}

// Subscribe adds the connection to a topic. Subscribing twice is a no-op.
func (r *TopicRegistry) Subscribe(topicKey string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.topics[topicKey]
	if !ok {
		subs = make(map[string]Subscriber)
		r.topics[topicKey] = subs
	}
	subs[sub.ID()] = sub

	member, ok := r.memberships[sub.ID()]
	if !ok {
		member = make(map[string]struct{})
		r.memberships[sub.ID()] = member
	}
	member[topicKey] = struct{}{}
}

// Unsubscribe removes the connection from a topic. Unsubscribing a connection
// that is not present, or from a topic that does not exist, is a no-op.
func (r *TopicRegistry) Unsubscribe(topicKey string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(topicKey, sub.ID())
}

// DropConnection removes the connection from every topic it belongs to.
// Called once by the transport layer on disconnect; safe to race with Publish.
func (r *TopicRegistry) DropConnection(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topicKey := range r.memberships[sub.ID()] {
		r.removeLocked(topicKey, sub.ID())
	}
}

// removeLocked deletes a membership edge and garbage-collects empty sets.
func (r *TopicRegistry) removeLocked(topicKey, subID string) {
	if subs, ok := r.topics[topicKey]; ok {
		delete(subs, subID)
		if len(subs) == 0 {
			delete(r.topics, topicKey)
		}
	}
	if member, ok := r.memberships[subID]; ok {
		delete(member, topicKey)
		if len(member) == 0 {
			delete(r.memberships, subID)
		}
	}
}

// Publish delivers the event to every connection currently subscribed to the
// topic, best-effort. The subscriber set is snapshotted before sending so a
// slow receiver can never stall updates to others.
func (r *TopicRegistry) Publish(topicKey string, event Event) {
	r.mu.RLock()
	subs := r.topics[topicKey]
	snapshot := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	for _, sub := range snapshot {
		if !sub.Send(event) {
			r.logger.Warn("dropped event for slow subscriber",
				slog.String("topic", topicKey),
				slog.String("event", event.Type),
				slog.String("subscriber", sub.ID()),
			)
		}
	}
}

// PublishGlobal delivers the event to the reserved all-connections topic.
func (r *TopicRegistry) PublishGlobal(event Event) {
	r.Publish(globalTopic, event)
}

// SubscribeGlobal adds the connection to the reserved all-connections topic.
func (r *TopicRegistry) SubscribeGlobal(sub Subscriber) {
	r.Subscribe(globalTopic, sub)
}

// SubscriberCount reports how many connections a topic currently has.
func (r *TopicRegistry) SubscriberCount(topicKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.topics[topicKey])
}

// TopicCount reports how many live topics exist.
func (r *TopicRegistry) TopicCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.topics)
}
