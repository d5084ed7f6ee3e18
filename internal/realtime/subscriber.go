package realtime

// Subscriber is a handle to one live connection. The transport layer owns the
// connection lifetime; topics only hold back-references through this interface.
type Subscriber interface {
	// ID identifies the connection, not the user; a reconnect yields a new ID.
	ID() string

	// Send delivers an event best-effort. It must not block: implementations
	// queue into a bounded buffer and report false when the event was dropped.
	Send(event Event) bool
}
