package entity

// Status is the lifecycle state of a parcel.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// statusOrder positions each non-terminal-failure state on the forward chain.
var statusOrder = map[Status]int{
	StatusPending:   0,
	StatusAssigned:  1,
	StatusPickedUp:  2,
	StatusInTransit: 3,
	StatusDelivered: 4,
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusOrder[s]

	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// Next returns the immediate forward successor on the chain, if any.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusAssigned, true
	case StatusAssigned:
		return StatusPickedUp, true
	case StatusPickedUp:
		return StatusInTransit, true
	case StatusInTransit:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// CanAdvanceTo reports whether a direct transition from s to target is legal.
// The chain is strictly forward, one step at a time. Failed is reachable from
// any non-terminal state. Delivered is never reachable directly; it is granted
// only by the delivery OTP confirmation.
func (s Status) CanAdvanceTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusFailed {
		return true
	}
	if target == StatusDelivered {
		return false
	}

	next, ok := s.Next()

	return ok && target == next
}
