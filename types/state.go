package types

// SubscriberState represents the subscription handle lifecycle state.
//
// States follow a defined progression:
//
//	StateAlive → StateClosing → StateClosed   (explicit close)
//	StateAlive → StateDropped                 (implicit teardown)
//
// StateClosed and StateDropped are terminal. A handle leaves StateAlive exactly once,
// which guarantees that at most one undeclaration is issued per subscription record.
type SubscriberState int32

const (
	// StateAlive is the initial state after a successful declaration.
	StateAlive SubscriberState = iota

	// StateClosing indicates an explicit close was initiated and the undeclaration
	// has not completed yet.
	StateClosing

	// StateClosed indicates the explicit close completed (successfully or not).
	StateClosed

	// StateDropped indicates the handle was released without an explicit close.
	StateDropped
)

// String returns the string representation of the state.
func (s SubscriberState) String() string {
	switch s {
	case StateAlive:
		return "Alive"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	case StateDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s SubscriberState) Terminal() bool {
	return s == StateClosed || s == StateDropped
}
