package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the keysub library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Declaration errors - returned when a subscription cannot be registered.
var (
	// ErrInvalidKeyExpr is returned when a key expression is malformed.
	ErrInvalidKeyExpr = errors.New("invalid key expression")

	// ErrSessionRequired is returned when a nil session is supplied.
	ErrSessionRequired = errors.New("session is required")

	// ErrNilCallback is returned when a callback subscription has no callback.
	ErrNilCallback = errors.New("callback is required")

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Handle errors - returned by operations on a subscription handle.
var (
	// ErrSubscriberClosed is returned when operating on a closed or dropped subscriber.
	ErrSubscriberClosed = errors.New("subscriber already closed")

	// ErrPullNotSupported is returned by sessions that reject a pull on a push subscriber.
	ErrPullNotSupported = errors.New("pull is not supported by push subscribers")
)

// Session errors - returned by session implementations.
var (
	// ErrSessionClosed is returned when the session has been closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrSubscriberNotFound is returned when undeclaring an unknown subscriber ID.
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// IsClosedError checks if an error indicates that the subscriber or its session is
// already gone.
//
// This function handles both sentinel errors and NATS client errors which may come as:
//   - Direct error: "nats: connection closed"
//   - Wrapped error: "failed to unsubscribe: nats: connection closed"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates a closed subscriber or session, false otherwise
func IsClosedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSubscriberClosed) || errors.Is(err, ErrSessionClosed) {
		return true
	}

	return strings.Contains(err.Error(), "connection closed")
}
