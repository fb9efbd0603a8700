package keysub

import (
	"github.com/arloliu/keysub/deferred"
	"github.com/arloliu/keysub/handler"
	"github.com/arloliu/keysub/types"
)

// Sentinel errors re-exported from the types, deferred and handler packages.
var (
	// ErrInvalidKeyExpr is returned when a key expression is malformed.
	ErrInvalidKeyExpr = types.ErrInvalidKeyExpr

	// ErrSessionRequired is returned when NewClient is given a nil session.
	ErrSessionRequired = types.ErrSessionRequired

	// ErrNilCallback is returned when a callback subscription has no callback.
	ErrNilCallback = types.ErrNilCallback

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrSubscriberClosed is returned when operating on a closed or dropped subscriber.
	ErrSubscriberClosed = types.ErrSubscriberClosed

	// ErrPullNotSupported is returned by sessions that reject a pull on a push subscriber.
	ErrPullNotSupported = types.ErrPullNotSupported

	// ErrSessionClosed is returned when the session has been closed.
	ErrSessionClosed = types.ErrSessionClosed

	// ErrSubscriberNotFound is returned when undeclaring an unknown subscriber.
	ErrSubscriberNotFound = types.ErrSubscriberNotFound

	// ErrConsumed is returned by a second resolution of an action.
	ErrConsumed = deferred.ErrConsumed

	// ErrPanicked is returned by a started action whose work panicked.
	ErrPanicked = deferred.ErrPanicked

	// ErrDetached is returned by handler receivers once detached and drained.
	ErrDetached = handler.ErrDetached
)
