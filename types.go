package keysub

import "github.com/arloliu/keysub/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types. It uses type
// aliases so session implementations can depend on `types` without importing the
// root package, while users still write keysub.Sample, keysub.Logger and so on.
type (
	KeyExpr          = types.KeyExpr
	Sample           = types.Sample
	SampleKind       = types.SampleKind
	Reliability      = types.Reliability
	Mode             = types.Mode
	Period           = types.Period
	SubInfo          = types.SubInfo
	SubscriberConfig = types.SubscriberConfig
	SubscriberState  = types.SubscriberState
	Record           = types.Record
	Consumer         = types.Consumer
)

// Re-export interfaces from the types package for convenience.
type (
	Session          = types.Session
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export constants from the types package.
const (
	Reliable   = types.Reliable
	BestEffort = types.BestEffort

	Push = types.Push
	Pull = types.Pull

	SampleKindPut    = types.SampleKindPut
	SampleKindDelete = types.SampleKindDelete

	StateAlive   = types.StateAlive
	StateClosing = types.StateClosing
	StateClosed  = types.StateClosed
	StateDropped = types.StateDropped
)
