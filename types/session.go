package types

import (
	"context"
	"fmt"
)

// Consumer receives delivered samples.
//
// A consumer is invoked by the session's delivery goroutines, possibly concurrently
// with the goroutine that owns the subscription handle, and must be safe for that.
type Consumer func(Sample)

// Session is the boundary to the runtime that performs registration, routing and
// delivery. keysub never talks to the network directly; every declaration and
// teardown goes through exactly one of these calls.
//
// Implementations must be safe for concurrent use.
type Session interface {
	// DeclareSubscriber registers a networked subscriber.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - keyExpr: Key expression of interest
	//   - consumer: Consumer receiving matching samples; ownership moves to the session
	//   - info: Reliability, mode and period requested by the caller
	//
	// Returns:
	//   - *Record: The subscription record created by the session
	//   - error: Declaration failure; no record exists in that case
	DeclareSubscriber(ctx context.Context, keyExpr KeyExpr, consumer Consumer, info SubInfo) (*Record, error)

	// DeclareLocalSubscriber registers a subscriber that only matches publications
	// made through the same session. It bypasses network registration entirely.
	DeclareLocalSubscriber(ctx context.Context, keyExpr KeyExpr, consumer Consumer) (*Record, error)

	// UndeclareSubscriber destroys the record with the given ID.
	UndeclareSubscriber(ctx context.Context, id uint64) error

	// Pull asks the session to release samples buffered for pull subscribers on keyExpr.
	Pull(ctx context.Context, keyExpr KeyExpr) error
}

// Record is the session-owned subscription record.
//
// It is created once at registration and never mutated afterwards; handles keep a
// read-only reference to it.
type Record struct {
	id       uint64
	keyExpr  KeyExpr
	consumer Consumer
	info     SubInfo
	local    bool
}

// NewRecord creates a subscription record. Session implementations call this when a
// declaration succeeds.
//
// Parameters:
//   - id: Session-unique subscriber ID
//   - keyExpr: Declared key expression
//   - consumer: Consumer receiving matching samples
//   - info: Declared transport options (zero value for local declarations)
//   - local: true for local-only declarations
//
// Returns:
//   - *Record: Immutable subscription record
func NewRecord(id uint64, keyExpr KeyExpr, consumer Consumer, info SubInfo, local bool) *Record {
	return &Record{id: id, keyExpr: keyExpr, consumer: consumer, info: info, local: local}
}

// ID returns the session-unique subscriber ID.
func (r *Record) ID() uint64 { return r.id }

// KeyExpr returns the declared key expression.
func (r *Record) KeyExpr() KeyExpr { return r.keyExpr }

// Info returns the declared transport options.
func (r *Record) Info() SubInfo { return r.info }

// Local reports whether the record was declared local-only.
func (r *Record) Local() bool { return r.local }

// Deliver hands a sample to the record's consumer.
func (r *Record) Deliver(s Sample) {
	if r.consumer != nil {
		r.consumer(s)
	}
}

// String implements fmt.Stringer.
func (r *Record) String() string {
	return fmt.Sprintf("Subscriber{ id:%d, key_expr:%s }", r.id, r.keyExpr)
}
