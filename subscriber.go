package keysub

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/arloliu/keysub/deferred"
	"github.com/arloliu/keysub/types"
)

// Undeclare reasons reported through MetricsCollector.RecordUndeclare.
const (
	UndeclareReasonClose = "close"
	UndeclareReasonDrop  = "drop"
)

// lifecycle is the liveness state shared by every handle referencing one record.
type lifecycle struct {
	client *Client
	record *types.Record
	state  atomic.Int32 // types.SubscriberState
	refs   atomic.Int32 // handles not yet closed or dropped

	// onUndeclare detaches a handler receiver; set once before the first handle escapes.
	onUndeclare func()
}

func (l *lifecycle) undeclared() {
	if l.onUndeclare != nil {
		l.onUndeclare()
	}
}

func (l *lifecycle) load() types.SubscriberState {
	return types.SubscriberState(l.state.Load())
}

// transition moves the state from Alive to next. It returns false when the state was
// no longer Alive, in which case no undeclare may be issued.
func (l *lifecycle) transition(next types.SubscriberState) bool {
	return l.state.CompareAndSwap(int32(types.StateAlive), int32(next))
}

// dropUndeclare performs the best-effort undeclare of the drop path.
func (l *lifecycle) dropUndeclare() {
	c := l.client
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DropTimeout)
	defer cancel()

	if err := c.undeclare(ctx, l.record, UndeclareReasonDrop); err != nil {
		c.logger.Debug("ignoring undeclare error on drop", "id", l.record.ID(), "error", err)
	}
	l.undeclared()
}

// handleRef tracks whether one handle has been released. It is kept apart from the
// handle so the GC cleanup can reach it without keeping the handle alive.
type handleRef struct {
	life     *lifecycle
	released atomic.Bool
}

// release gives up this handle's reference. It reports whether the caller must issue
// the drop undeclare, which happens when this was the last live reference.
func (r *handleRef) release() bool {
	if !r.released.CompareAndSwap(false, true) {
		return false
	}
	if r.life.refs.Add(-1) > 0 {
		return false
	}

	return r.life.transition(types.StateDropped)
}

// Subscriber is a live subscription handle.
//
// A subscriber is alive from a successful declaration until it is closed or dropped.
// Exactly one undeclare call is issued per subscription, whichever of Close, Drop or
// garbage collection happens first, and however many handles (see Clone) share it.
//
// Letting an alive Subscriber become unreachable undeclares it in the background on a
// best-effort basis. Prefer Close when the result matters, or defer Drop for scoped
// release.
type Subscriber struct {
	ref *handleRef
	cfg types.SubscriberConfig
}

func newSubscriber(c *Client, rec *types.Record, cfg types.SubscriberConfig) *Subscriber {
	life := &lifecycle{client: c, record: rec}
	life.state.Store(int32(types.StateAlive))

	return attach(life, cfg)
}

func attach(life *lifecycle, cfg types.SubscriberConfig) *Subscriber {
	life.refs.Add(1)
	s := &Subscriber{ref: &handleRef{life: life}, cfg: cfg}
	runtime.AddCleanup(s, collectHandle, s.ref)

	return s
}

// collectHandle runs after a handle became unreachable.
func collectHandle(ref *handleRef) {
	if !ref.release() {
		return
	}

	life := ref.life
	life.client.logger.Debug("subscriber handle collected while alive, undeclaring", "id", life.record.ID())
	// Cleanups share one goroutine, so the session call runs elsewhere.
	if err := life.client.executor.Submit(life.dropUndeclare); err != nil {
		go life.dropUndeclare()
	}
}

// ID returns the session-assigned subscriber ID.
func (s *Subscriber) ID() uint64 {
	return s.ref.life.record.ID()
}

// KeyExpr returns the declared key expression.
func (s *Subscriber) KeyExpr() KeyExpr {
	return s.ref.life.record.KeyExpr()
}

// Config returns the configuration the subscriber was declared with.
func (s *Subscriber) Config() SubscriberConfig {
	return s.cfg
}

// State returns the shared lifecycle state.
func (s *Subscriber) State() SubscriberState {
	return s.ref.life.load()
}

// Alive reports whether the subscription is still declared and not closing.
func (s *Subscriber) Alive() bool {
	return s.State() == types.StateAlive
}

// Clone returns another handle on the same subscription.
//
// Handles share liveness: closing either closes both, and an implicit drop only
// undeclares once every handle has been dropped or collected.
func (s *Subscriber) Clone() *Subscriber {
	return attach(s.ref.life, s.cfg)
}

// Pull asks the session to release samples buffered for this subscriber.
//
// The request is forwarded regardless of mode; sessions reject it for push subscribers.
//
// Returns:
//   - error: ErrSubscriberClosed after Close or Drop, or the wrapped session error
func (s *Subscriber) Pull(ctx context.Context) error {
	life := s.ref.life
	if life.load() != types.StateAlive {
		return ErrSubscriberClosed
	}

	err := life.client.session.Pull(ctx, life.record.KeyExpr())
	life.client.metrics.RecordPull(err == nil)
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", life.record.KeyExpr(), err)
	}

	return nil
}

// Close marks the subscription closed and returns an action performing the undeclare.
//
// Liveness flips before Close returns, so Alive reports false and no other path can
// undeclare. The undeclare runs when the action is resolved; its error is surfaced
// there and the subscription stays closed either way. An action that is never
// resolved still undeclares, in the background and with errors discarded, once it is
// garbage collected. Closing a subscription that is no longer alive resolves to
// ErrSubscriberClosed without calling the session.
//
// Returns:
//   - *deferred.Action[struct{}]: Unresolved undeclare; it must be resolved
//
// Example:
//
//	if err := sub.Close().WaitContext(ctx); err != nil {
//	    log.Printf("undeclare failed: %v", err)
//	}
func (s *Subscriber) Close() *deferred.Action[struct{}] {
	life := s.ref.life
	s.ref.released.Store(true)
	if !life.transition(types.StateClosing) {
		return deferred.Ready(struct{}{}, ErrSubscriberClosed)
	}

	claim := &closeClaim{life: life}
	act := newAction(life.client, func(ctx context.Context) (struct{}, error) {
		if !claim.claimed.CompareAndSwap(false, true) {
			return struct{}{}, nil
		}
		err := life.client.undeclare(ctx, life.record, UndeclareReasonClose)
		life.state.Store(int32(types.StateClosed))
		life.undeclared()

		return struct{}{}, err
	})
	runtime.AddCleanup(act, collectCloseAction, claim)

	return act
}

// closeClaim decides whether a Close action or its GC cleanup issues the undeclare.
type closeClaim struct {
	life    *lifecycle
	claimed atomic.Bool
}

// collectCloseAction runs after a Close action became unreachable. A started action
// may still be running, so the claim picks exactly one undeclare.
func collectCloseAction(c *closeClaim) {
	if !c.claimed.CompareAndSwap(false, true) {
		return
	}

	life := c.life
	life.client.logger.Debug("close action collected unresolved, undeclaring", "id", life.record.ID())
	task := func() {
		life.dropUndeclare()
		life.state.Store(int32(types.StateClosed))
	}
	if err := life.client.executor.Submit(task); err != nil {
		go task()
	}
}

// Drop releases this handle. When it is the last live handle of an alive
// subscription, the subscription is undeclared synchronously and any error is
// discarded. Drop is idempotent and is a no-op after Close.
//
//	sub, err := builder.Declare().Wait()
//	if err != nil {
//	    return err
//	}
//	defer sub.Drop()
func (s *Subscriber) Drop() {
	if s.ref.release() {
		s.ref.life.dropUndeclare()
	}
}

// String returns the debug form "Subscriber{ id:N, key_expr:K }".
func (s *Subscriber) String() string {
	return s.ref.life.record.String()
}

// HandlerSubscriber is a Subscriber paired with the receiver its samples go to.
//
// Once the subscription is undeclared, by Close, Drop or collection of the handle,
// a receiver with a Detach method is detached so readers drain what is buffered and
// then stop.
type HandlerSubscriber[R any] struct {
	*Subscriber
	receiver R
}

func newHandlerSubscriber[R any](sub *Subscriber, receiver R) *HandlerSubscriber[R] {
	sub.ref.life.onUndeclare = func() { detach(receiver) }

	return &HandlerSubscriber[R]{Subscriber: sub, receiver: receiver}
}

// Receiver returns the receiver samples are delivered to.
func (h *HandlerSubscriber[R]) Receiver() R {
	return h.receiver
}

type detacher interface {
	Detach()
}

func detach(receiver any) {
	if d, ok := receiver.(detacher); ok {
		d.Detach()
	}
}
