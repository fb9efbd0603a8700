package keysub

import (
	"context"

	"github.com/arloliu/keysub/deferred"
	"github.com/arloliu/keysub/handler"
	"github.com/arloliu/keysub/types"
)

// Builder configures a subscriber before delivery is chosen.
//
// Builder is a value: every setter returns a modified copy and leaves the receiver
// untouched, so partially configured builders can be shared and branched freely.
//
//	base := client.Subscribe("sensor/**").BestEffort()
//	pull := base.PullMode().Period(keysub.Period{Interval: time.Second})
//	push := base // unaffected by the line above
type Builder struct {
	client *Client
	cfg    types.SubscriberConfig
}

// Reliability sets the requested reliability.
func (b Builder) Reliability(r Reliability) Builder {
	b.cfg.Info.Reliability = r
	return b
}

// Reliable requests reliable delivery.
func (b Builder) Reliable() Builder {
	return b.Reliability(types.Reliable)
}

// BestEffort requests best-effort delivery.
func (b Builder) BestEffort() Builder {
	return b.Reliability(types.BestEffort)
}

// Mode sets the delivery mode. Switching to Push clears any period.
func (b Builder) Mode(m Mode) Builder {
	b.cfg.Info.Mode = m
	if m == types.Push {
		b.cfg.Info.Period = nil
	}

	return b
}

// PushMode selects push delivery and clears any period.
func (b Builder) PushMode() Builder {
	return b.Mode(types.Push)
}

// PullMode selects pull delivery.
func (b Builder) PullMode() Builder {
	return b.Mode(types.Pull)
}

// Period sets the scheduling hint forwarded to the session.
func (b Builder) Period(p Period) Builder {
	b.cfg.Info.Period = &p
	return b
}

// Local restricts matching to publications made through the same session. Local
// subscribers bypass network registration entirely.
func (b Builder) Local() Builder {
	b.cfg.Local = true
	return b
}

// Config returns the configuration built so far.
func (b Builder) Config() SubscriberConfig {
	return b.cfg
}

// Callback selects callback delivery. fn is invoked by the session's delivery
// goroutines and must be safe for concurrent use.
func (b Builder) Callback(fn func(Sample)) CallbackBuilder {
	return CallbackBuilder{b: b, callback: fn}
}

// Channel selects delivery into a bounded channel sized by Config.ChannelCapacity.
func (b Builder) Channel() HandlerBuilder[*handler.Channel] {
	return WithHandler(b, handler.Bounded(0, b.client.handlerOptions()...))
}

// Declare resolves to a channel-backed subscriber.
func (b Builder) Declare() *deferred.Action[*HandlerSubscriber[*handler.Channel]] {
	return b.Channel().Declare()
}

// CallbackBuilder is a Builder with callback delivery selected.
type CallbackBuilder struct {
	b        Builder
	callback func(Sample)
}

// Reliability sets the requested reliability.
func (cb CallbackBuilder) Reliability(r Reliability) CallbackBuilder {
	cb.b = cb.b.Reliability(r)
	return cb
}

// Reliable requests reliable delivery.
func (cb CallbackBuilder) Reliable() CallbackBuilder {
	cb.b = cb.b.Reliable()
	return cb
}

// BestEffort requests best-effort delivery.
func (cb CallbackBuilder) BestEffort() CallbackBuilder {
	cb.b = cb.b.BestEffort()
	return cb
}

// Mode sets the delivery mode. Switching to Push clears any period.
func (cb CallbackBuilder) Mode(m Mode) CallbackBuilder {
	cb.b = cb.b.Mode(m)
	return cb
}

// PushMode selects push delivery and clears any period.
func (cb CallbackBuilder) PushMode() CallbackBuilder {
	cb.b = cb.b.PushMode()
	return cb
}

// PullMode selects pull delivery.
func (cb CallbackBuilder) PullMode() CallbackBuilder {
	cb.b = cb.b.PullMode()
	return cb
}

// Period sets the scheduling hint forwarded to the session.
func (cb CallbackBuilder) Period(p Period) CallbackBuilder {
	cb.b = cb.b.Period(p)
	return cb
}

// Local restricts matching to publications made through the same session.
func (cb CallbackBuilder) Local() CallbackBuilder {
	cb.b = cb.b.Local()
	return cb
}

// Config returns the configuration built so far.
func (cb CallbackBuilder) Config() SubscriberConfig {
	return cb.b.Config()
}

// Declare returns an action that registers the subscriber when resolved.
//
// Resolving the action performs exactly one declaration call on the session. A
// second resolution of the same action returns ErrConsumed.
//
// Returns:
//   - *deferred.Action[*Subscriber]: Unresolved declaration
//
// Example:
//
//	sub, err := client.Subscribe("sensor/temp").
//	    Callback(onSample).
//	    Declare().
//	    WaitContext(ctx)
func (cb CallbackBuilder) Declare() *deferred.Action[*Subscriber] {
	c, cfg := cb.b.client, cb.b.cfg
	consumer := types.Consumer(cb.callback)

	return newAction(c, func(ctx context.Context) (*Subscriber, error) {
		return c.declare(ctx, cfg, consumer)
	})
}

// HandlerBuilder is a Builder with handler delivery selected. R is the receiver type
// produced by the handler factory.
type HandlerBuilder[R any] struct {
	b       Builder
	factory handler.Factory[R]
}

// WithHandler selects delivery through a handler factory.
//
// Parameters:
//   - b: Configured builder
//   - f: Factory producing the consumer/receiver pair
//
// Returns:
//   - HandlerBuilder[R]: Builder resolving to a HandlerSubscriber[R]
//
// Example:
//
//	hb := keysub.WithHandler(client.Subscribe("sensor/**"), handler.RingFactory(32))
//	sub, err := hb.Declare().Wait()
//	latest, _ := sub.Receiver().TryRecv()
func WithHandler[R any](b Builder, f handler.Factory[R]) HandlerBuilder[R] {
	return HandlerBuilder[R]{b: b, factory: f}
}

// Reliability sets the requested reliability.
func (hb HandlerBuilder[R]) Reliability(r Reliability) HandlerBuilder[R] {
	hb.b = hb.b.Reliability(r)
	return hb
}

// Reliable requests reliable delivery.
func (hb HandlerBuilder[R]) Reliable() HandlerBuilder[R] {
	hb.b = hb.b.Reliable()
	return hb
}

// BestEffort requests best-effort delivery.
func (hb HandlerBuilder[R]) BestEffort() HandlerBuilder[R] {
	hb.b = hb.b.BestEffort()
	return hb
}

// Mode sets the delivery mode. Switching to Push clears any period.
func (hb HandlerBuilder[R]) Mode(m Mode) HandlerBuilder[R] {
	hb.b = hb.b.Mode(m)
	return hb
}

// PushMode selects push delivery and clears any period.
func (hb HandlerBuilder[R]) PushMode() HandlerBuilder[R] {
	hb.b = hb.b.PushMode()
	return hb
}

// PullMode selects pull delivery.
func (hb HandlerBuilder[R]) PullMode() HandlerBuilder[R] {
	hb.b = hb.b.PullMode()
	return hb
}

// Period sets the scheduling hint forwarded to the session.
func (hb HandlerBuilder[R]) Period(p Period) HandlerBuilder[R] {
	hb.b = hb.b.Period(p)
	return hb
}

// Local restricts matching to publications made through the same session.
func (hb HandlerBuilder[R]) Local() HandlerBuilder[R] {
	hb.b = hb.b.Local()
	return hb
}

// Config returns the configuration built so far.
func (hb HandlerBuilder[R]) Config() SubscriberConfig {
	return hb.b.Config()
}

// Declare returns an action that creates the handler pair and registers its consumer
// when resolved. A second resolution of the same action returns ErrConsumed.
func (hb HandlerBuilder[R]) Declare() *deferred.Action[*HandlerSubscriber[R]] {
	c, cfg, factory := hb.b.client, hb.b.cfg, hb.factory

	return newAction(c, func(ctx context.Context) (*HandlerSubscriber[R], error) {
		if factory == nil {
			return nil, ErrNilCallback
		}
		consumer, receiver := factory.Handler(c.cfg.ChannelCapacity)
		sub, err := c.declare(ctx, cfg, consumer)
		if err != nil {
			detach(receiver)
			return nil, err
		}

		return newHandlerSubscriber(sub, receiver), nil
	})
}
