package handler

import (
	"context"
	"errors"

	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/internal/metrics"
	"github.com/arloliu/keysub/types"
)

// DefaultCapacity is the receiver capacity used when none is configured.
const DefaultCapacity = 256

// Drop reasons reported through types.DeliveryMetrics.
const (
	DropReasonFull     = "full"
	DropReasonDetached = "detached"
	DropReasonEvicted  = "evicted"
)

// ErrDetached is returned by receivers once Detach has been called and no buffered
// samples remain.
var ErrDetached = errors.New("handler receiver detached")

// Factory produces a consumer and the receiver it feeds.
type Factory[R any] interface {
	// Handler creates a bound consumer/receiver pair.
	//
	// Parameters:
	//   - capacity: Process-wide default capacity; factories configured with their own
	//     capacity may ignore it
	//
	// Returns:
	//   - types.Consumer: Callback installed on the subscription
	//   - R: Receiver handed to the caller
	Handler(capacity int) (types.Consumer, R)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc[R any] func(capacity int) (types.Consumer, R)

// Handler calls f(capacity).
func (f FactoryFunc[R]) Handler(capacity int) (types.Consumer, R) {
	return f(capacity)
}

// Receiver is implemented by receivers that can be drained by Forward.
type Receiver interface {
	// Recv blocks until a sample is available, the receiver is detached or ctx is done.
	Recv(ctx context.Context) (types.Sample, error)
}

// Option configures a receiver.
type Option func(*options)

type options struct {
	logger  types.Logger
	metrics types.DeliveryMetrics
}

// WithLogger sets the logger used to report dropped samples.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the collector used to count delivered and dropped samples.
func WithMetrics(m types.DeliveryMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return o
}

func resolveCapacity(own, fallback int) int {
	if own > 0 {
		return own
	}
	if fallback > 0 {
		return fallback
	}

	return DefaultCapacity
}
