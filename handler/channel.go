package handler

import (
	"context"
	"iter"
	"sync"
	"weak"

	"github.com/arloliu/keysub/types"
)

// Channel is a bounded FIFO receiver.
//
// Delivery never blocks: a sample arriving while the buffer is full is dropped. The
// consumer only holds a weak reference to the Channel, so a receiver the caller has
// let go of is treated as detached once it has been collected.
type Channel struct {
	ch         chan types.Sample
	detached   chan struct{}
	detachOnce sync.Once
	opts       options
}

// Compile-time assertion that Channel implements Receiver.
var _ Receiver = (*Channel)(nil)

// NewChannel creates a Channel receiver and the consumer that feeds it.
//
// Parameters:
//   - capacity: Buffer size (<= 0 uses DefaultCapacity)
//   - opts: Logger and metrics options
//
// Returns:
//   - types.Consumer: Non-blocking consumer to install on a subscription
//   - *Channel: The receiver
func NewChannel(capacity int, opts ...Option) (types.Consumer, *Channel) {
	c := &Channel{
		ch:       make(chan types.Sample, resolveCapacity(capacity, 0)),
		detached: make(chan struct{}),
		opts:     buildOptions(opts),
	}
	wp := weak.Make(c)
	logger, mc := c.opts.logger, c.opts.metrics

	consumer := func(s types.Sample) {
		recv := wp.Value()
		if recv == nil {
			logger.Warn("handler receiver collected, dropping sample", "key_expr", s.KeyExpr)
			mc.RecordSampleDropped(DropReasonDetached)

			return
		}
		recv.offer(s)
	}

	return consumer, c
}

// Bounded returns a Factory producing Channel receivers.
//
// A capacity <= 0 defers to the capacity supplied by the caller of Handler, which is
// the process-wide configured default when used through keysub builders.
func Bounded(capacity int, opts ...Option) Factory[*Channel] {
	return FactoryFunc[*Channel](func(fallback int) (types.Consumer, *Channel) {
		return NewChannel(resolveCapacity(capacity, fallback), opts...)
	})
}

func (c *Channel) offer(s types.Sample) {
	select {
	case <-c.detached:
		c.opts.logger.Warn("handler receiver detached, dropping sample", "key_expr", s.KeyExpr)
		c.opts.metrics.RecordSampleDropped(DropReasonDetached)

		return
	default:
	}

	select {
	case c.ch <- s:
		c.opts.metrics.RecordSampleDelivered()
	default:
		c.opts.logger.Warn("handler receiver full, dropping sample",
			"key_expr", s.KeyExpr, "capacity", cap(c.ch))
		c.opts.metrics.RecordSampleDropped(DropReasonFull)
	}
}

// Recv returns the next sample in delivery order.
//
// Buffered samples are still returned after Detach; ErrDetached is returned once the
// buffer is empty.
func (c *Channel) Recv(ctx context.Context) (types.Sample, error) {
	select {
	case s := <-c.ch:
		return s, nil
	default:
	}

	select {
	case s := <-c.ch:
		return s, nil
	case <-c.detached:
		select {
		case s := <-c.ch:
			return s, nil
		default:
			return types.Sample{}, ErrDetached
		}
	case <-ctx.Done():
		return types.Sample{}, ctx.Err()
	}
}

// TryRecv returns the next sample without blocking.
func (c *Channel) TryRecv() (types.Sample, bool) {
	select {
	case s := <-c.ch:
		return s, true
	default:
		return types.Sample{}, false
	}
}

// C exposes the underlying channel for use in select statements. It is never closed.
func (c *Channel) C() <-chan types.Sample {
	return c.ch
}

// Len returns the number of buffered samples.
func (c *Channel) Len() int {
	return len(c.ch)
}

// Cap returns the buffer capacity.
func (c *Channel) Cap() int {
	return cap(c.ch)
}

// All returns an iterator over received samples.
//
// Iteration stops when ctx is done or the receiver is detached and drained.
func (c *Channel) All(ctx context.Context) iter.Seq[types.Sample] {
	return Stream(ctx, c)
}

// Detach marks the receiver as discarded. Later deliveries are dropped.
func (c *Channel) Detach() {
	c.detachOnce.Do(func() {
		close(c.detached)
	})
}
