package handler

import (
	"context"
	"iter"
	"sync"

	"github.com/arloliu/keysub/types"
)

// Ring is a bounded receiver that keeps the newest samples.
//
// When the buffer is full the oldest sample is evicted to make room, so a slow reader
// always observes the most recent state.
type Ring struct {
	mu       sync.Mutex
	buf      []types.Sample
	head     int
	size     int
	detached bool
	notify   chan struct{} // one pending wakeup, passed on while samples remain
	done     chan struct{} // closed by Detach
	once     sync.Once
	opts     options
}

// Compile-time assertion that Ring implements Receiver.
var _ Receiver = (*Ring)(nil)

// NewRing creates a Ring receiver and the consumer that feeds it.
//
// Parameters:
//   - capacity: Number of samples kept (<= 0 uses DefaultCapacity)
//   - opts: Logger and metrics options
//
// Returns:
//   - types.Consumer: Non-blocking consumer to install on a subscription
//   - *Ring: The receiver
func NewRing(capacity int, opts ...Option) (types.Consumer, *Ring) {
	r := &Ring{
		buf:    make([]types.Sample, resolveCapacity(capacity, 0)),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		opts:   buildOptions(opts),
	}

	return r.push, r
}

// RingFactory returns a Factory producing Ring receivers. A capacity <= 0 defers to
// the capacity supplied by the caller of Handler.
func RingFactory(capacity int, opts ...Option) Factory[*Ring] {
	return FactoryFunc[*Ring](func(fallback int) (types.Consumer, *Ring) {
		return NewRing(resolveCapacity(capacity, fallback), opts...)
	})
}

func (r *Ring) push(s types.Sample) {
	r.mu.Lock()
	if r.detached {
		r.mu.Unlock()
		r.opts.logger.Warn("handler receiver detached, dropping sample", "key_expr", s.KeyExpr)
		r.opts.metrics.RecordSampleDropped(DropReasonDetached)

		return
	}

	evicted := false
	if r.size == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		evicted = true
	}
	r.buf[(r.head+r.size)%len(r.buf)] = s
	r.size++
	r.mu.Unlock()

	if evicted {
		r.opts.metrics.RecordSampleDropped(DropReasonEvicted)
	}
	r.opts.metrics.RecordSampleDelivered()
	r.signal()
}

func (r *Ring) signal() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// TryRecv returns the oldest buffered sample without blocking.
func (r *Ring) TryRecv() (types.Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return types.Sample{}, false
	}
	s := r.buf[r.head]
	r.buf[r.head] = types.Sample{}
	r.head = (r.head + 1) % len(r.buf)
	r.size--

	return s, true
}

// Recv returns the oldest buffered sample, blocking until one arrives.
//
// Buffered samples are still returned after Detach; ErrDetached is returned once the
// buffer is empty.
func (r *Ring) Recv(ctx context.Context) (types.Sample, error) {
	for {
		if s, ok := r.TryRecv(); ok {
			if r.Len() > 0 {
				r.signal()
			}

			return s, nil
		}

		select {
		case <-r.done:
			if s, ok := r.TryRecv(); ok {
				return s, nil
			}

			return types.Sample{}, ErrDetached
		default:
		}

		select {
		case <-r.notify:
		case <-r.done:
		case <-ctx.Done():
			return types.Sample{}, ctx.Err()
		}
	}
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// All returns an iterator over received samples.
func (r *Ring) All(ctx context.Context) iter.Seq[types.Sample] {
	return Stream(ctx, r)
}

// Detach marks the receiver as discarded. Later deliveries are dropped.
func (r *Ring) Detach() {
	r.mu.Lock()
	r.detached = true
	r.mu.Unlock()
	r.once.Do(func() { close(r.done) })
}
