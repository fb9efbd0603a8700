package handler

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/arloliu/keysub/types"
)

// Sink consumes samples forwarded from a receiver.
type Sink interface {
	Send(ctx context.Context, s types.Sample) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, s types.Sample) error

// Send calls f(ctx, s).
func (f SinkFunc) Send(ctx context.Context, s types.Sample) error {
	return f(ctx, s)
}

// Stream returns a lazy sequence of samples read from r.
//
// The sequence ends when ctx is done or r is detached and drained. Each call to the
// returned function starts a fresh read loop; a loop that has stopped is not resumed.
func Stream(ctx context.Context, r Receiver) iter.Seq[types.Sample] {
	return func(yield func(types.Sample) bool) {
		for {
			s, err := r.Recv(ctx)
			if err != nil {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Forward drains r into sink until ctx is done, r is detached or the sink fails.
//
// Parameters:
//   - ctx: Context bounding the forwarding loop
//   - r: Receiver to drain
//   - sink: Destination for every received sample
//
// Returns:
//   - error: nil when r was detached and drained, ctx.Err() on cancellation,
//     or the wrapped sink error
func Forward(ctx context.Context, r Receiver, sink Sink) error {
	for {
		s, err := r.Recv(ctx)
		if errors.Is(err, ErrDetached) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.Send(ctx, s); err != nil {
			return fmt.Errorf("sink rejected sample on %s: %w", s.KeyExpr, err)
		}
	}
}
