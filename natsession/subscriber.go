package natsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/keysub/internal/keyexpr"
	"github.com/arloliu/keysub/types"
)

// subscriber is the transport state behind one record.
type subscriber struct {
	record *types.Record
	logger types.Logger
	exact  bool
	pull   bool

	// local subscribers live in the embedded memsession under localID
	local   bool
	localID uint64

	// core NATS
	subs    []*nats.Subscription
	pending chan *nats.Msg

	// JetStream
	consumer   jetstream.Consumer
	consumeCtx jetstream.ConsumeContext
}

// handle decodes a wire envelope and delivers it when it matches the record.
func (s *subscriber) handle(data []byte) {
	sample, err := decodeSample(data)
	if err != nil {
		s.logger.Warn("dropping undecodable sample", "id", s.record.ID(), "error", err)
		return
	}
	if !s.exact && !keyexpr.Matches(s.record.KeyExpr(), sample.KeyExpr) {
		return
	}
	s.record.Deliver(sample)
}

// release delivers up to batch buffered samples.
func (s *subscriber) release(ctx context.Context, batch int) error {
	if s.consumer != nil {
		return s.fetch(ctx, batch)
	}

	for range batch {
		select {
		case msg := <-s.pending:
			s.handle(msg.Data)
		default:
			return nil
		}
	}

	return nil
}

func (s *subscriber) fetch(ctx context.Context, batch int) error {
	msgs, err := s.consumer.FetchNoWait(batch)
	if err != nil {
		return fmt.Errorf("failed to fetch from consumer: %w", err)
	}
	for {
		select {
		case msg, ok := <-msgs.Messages():
			if !ok {
				if err := msgs.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
					return fmt.Errorf("fetch ended with error: %w", err)
				}

				return nil
			}
			s.handle(msg.Data())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// stop tears down the NATS side of a networked subscriber.
func (s *subscriber) stop() error {
	if s.consumeCtx != nil {
		s.consumeCtx.Stop()
	}

	var errs []error
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, fmt.Errorf("failed to unsubscribe %s: %w", sub.Subject, err))
		}
	}

	return errors.Join(errs...)
}
