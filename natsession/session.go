package natsession

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/keysub/internal/keyexpr"
	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/memsession"
	"github.com/arloliu/keysub/types"
)

// ErrConnectionRequired is returned by New when conn is nil.
var ErrConnectionRequired = errors.New("NATS connection is required")

// Session is a types.Session backed by a NATS connection.
//
// The connection is owned by the caller; Close undeclares every subscriber but
// leaves the connection open.
type Session struct {
	conn   *nats.Conn
	js     jetstream.JetStream // nil when Config.Stream is empty
	cfg    Config
	id     string
	logger types.Logger

	local  *memsession.Session
	subs   *xsync.Map[uint64, *subscriber]
	nextID atomic.Uint64
	closed atomic.Bool
}

// Compile-time assertion that Session implements types.Session.
var _ types.Session = (*Session)(nil)

// New creates a Session on conn.
//
// Parameters:
//   - conn: Connected NATS client
//   - cfg: Session configuration; zero values are replaced by defaults
//
// Returns:
//   - *Session: Open session
//   - error: ErrConnectionRequired or JetStream context failure
//
// Example:
//
//	sess, err := natsession.New(nc, natsession.Config{
//	    SubjectPrefix: "plant",
//	    Stream:        "PLANT", // captures "plant.>"
//	})
func New(conn *nats.Conn, cfg Config) (*Session, error) {
	if conn == nil {
		return nil, ErrConnectionRequired
	}

	cfg.applyDefaults()
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	s := &Session{
		conn:   conn,
		cfg:    cfg,
		id:     cfg.SessionID,
		logger: logging.With(cfg.Logger, "session", cfg.SessionID),
		subs:   xsync.NewMap[uint64, *subscriber](),
	}
	s.local = memsession.New(memsession.WithID(s.id), memsession.WithLogger(cfg.Logger))

	if cfg.Stream != "" {
		js, err := jetstream.New(conn)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		s.js = js
	}

	return s, nil
}

// ID returns the session identifier stamped on published samples.
func (s *Session) ID() string {
	return s.id
}

// DeclareSubscriber subscribes keyExpr on NATS.
//
// Reliable subscribers use a JetStream ordered consumer when a stream is configured;
// everything else uses core NATS. The subscription is registered with the server
// before DeclareSubscriber returns.
func (s *Session) DeclareSubscriber(ctx context.Context, keyExpr types.KeyExpr, consumer types.Consumer, info types.SubInfo) (*types.Record, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}
	if err := keyExpr.Validate(); err != nil {
		return nil, err
	}

	subjects, exact := keyexpr.Subjects(s.cfg.SubjectPrefix, keyExpr)
	sub := &subscriber{
		record: types.NewRecord(s.nextID.Add(1), keyExpr, consumer, info, false),
		logger: s.logger,
		exact:  exact,
		pull:   info.Mode == types.Pull,
	}

	var err error
	if s.js != nil && info.Reliability == types.Reliable {
		err = s.subscribeJetStream(ctx, sub, subjects)
	} else {
		err = s.subscribeCore(ctx, sub, subjects)
	}
	if err != nil {
		return nil, err
	}

	s.subs.Store(sub.record.ID(), sub)
	s.logger.Debug("subscriber declared",
		"id", sub.record.ID(), "key_expr", keyExpr, "subjects", subjects,
		"reliability", info.Reliability, "mode", info.Mode, "jetstream", sub.consumer != nil)

	return sub.record, nil
}

func (s *Session) subscribeCore(ctx context.Context, sub *subscriber, subjects []string) error {
	if sub.pull {
		sub.pending = make(chan *nats.Msg, s.cfg.PullBufferSize)
	}

	for _, subject := range subjects {
		var (
			ns  *nats.Subscription
			err error
		)
		if sub.pull {
			ns, err = s.conn.ChanSubscribe(subject, sub.pending)
		} else {
			ns, err = s.conn.Subscribe(subject, func(msg *nats.Msg) { sub.handle(msg.Data) })
		}
		if err != nil {
			_ = sub.stop()
			return fmt.Errorf("failed to subscribe %s: %w", subject, err)
		}
		sub.subs = append(sub.subs, ns)
	}

	if err := s.conn.FlushWithContext(ctx); err != nil {
		_ = sub.stop()
		return fmt.Errorf("failed to flush subscriptions: %w", err)
	}

	return nil
}

func (s *Session) subscribeJetStream(ctx context.Context, sub *subscriber, subjects []string) error {
	consumer, err := retry(ctx, &s.cfg, "create ordered consumer", func(ctx context.Context) (jetstream.Consumer, error) {
		return s.js.OrderedConsumer(ctx, s.cfg.Stream, jetstream.OrderedConsumerConfig{
			FilterSubjects:    subjects,
			DeliverPolicy:     jetstream.DeliverNewPolicy,
			InactiveThreshold: s.cfg.InactiveThreshold,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe on stream %s: %w", s.cfg.Stream, err)
	}
	sub.consumer = consumer

	if sub.pull {
		return nil
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) { sub.handle(msg.Data()) })
	if err != nil {
		return fmt.Errorf("failed to start consuming stream %s: %w", s.cfg.Stream, err)
	}
	sub.consumeCtx = cc

	return nil
}

// DeclareLocalSubscriber registers a subscriber that only sees samples published
// through this Session. No NATS interest is created.
func (s *Session) DeclareLocalSubscriber(ctx context.Context, keyExpr types.KeyExpr, consumer types.Consumer) (*types.Record, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}

	memRec, err := s.local.DeclareLocalSubscriber(ctx, keyExpr, consumer)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		record:  types.NewRecord(s.nextID.Add(1), keyExpr, consumer, types.SubInfo{}, true),
		logger:  s.logger,
		local:   true,
		localID: memRec.ID(),
	}
	s.subs.Store(sub.record.ID(), sub)
	s.logger.Debug("local subscriber declared", "id", sub.record.ID(), "key_expr", keyExpr)

	return sub.record, nil
}

// UndeclareSubscriber removes the subscriber with the given ID.
func (s *Session) UndeclareSubscriber(ctx context.Context, id uint64) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}

	return s.undeclare(ctx, id)
}

func (s *Session) undeclare(ctx context.Context, id uint64) error {
	sub, ok := s.subs.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: id %d", types.ErrSubscriberNotFound, id)
	}
	s.logger.Debug("subscriber undeclared", "id", id, "key_expr", sub.record.KeyExpr())

	if sub.local {
		return s.local.UndeclareSubscriber(ctx, sub.localID)
	}

	return sub.stop()
}

// Pull releases up to Config.PullBatch buffered samples to every pull-mode subscriber
// declared on keyExpr.
func (s *Session) Pull(ctx context.Context, keyExpr types.KeyExpr) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}

	var targets []*subscriber
	found := false
	s.subs.Range(func(_ uint64, sub *subscriber) bool {
		if sub.record.KeyExpr() == keyExpr {
			found = true
			if sub.pull {
				targets = append(targets, sub)
			}
		}

		return true
	})

	switch {
	case !found:
		return fmt.Errorf("%w: no subscriber on %s", types.ErrSubscriberNotFound, keyExpr)
	case len(targets) == 0:
		return fmt.Errorf("%w: %s", types.ErrPullNotSupported, keyExpr)
	}

	var errs []error
	for _, sub := range targets {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		if err := sub.release(fetchCtx, s.cfg.PullBatch); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}

	return errors.Join(errs...)
}

// Put publishes payload on key over NATS and to this session's local subscribers.
func (s *Session) Put(ctx context.Context, key types.KeyExpr, payload []byte) error {
	return s.publish(ctx, key, payload, types.SampleKindPut)
}

// Delete publishes a deletion of key over NATS and to this session's local
// subscribers.
func (s *Session) Delete(ctx context.Context, key types.KeyExpr) error {
	return s.publish(ctx, key, nil, types.SampleKindDelete)
}

func (s *Session) publish(ctx context.Context, key types.KeyExpr, payload []byte, kind types.SampleKind) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if key.IsWild() {
		return fmt.Errorf("%w: cannot publish on wildcard %q", types.ErrInvalidKeyExpr, key)
	}

	data, err := encodeSample(types.Sample{
		KeyExpr:   key,
		Payload:   payload,
		Kind:      kind,
		Timestamp: time.Now(),
		SourceID:  s.id,
	})
	if err != nil {
		return err
	}
	subject, _ := keyexpr.ToSubject(s.cfg.SubjectPrefix, key)
	if err := s.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	if kind == types.SampleKindDelete {
		return s.local.Delete(ctx, key)
	}

	return s.local.Put(ctx, key, payload)
}

// Flush waits until the server has processed everything published so far.
func (s *Session) Flush(ctx context.Context) error {
	return s.conn.FlushWithContext(ctx)
}

// Len returns the number of declared subscribers.
func (s *Session) Len() int {
	return s.subs.Size()
}

// Close undeclares every subscriber. Later calls return ErrSessionClosed. The NATS
// connection stays open.
func (s *Session) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return types.ErrSessionClosed
	}

	var errs []error
	s.subs.Range(func(id uint64, _ *subscriber) bool {
		if err := s.undeclare(ctx, id); err != nil {
			errs = append(errs, err)
		}

		return true
	})
	if err := s.local.Close(); err != nil {
		errs = append(errs, err)
	}
	s.logger.Debug("session closed")

	return errors.Join(errs...)
}
