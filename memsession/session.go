package memsession

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/keysub/internal/keyexpr"
	"github.com/arloliu/keysub/internal/logging"
	"github.com/arloliu/keysub/types"
)

// entry is a declared subscriber.
type entry struct {
	record *types.Record
	pull   bool

	mu      sync.Mutex
	pending []types.Sample
}

// bucket holds the literal subscribers sharing one key fingerprint.
type bucket struct {
	entries *xsync.Map[uint64, *entry]
}

// Session is an in-process types.Session.
type Session struct {
	id             string
	logger         types.Logger
	pullBufferSize int

	nextID atomic.Uint64
	closed atomic.Bool

	all     *xsync.Map[uint64, *entry]
	literal *xsync.Map[uint64, *bucket] // keyed by keyexpr.Fingerprint
	wild    *xsync.Map[uint64, *entry]
}

// Compile-time assertion that Session implements types.Session.
var _ types.Session = (*Session)(nil)

// New creates an in-process session.
//
// Parameters:
//   - opts: Optional logger, pull buffer size and session ID
//
// Returns:
//   - *Session: Open session
func New(opts ...Option) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pullBufferSize <= 0 {
		o.pullBufferSize = DefaultPullBufferSize
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	return &Session{
		id:             o.id,
		logger:         logging.With(logging.OrNop(o.logger), "session", o.id),
		pullBufferSize: o.pullBufferSize,
		all:            xsync.NewMap[uint64, *entry](),
		literal:        xsync.NewMap[uint64, *bucket](),
		wild:           xsync.NewMap[uint64, *entry](),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// DeclareSubscriber registers a subscriber. Pull-mode subscribers buffer samples until
// Pull is called for their key expression.
func (s *Session) DeclareSubscriber(_ context.Context, keyExpr types.KeyExpr, consumer types.Consumer, info types.SubInfo) (*types.Record, error) {
	return s.declare(keyExpr, consumer, info, false)
}

// DeclareLocalSubscriber registers a subscriber that ignores injected remote samples.
func (s *Session) DeclareLocalSubscriber(_ context.Context, keyExpr types.KeyExpr, consumer types.Consumer) (*types.Record, error) {
	return s.declare(keyExpr, consumer, types.SubInfo{}, true)
}

func (s *Session) declare(keyExpr types.KeyExpr, consumer types.Consumer, info types.SubInfo, local bool) (*types.Record, error) {
	if s.closed.Load() {
		return nil, types.ErrSessionClosed
	}
	if err := keyExpr.Validate(); err != nil {
		return nil, err
	}

	id := s.nextID.Add(1)
	e := &entry{
		record: types.NewRecord(id, keyExpr, consumer, info, local),
		pull:   !local && info.Mode == types.Pull,
	}

	s.all.Store(id, e)
	if keyExpr.IsWild() {
		s.wild.Store(id, e)
	} else {
		b, _ := s.literal.LoadOrStore(keyexpr.Fingerprint(keyExpr), &bucket{entries: xsync.NewMap[uint64, *entry]()})
		b.entries.Store(id, e)
	}
	s.logger.Debug("subscriber declared", "id", id, "key_expr", keyExpr, "local", local, "pull", e.pull)

	return e.record, nil
}

// UndeclareSubscriber removes the subscriber with the given ID. Buffered pull samples
// are discarded.
func (s *Session) UndeclareSubscriber(_ context.Context, id uint64) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}

	return s.remove(id)
}

func (s *Session) remove(id uint64) error {
	e, ok := s.all.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: id %d", types.ErrSubscriberNotFound, id)
	}

	keyExpr := e.record.KeyExpr()
	if keyExpr.IsWild() {
		s.wild.Delete(id)
	} else if b, ok := s.literal.Load(keyexpr.Fingerprint(keyExpr)); ok {
		b.entries.Delete(id)
	}
	s.logger.Debug("subscriber undeclared", "id", id, "key_expr", keyExpr)

	return nil
}

// Pull releases the samples buffered for pull-mode subscribers declared on keyExpr.
//
// Returns:
//   - error: ErrPullNotSupported when only push subscribers use keyExpr,
//     ErrSubscriberNotFound when nothing is declared on it
func (s *Session) Pull(_ context.Context, keyExpr types.KeyExpr) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}

	found, pulled := false, false
	s.all.Range(func(_ uint64, e *entry) bool {
		if e.record.KeyExpr() != keyExpr {
			return true
		}
		found = true
		if e.pull {
			pulled = true
			for _, sample := range e.drain() {
				e.record.Deliver(sample)
			}
		}

		return true
	})

	switch {
	case !found:
		return fmt.Errorf("%w: no subscriber on %s", types.ErrSubscriberNotFound, keyExpr)
	case !pulled:
		return fmt.Errorf("%w: %s", types.ErrPullNotSupported, keyExpr)
	default:
		return nil
	}
}

// Put publishes payload on key to every matching subscriber of this session.
func (s *Session) Put(_ context.Context, key types.KeyExpr, payload []byte) error {
	return s.publish(s.newSample(key, payload, types.SampleKindPut), true)
}

// Delete publishes a deletion of key to every matching subscriber of this session.
func (s *Session) Delete(_ context.Context, key types.KeyExpr) error {
	return s.publish(s.newSample(key, nil, types.SampleKindDelete), true)
}

// Inject delivers a sample that originated outside this session. Local subscribers
// do not receive it.
func (s *Session) Inject(sample types.Sample) error {
	return s.publish(sample, false)
}

func (s *Session) newSample(key types.KeyExpr, payload []byte, kind types.SampleKind) types.Sample {
	return types.Sample{
		KeyExpr:   key,
		Payload:   payload,
		Kind:      kind,
		Timestamp: time.Now(),
		SourceID:  s.id,
	}
}

func (s *Session) publish(sample types.Sample, includeLocal bool) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}
	if err := sample.KeyExpr.Validate(); err != nil {
		return err
	}
	if sample.KeyExpr.IsWild() {
		return fmt.Errorf("%w: cannot publish on wildcard %q", types.ErrInvalidKeyExpr, sample.KeyExpr)
	}

	for _, e := range s.matching(sample.KeyExpr) {
		if e.record.Local() && !includeLocal {
			continue
		}
		if e.pull {
			e.buffer(sample, s.pullBufferSize)
			continue
		}
		e.record.Deliver(sample)
	}

	return nil
}

// matching returns the live subscribers whose key expression covers key.
func (s *Session) matching(key types.KeyExpr) []*entry {
	var out []*entry
	if b, ok := s.literal.Load(keyexpr.Fingerprint(key)); ok {
		b.entries.Range(func(_ uint64, e *entry) bool {
			if e.record.KeyExpr() == key {
				out = append(out, e)
			}

			return true
		})
	}
	s.wild.Range(func(_ uint64, e *entry) bool {
		if keyexpr.Matches(e.record.KeyExpr(), key) {
			out = append(out, e)
		}

		return true
	})

	return out
}

// Len returns the number of declared subscribers.
func (s *Session) Len() int {
	return s.all.Size()
}

// Close undeclares every subscriber. Later calls on the session return
// ErrSessionClosed.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return types.ErrSessionClosed
	}

	s.all.Range(func(id uint64, _ *entry) bool {
		_ = s.remove(id)
		return true
	})
	s.logger.Debug("session closed")

	return nil
}

func (e *entry) buffer(sample types.Sample, limit int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) >= limit {
		e.pending = e.pending[1:]
	}
	e.pending = append(e.pending, sample)
}

func (e *entry) drain() []types.Sample {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.pending
	e.pending = nil

	return out
}
