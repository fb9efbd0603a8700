package keysub

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/types"
)

// recordingSession is a Session that records every boundary call.
type recordingSession struct {
	mu sync.Mutex

	declares      []types.SubscriberConfig
	localDeclares []types.KeyExpr
	undeclares    []uint64
	pulls         []types.KeyExpr
	records       map[uint64]*types.Record
	nextID        uint64

	declareErr   error
	undeclareErr error
	pullErr      error
}

var _ types.Session = (*recordingSession)(nil)

func newRecordingSession() *recordingSession {
	return &recordingSession{records: make(map[uint64]*types.Record)}
}

func (s *recordingSession) DeclareSubscriber(_ context.Context, keyExpr types.KeyExpr, consumer types.Consumer, info types.SubInfo) (*types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.declares = append(s.declares, types.SubscriberConfig{KeyExpr: keyExpr, Info: info})
	if s.declareErr != nil {
		return nil, s.declareErr
	}

	return s.addLocked(keyExpr, consumer, info, false), nil
}

func (s *recordingSession) DeclareLocalSubscriber(_ context.Context, keyExpr types.KeyExpr, consumer types.Consumer) (*types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localDeclares = append(s.localDeclares, keyExpr)
	if s.declareErr != nil {
		return nil, s.declareErr
	}

	return s.addLocked(keyExpr, consumer, types.SubInfo{}, true), nil
}

func (s *recordingSession) addLocked(keyExpr types.KeyExpr, consumer types.Consumer, info types.SubInfo, local bool) *types.Record {
	s.nextID++
	rec := types.NewRecord(s.nextID, keyExpr, consumer, info, local)
	s.records[rec.ID()] = rec

	return rec
}

func (s *recordingSession) UndeclareSubscriber(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undeclares = append(s.undeclares, id)
	delete(s.records, id)

	return s.undeclareErr
}

func (s *recordingSession) Pull(_ context.Context, keyExpr types.KeyExpr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pulls = append(s.pulls, keyExpr)

	return s.pullErr
}

// deliver hands sample to every live record whose key expression equals the sample's.
func (s *recordingSession) deliver(sample types.Sample) {
	s.mu.Lock()
	var targets []*types.Record
	for _, rec := range s.records {
		if rec.KeyExpr() == sample.KeyExpr {
			targets = append(targets, rec)
		}
	}
	s.mu.Unlock()

	for _, rec := range targets {
		rec.Deliver(sample)
	}
}

func (s *recordingSession) counts() (declares, localDeclares, undeclares, pulls int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.declares), len(s.localDeclares), len(s.undeclares), len(s.pulls)
}

func (s *recordingSession) undeclared() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]uint64(nil), s.undeclares...)
}

func (s *recordingSession) pulled() []types.KeyExpr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.KeyExpr(nil), s.pulls...)
}

func (s *recordingSession) lastDeclare() types.SubscriberConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.declares[len(s.declares)-1]
}

func newTestClient(t *testing.T, sess types.Session, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(sess, append([]Option{WithConfig(TestConfig())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}
