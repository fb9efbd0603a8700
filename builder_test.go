package keysub

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/handler"
	"github.com/arloliu/keysub/types"
)

func TestBuilder_Defaults(t *testing.T) {
	c := newTestClient(t, newRecordingSession())
	cfg := c.Subscribe("sensor/temp").Config()

	require.Equal(t, types.KeyExpr("sensor/temp"), cfg.KeyExpr)
	require.Equal(t, Reliable, cfg.Info.Reliability)
	require.Equal(t, Push, cfg.Info.Mode)
	require.Nil(t, cfg.Info.Period)
	require.False(t, cfg.Local)
}

func TestBuilder_SessionDefaults(t *testing.T) {
	cfg := TestConfig()
	cfg.DefaultReliability = BestEffort
	cfg.SubscriberDefaults = "mode=pull;period=250ms"
	c, err := NewClient(newRecordingSession(), WithConfig(cfg))
	require.NoError(t, err)
	defer c.Close()

	info := c.Subscribe("a/b").Config().Info
	require.Equal(t, BestEffort, info.Reliability)
	require.Equal(t, Pull, info.Mode)
	require.NotNil(t, info.Period)
	require.Equal(t, 250*time.Millisecond, info.Period.Interval)
}

func TestBuilder_PushClearsPeriod(t *testing.T) {
	c := newTestClient(t, newRecordingSession())
	period := Period{Interval: time.Second}

	t.Run("push mode", func(t *testing.T) {
		cfg := c.Subscribe("a").PullMode().Period(period).PushMode().Config()
		require.Equal(t, Push, cfg.Info.Mode)
		require.Nil(t, cfg.Info.Period)
	})

	t.Run("mode setter", func(t *testing.T) {
		cfg := c.Subscribe("a").Period(period).Mode(Push).Config()
		require.Nil(t, cfg.Info.Period)
	})

	t.Run("pull keeps period", func(t *testing.T) {
		cfg := c.Subscribe("a").Period(period).PullMode().Config()
		require.NotNil(t, cfg.Info.Period)
		require.Equal(t, period, *cfg.Info.Period)
	})

	t.Run("callback and handler builders", func(t *testing.T) {
		cb := c.Subscribe("a").Callback(func(Sample) {}).PullMode().Period(period).PushMode()
		require.Nil(t, cb.Config().Info.Period)

		hb := c.Subscribe("a").Channel().PullMode().Period(period).PushMode()
		require.Nil(t, hb.Config().Info.Period)
	})
}

func TestBuilder_CopiesDoNotAlias(t *testing.T) {
	c := newTestClient(t, newRecordingSession())
	base := c.Subscribe("a").PullMode()

	withPeriod := base.Period(Period{Interval: time.Second})
	local := base.Local().BestEffort()

	require.Nil(t, base.Config().Info.Period)
	require.False(t, base.Config().Local)
	require.Equal(t, Reliable, base.Config().Info.Reliability)
	require.NotNil(t, withPeriod.Config().Info.Period)
	require.False(t, withPeriod.Config().Local)
	require.True(t, local.Config().Local)
	require.Equal(t, BestEffort, local.Config().Info.Reliability)
}

func TestCallbackBuilder_Declare(t *testing.T) {
	t.Run("one resolution declares once", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		act := c.Subscribe("sensor/temp").BestEffort().Callback(func(Sample) {}).Declare()
		declares, _, _, _ := sess.counts()
		require.Zero(t, declares, "declaration must wait for resolution")

		sub, err := act.Wait()
		require.NoError(t, err)
		require.True(t, sub.Alive())

		declares, _, _, _ = sess.counts()
		require.Equal(t, 1, declares)
		require.Equal(t, types.SubInfo{Reliability: BestEffort, Mode: Push}, sess.lastDeclare().Info)

		_, err = act.Wait()
		require.ErrorIs(t, err, ErrConsumed)
		declares, _, _, _ = sess.counts()
		require.Equal(t, 1, declares)
	})

	t.Run("forwards the full configuration", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)
		period := Period{Interval: 100 * time.Millisecond}

		_, err := c.Subscribe("sensor/**").PullMode().Period(period).Callback(func(Sample) {}).Declare().Wait()
		require.NoError(t, err)

		got := sess.lastDeclare()
		require.Equal(t, types.KeyExpr("sensor/**"), got.KeyExpr)
		require.Equal(t, Pull, got.Info.Mode)
		require.Equal(t, period, *got.Info.Period)
	})

	t.Run("declaration failure produces no handle", func(t *testing.T) {
		sess := newRecordingSession()
		boom := errors.New("transport unavailable")
		sess.declareErr = boom
		c := newTestClient(t, sess)

		sub, err := c.Subscribe("a").Callback(func(Sample) {}).Declare().Wait()
		require.ErrorIs(t, err, boom)
		require.Nil(t, sub)
	})

	t.Run("invalid key expression never reaches the session", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		_, err := c.Subscribe("a//b").Callback(func(Sample) {}).Declare().Wait()
		require.ErrorIs(t, err, ErrInvalidKeyExpr)
		declares, local, _, _ := sess.counts()
		require.Zero(t, declares+local)
	})

	t.Run("nil callback", func(t *testing.T) {
		c := newTestClient(t, newRecordingSession())
		_, err := c.Subscribe("a").Callback(nil).Declare().Wait()
		require.ErrorIs(t, err, ErrNilCallback)
	})

	t.Run("cooperative resolution", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		p := c.Subscribe("a").Callback(func(Sample) {}).Declare().Start(context.Background())
		sub, err := p.Await(context.Background())
		require.NoError(t, err)
		require.NotNil(t, sub)
		declares, _, _, _ := sess.counts()
		require.Equal(t, 1, declares)
	})
}

func TestLocalSubscribers_BypassNetwork(t *testing.T) {
	sess := newRecordingSession()
	c := newTestClient(t, sess)

	cbSub, err := c.Subscribe("a").Local().Callback(func(Sample) {}).Declare().Wait()
	require.NoError(t, err)
	hSub, err := c.Subscribe("b").Local().Channel().Declare().Wait()
	require.NoError(t, err)
	require.True(t, cbSub.Config().Local)

	require.NoError(t, cbSub.Close().WaitErr())
	hSub.Drop()

	declares, local, undeclares, _ := sess.counts()
	require.Zero(t, declares)
	require.Equal(t, 2, local)
	require.Equal(t, 2, undeclares)
}

func TestHandlerBuilder(t *testing.T) {
	t.Run("default channel uses configured capacity", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		sub, err := c.Subscribe("sensor/temp").Declare().Wait()
		require.NoError(t, err)
		require.Equal(t, c.Config().ChannelCapacity, sub.Receiver().Cap())
	})

	t.Run("overflow keeps the first N in order", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)
		const capacity = 4

		sub, err := WithHandler(c.Subscribe("k"), handler.Bounded(capacity)).Declare().Wait()
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i <= capacity; i++ {
				sess.deliver(Sample{KeyExpr: "k", Payload: []byte{byte(i)}})
			}
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery blocked")
		}

		for i := 0; i < capacity; i++ {
			s, ok := sub.Receiver().TryRecv()
			require.True(t, ok)
			require.Equal(t, []byte{byte(i)}, s.Payload)
		}
		_, ok := sub.Receiver().TryRecv()
		require.False(t, ok)
	})

	t.Run("detached receiver does not fail the deliverer", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		sub, err := c.Subscribe("k").Channel().Declare().Wait()
		require.NoError(t, err)
		sub.Receiver().Detach()

		require.NotPanics(t, func() { sess.deliver(Sample{KeyExpr: "k"}) })
	})

	t.Run("custom receiver type", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		var installed atomic.Int32
		factory := handler.FactoryFunc[*[]Sample](func(int) (types.Consumer, *[]Sample) {
			installed.Add(1)
			got := &[]Sample{}
			return func(s Sample) { *got = append(*got, s) }, got
		})

		sub, err := WithHandler(c.Subscribe("k"), factory).Declare().Wait()
		require.NoError(t, err)
		sess.deliver(Sample{KeyExpr: "k", Payload: []byte("x")})

		require.Equal(t, int32(1), installed.Load())
		require.Len(t, *sub.Receiver(), 1)
	})

	t.Run("ring receiver", func(t *testing.T) {
		sess := newRecordingSession()
		c := newTestClient(t, sess)

		sub, err := WithHandler(c.Subscribe("k"), handler.RingFactory(2)).Declare().Wait()
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			sess.deliver(Sample{KeyExpr: "k", Payload: []byte{byte(i)}})
		}

		s, ok := sub.Receiver().TryRecv()
		require.True(t, ok)
		require.Equal(t, []byte{1}, s.Payload)
	})

	t.Run("failed declaration detaches the receiver", func(t *testing.T) {
		sess := newRecordingSession()
		sess.declareErr = errors.New("nope")
		c := newTestClient(t, sess)

		var recv *handler.Channel
		factory := handler.FactoryFunc[*handler.Channel](func(n int) (types.Consumer, *handler.Channel) {
			consumer, ch := handler.NewChannel(n)
			recv = ch
			return consumer, ch
		})
		_, err := WithHandler(c.Subscribe("k"), factory).Declare().Wait()
		require.Error(t, err)

		_, err = recv.Recv(context.Background())
		require.ErrorIs(t, err, ErrDetached)
	})
}
