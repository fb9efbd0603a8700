package keysub

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/keysub/deferred"
)

func TestNewClient_RequiredParameters(t *testing.T) {
	t.Run("nil session", func(t *testing.T) {
		c, err := NewClient(nil)
		require.ErrorIs(t, err, ErrSessionRequired)
		require.Nil(t, c)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := TestConfig()
		cfg.SubscriberDefaults = "mode=sideways"
		c, err := NewClient(newRecordingSession(), WithConfig(cfg))
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, c)
	})
}

func TestNewClient_NilSafety(t *testing.T) {
	c, err := NewClient(newRecordingSession())
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.logger)
	require.NotNil(t, c.metrics)
	require.NotNil(t, c.pool, "client owns a pool when no executor is given")
	require.Equal(t, DefaultConfig(), c.Config())
}

func TestNewClient_WithExecutor(t *testing.T) {
	c, err := NewClient(newRecordingSession(), WithExecutor(deferred.GoExecutor{}))
	require.NoError(t, err)
	defer c.Close()

	require.Nil(t, c.pool)
	require.IsType(t, deferred.GoExecutor{}, c.executor)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sess := newRecordingSession()
	c := newTestClient(t, sess, WithMetrics(NewPrometheusMetrics(reg, "test")))

	sub, err := c.Subscribe("a").Channel().Declare().Wait()
	require.NoError(t, err)
	_, err = c.Subscribe("b").Local().Callback(func(Sample) {}).Declare().Wait()
	require.NoError(t, err)

	sess.deliver(Sample{KeyExpr: "a"})
	require.NoError(t, sub.Close().WaitErr())

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	count, err := testutil.GatherAndCount(reg, "test_subscriber_declares_total")
	require.NoError(t, err)
	require.Equal(t, 2, count, "one series per locality")

	count, err = testutil.GatherAndCount(reg, "test_handler_samples_delivered_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
