package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordDeclare(false, true)
	p.RecordDeclare(true, true)
	p.RecordDeclare(false, false)
	p.RecordUndeclare("close", true)
	p.RecordUndeclare("drop", false)
	p.RecordPull(true)
	p.RecordActiveSubscribers(2)
	p.RecordActiveSubscribers(-1)
	p.RecordSampleDelivered()
	p.RecordSampleDelivered()
	p.RecordSampleDropped("full")

	require.InDelta(t, 1, testutil.ToFloat64(p.declares.WithLabelValues("false", "success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.declares.WithLabelValues("true", "success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.declares.WithLabelValues("false", "failure")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.undeclares.WithLabelValues("drop", "failure")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.pulls.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.activeSubscribers), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.samplesDelivered), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.samplesDropped.WithLabelValues("full")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 6)
}

func TestNewPrometheus_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")
	require.Equal(t, "keysub", p.namespace)
	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
}
