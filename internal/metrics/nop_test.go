package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordDeclare(true, false)
		metrics.RecordUndeclare("close", true)
		metrics.RecordUndeclare("", false)
		metrics.RecordPull(true)
		metrics.RecordActiveSubscribers(-1)
		metrics.RecordSampleDelivered()
		metrics.RecordSampleDropped("full")
	})
}

func TestOrNop(t *testing.T) {
	require.IsType(t, &NopMetrics{}, OrNop(nil))

	p := NewPrometheus(nil, "")
	require.Same(t, p, OrNop(p))
}
