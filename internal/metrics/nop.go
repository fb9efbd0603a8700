// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/keysub/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// OrNop returns mc, or a NopMetrics when mc is nil.
func OrNop(mc types.MetricsCollector) types.MetricsCollector {
	if mc == nil {
		return NewNop()
	}

	return mc
}

// RegistrationMetrics implementation

// RecordDeclare discards the declaration metric.
func (n *NopMetrics) RecordDeclare(_ /* local */, _ /* success */ bool) {
	// No-op
}

// RecordUndeclare discards the undeclaration metric.
func (n *NopMetrics) RecordUndeclare(_ /* reason */ string, _ /* success */ bool) {
	// No-op
}

// RecordPull discards the pull metric.
func (n *NopMetrics) RecordPull(_ /* success */ bool) {
	// No-op
}

// RecordActiveSubscribers discards the active subscriber gauge update.
func (n *NopMetrics) RecordActiveSubscribers(_ /* delta */ int) {
	// No-op
}

// DeliveryMetrics implementation

// RecordSampleDelivered discards the delivery metric.
func (n *NopMetrics) RecordSampleDelivered() {
	// No-op
}

// RecordSampleDropped discards the drop metric.
func (n *NopMetrics) RecordSampleDropped(_ /* reason */ string) {
	// No-op
}
