package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Delivery metrics are recorded from the session's delivery goroutines and
// must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	RegistrationMetrics
	DeliveryMetrics
}

// RegistrationMetrics defines metrics for subscriber declaration and teardown.
type RegistrationMetrics interface {
	// RecordDeclare records a declaration attempt.
	//
	// Parameters:
	//   - local: true for local-only declarations
	//   - success: true if the session accepted the declaration
	RecordDeclare(local bool, success bool)

	// RecordUndeclare records an undeclaration attempt.
	//
	// Parameters:
	//   - reason: Teardown path ("close" or "drop")
	//   - success: true if the session accepted the undeclaration
	RecordUndeclare(reason string, success bool)

	// RecordPull records a pull request forwarded to the session.
	RecordPull(success bool)

	// RecordActiveSubscribers adjusts the live subscriber gauge by delta.
	RecordActiveSubscribers(delta int)
}

// DeliveryMetrics defines metrics for the handler bridge delivery path.
type DeliveryMetrics interface {
	// RecordSampleDelivered records a sample accepted by a handler receiver.
	RecordSampleDelivered()

	// RecordSampleDropped records a sample dropped by the handler bridge.
	//
	// Parameters:
	//   - reason: Drop reason ("full", "detached" or "evicted")
	RecordSampleDropped(reason string)
}
