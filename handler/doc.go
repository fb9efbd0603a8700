// Package handler bridges push-style sample delivery to receivers the caller reads
// at its own pace.
//
// A Factory produces a (consumer, receiver) pair. The consumer is installed as the
// subscription callback and is invoked by the session's delivery goroutines; the
// receiver is returned to the caller. Consumers produced here never block: when a
// receiver is full or has been detached the sample is dropped, a warning is logged and
// the drop is counted through types.DeliveryMetrics.
//
// Two receivers are provided:
//   - Channel: a bounded FIFO queue that drops new samples when full
//   - Ring: a bounded queue that evicts the oldest sample to make room
package handler
