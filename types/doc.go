// Package types provides core type definitions and interfaces for the keysub library.
//
// This package contains shared types that are used across multiple packages in the
// keysub library. By keeping these types in a separate package, we avoid import cycles
// between the main keysub package, the handler bridge and the session implementations.
//
// Key types:
//   - KeyExpr: Key expression naming the topic pattern of interest
//   - Sample: A single delivered data item
//   - Reliability, Mode, Period, SubInfo: Subscription configuration
//   - Session, Record, Consumer: The registration boundary
//   - SubscriberState: Subscription handle lifecycle state
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
