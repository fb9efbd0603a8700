// Package testing provides test utilities for keysub.
//
// It follows Go's convention of shipping testing helpers in a dedicated package
// (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: In-process NATS server with JetStream
//   - CreateStream: JetStream stream capturing a natsession subject prefix
//   - NewTestLogger: types.Logger writing through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    keysubtest "github.com/arloliu/keysub/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := keysubtest.StartEmbeddedNATS(t)
//	    keysubtest.CreateStream(t, nc, "SAMPLES", "keysub")
//	    sess, _ := natsession.New(nc, natsession.Config{Stream: "SAMPLES"})
//	}
package testing
