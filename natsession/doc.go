// Package natsession implements types.Session on top of NATS.
//
// Key expressions map to NATS subjects under a configurable prefix: chunks become
// tokens, "*" stays "*" and "**" becomes ">". Samples travel as CBOR-encoded
// envelopes.
//
// Subscriber transport depends on the declared SubInfo:
//   - Reliable, with Config.Stream set: a JetStream ordered consumer on that stream
//   - otherwise: a core NATS subscription
//
// Pull-mode subscribers buffer samples (core) or leave them on the stream
// (JetStream) until Pull is called. Local subscribers never touch NATS; they are
// served by an embedded memsession and only see publications made through this
// Session.
package natsession
