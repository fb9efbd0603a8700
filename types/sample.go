package types

import (
	"fmt"
	"time"
)

// SampleKind distinguishes a value update from a deletion.
type SampleKind uint8

const (
	// SampleKindPut carries a new value for the key.
	SampleKindPut SampleKind = iota

	// SampleKindDelete signals that the key was deleted.
	SampleKindDelete
)

// String returns the string representation of the kind.
func (k SampleKind) String() string {
	switch k {
	case SampleKindPut:
		return "put"
	case SampleKindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Sample is a single data item delivered to a subscriber.
type Sample struct {
	// KeyExpr is the concrete key the sample was published on.
	KeyExpr KeyExpr `cbor:"1,keyasint"`

	// Payload is the raw value.
	Payload []byte `cbor:"2,keyasint,omitempty"`

	// Encoding is an optional MIME-like description of Payload.
	Encoding string `cbor:"3,keyasint,omitempty"`

	// Kind is put or delete.
	Kind SampleKind `cbor:"4,keyasint"`

	// Timestamp is set by the publishing session.
	Timestamp time.Time `cbor:"5,keyasint"`

	// SourceID identifies the publishing session, empty when unknown.
	SourceID string `cbor:"6,keyasint,omitempty"`
}

// String returns a short human-readable form.
func (s Sample) String() string {
	return fmt.Sprintf("Sample{ key_expr:%s, kind:%s, payload:%q }", s.KeyExpr, s.Kind, s.Payload)
}
