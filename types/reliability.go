package types

import (
	"fmt"
	"strings"
)

// Reliability is the delivery guarantee level requested from the transport.
//
// It is descriptive metadata forwarded to the session; keysub does not enforce it.
type Reliability int

const (
	// Reliable requests guaranteed delivery. It is the zero value and the default.
	Reliable Reliability = iota

	// BestEffort allows the transport to drop samples.
	BestEffort
)

// String returns the string representation of the reliability.
func (r Reliability) String() string {
	switch r {
	case Reliable:
		return "reliable"
	case BestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reliability) MarshalText() ([]byte, error) {
	if r != Reliable && r != BestEffort {
		return nil, fmt.Errorf("%w: reliability %d", ErrInvalidConfig, int(r))
	}

	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reliability) UnmarshalText(text []byte) error {
	v, err := ParseReliability(string(text))
	if err != nil {
		return err
	}
	*r = v

	return nil
}

// ParseReliability parses "reliable" or "best_effort" (case-insensitive, "besteffort"
// and "best-effort" are accepted too).
func ParseReliability(s string) (Reliability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reliable":
		return Reliable, nil
	case "best_effort", "besteffort", "best-effort":
		return BestEffort, nil
	default:
		return 0, fmt.Errorf("%w: unknown reliability %q", ErrInvalidConfig, s)
	}
}

// Mode is the sample delivery mode.
type Mode int

const (
	// Push delivers samples unsolicited. It is the zero value and the default.
	Push Mode = iota

	// Pull buffers samples in the session until the subscriber issues a pull.
	Pull
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Push:
		return "push"
	case Pull:
		return "pull"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != Push && m != Pull {
		return nil, fmt.Errorf("%w: mode %d", ErrInvalidConfig, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v

	return nil
}

// ParseMode parses "push" or "pull" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "push":
		return Push, nil
	case "pull":
		return Pull, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
	}
}
