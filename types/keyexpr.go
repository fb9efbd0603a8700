package types

import (
	"fmt"
	"strings"
)

// KeyExpr is a key expression identifying the topic pattern of interest.
//
// A key expression is a '/'-separated list of non-empty chunks. The chunk "*" matches
// exactly one chunk and "**" matches any number of chunks (including none). Wildcard
// characters are only allowed as whole chunks.
//
// Examples: "sensor/temp", "sensor/*/temp", "building/**".
type KeyExpr string

// forbiddenKeyChars cannot appear anywhere in a key expression.
const forbiddenKeyChars = "?#$ \t\r\n"

// Validate checks the key expression syntax.
//
// Returns:
//   - error: ErrInvalidKeyExpr wrapped with the reason, nil if valid
func (k KeyExpr) Validate() error {
	s := string(k)
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKeyExpr)
	}
	if strings.ContainsAny(s, forbiddenKeyChars) {
		return fmt.Errorf("%w: %q contains a forbidden character", ErrInvalidKeyExpr, s)
	}
	prevDoubleWild := false
	for chunk := range strings.SplitSeq(s, "/") {
		switch {
		case chunk == "":
			return fmt.Errorf("%w: %q has an empty chunk", ErrInvalidKeyExpr, s)
		case chunk == "**":
			if prevDoubleWild {
				return fmt.Errorf("%w: %q repeats \"**\"", ErrInvalidKeyExpr, s)
			}
			prevDoubleWild = true

			continue
		case chunk == "*":
		case strings.Contains(chunk, "*"):
			return fmt.Errorf("%w: %q mixes '*' with other characters", ErrInvalidKeyExpr, s)
		}
		prevDoubleWild = false
	}

	return nil
}

// IsWild reports whether the key expression contains a wildcard chunk.
func (k KeyExpr) IsWild() bool {
	return strings.Contains(string(k), "*")
}

// Chunks splits the key expression on '/'.
func (k KeyExpr) Chunks() []string {
	return strings.Split(string(k), "/")
}

// String returns the key expression as a plain string.
func (k KeyExpr) String() string {
	return string(k)
}
