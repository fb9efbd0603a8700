// Package keyexpr implements key-expression matching and NATS subject mapping used by
// the bundled session implementations.
package keyexpr

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/keysub/types"
)

const (
	wildOne = "*"
	wildAny = "**"
)

// Matches reports whether the concrete key matches pattern.
//
// "*" matches exactly one chunk and "**" matches zero or more chunks. The key is
// expected to be a concrete (non-wild) key expression.
//
// Parameters:
//   - pattern: Subscription key expression (may contain wildcards)
//   - key: Concrete key of a publication
//
// Returns:
//   - bool: true if key is covered by pattern
func Matches(pattern, key types.KeyExpr) bool {
	if pattern == key {
		return true
	}
	if !pattern.IsWild() {
		return false
	}

	return matchChunks(pattern.Chunks(), key.Chunks())
}

func matchChunks(pat, key []string) bool {
	for len(pat) > 0 {
		head := pat[0]
		if head == wildAny {
			rest := pat[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchChunks(rest, key[i:]) {
					return true
				}
			}

			return false
		}
		if len(key) == 0 {
			return false
		}
		if head != wildOne && head != key[0] {
			return false
		}
		pat, key = pat[1:], key[1:]
	}

	return len(key) == 0
}

// Fingerprint returns a 64-bit hash of a key expression for exact-match indexing.
func Fingerprint(k types.KeyExpr) uint64 {
	return xxh3.HashString(string(k))
}

// subjectEscaper escapes characters that are not allowed inside a NATS subject token.
var subjectEscaper = strings.NewReplacer("%", "%25", ".", "%2E", ">", "%3E")

// ToSubject maps a key expression to a NATS subject.
//
// Chunks become dot-separated tokens, "*" maps to "*" and a trailing "**" maps to ">".
// A "**" anywhere else cannot be expressed in NATS; the subject is then widened to
// the longest literal prefix followed by ">" and exact is false, meaning the caller
// must filter received samples with Matches.
//
// Parameters:
//   - prefix: Optional subject prefix (without trailing dot)
//   - k: Key expression
//
// Returns:
//   - string: NATS subject
//   - bool: true if the subject selects exactly the samples matching k
func ToSubject(prefix string, k types.KeyExpr) (string, bool) {
	chunks := k.Chunks()
	tokens := make([]string, 0, len(chunks)+1)
	if prefix != "" {
		tokens = append(tokens, prefix)
	}
	exact := true
	for i, c := range chunks {
		switch c {
		case wildOne:
			tokens = append(tokens, "*")
		case wildAny:
			tokens = append(tokens, ">")
			if i != len(chunks)-1 {
				exact = false
			}

			return strings.Join(tokens, "."), exact
		default:
			tokens = append(tokens, subjectEscaper.Replace(c))
		}
	}

	return strings.Join(tokens, "."), exact
}

// Subjects returns the NATS subjects needed to cover k.
//
// NATS ">" requires at least one token while "**" also matches zero chunks, so a
// key expression ending in "/**" needs its parent subject as well.
//
// Returns:
//   - []string: One or two non-overlapping subjects
//   - bool: true if the subjects select exactly the samples matching k
func Subjects(prefix string, k types.KeyExpr) ([]string, bool) {
	subject, exact := ToSubject(prefix, k)
	parent, ok := strings.CutSuffix(string(k), "/"+wildAny)
	if !ok || !exact {
		return []string{subject}, exact
	}
	parentSubject, parentExact := ToSubject(prefix, types.KeyExpr(parent))

	return []string{parentSubject, subject}, parentExact
}
