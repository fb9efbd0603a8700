package properties

import (
	"iter"
	"strings"
)

const (
	// ListSeparator separates key/value pairs.
	ListSeparator = ';'

	// FieldSeparator separates a key from its value.
	FieldSeparator = '='

	// ValueSeparator separates entries of a multi-value.
	ValueSeparator = '|'
)

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Properties is an immutable-by-default view over a property string.
//
// The zero value is an empty property set ready to use. Mutating methods (Insert,
// Remove, Extend) take a pointer receiver and rebuild the underlying string.
type Properties struct {
	raw string
}

// Parse wraps a property string, trimming trailing separators.
//
// Parameters:
//   - s: Property string such as "a=1;b=2|3"
//
// Returns:
//   - Properties: View over the trimmed string
func Parse(s string) Properties {
	return Properties{raw: strings.TrimRight(s, string([]rune{ListSeparator, FieldSeparator, ValueSeparator}))}
}

// FromPairs builds a property string from pairs, skipping empty keys.
//
// Later pairs are not deduplicated against earlier ones; use Insert for last-wins
// semantics.
func FromPairs(pairs ...Pair) Properties {
	var b strings.Builder
	first := true
	for _, p := range pairs {
		if p.Key == "" {
			continue
		}
		if !first {
			b.WriteRune(ListSeparator)
		}
		b.WriteString(p.Key)
		if p.Value != "" {
			b.WriteRune(FieldSeparator)
			b.WriteString(p.Value)
		}
		first = false
	}

	return Properties{raw: b.String()}
}

// String returns the serialized property string.
func (p Properties) String() string { return p.raw }

// IsEmpty reports whether the property string is empty.
func (p Properties) IsEmpty() bool { return p.raw == "" }

// All iterates over key/value pairs in order, skipping empty entries.
func (p Properties) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for entry := range strings.SplitSeq(p.raw, string(ListSeparator)) {
			if entry == "" {
				continue
			}
			k, v, _ := strings.Cut(entry, string(FieldSeparator))
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			if !yield(k, strings.TrimSpace(v)) {
				return
			}
		}
	}
}

// Pairs returns all key/value pairs in order.
func (p Properties) Pairs() []Pair {
	var out []Pair
	for k, v := range p.All() {
		out = append(out, Pair{Key: k, Value: v})
	}

	return out
}

// Get returns the value of the first entry with key k.
//
// Parameters:
//   - k: Key to look up
//
// Returns:
//   - string: The value (empty for flag-style keys)
//   - bool: true if the key is present
func (p Properties) Get(k string) (string, bool) {
	for key, v := range p.All() {
		if key == k {
			return v, true
		}
	}

	return "", false
}

// ContainsKey reports whether key k is present.
func (p Properties) ContainsKey(k string) bool {
	_, ok := p.Get(k)
	return ok
}

// Values splits the value of key k on ValueSeparator.
//
// Returns nil when the key is absent. A present key with an empty value yields a
// single empty entry.
func (p Properties) Values(k string) []string {
	v, ok := p.Get(k)
	if !ok {
		return nil
	}

	return strings.Split(v, string(ValueSeparator))
}

// Insert sets k to v, replacing any existing entry, and appends it at the end.
//
// Parameters:
//   - k: Key to set
//   - v: New value
//
// Returns:
//   - string: Previous value of k
//   - bool: true if k was present before the insert
func (p *Properties) Insert(k, v string) (string, bool) {
	prev, ok := p.Get(k)
	pairs := p.without(func(key string) bool { return key == k })
	pairs = append(pairs, Pair{Key: k, Value: v})
	*p = FromPairs(pairs...)

	return prev, ok
}

// Remove deletes every entry with key k and returns the first removed value.
func (p *Properties) Remove(k string) (string, bool) {
	prev, ok := p.Get(k)
	if !ok {
		return "", false
	}
	*p = FromPairs(p.without(func(key string) bool { return key == k })...)

	return prev, true
}

// Extend merges other into p. Keys present in other replace those in p.
func (p *Properties) Extend(other Properties) {
	p.ExtendPairs(other.Pairs()...)
}

// ExtendPairs merges pairs into p. Keys present in pairs replace those in p, and
// the last of several pairs with the same key wins.
func (p *Properties) ExtendPairs(pairs ...Pair) {
	if len(pairs) == 0 {
		return
	}
	last := make(map[string]int, len(pairs))
	for i, np := range pairs {
		last[np.Key] = i
	}
	current := p.without(func(key string) bool {
		_, hit := last[key]
		return hit
	})
	for i, np := range pairs {
		if last[np.Key] == i {
			current = append(current, np)
		}
	}
	*p = FromPairs(current...)
}

func (p Properties) without(drop func(string) bool) []Pair {
	var out []Pair
	for k, v := range p.All() {
		if drop(k) {
			continue
		}
		out = append(out, Pair{Key: k, Value: v})
	}

	return out
}
