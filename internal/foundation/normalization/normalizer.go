// Package normalization maps loosely written configuration strings onto typed enumerations.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps case-insensitive, whitespace-tolerant keys onto values of T.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer builds a normalizer. Keys are folded to lower case.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	folded := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		k = fold(k)
		folded[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Normalizer[T]{values: folded, defaultValue: defaultValue, keys: keys}
}

// Normalize returns the value for raw, or the default when raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.defaultValue
}

// Lookup reports whether raw names a known value.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[fold(raw)]
	return v, ok
}

// NormalizeWithError is Normalize with an error listing the valid keys.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

// Default returns the fallback value.
func (n *Normalizer[T]) Default() T { return n.defaultValue }

// ValidKeys returns the accepted keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
