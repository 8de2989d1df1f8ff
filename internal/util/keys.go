package util

import "strings"

// Prefixed applies prefix to key. An empty prefix is a no-op.
func Prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + key
}

// PrefixedAll returns a new slice with prefix applied to every key.
func PrefixedAll(prefix string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Prefixed(prefix, k)
	}
	return out
}

// Unprefixed strips prefix from key once. ok is false when key does not carry
// the prefix (a foreign key from the same keyspace).
func Unprefixed(prefix, key string) (string, bool) {
	if prefix == "" {
		return key, true
	}
	return strings.CutPrefix(key, prefix)
}
