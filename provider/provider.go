// Package provider defines the optional local near-cache that clustercache
// consults before going to the remote store.
//
// A near-cache holds opaque bytes under the already-prefixed remote key. It
// is never authoritative: the client fills it after a remote hit and drops
// entries on every write or remove it performs. A fill never outlives the
// remote key's expiry. Writes made by other processes are not observed until
// the entry expires, so keep TTLs short.
package provider

import (
	"context"
	"time"
)

// Provider is a local byte store with TTLs.
// Must be safe for concurrent use. Get must return exactly the []byte
// previously passed to Set for the same key.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. Returns ok=false when the store rejected the
	// write under pressure; the client treats that as a no-op.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Clear drops every entry. Called after a remote FLUSHDB.
	Clear(ctx context.Context) error

	Close(ctx context.Context) error
}
