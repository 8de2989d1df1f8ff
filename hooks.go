package clustercache

// Hooks are callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run inline with the
// operation that raised them. Wrap with hooks/async to move work off the
// caller's goroutine.
type Hooks interface {
	// A fan-out command ran on nodes endpoints. cmd ∈ {"keys", "flushdb", "save"}
	FanOut(cmd string, nodes int)

	// A per-node command failed and the fan-out was aborted.
	NodeError(cmd, addr string, err error)

	// Topology filtering left nothing to run cmd on.
	NoEligibleServer(cmd string)

	// Near-cache lookups by storage (prefixed) key.
	NearCacheHit(storageKey string)
	NearCacheMiss(storageKey string)

	// The near-cache returned ok=false on Set (pressure/eviction).
	NearCacheSetRejected(storageKey string)

	// A stored payload did not decode into the requested type.
	DecodeError(storageKey string, err error)

	// A pub/sub message did not decode; the handler was not called.
	MessageDecodeError(channel string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) FanOut(string, int)               {}
func (NopHooks) NodeError(string, string, error)  {}
func (NopHooks) NoEligibleServer(string)          {}
func (NopHooks) NearCacheHit(string)              {}
func (NopHooks) NearCacheMiss(string)             {}
func (NopHooks) NearCacheSetRejected(string)      {}
func (NopHooks) DecodeError(string, error)        {}
func (NopHooks) MessageDecodeError(string, error) {}
