package clustercache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/driver/memory"
	"github.com/unkn0wn-root/clustercache/provider"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, drv *memory.Driver, mut func(*Options)) *Client {
	t.Helper()
	opts := Options{Driver: drv}
	if mut != nil {
		mut(&opts)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// countingCodec records how often the wrapped codec was asked to decode.
type countingCodec[V any] struct {
	inner   codec.Codec[V]
	decodes atomic.Int32
}

func (c *countingCodec[V]) Encode(v V) ([]byte, error) { return c.inner.Encode(v) }

func (c *countingCodec[V]) Decode(b []byte) (V, error) {
	c.decodes.Add(1)
	return c.inner.Decode(b)
}

// mapNear is an unbounded near-cache that records but ignores ttls.
type mapNear struct {
	mu      sync.Mutex
	m       map[string][]byte
	ttls    map[string]time.Duration
	cleared int
}

var _ provider.Provider = (*mapNear)(nil)

func newMapNear() *mapNear {
	return &mapNear{m: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (p *mapNear) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.m[key]
	return b, ok, nil
}

func (p *mapNear) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[key] = value
	p.ttls[key] = ttl
	return true, nil
}

func (p *mapNear) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return nil
}

func (p *mapNear) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.m)
	p.cleared++
	return nil
}

func (p *mapNear) Close(_ context.Context) error { return nil }

func (p *mapNear) ttl(key string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ttls[key]
}

func (p *mapNear) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[key]
	return ok
}

// countingHooks is safe to call from subscription goroutines.
type countingHooks struct {
	NopHooks
	fanOut, nodeErr, noServer   atomic.Int32
	nearHit, nearMiss           atomic.Int32
	decodeErr, messageDecodeErr atomic.Int32
}

func (h *countingHooks) FanOut(string, int)               { h.fanOut.Add(1) }
func (h *countingHooks) NodeError(string, string, error)  { h.nodeErr.Add(1) }
func (h *countingHooks) NoEligibleServer(string)          { h.noServer.Add(1) }
func (h *countingHooks) NearCacheHit(string)              { h.nearHit.Add(1) }
func (h *countingHooks) NearCacheMiss(string)             { h.nearMiss.Add(1) }
func (h *countingHooks) DecodeError(string, error)        { h.decodeErr.Add(1) }
func (h *countingHooks) MessageDecodeError(string, error) { h.messageDecodeErr.Add(1) }
