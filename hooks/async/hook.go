// Package asynchook moves Hooks calls off the caller's goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{NearCacheEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := clustercache.New(clustercache.Options{Driver: drv, Hooks: hooks})
//
// Events are dropped when the queue is full. Dropped() reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/clustercache"
)

type Hooks struct {
	inner   clustercache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ clustercache.Hooks = (*Hooks)(nil)

func New(inner clustercache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) FanOut(cmd string, n int) { h.try(func() { h.inner.FanOut(cmd, n) }) }
func (h *Hooks) NodeError(cmd, addr string, err error) {
	h.try(func() { h.inner.NodeError(cmd, addr, err) })
}
func (h *Hooks) NoEligibleServer(cmd string)   { h.try(func() { h.inner.NoEligibleServer(cmd) }) }
func (h *Hooks) NearCacheHit(k string)         { h.try(func() { h.inner.NearCacheHit(k) }) }
func (h *Hooks) NearCacheMiss(k string)        { h.try(func() { h.inner.NearCacheMiss(k) }) }
func (h *Hooks) NearCacheSetRejected(k string) { h.try(func() { h.inner.NearCacheSetRejected(k) }) }
func (h *Hooks) DecodeError(k string, err error) {
	h.try(func() { h.inner.DecodeError(k, err) })
}
func (h *Hooks) MessageDecodeError(ch string, err error) {
	h.try(func() { h.inner.MessageDecodeError(ch, err) })
}
