// Package sloghooks logs clustercache events to a *slog.Logger, with
// sampling for the high-volume near-cache events and redaction of keys.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/clustercache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	NearCacheEvery uint64
	FanOutEvery    uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	nearCtr   atomic.Uint64
	fanOutCtr atomic.Uint64
}

var _ clustercache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) FanOut(cmd string, nodes int) {
	if h.l == nil || !sample(h.opts.FanOutEvery, &h.fanOutCtr) {
		return
	}
	h.l.Debug("clustercache.fan_out", "cmd", cmd, "nodes", nodes)
}

func (h *Hooks) NodeError(cmd, addr string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("clustercache.node_error", "cmd", cmd, "addr", addr, "err", err)
}

func (h *Hooks) NoEligibleServer(cmd string) {
	if h.l == nil {
		return
	}
	h.l.Warn("clustercache.no_eligible_server", "cmd", cmd)
}

func (h *Hooks) NearCacheHit(storageKey string) {
	if h.l == nil || !sample(h.opts.NearCacheEvery, &h.nearCtr) {
		return
	}
	h.l.Debug("clustercache.near_hit", "key", h.redact(storageKey))
}

func (h *Hooks) NearCacheMiss(storageKey string) {
	if h.l == nil || !sample(h.opts.NearCacheEvery, &h.nearCtr) {
		return
	}
	h.l.Debug("clustercache.near_miss", "key", h.redact(storageKey))
}

func (h *Hooks) NearCacheSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("clustercache.near_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) DecodeError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("clustercache.decode_error", "key", h.redact(storageKey), "err", err)
}

func (h *Hooks) MessageDecodeError(channel string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("clustercache.message_decode_error", "channel", channel, "err", err)
}
