// Package memory is an in-process driver.Driver that models a small cluster.
//
// Every endpoint owns its own keyspace so per-node commands (Keys, FlushDB,
// Save, Info) can be observed independently. Keyed commands and pub/sub go to
// the default node: the first primary, or the first endpoint if every node is
// a replica. Expiry is checked lazily on access.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/clustercache/driver"
)

var (
	ErrClosed      = errors.New("memory: driver closed")
	ErrUnreachable = errors.New("memory: node unreachable")
	ErrUnknownNode = errors.New("memory: unknown endpoint")
	ErrWrongType   = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNotInteger  = errors.New("memory: hash value is not an integer")
	ErrNotFloat    = errors.New("memory: hash value is not a float")
)

type kind uint8

const (
	kindString kind = iota + 1
	kindHash
	kindList
	kindSet
)

type entry struct {
	kind kind
	str  []byte
	hash map[string][]byte
	list [][]byte // head first
	set  map[string][]byte
	exp  time.Time // zero => no TTL
}

func (e *entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

// Driver is safe for concurrent use.
type Driver struct {
	nodes  []*Node
	byAddr map[string]*Node
	def    *Node
	hub    *hub
	calls  atomic.Int64
	closed atomic.Bool
	now    func() time.Time
}

var _ driver.Driver = (*Driver)(nil)

// New builds a driver over eps in the given order. With no endpoints it
// models a single reachable primary at "memory:0".
func New(eps ...driver.Endpoint) *Driver {
	if len(eps) == 0 {
		eps = []driver.Endpoint{{Addr: "memory:0", Connected: true, Scan: true}}
	}
	d := &Driver{
		byAddr: make(map[string]*Node, len(eps)),
		hub:    newHub(),
		now:    time.Now,
	}
	for _, ep := range eps {
		n := newNode(ep, d)
		d.nodes = append(d.nodes, n)
		d.byAddr[ep.Addr] = n
		if d.def == nil && !ep.Replica {
			d.def = n
		}
	}
	if d.def == nil {
		d.def = d.nodes[0]
	}
	return d
}

// Node returns the node registered under addr, or nil.
func (d *Driver) Node(addr string) *Node { return d.byAddr[addr] }

// Default returns the node that serves keyed commands.
func (d *Driver) Default() *Node { return d.def }

// Calls reports how many commands reached the driver.
func (d *Driver) Calls() int64 { return d.calls.Load() }

func (d *Driver) enter() error {
	d.calls.Add(1)
	if d.closed.Load() {
		return ErrClosed
	}
	return nil
}

// ==============================
// Cluster
// ==============================

func (d *Driver) Endpoints(ctx context.Context) ([]driver.Endpoint, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]driver.Endpoint, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, n.Endpoint())
	}
	return out, nil
}

func (d *Driver) Server(_ context.Context, ep driver.Endpoint) (driver.Server, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	n, ok := d.byAddr[ep.Addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, ep.Addr)
	}
	return n, nil
}

// ==============================
// KV
// ==============================

func (d *Driver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := d.enter(); err != nil {
		return nil, false, err
	}
	var (
		out []byte
		ok  bool
	)
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindString)
		if err != nil || e == nil {
			return err
		}
		out, ok = clone(e.str), true
		return nil
	})
	return out, ok, err
}

func (d *Driver) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	err := d.def.exec(ctx, func(s *store) error {
		for _, k := range keys {
			// MGET reports wrong-typed keys as missing.
			if e, err := s.lookup(k, kindString); err == nil && e != nil {
				out[k] = clone(e.str)
			}
		}
		return nil
	})
	return out, err
}

func (d *Driver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := d.enter(); err != nil {
		return false, err
	}
	err := d.def.exec(ctx, func(s *store) error {
		s.m[key] = &entry{kind: kindString, str: clone(value), exp: s.deadline(ttl)}
		return nil
	})
	return err == nil, err
}

func (d *Driver) MSet(ctx context.Context, items map[string][]byte) (bool, error) {
	if err := d.enter(); err != nil {
		return false, err
	}
	err := d.def.exec(ctx, func(s *store) error {
		for k, v := range items {
			s.m[k] = &entry{kind: kindString, str: clone(v)}
		}
		return nil
	})
	return err == nil, err
}

func (d *Driver) Del(ctx context.Context, key string) (bool, error) {
	if err := d.enter(); err != nil {
		return false, err
	}
	var existed bool
	err := d.def.exec(ctx, func(s *store) error {
		if e := s.live(key); e != nil {
			existed = true
			delete(s.m, key)
		}
		return nil
	})
	return existed, err
}

func (d *Driver) Exists(ctx context.Context, key string) (bool, error) {
	if err := d.enter(); err != nil {
		return false, err
	}
	var ok bool
	err := d.def.exec(ctx, func(s *store) error {
		ok = s.live(key) != nil
		return nil
	})
	return ok, err
}

func (d *Driver) PTTL(ctx context.Context, key string) (time.Duration, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	ttl := driver.KeyMissing
	err := d.def.exec(ctx, func(s *store) error {
		switch e := s.live(key); {
		case e == nil:
		case e.exp.IsZero():
			ttl = driver.NoExpiry
		default:
			ttl = e.exp.Sub(s.now())
		}
		return nil
	})
	return ttl, err
}

func (d *Driver) Info(ctx context.Context) (string, error) {
	return d.def.Info(ctx)
}

// Close drops every subscription. Later commands fail with ErrClosed.
func (d *Driver) Close(_ context.Context) error {
	if d.closed.Swap(true) {
		return nil
	}
	d.hub.closeAll()
	return nil
}

// ==============================
// store
// ==============================

type store struct {
	m   map[string]*entry
	now func() time.Time
}

// live returns the entry under key, evicting it first if it has expired.
func (s *store) live(key string) *entry {
	e, ok := s.m[key]
	if !ok {
		return nil
	}
	if e.expired(s.now()) {
		delete(s.m, key)
		return nil
	}
	return e
}

// lookup is live plus a type check. A missing key is (nil, nil).
func (s *store) lookup(key string, k kind) (*entry, error) {
	e := s.live(key)
	if e == nil {
		return nil, nil
	}
	if e.kind != k {
		return nil, ErrWrongType
	}
	return e, nil
}

// create returns the live entry of kind k under key, creating it if needed.
func (s *store) create(key string, k kind) (*entry, error) {
	e, err := s.lookup(key, k)
	if err != nil || e != nil {
		return e, err
	}
	e = &entry{kind: k}
	switch k {
	case kindHash:
		e.hash = make(map[string][]byte)
	case kindSet:
		e.set = make(map[string][]byte)
	}
	s.m[key] = e
	return e, nil
}

// dropIfEmpty removes collections that lost their last element.
func (s *store) dropIfEmpty(key string, e *entry) {
	if len(e.hash) == 0 && len(e.list) == 0 && len(e.set) == 0 && e.kind != kindString {
		delete(s.m, key)
	}
}

// deadline maps a relative ttl onto an absolute expiry. Zero means no
// expiry; a negative ttl yields an entry that is already expired.
func (s *store) deadline(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *store) keys() []string {
	now := s.now()
	out := make([]string, 0, len(s.m))
	for k, e := range s.m {
		if e.expired(now) {
			delete(s.m, k)
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
