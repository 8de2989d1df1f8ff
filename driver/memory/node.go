package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/clustercache/driver"
)

// Node is one modeled cluster member. It implements driver.Server and
// exposes knobs for steering tests: reachability, INFO text and injected
// failures for the administrative commands.
type Node struct {
	d *Driver

	mu       sync.Mutex
	ep       driver.Endpoint
	st       store
	info     string
	flushErr error
	saveErr  error
	flushes  int
	saves    []driver.SaveMode
}

var _ driver.Server = (*Node)(nil)

func newNode(ep driver.Endpoint, d *Driver) *Node {
	n := &Node{d: d, ep: ep}
	n.st = store{m: make(map[string]*entry), now: func() time.Time { return d.now() }}
	role := "master"
	if ep.Replica {
		role = "slave"
	}
	n.info = fmt.Sprintf("# Server\r\nredis_version:7.2.0\r\ntcp_port:6379\r\n\r\n# Replication\r\nrole:%s\r\n", role)
	return n
}

// exec runs fn against the keyspace under the node lock.
func (n *Node) exec(ctx context.Context, fn func(*store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.ep.Connected {
		return fmt.Errorf("%w: %s", ErrUnreachable, n.ep.Addr)
	}
	return fn(&n.st)
}

func (n *Node) Endpoint() driver.Endpoint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ep
}

func (n *Node) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := n.d.enter(); err != nil {
		return nil, err
	}
	var out []string
	err := n.exec(ctx, func(s *store) error {
		for _, k := range s.keys() {
			if Match(pattern, k) {
				out = append(out, k)
			}
		}
		return nil
	})
	return out, err
}

func (n *Node) FlushDB(ctx context.Context) error {
	if err := n.d.enter(); err != nil {
		return err
	}
	return n.exec(ctx, func(s *store) error {
		if n.flushErr != nil {
			return n.flushErr
		}
		n.flushes++
		clear(s.m)
		return nil
	})
}

func (n *Node) Save(ctx context.Context, mode driver.SaveMode) error {
	if err := n.d.enter(); err != nil {
		return err
	}
	return n.exec(ctx, func(*store) error {
		if n.saveErr != nil {
			return n.saveErr
		}
		n.saves = append(n.saves, mode)
		return nil
	})
}

func (n *Node) Info(ctx context.Context) (string, error) {
	if err := n.d.enter(); err != nil {
		return "", err
	}
	var out string
	err := n.exec(ctx, func(*store) error {
		out = n.info
		return nil
	})
	return out, err
}

// ==============================
// test knobs
// ==============================

// Put writes key directly into this node's keyspace, bypassing routing.
func (n *Node) Put(key string, value []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.st.m[key] = &entry{kind: kindString, str: clone(value)}
}

// Len reports the number of live keys on this node.
func (n *Node) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.st.keys())
}

// SetConnected toggles reachability. Commands on an unreachable node fail
// with ErrUnreachable and Endpoints reports it as disconnected.
func (n *Node) SetConnected(ok bool) {
	n.mu.Lock()
	n.ep.Connected = ok
	n.mu.Unlock()
}

// SetInfo replaces the text returned by Info.
func (n *Node) SetInfo(text string) {
	n.mu.Lock()
	n.info = text
	n.mu.Unlock()
}

// FailFlush makes FlushDB return err until reset with nil.
func (n *Node) FailFlush(err error) {
	n.mu.Lock()
	n.flushErr = err
	n.mu.Unlock()
}

// FailSave makes Save return err until reset with nil.
func (n *Node) FailSave(err error) {
	n.mu.Lock()
	n.saveErr = err
	n.mu.Unlock()
}

// Flushes reports how many FlushDB calls succeeded.
func (n *Node) Flushes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.flushes
}

// Saves lists the modes of every successful Save call.
func (n *Node) Saves() []driver.SaveMode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]driver.SaveMode(nil), n.saves...)
}
