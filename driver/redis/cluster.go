package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/clustercache/driver"
	"github.com/unkn0wn-root/clustercache/internal/info"
)

// Endpoints probes every known node with INFO. A node that does not answer
// is reported with Connected=false; its role then comes from CLUSTER SLOTS.
func (d *Driver) Endpoints(ctx context.Context) ([]driver.Endpoint, error) {
	switch c := d.rdb.(type) {
	case *goredis.ClusterClient:
		members, err := clusterMembers(ctx, c)
		if err != nil {
			return nil, err
		}
		out := make([]driver.Endpoint, 0, len(members))
		for _, m := range members {
			out = append(out, probe(ctx, d.node(m.Addr), m))
		}
		return out, nil
	case *goredis.Client:
		ep := driver.Endpoint{Addr: c.Options().Addr}
		return []driver.Endpoint{probe(ctx, c, ep)}, nil
	default:
		return nil, fmt.Errorf("redis driver: unsupported client type %T", d.rdb)
	}
}

func (d *Driver) Server(_ context.Context, ep driver.Endpoint) (driver.Server, error) {
	switch c := d.rdb.(type) {
	case *goredis.ClusterClient:
		return &server{ep: ep, c: d.node(ep.Addr)}, nil
	case *goredis.Client:
		if ep.Addr != c.Options().Addr {
			return nil, fmt.Errorf("redis driver: unknown endpoint %s", ep.Addr)
		}
		return &server{ep: ep, c: c}, nil
	default:
		return nil, fmt.Errorf("redis driver: unsupported client type %T", d.rdb)
	}
}

// clusterMembers lists nodes in slot order, primaries before their replicas,
// each address once.
func clusterMembers(ctx context.Context, c *goredis.ClusterClient) ([]driver.Endpoint, error) {
	slots, err := c.ClusterSlots(ctx).Result()
	if err != nil {
		return nil, err
	}
	return membersFromSlots(slots), nil
}

func membersFromSlots(slots []goredis.ClusterSlot) []driver.Endpoint {
	seen := make(map[string]struct{})
	var out []driver.Endpoint
	for _, s := range slots {
		for i, n := range s.Nodes {
			if _, dup := seen[n.Addr]; dup || n.Addr == "" {
				continue
			}
			seen[n.Addr] = struct{}{}
			out = append(out, driver.Endpoint{Addr: n.Addr, Replica: i > 0})
		}
	}
	return out
}

// node returns the cached connection for a cluster member, dialing with the
// cluster's credentials on first use.
func (d *Driver) node(addr string) *goredis.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.nodes[addr]; ok {
		return c
	}
	var o goredis.Options
	if cc, ok := d.rdb.(*goredis.ClusterClient); ok {
		co := cc.Options()
		o = goredis.Options{
			Username:    co.Username,
			Password:    co.Password,
			TLSConfig:   co.TLSConfig,
			DialTimeout: co.DialTimeout,
			ReadTimeout: co.ReadTimeout,
		}
	}
	o.Addr = addr
	c := goredis.NewClient(&o)
	d.nodes[addr] = c
	return c
}

func probe(ctx context.Context, c *goredis.Client, ep driver.Endpoint) driver.Endpoint {
	text, err := c.Info(ctx).Result()
	if err != nil {
		ep.Connected, ep.Scan = false, false
		return ep
	}
	return endpointFromInfo(ep, info.Parse(text))
}

func endpointFromInfo(ep driver.Endpoint, kv map[string]string) driver.Endpoint {
	ep.Connected = true
	switch kv["role"] {
	case "slave", "replica":
		ep.Replica = true
	case "master":
		ep.Replica = false
	}
	ep.Scan = supportsScan(kv["redis_version"])
	return ep
}

// ==============================
// server
// ==============================

type server struct {
	ep driver.Endpoint
	c  *goredis.Client
}

var _ driver.Server = (*server)(nil)

func (s *server) Endpoint() driver.Endpoint { return s.ep }

// Keys walks SCAN when the node supports it and falls back to KEYS otherwise.
func (s *server) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !s.ep.Scan {
		return s.c.Keys(ctx, pattern).Result()
	}
	var out []string
	it := s.c.Scan(ctx, 0, pattern, 0).Iterator()
	for it.Next(ctx) {
		out = append(out, it.Val())
	}
	return out, it.Err()
}

func (s *server) FlushDB(ctx context.Context) error {
	return s.c.FlushDB(ctx).Err()
}

func (s *server) Save(ctx context.Context, mode driver.SaveMode) error {
	switch mode {
	case driver.SaveBackground:
		return s.c.BgSave(ctx).Err()
	case driver.SaveForeground:
		return s.c.Save(ctx).Err()
	case driver.SaveRewriteAOF:
		return s.c.BgRewriteAOF(ctx).Err()
	default:
		return fmt.Errorf("redis driver: unknown save mode %d", int(mode))
	}
}

func (s *server) Info(ctx context.Context) (string, error) {
	return s.c.Info(ctx).Result()
}
