// Package redis adapts a go-redis UniversalClient to driver.Driver.
//
// A *goredis.Client (single node or sentinel failover) is modeled as one
// endpoint; a *goredis.ClusterClient reports every node found in CLUSTER
// SLOTS. Per-node commands run on dedicated node connections that are opened
// lazily and closed with the driver.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/clustercache/driver"
)

var ErrNilClient = errors.New("redis driver: nil client")

type Driver struct {
	rdb         goredis.UniversalClient
	closeClient bool

	mu    sync.Mutex
	nodes map[string]*goredis.Client // cluster node connections by addr
	subs  map[string][]*subscription
}

var _ driver.Driver = (*Driver)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this driver exclusively owns the client
}

func New(cfg Config) (*Driver, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Driver{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		nodes:       make(map[string]*goredis.Client),
		subs:        make(map[string][]*subscription),
	}, nil
}

// DialOptions describe how to open a connection the driver will own.
type DialOptions struct {
	Addrs       []string // more than one address selects cluster mode
	DB          int      // ignored in cluster mode
	Username    string
	Password    string
	TLS         bool
	DialTimeout time.Duration
	// Ping makes Dial fail when the first round trip fails instead of
	// deferring the error to the first command.
	Ping bool
}

func Dial(ctx context.Context, o DialOptions) (*Driver, error) {
	uo := &goredis.UniversalOptions{
		Addrs:       o.Addrs,
		DB:          o.DB,
		Username:    o.Username,
		Password:    o.Password,
		DialTimeout: o.DialTimeout,
	}
	if o.TLS {
		uo.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := goredis.NewUniversalClient(uo)
	if o.Ping {
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, err
		}
	}
	return New(Config{Client: rdb, CloseClient: true})
}

// Client exposes the wrapped client for commands the driver does not cover.
func (d *Driver) Client() goredis.UniversalClient { return d.rdb }

// ==============================
// KV
// ==============================

func (d *Driver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := d.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// MGet pipelines one GET per key so it also works across cluster slots.
func (d *Driver) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	cmds := make([]*goredis.StringCmd, len(keys))
	_, err := d.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.Get(ctx, k)
		}
		return nil
	})
	if err != nil && err != goredis.Nil {
		return nil, err
	}
	for i, c := range cmds {
		b, err := c.Bytes()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[keys[i]] = b
	}
	return out, nil
}

// Set hands ttl to go-redis unchanged: positive values expire, 0 never
// expires, goredis.KeepTTL keeps the current TTL.
func (d *Driver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := d.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) MSet(ctx context.Context, items map[string][]byte) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}
	_, err := d.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for k, v := range items {
			p.Set(ctx, k, v, 0)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) Del(ctx context.Context, key string) (bool, error) {
	n, err := d.rdb.Del(ctx, key).Result()
	return n > 0, err
}

func (d *Driver) Exists(ctx context.Context, key string) (bool, error) {
	n, err := d.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// go-redis passes the -1 and -2 replies through unscaled.
func (d *Driver) PTTL(ctx context.Context, key string) (time.Duration, error) {
	return d.rdb.PTTL(ctx, key).Result()
}

func (d *Driver) Info(ctx context.Context) (string, error) {
	return d.rdb.Info(ctx).Result()
}

// Close drops subscriptions and node connections, then the wrapped client
// when this driver owns it. Safe to call multiple times.
func (d *Driver) Close(ctx context.Context) error {
	_ = d.UnsubscribeAll(ctx)

	d.mu.Lock()
	nodes := d.nodes
	d.nodes = make(map[string]*goredis.Client)
	d.mu.Unlock()

	var errs []error
	for _, c := range nodes {
		if err := c.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if d.closeClient {
		if err := d.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
