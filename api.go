package clustercache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/config"
	"github.com/unkn0wn-root/clustercache/driver"
	"github.com/unkn0wn-root/clustercache/driver/redis"
	"github.com/unkn0wn-root/clustercache/provider"
	"github.com/unkn0wn-root/clustercache/provider/bigcache"
	"github.com/unkn0wn-root/clustercache/provider/ristretto"
	"github.com/unkn0wn-root/clustercache/topology"
)

// Options configure a Client. Only Driver is required.
type Options struct {
	Driver driver.Driver

	Serializer codec.Serializer // nil => codec.JSON
	KeyPrefix  string           // applied once to every key; stripped from SearchKeys results
	Policy     topology.Policy  // fan-out node selection for SearchKeys
	AllowAdmin bool             // enables FlushDb and Save

	NearCache    provider.Provider // optional local cache in front of Get
	NearCacheTTL time.Duration     // 0 => 30s

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	Now  func() time.Time // clock for ExpireAt; nil => time.Now
	Node *snowflake.Node  // id generator for Client.ID; nil => process default
}

func New(opts Options) (*Client, error) {
	if opts.Driver == nil {
		return nil, errors.New("clustercache: driver is required")
	}
	node := opts.Node
	if node == nil {
		n, err := defaultNode()
		if err != nil {
			return nil, fmt.Errorf("clustercache: id generator: %w", err)
		}
		node = n
	}

	c := &Client{
		drv:        opts.Driver,
		prefix:     opts.KeyPrefix,
		policy:     opts.Policy,
		allowAdmin: opts.AllowAdmin,
		near:       opts.NearCache,
		id:         node.Generate(),
	}

	// defaults
	c.ser = coalesce[codec.Serializer](opts.Serializer, codec.JSON{})
	c.nearTTL = coalesce(opts.NearCacheTTL, defaultNearCacheTTL)
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Now != nil {
		c.now = opts.Now
	} else {
		c.now = time.Now
	}

	c.log.Debug("client created", c.fields(
		"serializer", c.ser.Name(),
		"prefix", c.prefix,
		"mode", c.policy.Mode.String(),
		"nearCache", c.near != nil,
	))
	return c, nil
}

// NewFromConfig dials the configured hosts with the go-redis driver and
// builds a Client owning that connection. Fields of opts that the config
// also covers (Driver, Serializer, KeyPrefix, Policy, AllowAdmin, NearCache)
// are overwritten; Logger, Hooks, Now and Node are kept.
func NewFromConfig(ctx context.Context, cfg config.Config, opts Options) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ser, err := codec.Lookup(cfg.SerializerName)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Enumeration.Policy()
	if err != nil {
		return nil, err
	}
	near, err := newNearCache(ctx, cfg.NearCache)
	if err != nil {
		return nil, err
	}

	drv, err := redis.Dial(ctx, redis.DialOptions{
		Addrs:       cfg.Addrs(),
		DB:          cfg.Database,
		Password:    cfg.Password,
		TLS:         cfg.SSL,
		DialTimeout: cfg.ConnectTimeout(),
		Ping:        cfg.AbortOnConnectFail,
	})
	if err != nil {
		if near != nil {
			_ = near.Close(ctx)
		}
		return nil, fmt.Errorf("clustercache: connect %v: %w", cfg.Addrs(), err)
	}

	opts.Driver = drv
	opts.Serializer = ser
	opts.KeyPrefix = cfg.KeyPrefix
	opts.Policy = policy
	opts.AllowAdmin = cfg.AllowAdmin
	opts.NearCache = near
	opts.NearCacheTTL = cfg.NearCache.TTL
	c, err := New(opts)
	if err != nil {
		_ = drv.Close(ctx)
		if near != nil {
			_ = near.Close(ctx)
		}
		return nil, err
	}
	return c, nil
}

func newNearCache(ctx context.Context, nc config.NearCache) (provider.Provider, error) {
	switch nc.Kind {
	case "":
		return nil, nil
	case "ristretto":
		return ristretto.New(ristretto.Config{
			NumCounters: max(nc.MaxBytes/100, 1000),
			MaxCost:     nc.MaxBytes,
			BufferItems: 64,
		})
	case "bigcache":
		return bigcache.New(ctx, bigcache.Config{
			LifeWindow:         nc.TTL,
			HardMaxCacheSizeMB: int(nc.MaxBytes >> 20),
		})
	default:
		return nil, fmt.Errorf("clustercache: unknown near-cache kind %q", nc.Kind)
	}
}

// defaultNode is the id generator shared by clients built without
// Options.Node. The node number is derived from the pid.
var defaultNode = sync.OnceValues(func() (*snowflake.Node, error) {
	return snowflake.NewNode(int64(os.Getpid() % 1024))
})
