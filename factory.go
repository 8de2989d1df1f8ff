package clustercache

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/clustercache/config"
)

// Factory builds at most one Client for its lifetime. The first call to
// Client performs Load and Build; every later call, concurrent or not,
// returns the same Client or the same error. A failed build is not retried:
// a bad configuration is fatal.
//
// There is no teardown. A Factory held in a package variable keeps its
// Client for the life of the process.
type Factory struct {
	Load  func() (config.Config, error)
	Build func(ctx context.Context, cfg config.Config) (*Client, error)

	once   sync.Once
	client *Client
	err    error
}

func (f *Factory) Client(ctx context.Context) (*Client, error) {
	f.once.Do(func() {
		load := f.Load
		if load == nil {
			load = config.Load
		}
		cfg, err := load()
		if err != nil {
			f.err = err
			return
		}
		build := f.Build
		if build == nil {
			build = func(ctx context.Context, cfg config.Config) (*Client, error) {
				return NewFromConfig(ctx, cfg, Options{})
			}
		}
		f.client, f.err = build(ctx, cfg)
	})
	return f.client, f.err
}

var defaultFactory Factory

// GetClient returns the process-wide Client, built on first use from
// config.Load (CLUSTERCACHE_CONFIG file, else CLUSTERCACHE_* environment).
func GetClient(ctx context.Context) (*Client, error) {
	return defaultFactory.Client(ctx)
}
