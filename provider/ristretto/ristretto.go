package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/clustercache/provider"
)

// Provider is a cost-bounded near-cache. Cost is the payload length, so
// MaxCost is a byte budget.
type Provider struct {
	c *rc.Cache
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64 // ~10x the expected number of entries
	MaxCost     int64 // bytes
	BufferItems int64 // 64 is a good default
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto near-cache: NumCounters, MaxCost and BufferItems must be positive")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer to drain so a following Get observes it.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok := p.c.SetWithTTL(key, value, int64(len(value))+1, ttl)
	p.c.Wait()
	return ok, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Clear(_ context.Context) error {
	p.c.Clear()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics is nil unless Config.Metrics was set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
