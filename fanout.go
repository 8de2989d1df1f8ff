package clustercache

import (
	"context"

	"github.com/unkn0wn-root/clustercache/driver"
	"github.com/unkn0wn-root/clustercache/future"
	"github.com/unkn0wn-root/clustercache/internal/info"
	"github.com/unkn0wn-root/clustercache/internal/util"
)

// SearchKeys runs a glob key search on every node the topology policy
// selects and returns the de-duplicated union in first-seen order. The key
// prefix is added to pattern and stripped from the results; keys that do not
// carry the prefix are skipped.
//
// A policy that selects no node fails with ErrNoEligibleServer.
func (c *Client) SearchKeys(ctx context.Context, pattern string) ([]string, error) {
	const cmd = "keys"
	eps, err := c.drv.Endpoints(ctx)
	if err != nil {
		return nil, err
	}
	nodes, err := c.policy.Nodes(eps)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	visited := 0
	for ep := range nodes {
		visited++
		keys, err := c.keysOn(ctx, ep, util.Prefixed(c.prefix, pattern))
		if err != nil {
			return nil, c.nodeErr(cmd, ep, err)
		}
		for _, k := range keys {
			lk, ok := util.Unprefixed(c.prefix, k)
			if !ok {
				continue
			}
			if _, dup := seen[lk]; dup {
				continue
			}
			seen[lk] = struct{}{}
			out = append(out, lk)
		}
	}
	if visited == 0 {
		c.hooks.NoEligibleServer(cmd)
		c.log.Warn("no eligible server", c.fields("cmd", cmd, "endpoints", len(eps)))
		return nil, ErrNoEligibleServer
	}
	c.hooks.FanOut(cmd, visited)
	return out, nil
}

func (c *Client) keysOn(ctx context.Context, ep driver.Endpoint, pattern string) ([]string, error) {
	srv, err := c.drv.Server(ctx, ep)
	if err != nil {
		return nil, err
	}
	return srv.Keys(ctx, pattern)
}

// FlushDb empties the database on every endpoint the driver reports. The
// topology policy is not consulted. The first failing node aborts the rest;
// nodes already flushed stay flushed. The near-cache is cleared afterwards.
func (c *Client) FlushDb(ctx context.Context) error {
	err := c.everyNode(ctx, "flushdb", func(s driver.Server) error { return s.FlushDB(ctx) })
	if err != nil {
		return err
	}
	if c.near != nil {
		if err := c.near.Clear(ctx); err != nil {
			c.log.Warn("near-cache clear failed", c.fields("err", err))
		}
	}
	return nil
}

// Save asks every endpoint to persist, with the same fail-fast rules as FlushDb.
func (c *Client) Save(ctx context.Context, mode driver.SaveMode) error {
	return c.everyNode(ctx, "save", func(s driver.Server) error { return s.Save(ctx, mode) })
}

func (c *Client) everyNode(ctx context.Context, cmd string, fn func(driver.Server) error) error {
	if !c.allowAdmin {
		return ErrAdminDisabled
	}
	eps, err := c.drv.Endpoints(ctx)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		c.hooks.NoEligibleServer(cmd)
		return ErrNoEligibleServer
	}
	for _, ep := range eps {
		srv, err := c.drv.Server(ctx, ep)
		if err == nil {
			err = fn(srv)
		}
		if err != nil {
			return c.nodeErr(cmd, ep, err)
		}
	}
	c.hooks.FanOut(cmd, len(eps))
	c.log.Info("admin command completed", c.fields("cmd", cmd, "nodes", len(eps)))
	return nil
}

func (c *Client) nodeErr(cmd string, ep driver.Endpoint, err error) error {
	c.hooks.NodeError(cmd, ep.Addr, err)
	c.log.Error("node command failed", c.fields("cmd", cmd, "addr", ep.Addr, "err", err))
	return &NodeError{Cmd: cmd, Addr: ep.Addr, Err: err}
}

// GetInfo runs INFO on the default node and flattens it into key/value pairs.
// Section headers and lines without a "key:" prefix are skipped.
func (c *Client) GetInfo(ctx context.Context) (map[string]string, error) {
	text, err := c.drv.Info(ctx)
	if err != nil {
		return nil, err
	}
	return info.Parse(text), nil
}

func (c *Client) SearchKeysAsync(ctx context.Context, pattern string) *future.Future[[]string] {
	return future.Go(func() ([]string, error) { return c.SearchKeys(ctx, pattern) })
}

func (c *Client) FlushDbAsync(ctx context.Context) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) { return struct{}{}, c.FlushDb(ctx) })
}

func (c *Client) SaveAsync(ctx context.Context, mode driver.SaveMode) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) { return struct{}{}, c.Save(ctx, mode) })
}

func (c *Client) GetInfoAsync(ctx context.Context) *future.Future[map[string]string] {
	return future.Go(func() (map[string]string, error) { return c.GetInfo(ctx) })
}
