package clustercache

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/driver"
	"github.com/unkn0wn-root/clustercache/future"
	"github.com/unkn0wn-root/clustercache/internal/util"
	"github.com/unkn0wn-root/clustercache/internal/wire"
	"github.com/unkn0wn-root/clustercache/provider"
	"github.com/unkn0wn-root/clustercache/topology"
)

// Client is the facade over a connected driver. It owns the client-wide
// serializer and topology policy, both fixed at construction. Typed value
// operations live on Typed[V]; Client carries the operations that never
// decode a payload.
//
// A Client is safe for concurrent use. It adds no locking around the driver.
type Client struct {
	drv        driver.Driver
	ser        codec.Serializer
	prefix     string
	policy     topology.Policy
	allowAdmin bool
	near       provider.Provider
	nearTTL    time.Duration
	log        Logger
	hooks      Hooks
	now        func() time.Time
	id         snowflake.ID
}

func (c *Client) Serializer() codec.Serializer { return c.ser }
func (c *Client) Driver() driver.Driver        { return c.drv }
func (c *Client) Policy() topology.Policy      { return c.policy }
func (c *Client) ID() snowflake.ID             { return c.id }

// Close releases the near-cache and the driver.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.near != nil {
		if err := c.near.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.drv.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Client) key(k string) string { return util.Prefixed(c.prefix, k) }

// ==============================
// Keys
// ==============================

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	return c.drv.Exists(ctx, c.key(key))
}

// Remove deletes key. It reports whether the key existed.
func (c *Client) Remove(ctx context.Context, key string) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	sk := c.key(key)
	c.dropNear(ctx, sk)
	return c.drv.Del(ctx, sk)
}

// RemoveAll deletes every key, stopping at the first driver error.
func (c *Client) RemoveAll(ctx context.Context, keys []string) error {
	if err := validKeys("keys", keys); err != nil {
		return err
	}
	for _, k := range keys {
		sk := c.key(k)
		c.dropNear(ctx, sk)
		if _, err := c.drv.Del(ctx, sk); err != nil {
			return err
		}
	}
	return nil
}

// ==============================
// Sets (raw members)
// ==============================

// SetMember returns the members of a set without decoding them.
func (c *Client) SetMember(ctx context.Context, key string) ([]string, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	raw, err := c.drv.SMembers(ctx, c.key(key))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, m := range raw {
		out[i] = string(m)
	}
	return out, nil
}

// ==============================
// Hashes (no payload decoding)
// ==============================

func (c *Client) HashDelete(ctx context.Context, key, field string) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	if err := validKey("field", field); err != nil {
		return false, err
	}
	n, err := c.drv.HDel(ctx, c.key(key), field)
	return n > 0, err
}

// HashDeleteMany returns the number of fields removed.
func (c *Client) HashDeleteMany(ctx context.Context, key string, fields []string) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validKeys("fields", fields); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}
	return c.drv.HDel(ctx, c.key(key), fields...)
}

func (c *Client) HashExists(ctx context.Context, key, field string) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	if err := validKey("field", field); err != nil {
		return false, err
	}
	return c.drv.HExists(ctx, c.key(key), field)
}

func (c *Client) HashKeys(ctx context.Context, key string) ([]string, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	return c.drv.HKeys(ctx, c.key(key))
}

func (c *Client) HashLength(ctx context.Context, key string) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	return c.drv.HLen(ctx, c.key(key))
}

// HashIncrement adds delta to an integer field and returns the new value.
func (c *Client) HashIncrement(ctx context.Context, key, field string, delta int64) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validKey("field", field); err != nil {
		return 0, err
	}
	return c.drv.HIncrBy(ctx, c.key(key), field, delta)
}

func (c *Client) HashIncrementFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validKey("field", field); err != nil {
		return 0, err
	}
	return c.drv.HIncrByFloat(ctx, c.key(key), field, delta)
}

// ==============================
// Pub/Sub
// ==============================

// Channels are not prefixed.
func (c *Client) Unsubscribe(ctx context.Context, channel string) error {
	if err := validKey("channel", channel); err != nil {
		return err
	}
	return c.drv.Unsubscribe(ctx, channel)
}

func (c *Client) UnsubscribeAll(ctx context.Context) error {
	return c.drv.UnsubscribeAll(ctx)
}

// ==============================
// Async
// ==============================

func (c *Client) ExistsAsync(ctx context.Context, key string) *future.Future[bool] {
	return future.Go(func() (bool, error) { return c.Exists(ctx, key) })
}

func (c *Client) RemoveAsync(ctx context.Context, key string) *future.Future[bool] {
	return future.Go(func() (bool, error) { return c.Remove(ctx, key) })
}

func (c *Client) RemoveAllAsync(ctx context.Context, keys []string) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) { return struct{}{}, c.RemoveAll(ctx, keys) })
}

func (c *Client) SetMemberAsync(ctx context.Context, key string) *future.Future[[]string] {
	return future.Go(func() ([]string, error) { return c.SetMember(ctx, key) })
}

func (c *Client) HashDeleteAsync(ctx context.Context, key, field string) *future.Future[bool] {
	return future.Go(func() (bool, error) { return c.HashDelete(ctx, key, field) })
}

func (c *Client) HashDeleteManyAsync(ctx context.Context, key string, fields []string) *future.Future[int64] {
	return future.Go(func() (int64, error) { return c.HashDeleteMany(ctx, key, fields) })
}

func (c *Client) HashExistsAsync(ctx context.Context, key, field string) *future.Future[bool] {
	return future.Go(func() (bool, error) { return c.HashExists(ctx, key, field) })
}

func (c *Client) HashKeysAsync(ctx context.Context, key string) *future.Future[[]string] {
	return future.Go(func() ([]string, error) { return c.HashKeys(ctx, key) })
}

func (c *Client) HashLengthAsync(ctx context.Context, key string) *future.Future[int64] {
	return future.Go(func() (int64, error) { return c.HashLength(ctx, key) })
}

func (c *Client) HashIncrementAsync(ctx context.Context, key, field string, delta int64) *future.Future[int64] {
	return future.Go(func() (int64, error) { return c.HashIncrement(ctx, key, field, delta) })
}

func (c *Client) HashIncrementFloatAsync(ctx context.Context, key, field string, delta float64) *future.Future[float64] {
	return future.Go(func() (float64, error) { return c.HashIncrementFloat(ctx, key, field, delta) })
}

func (c *Client) UnsubscribeAsync(ctx context.Context, channel string) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) { return struct{}{}, c.Unsubscribe(ctx, channel) })
}

// ==============================
// Near-cache
// ==============================

// Near entries carry their own deadline, so a provider that ignores the
// per-entry ttl still never serves past the key's server-side expiry.
func (c *Client) nearGet(ctx context.Context, sk string) ([]byte, bool) {
	if c.near == nil {
		return nil, false
	}
	b, ok, err := c.near.Get(ctx, sk)
	if err != nil {
		c.log.Warn("near-cache get failed", c.fields("key", sk, "err", err))
		return nil, false
	}
	if ok {
		deadline, payload, err := wire.DecodeStamped(b)
		if err == nil && c.now().UnixNano() < deadline {
			c.hooks.NearCacheHit(sk)
			return payload, true
		}
		c.dropNear(ctx, sk)
	}
	c.hooks.NearCacheMiss(sk)
	return nil, false
}

// nearSet caches b for nearTTL or the key's remaining lifetime, whichever
// is shorter. Keys about to expire are not cached.
func (c *Client) nearSet(ctx context.Context, sk string, b []byte) {
	if c.near == nil {
		return
	}
	ttl := c.nearTTL
	rem, err := c.drv.PTTL(ctx, sk)
	switch {
	case err != nil:
		c.log.Warn("near-cache ttl lookup failed", c.fields("key", sk, "err", err))
		return
	case rem == driver.KeyMissing:
		return
	case rem >= 0 && rem < ttl:
		ttl = rem
	}
	if ttl <= 0 {
		return
	}
	stamped := wire.EncodeStamped(c.now().Add(ttl).UnixNano(), b)
	ok, err := c.near.Set(ctx, sk, stamped, ttl)
	if err != nil {
		c.log.Warn("near-cache set failed", c.fields("key", sk, "err", err))
		return
	}
	if !ok {
		c.hooks.NearCacheSetRejected(sk)
	}
}

func (c *Client) dropNear(ctx context.Context, sk string) {
	if c.near == nil {
		return
	}
	if err := c.near.Del(ctx, sk); err != nil {
		c.log.Warn("near-cache delete failed", c.fields("key", sk, "err", err))
	}
}
