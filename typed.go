package clustercache

import (
	"context"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/driver"
	"github.com/unkn0wn-root/clustercache/future"
)

// Typed is a view of a Client for values of type V. It is cheap to build and
// holds no state besides the codec, so create one per call site or keep it.
//
// Reads of a missing key (or field, or an empty list) return V's zero value
// and a nil error; the codec is not invoked for them.
type Typed[V any] struct {
	c     *Client
	codec codec.Codec[V]
}

// Of views c through the client-wide serializer.
func Of[V any](c *Client) Typed[V] {
	return Typed[V]{c: c, codec: codec.Of[V](c.ser)}
}

// OfCodec views c through an explicit codec, e.g. a codec.Polymorphic for an
// interface type.
func OfCodec[V any](c *Client, cd codec.Codec[V]) Typed[V] {
	return Typed[V]{c: c, codec: cd}
}

func Get[T any](ctx context.Context, c *Client, key string) (T, error) {
	return Of[T](c).Get(ctx, key)
}

func Set[T any](ctx context.Context, c *Client, key string, v T) (bool, error) {
	return Of[T](c).Set(ctx, key, v)
}

func (t Typed[V]) decode(sk string, b []byte) (V, error) {
	v, err := t.codec.Decode(b)
	if err != nil {
		t.c.hooks.DecodeError(sk, err)
		t.c.log.Warn("decode failed", t.c.fields("key", sk, "err", err))
	}
	return v, err
}

func (t Typed[V]) decodeAll(sk string, raw [][]byte) ([]V, error) {
	out := make([]V, 0, len(raw))
	for _, b := range raw {
		v, err := t.decode(sk, b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t Typed[V]) decodeMap(sk string, raw map[string][]byte) (map[string]V, error) {
	out := make(map[string]V, len(raw))
	for f, b := range raw {
		v, err := t.decode(sk, b)
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

// encodeAll encodes every item before anything is written.
func (t Typed[V]) encodeAll(items []V) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, v := range items {
		b, err := t.codec.Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// ==============================
// Strings
// ==============================

func (t Typed[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	if err := validKey("key", key); err != nil {
		return zero, err
	}
	sk := t.c.key(key)
	if b, ok := t.c.nearGet(ctx, sk); ok {
		return t.decode(sk, b)
	}
	b, ok, err := t.c.drv.Get(ctx, sk)
	if err != nil || !ok {
		return zero, err
	}
	v, err := t.decode(sk, b)
	if err != nil {
		return zero, err
	}
	t.c.nearSet(ctx, sk, b)
	return v, nil
}

// Set writes v without expiry. It reports the driver's success flag.
func (t Typed[V]) Set(ctx context.Context, key string, v V) (bool, error) {
	return t.SetWithExpiry(ctx, key, v, Expiry{})
}

func (t Typed[V]) SetWithExpiry(ctx context.Context, key string, v V, exp Expiry) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	b, err := t.codec.Encode(v)
	if err != nil {
		return false, err
	}
	sk := t.c.key(key)
	ok, err := t.c.drv.Set(ctx, sk, b, exp.TTL(t.c.now()))
	t.c.dropNear(ctx, sk)
	return ok, err
}

// Replace is Set under another name; there is no distinct server command.
func (t Typed[V]) Replace(ctx context.Context, key string, v V) (bool, error) {
	return t.Set(ctx, key, v)
}

func (t Typed[V]) ReplaceWithExpiry(ctx context.Context, key string, v V, exp Expiry) (bool, error) {
	return t.SetWithExpiry(ctx, key, v, exp)
}

// GetAll returns exactly one entry per distinct input key. Keys that are not
// found map to V's zero value.
func (t Typed[V]) GetAll(ctx context.Context, keys []string) (map[string]V, error) {
	if err := validKeys("keys", keys); err != nil {
		return nil, err
	}
	out := make(map[string]V, len(keys))
	remote := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		var zero V
		out[k] = zero
		sk := t.c.key(k)
		if b, ok := t.c.nearGet(ctx, sk); ok {
			v, err := t.decode(sk, b)
			if err != nil {
				return nil, err
			}
			out[k] = v
			continue
		}
		remote = append(remote, sk)
	}
	if len(remote) == 0 {
		return out, nil
	}

	found, err := t.c.drv.MGet(ctx, remote)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		sk := t.c.key(k)
		b, ok := found[sk]
		if !ok {
			continue
		}
		v, err := t.decode(sk, b)
		if err != nil {
			return nil, err
		}
		out[k] = v
		t.c.nearSet(ctx, sk, b)
	}
	return out, nil
}

// SetAll encodes every value first, then writes them in one driver call.
func (t Typed[V]) SetAll(ctx context.Context, items map[string]V) (bool, error) {
	if err := validItemMap("key", items); err != nil {
		return false, err
	}
	enc := make(map[string][]byte, len(items))
	for k, v := range items {
		b, err := t.codec.Encode(v)
		if err != nil {
			return false, err
		}
		enc[t.c.key(k)] = b
	}
	if len(enc) == 0 {
		return true, nil
	}
	ok, err := t.c.drv.MSet(ctx, enc)
	for sk := range enc {
		t.c.dropNear(ctx, sk)
	}
	return ok, err
}

// ==============================
// Sets
// ==============================

// SetAdd reports whether item was newly added.
func (t Typed[V]) SetAdd(ctx context.Context, key string, item V) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	if err := validItem(item); err != nil {
		return false, err
	}
	b, err := t.codec.Encode(item)
	if err != nil {
		return false, err
	}
	n, err := t.c.drv.SAdd(ctx, t.c.key(key), b)
	return n > 0, err
}

// SetAddAll returns the number of members newly added.
func (t Typed[V]) SetAddAll(ctx context.Context, key string, items []V) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validItems(items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	enc, err := t.encodeAll(items)
	if err != nil {
		return 0, err
	}
	return t.c.drv.SAdd(ctx, t.c.key(key), enc...)
}

func (t Typed[V]) SetRemove(ctx context.Context, key string, item V) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	if err := validItem(item); err != nil {
		return false, err
	}
	b, err := t.codec.Encode(item)
	if err != nil {
		return false, err
	}
	n, err := t.c.drv.SRem(ctx, t.c.key(key), b)
	return n > 0, err
}

func (t Typed[V]) SetRemoveAll(ctx context.Context, key string, items []V) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validItems(items); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	enc, err := t.encodeAll(items)
	if err != nil {
		return 0, err
	}
	return t.c.drv.SRem(ctx, t.c.key(key), enc...)
}

func (t Typed[V]) SetMembers(ctx context.Context, key string) ([]V, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	sk := t.c.key(key)
	raw, err := t.c.drv.SMembers(ctx, sk)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(sk, raw)
}

// ==============================
// Lists
// ==============================

// ListAddToLeft pushes item to the head and returns the new length.
func (t Typed[V]) ListAddToLeft(ctx context.Context, key string, item V) (int64, error) {
	if err := validKey("key", key); err != nil {
		return 0, err
	}
	if err := validItem(item); err != nil {
		return 0, err
	}
	b, err := t.codec.Encode(item)
	if err != nil {
		return 0, err
	}
	return t.c.drv.LPush(ctx, t.c.key(key), b)
}

// ListGetFromRight pops the tail. An empty or missing list yields the zero value.
func (t Typed[V]) ListGetFromRight(ctx context.Context, key string) (V, error) {
	var zero V
	if err := validKey("key", key); err != nil {
		return zero, err
	}
	sk := t.c.key(key)
	b, ok, err := t.c.drv.RPop(ctx, sk)
	if err != nil || !ok {
		return zero, err
	}
	return t.decode(sk, b)
}

// ==============================
// Hashes
// ==============================

func (t Typed[V]) HashGet(ctx context.Context, key, field string) (V, error) {
	var zero V
	if err := validKey("key", key); err != nil {
		return zero, err
	}
	if err := validKey("field", field); err != nil {
		return zero, err
	}
	sk := t.c.key(key)
	b, ok, err := t.c.drv.HGet(ctx, sk, field)
	if err != nil || !ok {
		return zero, err
	}
	return t.decode(sk, b)
}

// HashGetMany returns one entry per requested field; absent fields map to
// V's zero value.
func (t Typed[V]) HashGetMany(ctx context.Context, key string, fields []string) (map[string]V, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	if err := validKeys("fields", fields); err != nil {
		return nil, err
	}
	out := make(map[string]V, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	sk := t.c.key(key)
	found, err := t.c.drv.HMGet(ctx, sk, fields...)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		b, ok := found[f]
		if !ok {
			var zero V
			out[f] = zero
			continue
		}
		v, err := t.decode(sk, b)
		if err != nil {
			return nil, err
		}
		out[f] = v
	}
	return out, nil
}

func (t Typed[V]) HashGetAll(ctx context.Context, key string) (map[string]V, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	sk := t.c.key(key)
	raw, err := t.c.drv.HGetAll(ctx, sk)
	if err != nil {
		return nil, err
	}
	return t.decodeMap(sk, raw)
}

// HashSet writes one field. With nx the field is only written when absent.
// It reports whether the field was written.
func (t Typed[V]) HashSet(ctx context.Context, key, field string, v V, nx bool) (bool, error) {
	if err := validKey("key", key); err != nil {
		return false, err
	}
	if err := validKey("field", field); err != nil {
		return false, err
	}
	if err := validItem(v); err != nil {
		return false, err
	}
	b, err := t.codec.Encode(v)
	if err != nil {
		return false, err
	}
	return t.c.drv.HSet(ctx, t.c.key(key), field, b, nx)
}

func (t Typed[V]) HashSetMany(ctx context.Context, key string, values map[string]V) error {
	if err := validKey("key", key); err != nil {
		return err
	}
	if err := validItemMap("field", values); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	enc := make(map[string][]byte, len(values))
	for f, v := range values {
		b, err := t.codec.Encode(v)
		if err != nil {
			return err
		}
		enc[f] = b
	}
	return t.c.drv.HSetMany(ctx, t.c.key(key), enc)
}

func (t Typed[V]) HashValues(ctx context.Context, key string) ([]V, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	sk := t.c.key(key)
	raw, err := t.c.drv.HVals(ctx, sk)
	if err != nil {
		return nil, err
	}
	return t.decodeAll(sk, raw)
}

// HashScan returns the fields matching a glob pattern. Field names are
// returned as stored; only the hash key carries the prefix.
func (t Typed[V]) HashScan(ctx context.Context, key, pattern string, pageSize int64) (map[string]V, error) {
	if err := validKey("key", key); err != nil {
		return nil, err
	}
	sk := t.c.key(key)
	raw, err := t.c.drv.HScan(ctx, sk, pattern, pageSize)
	if err != nil {
		return nil, err
	}
	return t.decodeMap(sk, raw)
}

// ==============================
// Pub/Sub
// ==============================

// Publish returns the number of receivers notified.
func (t Typed[V]) Publish(ctx context.Context, channel string, msg V) (int64, error) {
	if err := validKey("channel", channel); err != nil {
		return 0, err
	}
	b, err := t.codec.Encode(msg)
	if err != nil {
		return 0, err
	}
	return t.c.drv.Publish(ctx, channel, b)
}

// Subscribe decodes each message and hands it to handler on the driver's
// dispatch goroutine. Messages that fail to decode are reported through
// Hooks.MessageDecodeError and skipped. Panics in handler are not recovered.
func (t Typed[V]) Subscribe(ctx context.Context, channel string, handler func(V)) (driver.Subscription, error) {
	if err := validKey("channel", channel); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, &InvalidItemError{Param: "handler", Index: -1}
	}
	return t.c.drv.Subscribe(ctx, channel, func(b []byte) {
		v, err := t.codec.Decode(b)
		if err != nil {
			t.c.hooks.MessageDecodeError(channel, err)
			t.c.log.Warn("message decode failed", t.c.fields("channel", channel, "err", err))
			return
		}
		handler(v)
	})
}

// ==============================
// Async
// ==============================

func (t Typed[V]) GetAsync(ctx context.Context, key string) *future.Future[V] {
	return future.Go(func() (V, error) { return t.Get(ctx, key) })
}

func (t Typed[V]) SetAsync(ctx context.Context, key string, v V, exp Expiry) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.SetWithExpiry(ctx, key, v, exp) })
}

func (t Typed[V]) GetAllAsync(ctx context.Context, keys []string) *future.Future[map[string]V] {
	return future.Go(func() (map[string]V, error) { return t.GetAll(ctx, keys) })
}

func (t Typed[V]) SetAllAsync(ctx context.Context, items map[string]V) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.SetAll(ctx, items) })
}

func (t Typed[V]) PublishAsync(ctx context.Context, channel string, msg V) *future.Future[int64] {
	return future.Go(func() (int64, error) { return t.Publish(ctx, channel, msg) })
}

func (t Typed[V]) ReplaceAsync(ctx context.Context, key string, v V, exp Expiry) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.ReplaceWithExpiry(ctx, key, v, exp) })
}

func (t Typed[V]) SetAddAsync(ctx context.Context, key string, item V) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.SetAdd(ctx, key, item) })
}

func (t Typed[V]) SetAddAllAsync(ctx context.Context, key string, items []V) *future.Future[int64] {
	return future.Go(func() (int64, error) { return t.SetAddAll(ctx, key, items) })
}

func (t Typed[V]) SetRemoveAsync(ctx context.Context, key string, item V) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.SetRemove(ctx, key, item) })
}

func (t Typed[V]) SetRemoveAllAsync(ctx context.Context, key string, items []V) *future.Future[int64] {
	return future.Go(func() (int64, error) { return t.SetRemoveAll(ctx, key, items) })
}

func (t Typed[V]) SetMembersAsync(ctx context.Context, key string) *future.Future[[]V] {
	return future.Go(func() ([]V, error) { return t.SetMembers(ctx, key) })
}

func (t Typed[V]) ListAddToLeftAsync(ctx context.Context, key string, item V) *future.Future[int64] {
	return future.Go(func() (int64, error) { return t.ListAddToLeft(ctx, key, item) })
}

func (t Typed[V]) ListGetFromRightAsync(ctx context.Context, key string) *future.Future[V] {
	return future.Go(func() (V, error) { return t.ListGetFromRight(ctx, key) })
}

func (t Typed[V]) HashGetAsync(ctx context.Context, key, field string) *future.Future[V] {
	return future.Go(func() (V, error) { return t.HashGet(ctx, key, field) })
}

func (t Typed[V]) HashGetManyAsync(ctx context.Context, key string, fields []string) *future.Future[map[string]V] {
	return future.Go(func() (map[string]V, error) { return t.HashGetMany(ctx, key, fields) })
}

func (t Typed[V]) HashGetAllAsync(ctx context.Context, key string) *future.Future[map[string]V] {
	return future.Go(func() (map[string]V, error) { return t.HashGetAll(ctx, key) })
}

func (t Typed[V]) HashSetAsync(ctx context.Context, key, field string, v V, nx bool) *future.Future[bool] {
	return future.Go(func() (bool, error) { return t.HashSet(ctx, key, field, v, nx) })
}

func (t Typed[V]) HashSetManyAsync(ctx context.Context, key string, values map[string]V) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) { return struct{}{}, t.HashSetMany(ctx, key, values) })
}

func (t Typed[V]) HashValuesAsync(ctx context.Context, key string) *future.Future[[]V] {
	return future.Go(func() ([]V, error) { return t.HashValues(ctx, key) })
}

func (t Typed[V]) HashScanAsync(ctx context.Context, key, pattern string, pageSize int64) *future.Future[map[string]V] {
	return future.Go(func() (map[string]V, error) { return t.HashScan(ctx, key, pattern, pageSize) })
}

func (t Typed[V]) SubscribeAsync(ctx context.Context, channel string, handler func(V)) *future.Future[driver.Subscription] {
	return future.Go(func() (driver.Subscription, error) { return t.Subscribe(ctx, channel, handler) })
}
