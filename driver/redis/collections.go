package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// ==============================
// Hashes
// ==============================

func (d *Driver) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	b, err := d.rdb.HGet(ctx, key, field).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (d *Driver) HMGet(ctx context.Context, key string, fields ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	vals, err := d.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[fields[i]] = []byte(s)
		}
	}
	return out, nil
}

func (d *Driver) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	m, err := d.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return toBytesMap(m), nil
}

// HSet reports whether a new field was created. With nx an existing field
// is left untouched and false is returned.
func (d *Driver) HSet(ctx context.Context, key, field string, value []byte, nx bool) (bool, error) {
	if nx {
		return d.rdb.HSetNX(ctx, key, field, value).Result()
	}
	n, err := d.rdb.HSet(ctx, key, field, value).Result()
	return n > 0, err
}

func (d *Driver) HSetMany(ctx context.Context, key string, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	args := make(map[string]any, len(values))
	for f, v := range values {
		args[f] = v
	}
	return d.rdb.HSet(ctx, key, args).Err()
}

func (d *Driver) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	return d.rdb.HDel(ctx, key, fields...).Result()
}

func (d *Driver) HExists(ctx context.Context, key, field string) (bool, error) {
	return d.rdb.HExists(ctx, key, field).Result()
}

func (d *Driver) HKeys(ctx context.Context, key string) ([]string, error) {
	return d.rdb.HKeys(ctx, key).Result()
}

func (d *Driver) HVals(ctx context.Context, key string) ([][]byte, error) {
	vals, err := d.rdb.HVals(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return toBytesSlice(vals), nil
}

func (d *Driver) HLen(ctx context.Context, key string) (int64, error) {
	return d.rdb.HLen(ctx, key).Result()
}

func (d *Driver) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	return d.rdb.HIncrBy(ctx, key, field, delta).Result()
}

func (d *Driver) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	return d.rdb.HIncrByFloat(ctx, key, field, delta).Result()
}

// HScan walks HSCAN to completion. pageSize is the COUNT hint per round trip.
func (d *Driver) HScan(ctx context.Context, key, pattern string, pageSize int64) (map[string][]byte, error) {
	out := make(map[string][]byte)
	var cursor uint64
	for {
		kv, next, err := d.rdb.HScan(ctx, key, cursor, pattern, pageSize).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(kv); i += 2 {
			out[kv[i]] = []byte(kv[i+1])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// ==============================
// Lists
// ==============================

func (d *Driver) LPush(ctx context.Context, key string, value []byte) (int64, error) {
	return d.rdb.LPush(ctx, key, value).Result()
}

func (d *Driver) RPop(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := d.rdb.RPop(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// ==============================
// Sets
// ==============================

func (d *Driver) SAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	return d.rdb.SAdd(ctx, key, toArgs(members)...).Result()
}

func (d *Driver) SRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	return d.rdb.SRem(ctx, key, toArgs(members)...).Result()
}

func (d *Driver) SMembers(ctx context.Context, key string) ([][]byte, error) {
	ms, err := d.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return toBytesSlice(ms), nil
}

func toArgs(bs [][]byte) []any {
	out := make([]any, len(bs))
	for i, b := range bs {
		out[i] = b
	}
	return out
}

func toBytesSlice(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func toBytesMap(m map[string]string) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out
}
