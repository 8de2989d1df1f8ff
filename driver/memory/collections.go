package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/unkn0wn-root/clustercache/driver"
)

var (
	_ driver.Hashes = (*Driver)(nil)
	_ driver.Lists  = (*Driver)(nil)
	_ driver.Sets   = (*Driver)(nil)
)

// ==============================
// Hashes
// ==============================

func (d *Driver) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	if err := d.enter(); err != nil {
		return nil, false, err
	}
	var (
		out []byte
		ok  bool
	)
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindHash)
		if err != nil || e == nil {
			return err
		}
		v, found := e.hash[field]
		out, ok = clone(v), found
		return nil
	})
	return out, ok, err
}

func (d *Driver) HMGet(ctx context.Context, key string, fields ...string) (map[string][]byte, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(fields))
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindHash)
		if err != nil || e == nil {
			return err
		}
		for _, f := range fields {
			if v, ok := e.hash[f]; ok {
				out[f] = clone(v)
			}
		}
		return nil
	})
	return out, err
}

func (d *Driver) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte)
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindHash)
		if err != nil || e == nil {
			return err
		}
		for f, v := range e.hash {
			out[f] = clone(v)
		}
		return nil
	})
	return out, err
}

func (d *Driver) HSet(ctx context.Context, key, field string, value []byte, nx bool) (bool, error) {
	if err := d.enter(); err != nil {
		return false, err
	}
	var created bool
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindHash)
		if err != nil {
			return err
		}
		_, exists := e.hash[field]
		if nx && exists {
			return nil
		}
		e.hash[field] = clone(value)
		created = !exists
		return nil
	})
	return created, err
}

func (d *Driver) HSetMany(ctx context.Context, key string, values map[string][]byte) error {
	if err := d.enter(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindHash)
		if err != nil {
			return err
		}
		for f, v := range values {
			e.hash[f] = clone(v)
		}
		return nil
	})
}

func (d *Driver) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var n int64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindHash)
		if err != nil || e == nil {
			return err
		}
		for _, f := range fields {
			if _, ok := e.hash[f]; ok {
				delete(e.hash, f)
				n++
			}
		}
		s.dropIfEmpty(key, e)
		return nil
	})
	return n, err
}

func (d *Driver) HExists(ctx context.Context, key, field string) (bool, error) {
	_, ok, err := d.HGet(ctx, key, field)
	return ok, err
}

func (d *Driver) HKeys(ctx context.Context, key string) ([]string, error) {
	all, err := d.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	return sortedFields(all), nil
}

func (d *Driver) HVals(ctx context.Context, key string) ([][]byte, error) {
	all, err := d.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(all))
	for _, f := range sortedFields(all) {
		out = append(out, all[f])
	}
	return out, nil
}

func (d *Driver) HLen(ctx context.Context, key string) (int64, error) {
	all, err := d.HGetAll(ctx, key)
	return int64(len(all)), err
}

func (d *Driver) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var out int64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindHash)
		if err != nil {
			return err
		}
		var cur int64
		if raw, ok := e.hash[field]; ok {
			if cur, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
				return ErrNotInteger
			}
		}
		out = cur + delta
		e.hash[field] = []byte(strconv.FormatInt(out, 10))
		return nil
	})
	return out, err
}

func (d *Driver) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var out float64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindHash)
		if err != nil {
			return err
		}
		var cur float64
		if raw, ok := e.hash[field]; ok {
			if cur, err = strconv.ParseFloat(string(raw), 64); err != nil {
				return ErrNotFloat
			}
		}
		out = cur + delta
		e.hash[field] = []byte(strconv.FormatFloat(out, 'f', -1, 64))
		return nil
	})
	return out, err
}

// HScan matches fields against a glob pattern. pageSize is accepted for
// interface parity; the whole hash is scanned in one pass.
func (d *Driver) HScan(ctx context.Context, key, pattern string, _ int64) (map[string][]byte, error) {
	all, err := d.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	for f := range all {
		if !Match(pattern, f) {
			delete(all, f)
		}
	}
	return all, nil
}

func sortedFields(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ==============================
// Lists
// ==============================

func (d *Driver) LPush(ctx context.Context, key string, value []byte) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var n int64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindList)
		if err != nil {
			return err
		}
		e.list = append([][]byte{clone(value)}, e.list...)
		n = int64(len(e.list))
		return nil
	})
	return n, err
}

func (d *Driver) RPop(ctx context.Context, key string) ([]byte, bool, error) {
	if err := d.enter(); err != nil {
		return nil, false, err
	}
	var (
		out []byte
		ok  bool
	)
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindList)
		if err != nil || e == nil || len(e.list) == 0 {
			return err
		}
		last := len(e.list) - 1
		out, ok = e.list[last], true
		e.list = e.list[:last]
		s.dropIfEmpty(key, e)
		return nil
	})
	return out, ok, err
}

// ==============================
// Sets
// ==============================

func (d *Driver) SAdd(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var n int64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.create(key, kindSet)
		if err != nil {
			return err
		}
		for _, m := range members {
			if _, ok := e.set[string(m)]; !ok {
				e.set[string(m)] = clone(m)
				n++
			}
		}
		s.dropIfEmpty(key, e)
		return nil
	})
	return n, err
}

func (d *Driver) SRem(ctx context.Context, key string, members ...[]byte) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var n int64
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindSet)
		if err != nil || e == nil {
			return err
		}
		for _, m := range members {
			if _, ok := e.set[string(m)]; ok {
				delete(e.set, string(m))
				n++
			}
		}
		s.dropIfEmpty(key, e)
		return nil
	})
	return n, err
}

// SMembers returns members in byte order.
func (d *Driver) SMembers(ctx context.Context, key string) ([][]byte, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	var out [][]byte
	err := d.def.exec(ctx, func(s *store) error {
		e, err := s.lookup(key, kindSet)
		if err != nil || e == nil {
			return err
		}
		ks := make([]string, 0, len(e.set))
		for k := range e.set {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		for _, k := range ks {
			out = append(out, clone(e.set[k]))
		}
		return nil
	})
	return out, err
}
