package clustercache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/driver/memory"
)

func TestNewRequiresDriver(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without driver")
	}
}

func TestGetMissingReturnsZeroWithoutDecoding(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	cc := &countingCodec[user]{inner: codec.Of[user](codec.JSON{})}
	users := OfCodec[user](c, cc)

	u, err := users.Get(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if u != (user{}) {
		t.Fatalf("expected zero user, got %+v", u)
	}
	if n := cc.decodes.Load(); n != 0 {
		t.Fatalf("codec decoded %d times for a missing key", n)
	}

	p, err := Get[*user](ctx, c, "nonexistent")
	if err != nil || p != nil {
		t.Fatalf("expected nil pointer, got %v err=%v", p, err)
	}
}

func TestSetGetWithPrefix(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	c := newTestClient(t, drv, func(o *Options) { o.KeyPrefix = "app:" })

	in := user{ID: "1", Name: "Ada"}
	ok, err := Set(ctx, c, "u:1", in)
	if err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if _, found, _ := drv.Get(ctx, "app:u:1"); !found {
		t.Fatalf("expected value stored under the prefixed key")
	}
	if _, found, _ := drv.Get(ctx, "app:app:u:1"); found {
		t.Fatalf("prefix applied twice")
	}
	out, err := Get[user](ctx, c, "u:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if ok, err := c.Exists(ctx, "u:1"); err != nil || !ok {
		t.Fatalf("Exists: %v err=%v", ok, err)
	}
	if ok, err := c.Remove(ctx, "u:1"); err != nil || !ok {
		t.Fatalf("Remove: %v err=%v", ok, err)
	}
	if ok, _ := c.Exists(ctx, "u:1"); ok {
		t.Fatalf("key still exists after Remove")
	}
}

func TestReplaceIsSet(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	s := Of[string](c)
	if _, err := s.Set(ctx, "k", "a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Replace(ctx, "k", "b"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "b" {
		t.Fatalf("expected b, got %q", v)
	}
}

func TestGetAllHasOneEntryPerKey(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	users := Of[user](c)

	ok, err := users.SetAll(ctx, map[string]user{
		"a": {ID: "a"},
		"c": {ID: "c"},
	})
	if err != nil || !ok {
		t.Fatalf("SetAll: ok=%v err=%v", ok, err)
	}

	got, err := users.GetAll(ctx, []string{"a", "b", "c", "a"})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	want := map[string]user{"a": {ID: "a"}, "b": {}, "c": {ID: "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GetAll mismatch (-want +got):\n%s", diff)
	}

	empty, err := users.GetAll(ctx, []string{})
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetAll empty: %v err=%v", empty, err)
	}
}

func TestValidationHappensBeforeIO(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	c := newTestClient(t, drv, nil)
	users := Of[*user](c)
	before := drv.Calls()

	var ke *InvalidKeyError
	var ie *InvalidItemError

	if _, err := users.Get(ctx, ""); !errors.As(err, &ke) || ke.Param != "key" {
		t.Fatalf("Get empty key: %v", err)
	}
	if _, err := users.GetAll(ctx, []string{"a", ""}); !errors.As(err, &ke) || ke.Index != 1 {
		t.Fatalf("GetAll empty element: %v", err)
	}
	if _, err := users.GetAll(ctx, nil); !errors.As(err, &ke) {
		t.Fatalf("GetAll nil keys: %v", err)
	}
	if _, err := users.SetAdd(ctx, "s", nil); !errors.As(err, &ie) || ie.Param != "item" {
		t.Fatalf("SetAdd nil item: %v", err)
	}
	if _, err := users.SetAddAll(ctx, "s", []*user{{ID: "1"}, nil}); !errors.As(err, &ie) || ie.Param != "items" || ie.Index != 1 {
		t.Fatalf("SetAddAll nil element: %v", err)
	}
	if _, err := users.SetRemoveAll(ctx, "s", nil); !errors.As(err, &ie) || ie.Index != -1 {
		t.Fatalf("SetRemoveAll nil collection: %v", err)
	}
	if _, err := users.ListAddToLeft(ctx, "l", nil); !errors.As(err, &ie) {
		t.Fatalf("ListAddToLeft nil: %v", err)
	}
	if _, err := users.HashSet(ctx, "h", "f", nil, false); !errors.As(err, &ie) {
		t.Fatalf("HashSet nil: %v", err)
	}
	if err := users.HashSetMany(ctx, "h", map[string]*user{"f": nil}); !errors.As(err, &ie) || ie.Key != "f" {
		t.Fatalf("HashSetMany nil value: %v", err)
	}
	if _, err := users.SetAll(ctx, map[string]*user{"a": {ID: "1"}, "b": nil}); !errors.As(err, &ie) || ie.Key != "b" {
		t.Fatalf("SetAll nil value: %v", err)
	}
	if _, err := users.SetAll(ctx, map[string]*user{"": {ID: "1"}}); !errors.As(err, &ke) || ke.Param != "key" {
		t.Fatalf("SetAll empty key: %v", err)
	}
	if _, err := users.HashGet(ctx, "h", ""); !errors.As(err, &ke) || ke.Param != "field" {
		t.Fatalf("HashGet empty field: %v", err)
	}
	if _, err := c.SetMember(ctx, ""); !errors.As(err, &ke) {
		t.Fatalf("SetMember empty key: %v", err)
	}
	if err := c.RemoveAll(ctx, []string{""}); !errors.As(err, &ke) {
		t.Fatalf("RemoveAll empty key: %v", err)
	}
	if _, err := users.Publish(ctx, "", &user{}); !errors.As(err, &ke) || ke.Param != "channel" {
		t.Fatalf("Publish empty channel: %v", err)
	}

	if got := drv.Calls(); got != before {
		t.Fatalf("rejected calls reached the driver: %d calls", got-before)
	}
}

func TestNilChecksByKind(t *testing.T) {
	var m map[string]int
	var s []int
	var f func()
	var ch chan int
	var p *user
	var e error
	for i, v := range []any{nil, m, s, f, ch, p, e} {
		if !isNil(v) {
			t.Fatalf("case %d: expected nil for %T", i, v)
		}
	}
	for i, v := range []any{0, "", user{}, map[string]int{}, []int{}, &user{}} {
		if isNil(v) {
			t.Fatalf("case %d: unexpected nil for %T", i, v)
		}
	}
}

func TestSetOperations(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	s := Of[string](c)

	n, err := s.SetAddAll(ctx, "tags", []string{"a", "b", "a"})
	if err != nil || n != 2 {
		t.Fatalf("SetAddAll: n=%d err=%v", n, err)
	}
	if added, _ := s.SetAdd(ctx, "tags", "c"); !added {
		t.Fatalf("expected c to be added")
	}
	if added, _ := s.SetAdd(ctx, "tags", "c"); added {
		t.Fatalf("expected duplicate add to report false")
	}
	if removed, _ := s.SetRemove(ctx, "tags", "a"); !removed {
		t.Fatalf("expected a to be removed")
	}
	got, err := s.SetMembers(ctx, "tags")
	if err != nil {
		t.Fatalf("SetMembers: %v", err)
	}
	if diff := cmp.Diff([]string{`b`, `c`}, got); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
	raw, err := c.SetMember(ctx, "tags")
	if err != nil {
		t.Fatalf("SetMember: %v", err)
	}
	if diff := cmp.Diff([]string{`"b"`, `"c"`}, raw); diff != "" {
		t.Fatalf("raw members mismatch (-want +got):\n%s", diff)
	}
}

func TestListOperations(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	l := Of[int](c)

	for _, v := range []int{1, 2, 3} {
		if _, err := l.ListAddToLeft(ctx, "q", v); err != nil {
			t.Fatalf("ListAddToLeft: %v", err)
		}
	}
	for _, want := range []int{1, 2, 3} {
		got, err := l.ListGetFromRight(ctx, "q")
		if err != nil || got != want {
			t.Fatalf("ListGetFromRight: got %d want %d err=%v", got, want, err)
		}
	}
	if got, err := l.ListGetFromRight(ctx, "q"); err != nil || got != 0 {
		t.Fatalf("empty list: got %d err=%v", got, err)
	}
}

func TestHashOperations(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), func(o *Options) { o.KeyPrefix = "p:" })
	h := Of[user](c)

	if ok, err := h.HashSet(ctx, "h", "ada", user{ID: "1"}, false); err != nil || !ok {
		t.Fatalf("HashSet: ok=%v err=%v", ok, err)
	}
	if ok, _ := h.HashSet(ctx, "h", "ada", user{ID: "2"}, true); ok {
		t.Fatalf("HashSet nx on existing field must not write")
	}
	if err := h.HashSetMany(ctx, "h", map[string]user{"bob": {ID: "3"}, "cy": {ID: "4"}}); err != nil {
		t.Fatalf("HashSetMany: %v", err)
	}

	got, err := h.HashGet(ctx, "h", "ada")
	if err != nil || got.ID != "1" {
		t.Fatalf("HashGet: %+v err=%v", got, err)
	}
	if missing, err := h.HashGet(ctx, "h", "zed"); err != nil || missing != (user{}) {
		t.Fatalf("HashGet missing field: %+v err=%v", missing, err)
	}

	many, err := h.HashGetMany(ctx, "h", []string{"ada", "zed"})
	if err != nil {
		t.Fatalf("HashGetMany: %v", err)
	}
	if diff := cmp.Diff(map[string]user{"ada": {ID: "1"}, "zed": {}}, many); diff != "" {
		t.Fatalf("HashGetMany mismatch (-want +got):\n%s", diff)
	}

	all, err := h.HashGetAll(ctx, "h")
	if err != nil || len(all) != 3 {
		t.Fatalf("HashGetAll: %v err=%v", all, err)
	}
	vals, err := h.HashValues(ctx, "h")
	if err != nil || len(vals) != 3 {
		t.Fatalf("HashValues: %v err=%v", vals, err)
	}
	scanned, err := h.HashScan(ctx, "h", "b*", 10)
	if err != nil {
		t.Fatalf("HashScan: %v", err)
	}
	if diff := cmp.Diff(map[string]user{"bob": {ID: "3"}}, scanned); diff != "" {
		t.Fatalf("HashScan mismatch (-want +got):\n%s", diff)
	}

	keys, err := c.HashKeys(ctx, "h")
	if err != nil {
		t.Fatalf("HashKeys: %v", err)
	}
	if diff := cmp.Diff([]string{"ada", "bob", "cy"}, keys); diff != "" {
		t.Fatalf("HashKeys mismatch (-want +got):\n%s", diff)
	}
	if ok, _ := c.HashExists(ctx, "h", "bob"); !ok {
		t.Fatalf("HashExists bob")
	}
	if ok, _ := c.HashDelete(ctx, "h", "bob"); !ok {
		t.Fatalf("HashDelete bob")
	}
	if n, _ := c.HashDeleteMany(ctx, "h", []string{"cy", "zed"}); n != 1 {
		t.Fatalf("HashDeleteMany removed %d", n)
	}
	if n, _ := c.HashLength(ctx, "h"); n != 1 {
		t.Fatalf("HashLength = %d", n)
	}

	if n, err := c.HashIncrement(ctx, "counters", "hits", 5); err != nil || n != 5 {
		t.Fatalf("HashIncrement: %d err=%v", n, err)
	}
	if n, _ := c.HashIncrement(ctx, "counters", "hits", -2); n != 3 {
		t.Fatalf("HashIncrement second: %d", n)
	}
	if f, err := c.HashIncrementFloat(ctx, "counters", "ratio", 0.5); err != nil || f != 0.5 {
		t.Fatalf("HashIncrementFloat: %v err=%v", f, err)
	}
}

func TestExpiry(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if d := ExpireAt(base.Add(time.Minute)).TTL(base); d != time.Minute {
		t.Fatalf("ExpireAt TTL = %v", d)
	}
	if d := ExpireAt(base.Add(-time.Second)).TTL(base); d != -time.Second {
		t.Fatalf("past deadline must stay negative, got %v", d)
	}
	if d := ExpireIn(0).TTL(base); d != 0 {
		t.Fatalf("ExpireIn(0) TTL = %v", d)
	}
	if !(Expiry{}).IsZero() || ExpireIn(time.Second).IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}

func TestSetWithPastDeadlineIsHandedToDriver(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := newTestClient(t, memory.New(), func(o *Options) { o.Now = func() time.Time { return now } })
	s := Of[string](c)

	if _, err := s.SetWithExpiry(ctx, "gone", "v", ExpireAt(now.Add(-time.Hour))); err != nil {
		t.Fatalf("SetWithExpiry past: %v", err)
	}
	if v, err := s.Get(ctx, "gone"); err != nil || v != "" {
		t.Fatalf("expected expired entry, got %q err=%v", v, err)
	}
	if _, err := s.ReplaceWithExpiry(ctx, "kept", "v", ExpireIn(time.Hour)); err != nil {
		t.Fatalf("ReplaceWithExpiry: %v", err)
	}
	if v, _ := s.Get(ctx, "kept"); v != "v" {
		t.Fatalf("expected kept value, got %q", v)
	}
}

func TestDecodeErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	hooks := &countingHooks{}
	c := newTestClient(t, drv, func(o *Options) { o.Hooks = hooks })
	if _, err := drv.Set(ctx, "bad", []byte("{not json"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var de *codec.DecodeError
	if _, err := Get[user](ctx, c, "bad"); !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if hooks.decodeErr.Load() != 1 {
		t.Fatalf("expected one DecodeError hook, got %d", hooks.decodeErr.Load())
	}
}

type animal interface{ Sound() string }

type dog struct {
	Name string `json:"name"`
}

func (d *dog) Sound() string { return "woof" }

type cat struct{}

func (cat) Sound() string { return "meow" }

func TestPolymorphicValues(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	animals := OfCodec[animal](c, codec.MustPolymorphic(
		codec.Case[animal]("Dog", codec.Of[*dog](codec.JSON{})),
	))

	if _, err := animals.Set(ctx, "pet", &dog{Name: "Rex"}); err != nil {
		t.Fatalf("Set dog: %v", err)
	}
	got, err := animals.Get(ctx, "pet")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d, ok := got.(*dog); !ok || d.Name != "Rex" {
		t.Fatalf("expected *dog Rex, got %#v", got)
	}

	var ut *codec.UnsupportedTypeError
	if _, err := animals.Set(ctx, "pet", cat{}); !errors.As(err, &ut) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if missing, err := animals.Get(ctx, "none"); err != nil || missing != nil {
		t.Fatalf("missing interface value: %v err=%v", missing, err)
	}
}

func TestNearCacheFillAndInvalidate(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	near := newMapNear()
	hooks := &countingHooks{}
	c := newTestClient(t, drv, func(o *Options) {
		o.NearCache = near
		o.Hooks = hooks
		o.KeyPrefix = "n:"
	})
	s := Of[string](c)

	if _, err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "v1" {
		t.Fatalf("first Get = %q", v)
	}
	if !near.has("n:k") {
		t.Fatalf("expected near-cache fill under the prefixed key")
	}

	// a write from another process is not observed while the entry lives
	if _, err := drv.Set(ctx, "n:k", []byte(`"remote"`), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "v1" {
		t.Fatalf("expected near-cache hit, got %q", v)
	}
	if hooks.nearHit.Load() != 1 || hooks.nearMiss.Load() != 1 {
		t.Fatalf("hits=%d misses=%d", hooks.nearHit.Load(), hooks.nearMiss.Load())
	}

	if _, err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if near.has("n:k") {
		t.Fatalf("expected Set to invalidate the near-cache")
	}
	if v, _ := s.Get(ctx, "k"); v != "v2" {
		t.Fatalf("after invalidate Get = %q", v)
	}

	if _, err := c.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "" {
		t.Fatalf("after Remove Get = %q", v)
	}
}

func TestNearCacheNeverOutlivesRemoteExpiry(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	near := newMapNear()
	c := newTestClient(t, drv, func(o *Options) { o.NearCache = near })
	s := Of[string](c)

	if _, err := s.SetWithExpiry(ctx, "k", "v", ExpireIn(50*time.Millisecond)); err != nil {
		t.Fatalf("SetWithExpiry: %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "v" {
		t.Fatalf("Get = %q", v)
	}
	if ttl := near.ttl("k"); ttl <= 0 || ttl > 50*time.Millisecond {
		t.Fatalf("near ttl %v not capped by the remote ttl", ttl)
	}

	// written by another process with its own ttl
	if _, err := drv.Set(ctx, "other", []byte(`"w"`), 50*time.Millisecond); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if v, _ := s.Get(ctx, "other"); v != "w" {
		t.Fatalf("Get other = %q", v)
	}

	if _, err := s.Set(ctx, "forever", "f"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Get(ctx, "forever"); v != "f" {
		t.Fatalf("Get forever = %q", v)
	}
	if ttl := near.ttl("forever"); ttl != defaultNearCacheTTL {
		t.Fatalf("near ttl for a persistent key = %v", ttl)
	}

	time.Sleep(100 * time.Millisecond)

	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Fatalf("remote key should have expired")
	}
	for _, k := range []string{"k", "other"} {
		if v, err := s.Get(ctx, k); err != nil || v != "" {
			t.Fatalf("Get %s after expiry = %q err=%v", k, v, err)
		}
		if near.has(k) {
			t.Fatalf("expired near entry %s was kept", k)
		}
	}
	if v, _ := s.Get(ctx, "forever"); v != "f" {
		t.Fatalf("persistent key lost: %q", v)
	}

	// a key with an already elapsed ttl is never cached
	if _, err := drv.Set(ctx, "gone", []byte(`"g"`), -time.Second); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if v, _ := s.Get(ctx, "gone"); v != "" || near.has("gone") {
		t.Fatalf("expired key served or cached: %q", v)
	}
}

func TestPubSub(t *testing.T) {
	ctx := context.Background()
	drv := memory.New()
	hooks := &countingHooks{}
	c := newTestClient(t, drv, func(o *Options) { o.Hooks = hooks })
	users := Of[user](c)

	got := make(chan user, 1)
	sub, err := users.Subscribe(ctx, "events", func(u user) { got <- u })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// an undecodable message is dropped before the good one is handled
	if _, err := drv.Publish(ctx, "events", []byte("garbage")); err != nil {
		t.Fatalf("raw publish: %v", err)
	}
	n, err := users.Publish(ctx, "events", user{ID: "7"})
	if err != nil || n != 1 {
		t.Fatalf("Publish: n=%d err=%v", n, err)
	}

	select {
	case u := <-got:
		if u.ID != "7" {
			t.Fatalf("unexpected message %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
	if hooks.messageDecodeErr.Load() != 1 {
		t.Fatalf("expected one MessageDecodeError, got %d", hooks.messageDecodeErr.Load())
	}

	if err := c.Unsubscribe(ctx, "events"); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	if n, _ := users.Publish(ctx, "events", user{}); n != 0 {
		t.Fatalf("expected no receivers after Unsubscribe, got %d", n)
	}
}

func TestAsyncVariants(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	s := Of[string](c)

	if ok, err := s.SetAsync(ctx, "k", "v", Expiry{}).Wait(ctx); err != nil || !ok {
		t.Fatalf("SetAsync: ok=%v err=%v", ok, err)
	}
	if v, err := s.GetAsync(ctx, "k").Result(); err != nil || v != "v" {
		t.Fatalf("GetAsync: %q err=%v", v, err)
	}
	if _, err := s.SetAllAsync(ctx, map[string]string{"a": "1"}).Result(); err != nil {
		t.Fatalf("SetAllAsync: %v", err)
	}
	all, err := s.GetAllAsync(ctx, []string{"a", "b"}).Result()
	if err != nil || len(all) != 2 || all["a"] != "1" {
		t.Fatalf("GetAllAsync: %v err=%v", all, err)
	}
	var ke *InvalidKeyError
	if _, err := s.GetAsync(ctx, "").Result(); !errors.As(err, &ke) {
		t.Fatalf("async validation: %v", err)
	}
	if n, err := s.PublishAsync(ctx, "ch", "m").Result(); err != nil || n != 0 {
		t.Fatalf("PublishAsync: n=%d err=%v", n, err)
	}
}

func TestAsyncCollectionsAndKeys(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, memory.New(), nil)
	s := Of[string](c)

	if n, err := s.SetAddAllAsync(ctx, "s", []string{"a", "b"}).Result(); err != nil || n != 2 {
		t.Fatalf("SetAddAllAsync: n=%d err=%v", n, err)
	}
	if ok, err := s.SetRemoveAsync(ctx, "s", "a").Result(); err != nil || !ok {
		t.Fatalf("SetRemoveAsync: ok=%v err=%v", ok, err)
	}
	members, err := s.SetMembersAsync(ctx, "s").Result()
	if err != nil {
		t.Fatalf("SetMembersAsync: %v", err)
	}
	if diff := cmp.Diff([]string{"b"}, members); diff != "" {
		t.Fatalf("members (-want +got):\n%s", diff)
	}

	if _, err := s.ListAddToLeftAsync(ctx, "l", "x").Result(); err != nil {
		t.Fatalf("ListAddToLeftAsync: %v", err)
	}
	if v, err := s.ListGetFromRightAsync(ctx, "l").Wait(ctx); err != nil || v != "x" {
		t.Fatalf("ListGetFromRightAsync: %q err=%v", v, err)
	}

	if ok, err := s.HashSetAsync(ctx, "h", "f", "v", false).Result(); err != nil || !ok {
		t.Fatalf("HashSetAsync: ok=%v err=%v", ok, err)
	}
	if v, err := s.HashGetAsync(ctx, "h", "f").Result(); err != nil || v != "v" {
		t.Fatalf("HashGetAsync: %q err=%v", v, err)
	}
	if ok, _ := c.HashExistsAsync(ctx, "h", "f").Result(); !ok {
		t.Fatalf("HashExistsAsync: expected field")
	}
	if ok, err := c.HashDeleteAsync(ctx, "h", "f").Result(); err != nil || !ok {
		t.Fatalf("HashDeleteAsync: ok=%v err=%v", ok, err)
	}
	if n, _ := c.HashLengthAsync(ctx, "h").Result(); n != 0 {
		t.Fatalf("HashLengthAsync = %d", n)
	}

	if _, err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := c.ExistsAsync(ctx, "k").Result(); !ok {
		t.Fatalf("ExistsAsync: expected key")
	}
	if ok, err := c.RemoveAsync(ctx, "k").Result(); err != nil || !ok {
		t.Fatalf("RemoveAsync: ok=%v err=%v", ok, err)
	}
	if ok, _ := c.ExistsAsync(ctx, "k").Result(); ok {
		t.Fatalf("key survived RemoveAsync")
	}

	var ie *InvalidItemError
	if _, err := Of[*user](c).SetAddAsync(ctx, "s", nil).Result(); !errors.As(err, &ie) {
		t.Fatalf("async validation: %v", err)
	}
}
