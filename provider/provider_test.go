package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/unkn0wn-root/clustercache/provider"
	"github.com/unkn0wn-root/clustercache/provider/bigcache"
	"github.com/unkn0wn-root/clustercache/provider/ristretto"
)

func nearCaches(t *testing.T) map[string]provider.Provider {
	t.Helper()
	rp, err := ristretto.New(ristretto.Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatalf("ristretto.New: %v", err)
	}
	bp, err := bigcache.New(context.Background(), bigcache.Config{LifeWindow: time.Minute})
	if err != nil {
		t.Fatalf("bigcache.New: %v", err)
	}
	return map[string]provider.Provider{"ristretto": rp, "bigcache": bp}
}

func TestNearCacheContract(t *testing.T) {
	ctx := context.Background()
	for name, p := range nearCaches(t) {
		t.Run(name, func(t *testing.T) {
			defer p.Close(ctx)

			if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
				t.Fatalf("expected miss, ok=%v err=%v", ok, err)
			}
			if ok, err := p.Set(ctx, "k", []byte("v"), time.Minute); !ok || err != nil {
				t.Fatalf("Set: ok=%v err=%v", ok, err)
			}
			if b, ok, err := p.Get(ctx, "k"); !ok || err != nil || string(b) != "v" {
				t.Fatalf("Get after Set: %q ok=%v err=%v", b, ok, err)
			}
			if err := p.Del(ctx, "k"); err != nil {
				t.Fatalf("Del: %v", err)
			}
			if err := p.Del(ctx, "k"); err != nil {
				t.Fatalf("Del of missing key: %v", err)
			}
			if _, ok, _ := p.Get(ctx, "k"); ok {
				t.Fatalf("expected miss after Del")
			}

			_, _ = p.Set(ctx, "a", []byte("1"), time.Minute)
			if err := p.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok, _ := p.Get(ctx, "a"); ok {
				t.Fatalf("expected miss after Clear")
			}
		})
	}
}

func TestRistrettoRejectsBadConfig(t *testing.T) {
	if _, err := ristretto.New(ristretto.Config{}); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestBigcacheRejectsBadConfig(t *testing.T) {
	if _, err := bigcache.New(context.Background(), bigcache.Config{}); err == nil {
		t.Fatalf("expected config error")
	}
}
