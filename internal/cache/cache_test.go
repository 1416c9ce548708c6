package cache

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestQueryKey_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := url.Values{"location": {"lekki"}, "sortBy": {"price_low"}, "amenities": {"pool", "gym"}}
	b := url.Values{"amenities": {"gym", "pool"}, "sortBy": {"price_low"}, "location": {"lekki"}}
	if QueryKey("search", a) != QueryKey("search", b) {
		t.Fatalf("equivalent queries must share a key")
	}
	if QueryKey("search", a) == QueryKey("home", a) {
		t.Fatalf("prefix must separate views")
	}
	if !strings.HasPrefix(QueryKey("search", nil), "search:") {
		t.Fatalf("key=%s", QueryKey("search", nil))
	}
	c := url.Values{"location": {"ikoyi"}, "sortBy": {"price_low"}, "amenities": {"pool", "gym"}}
	if QueryKey("search", a) == QueryKey("search", c) {
		t.Fatalf("different queries collided")
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	var c Cache = Nop{}
	ctx := context.Background()
	if err := c.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var v int
	hit, err := c.Get(ctx, "k", &v)
	if hit || err != nil {
		t.Fatalf("nop cache hit=%v err=%v", hit, err)
	}
}

func TestRedis_UnreachableIsAnError(t *testing.T) {
	t.Parallel()

	r := NewRedis(RedisOptions{Addr: "127.0.0.1:1"})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var v int
	hit, err := r.Get(ctx, "search:x", &v)
	if hit || err == nil {
		t.Fatalf("hit=%v err=%v, want miss with error", hit, err)
	}
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("ping must fail")
	}
}

type page struct {
	Items []int `json:"items"`
	Total int   `json:"total"`
}

func TestRedis_GetSetInvalidate(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	r := NewRedis(RedisOptions{Addr: mr.Addr()})
	defer r.Close()
	ctx := context.Background()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var miss page
	if hit, err := r.Get(ctx, "listing:search:a", &miss); hit || err != nil {
		t.Fatalf("empty cache hit=%v err=%v", hit, err)
	}

	keys := []string{"listing:search:a", "listing:home:b", "session:c"}
	for i, k := range keys {
		if err := r.Set(ctx, k, page{Items: []int{i, i + 1}, Total: 2}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if ttl := mr.TTL("listing:home:b"); ttl != time.Minute {
		t.Fatalf("ttl=%s want 1m", ttl)
	}

	var got page
	hit, err := r.Get(ctx, "listing:home:b", &got)
	if !hit || err != nil || got.Total != 2 || got.Items[0] != 1 {
		t.Fatalf("hit=%v err=%v got=%+v", hit, err, got)
	}

	if err := r.Invalidate(ctx, "listing"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("listing:search:a") || mr.Exists("listing:home:b") {
		t.Fatalf("listing keys must be gone, left=%v", mr.Keys())
	}
	if !mr.Exists("session:c") {
		t.Fatalf("keys outside the prefix must stay")
	}
	if err := r.Invalidate(ctx, "listing"); err != nil {
		t.Fatalf("invalidate with nothing to drop: %v", err)
	}

	// по истечении TTL запись пропадает
	mr.FastForward(2 * time.Minute)
	if hit, _ := r.Get(ctx, "session:c", &got); hit {
		t.Fatalf("expired entry still served")
	}
}
