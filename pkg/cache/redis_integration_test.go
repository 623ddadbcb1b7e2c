//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisCache_Integration(t *testing.T) {
	url := os.Getenv("TAGTREE_REDIS_URL")
	if url == "" {
		t.Skip("TAGTREE_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := DialRedis(ctx, url, "tagtree-test:")
	if err != nil {
		t.Fatalf("DialRedis() error: %v", err)
	}
	defer c.Close()

	key := "ocean-" + time.Now().Format(time.RFC3339Nano)
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get() = (%v, %v), want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get() = (%q, %v, %v)", data, hit, err)
	}
}

func TestRedisCacheClear_Integration(t *testing.T) {
	url := os.Getenv("TAGTREE_REDIS_URL")
	if url == "" {
		t.Skip("TAGTREE_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefix := "tagtree-clear-" + time.Now().Format("150405.000000") + ":"
	c, err := DialRedis(ctx, url, prefix)
	if err != nil {
		t.Fatalf("DialRedis() error: %v", err)
	}
	defer c.Close()

	for _, k := range []string{"sky", "sea", "forest"} {
		if err := c.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil || n != 3 {
		t.Errorf("Clear() = (%d, %v), want (3, nil)", n, err)
	}
	if _, hit, _ := c.Get(ctx, "sky"); hit {
		t.Error("entry survived Clear()")
	}
}
