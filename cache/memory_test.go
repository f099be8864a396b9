package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/fabric"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	// Miss
	_, ok := c.Get(ctx, "t1", "u1", "entity:view")
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "t1", "u1", "entity:view", &fabric.Decision{Allowed: true})
	got, ok := c.Get(ctx, "t1", "u1", "entity:view")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.Set(ctx, "t1", "u1", "entity:view", &fabric.Decision{Allowed: true})
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "t1", "u1", "entity:view")
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "t1", "u1", "entity:view", &fabric.Decision{Allowed: true})
	c.Set(ctx, "t1", "u2", "entity:update", &fabric.Decision{})
	c.Set(ctx, "t2", "u1", "entity:view", &fabric.Decision{Allowed: true})

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, "t1", "u1", "entity:view"); ok {
		t.Fatal("t1/u1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", "u2", "entity:update"); ok {
		t.Fatal("t1/u2 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t2", "u1", "entity:view"); !ok {
		t.Fatal("t2/u1 should still be cached")
	}
}

func TestMemoryCacheInvalidateActor(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "t1", "u1", "entity:view", &fabric.Decision{Allowed: true})
	c.Set(ctx, "t1", "u2", "entity:view", &fabric.Decision{Allowed: true})

	c.InvalidateActor(ctx, "t1", "u1")

	if _, ok := c.Get(ctx, "t1", "u1", "entity:view"); ok {
		t.Fatal("u1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", "u2", "entity:view"); !ok {
		t.Fatal("u2 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	caps := []string{"entity:view", "entity:create", "entity:update", "link:view", "link:create"}
	for _, cap := range caps {
		c.Set(ctx, "t1", "u1", cap, &fabric.Decision{Allowed: true})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
