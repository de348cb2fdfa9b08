package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", []float32{1, 2, 3}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || len(v) != 3 || v[2] != 3 {
		t.Fatalf("unexpected get result %v %v %v", v, ok, err)
	}

	// returned slices are copies
	v[0] = 99
	v, _, _ = store.Get(ctx, "k")
	if v[0] != 1 {
		t.Fatalf("cached vector was mutated: %v", v)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry")
	}
	store.removeExpired()
	if len(store.items) != 0 {
		t.Fatalf("expected cleanup, %d items left", len(store.items))
	}
}

func TestEmbeddingKey(t *testing.T) {
	a := EmbeddingKey("text-embedding-3-small", "what did we decide?")
	b := EmbeddingKey("text-embedding-3-small", "what did we decide?")
	c := EmbeddingKey("other-model", "what did we decide?")
	if a != b {
		t.Fatal("keys must be deterministic")
	}
	if a == c {
		t.Fatal("model must be part of the key")
	}
	if !strings.HasPrefix(a, "emb:text-embedding-3-small:") || len(a) != len("emb:text-embedding-3-small:")+64 {
		t.Fatalf("unexpected key %s", a)
	}
}

func TestRedisVectorCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	c := NewRedisVectorCache(client, time.Minute)
	key := EmbeddingKey("test", t.Name())
	defer client.Del(ctx, key)

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, []float32{0.5, -0.25}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || len(v) != 2 || v[1] != -0.25 {
		t.Fatalf("unexpected get %v %v %v", v, ok, err)
	}
}
