package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// NewRedisClient connects to Redis and pings it
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// RedisVectorCache stores vectors as JSON arrays with a TTL
type RedisVectorCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisVectorCache wraps a Redis client
func NewRedisVectorCache(client redis.Cmdable, ttl time.Duration) *RedisVectorCache {
	return &RedisVectorCache{client: client, ttl: ttl}
}

// Get returns the cached vector. A missing key is not an error.
func (c *RedisVectorCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("decode cached vector %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores a vector under key
func (c *RedisVectorCache) Set(ctx context.Context, key string, value []float32) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// EmbeddingKey builds the cache key of a text embedded by model
func EmbeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}
