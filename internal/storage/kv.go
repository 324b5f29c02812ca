package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"juridico/api/internal/collection"
)

const kvPrefix = "juridico:"

// KVBackend stores each collection as a JSON string under a fixed key in
// Redis. It is the default backend and the fallback whenever the directory
// backend is unavailable.
type KVBackend struct {
	client   *redis.Client
	defaults func() collection.Data
}

// NewKVBackend connects to Redis and verifies the connection.
func NewKVBackend(redisURL string, defaults func() collection.Data) (*KVBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &KVBackend{client: client, defaults: defaults}, nil
}

// NewKVBackendWithClient wraps an existing Redis client.
func NewKVBackendWithClient(client *redis.Client, defaults func() collection.Data) *KVBackend {
	return &KVBackend{client: client, defaults: defaults}
}

func (b *KVBackend) Label() string {
	return "Armazenamento local (Redis)"
}

func (b *KVBackend) key(name string) string {
	return kvPrefix + name
}

// LoadAll reads every collection. A missing key is the expected first-run
// condition; a corrupt value silently resets that one collection to its
// default. Either way the load as a whole never fails.
func (b *KVBackend) LoadAll(ctx context.Context) (collection.Data, error) {
	var data collection.Data
	defaults := b.defaults()
	for _, s := range slots(&data, defaults) {
		raw, err := b.client.Get(ctx, b.key(s.name)).Result()
		if err == redis.Nil {
			s.fallback()
			continue
		}
		if err != nil {
			return collection.Data{}, fmt.Errorf("read %s: %w", s.name, err)
		}
		if err := json.Unmarshal([]byte(raw), s.dst); err != nil {
			// Corrupted storage loses this collection's data; observable,
			// but by contract not an error.
			log.Printf("storage: corrupt value for %s, using defaults: %v", s.name, err)
			s.fallback()
		}
	}
	return data, nil
}

// SaveAll writes one key per collection. The first failed write aborts the
// remaining ones.
func (b *KVBackend) SaveAll(ctx context.Context, data collection.Data) error {
	for _, v := range values(data) {
		encoded, err := json.Marshal(v.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", v.name, err)
		}
		if err := b.client.Set(ctx, b.key(v.name), encoded, 0).Err(); err != nil {
			return fmt.Errorf("write %s: %w", v.name, err)
		}
	}
	return nil
}

// Ping checks if Redis is reachable.
func (b *KVBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (b *KVBackend) Close() error {
	return b.client.Close()
}
