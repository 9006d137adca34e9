package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisConfig configures Redis access for the shared catalog cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	// TTL bounds how long a cached catalog is served before the key
	// expires. Zero means no expiry.
	TTL time.Duration
}

// RedisStore keeps the cached catalog under a single Redis key, letting
// several instances share one warm cache.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping
// before returning the store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "attackmap"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}

	return &RedisStore{
		client: client,
		key:    strings.TrimSpace(cfg.KeyPrefix) + ":catalog",
		ttl:    cfg.TTL,
	}, nil
}

func (s *RedisStore) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read redis key %s: %w", s.key, err)
	}
	if len(data) == 0 {
		return nil, ErrMiss
	}
	return data, nil
}

func (s *RedisStore) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: write redis key %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
