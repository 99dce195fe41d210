package dedup

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "fieldline:dedup:"

// RedisDeduper shares the ledger across worker processes via SETNX + TTL.
type RedisDeduper struct {
	client redis.UniversalClient
}

func NewRedisDeduper(ctx context.Context, addr, password string, db int) (*RedisDeduper, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDeduper{client: client}, nil
}

func (d *RedisDeduper) MarkIfFirst(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultWindow
	}

	first, err := d.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark idempotency key: %w", err)
	}

	return first, nil
}

func (d *RedisDeduper) Close() error {
	return d.client.Close()
}
