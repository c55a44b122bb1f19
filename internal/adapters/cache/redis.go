// Package cache keeps a hot copy of live rooms in Redis so a restarted
// process can pick up where the previous one left off.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = time.Hour

func Key(code domain.RoomCode) string { return "room:" + string(code) }

type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL, applies the password override and checks
// the server is reachable.
func Connect(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Load(ctx context.Context, code domain.RoomCode) (*domain.Room, bool, error) {
	doc, err := c.client.Get(ctx, Key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache load %s: %w", code, err)
	}
	var room domain.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", code, err)
	}
	return &room, true, nil
}

func (c *RedisCache) Save(ctx context.Context, room *domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", room.Code, err)
	}
	if err := c.client.Set(ctx, Key(room.Code), doc, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache save %s: %w", room.Code, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, code domain.RoomCode) error {
	if err := c.client.Del(ctx, Key(code)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", code, err)
	}
	return nil
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) Load(context.Context, domain.RoomCode) (*domain.Room, bool, error) {
	return nil, false, nil
}

func (Noop) Save(context.Context, *domain.Room) error { return nil }

func (Noop) Delete(context.Context, domain.RoomCode) error { return nil }
