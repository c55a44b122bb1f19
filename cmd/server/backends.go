package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/CommentClash/internal/adapters/cache"
	"github.com/dkeye/CommentClash/internal/adapters/store"
	"github.com/dkeye/CommentClash/internal/adapters/store/migrations"
	"github.com/dkeye/CommentClash/internal/config"
	"github.com/dkeye/CommentClash/internal/core"
)

// openCache connects the Redis read-through cache. The cache is best-effort,
// so an unreachable server leaves the process running on memory alone.
func openCache(ctx context.Context, cfg *config.Config) (core.RoomCache, func()) {
	if cfg.RedisURL == "" {
		return cache.Noop{}, func() {}
	}
	client, err := cache.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Error().Err(err).Str("module", "main").Msg("redis unavailable, room cache disabled")
		return cache.Noop{}, func() {}
	}
	log.Info().Str("module", "main").Dur("ttl", cfg.CacheTTL).Msg("redis cache enabled")
	return cache.NewRedisCache(client, cfg.CacheTTL), func() { _ = client.Close() }
}

// openStore migrates and connects the durable game store, falling back to
// dropping checkpoints when Postgres cannot be reached.
func openStore(ctx context.Context, cfg *config.Config) (core.GameStore, func()) {
	if cfg.PostgresURL == "" {
		return store.Noop{}, func() {}
	}
	if err := migrations.Migrate(ctx, cfg.PostgresURL); err != nil {
		log.Error().Err(err).Str("module", "main").Msg("migrations failed, checkpoints disabled")
		return store.Noop{}, func() {}
	}
	pg, err := store.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error().Err(err).Str("module", "main").Msg("postgres unavailable, checkpoints disabled")
		return store.Noop{}, func() {}
	}
	log.Info().Str("module", "main").Msg("postgres checkpoints enabled")
	return pg, pg.Close
}
