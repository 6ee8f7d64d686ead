package redis

import (
	"context"
	"net"
	"time"

	"lodge/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

// New returns a client for the primary redis. An unreachable server is logged, not fatal:
// the catalog cache and rate limiter degrade to pass-through, and only the redis lock
// driver depends on it.
func New(cfg *config.Config) (*goRedis.Client, func()) {
	primary := cfg.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	logger := log.With().Int("db", primary.DB).Str("host", primary.Host).Str("port", primary.Port).Logger()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis is unreachable, continuing without cache")
	} else {
		logger.Info().Msg("Connected to Redis")
	}

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}
