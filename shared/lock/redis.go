package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisKeyPrefix    = "lock:"
	redisPollInterval = 25 * time.Millisecond
	redisReleaseWait  = time.Second
)

// releaseScript deletes the key only while it still carries our token, so a holder whose
// lease ran out cannot free a lock somebody else has since taken.
var releaseScript = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisImpl struct {
	client *goRedis.Client
	ttl    time.Duration
}

// NewRedis returns a lease based lock shared by every replica talking to the same redis.
func NewRedis(client *goRedis.Client, ttl time.Duration) Locker {
	return &redisImpl{client: client, ttl: ttl}
}

func (r *redisImpl) Acquire(ctx context.Context, key string) (Release, error) {
	key = redisKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(redisPollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		switch {
		case ok:
			return sync.OnceFunc(func() { r.release(key, token) }), nil
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			return nil, ErrTimeout
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		select {
		case <-ctx.Done():
			return nil, ErrTimeout
		case <-ticker.C:
		}
	}
}

func (r *redisImpl) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
	defer cancel()

	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to release redis lock, lease will expire")
	}
}
