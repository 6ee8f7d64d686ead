package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"lodge/config"
	"lodge/shared"
	"lodge/shared/constant"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	ErrTimeout     = errors.New("timed out waiting for lock")
	ErrUnavailable = errors.New("lock backend unavailable")
)

// Release gives the lock back. It is safe to call more than once.
type Release func()

// Locker hands out mutually exclusive regions keyed by name. Acquire blocks until the key
// is free or ctx is done, in which case it returns ErrTimeout.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// storageCallsPerHold is the most bounded storage round trips made while holding a room
// lock (Rebook: find, scan the target room, replace).
const storageCallsPerHold = 3

// LeaseTTL is the redis lease for a room lock. It is never shorter than the longest a
// holder can keep the lock, so a live holder cannot lose its lease mid-write.
func LeaseTTL(cfg *config.Config) time.Duration {
	ttl := shared.Millis(cfg.Admission.LockTTLMs, constant.DefaultLockTTL)
	floor := storageCallsPerHold*shared.Millis(cfg.Admission.StorageTimeoutMs, constant.DefaultStorageTimeout) + time.Second

	if ttl < floor {
		log.Warn().Dur("configured", ttl).Dur("minimum", floor).Msg("lock ttl shorter than worst-case hold, raising it")

		return floor
	}

	return ttl
}

// New picks the lock driver from config. The redis driver leases keys for LeaseTTL so
// a crashed holder cannot wedge a room.
func New(cfg *config.Config, client *goRedis.Client) Locker {
	if cfg.Admission.LockDriver == config.LockDriverRedis {
		ttl := LeaseTTL(cfg)
		log.Info().Dur("ttl", ttl).Msg("Using redis lock driver")

		return NewRedis(client, ttl)
	}

	log.Info().Msg("Using local lock driver")

	return NewLocal()
}

// AcquireAll takes every distinct key in sorted order, so two callers asking for the same
// pair of keys in opposite order cannot deadlock. On failure nothing stays held.
func AcquireAll(ctx context.Context, locker Locker, keys ...string) (Release, error) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	releases := make([]Release, 0, len(ordered))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range ordered {
		release, err := locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()

			return nil, fmt.Errorf("failed to acquire %s: %w", key, err)
		}

		releases = append(releases, release)
	}

	return releaseAll, nil
}
