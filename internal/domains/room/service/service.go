package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/shared/validator"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	cacheGetRoom  = "room:get"
	cacheListRoom = "room:list"
)

// Room is the catalog. It never mutates rooms outside of Load.
type Room interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	RoomsWithCapacityAtLeast(ctx context.Context, n int) ([]model.Room, error)
	Get(ctx context.Context, number int) (model.Room, error)
	Load(ctx context.Context, req dto.LoadRoomsRequest) error
}

type serviceImpl struct {
	repo    repository.Room
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
	timeout time.Duration
	flight  singleflight.Group
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Room {
	return &serviceImpl{
		repo:    repo,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
		timeout: shared.Millis(cfg.Admission.StorageTimeoutMs, constant.DefaultStorageTimeout),
	}
}

func (s *serviceImpl) ListRooms(ctx context.Context) (res []model.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, 1)
}

func (s *serviceImpl) RoomsWithCapacityAtLeast(ctx context.Context, n int) (res []model.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RoomsWithCapacityAtLeast")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, max(n, 1))
}

func (s *serviceImpl) list(ctx context.Context, minBeds int) ([]model.Room, error) {
	cacheKey := shared.BuildCacheKey(cacheListRoom, minBeds)

	var res []model.Room
	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	// Concurrent misses on the same key share one storage round trip. The shared read is
	// detached from whichever caller started it; each caller still waits on its own ctx.
	pending := s.flight.DoChan(cacheKey, func() (any, error) {
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		return s.repo.List(c, minBeds)
	})

	var result singleflight.Result
	select {
	case result = <-pending:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: failed to list rooms: %w", model.ErrStorageUnavailable, ctx.Err())
	}

	if result.Err != nil {
		log.Error().Err(result.Err).Int("minBeds", minBeds).Msg("failed to list rooms")

		return nil, fmt.Errorf("%w: failed to list rooms: %w", model.ErrStorageUnavailable, result.Err)
	}

	res, _ = result.Val.([]model.Room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, number int) (res model.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoom, number)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err = s.repo.Get(c, number)
	if err != nil {
		log.Error().Err(err).Int("number", number).Msg("failed to get room")

		return res, fmt.Errorf("%w: failed to get room: %w", model.ErrStorageUnavailable, err)
	}

	if !res.Exists() {
		return res, fmt.Errorf("room %d: %w", number, model.ErrRoomNotFound)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

// Load seeds or refreshes the catalog. Caches are dropped before returning so a one-shot
// caller exiting right after does not leave stale entries.
func (s *serviceImpl) Load(ctx context.Context, req dto.LoadRoomsRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Load")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidRoom, err)
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err = s.repo.Upsert(c, req.ToModels(user)); err != nil {
		log.Error().Err(err).Int("rooms", len(req.Rooms)).Msg("failed to load rooms")

		return fmt.Errorf("%w: failed to load rooms: %w", model.ErrStorageUnavailable, err)
	}

	shared.InvalidateCaches(ctx, s.cache, cacheListRoom)
	shared.InvalidateCaches(ctx, s.cache, cacheGetRoom)

	log.Info().Int("rooms", len(req.Rooms)).Msg("room catalog loaded")

	return nil
}
