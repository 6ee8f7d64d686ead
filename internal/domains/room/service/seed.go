package service

import (
	"context"
	"encoding/json"
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
	"lodge/shared/location"

	"github.com/rs/zerolog/log"
)

// seedUser is recorded as the creator of rooms loaded from ADMISSION_ROOMS_SEED.
const seedUser = "seed"

// Provide builds the catalog and, when ADMISSION_ROOMS_SEED is set and the catalog is
// still empty, loads the seed before anything is admitted. A broken seed stops startup.
func Provide(repo repository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, locations location.Store) (Room, error) {
	svc := New(repo, cfg, cache, otel)

	source := cfg.Admission.RoomsSeed
	if source == "" {
		return svc, nil
	}

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, seedUser)
	if err := seed(ctx, svc, repo, locations, source, shared.Millis(cfg.Admission.StorageTimeoutMs, constant.DefaultStorageTimeout)); err != nil {
		log.Error().Err(err).Str("seed", source).Msg("failed to seed room catalog")

		return nil, err
	}

	return svc, nil
}

func seed(ctx context.Context, svc Room, repo repository.Room, locations location.Store, source string, timeout time.Duration) error {
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	existing, err := repo.Count(c)
	if err != nil {
		return fmt.Errorf("%w: failed to count rooms: %w", model.ErrStorageUnavailable, err)
	}

	if existing > 0 {
		log.Info().Int("rooms", existing).Msg("room catalog already populated, skipping seed")

		return nil
	}

	data, err := locations.Read(c, source)
	if err != nil {
		return fmt.Errorf("failed to read room seed: %w", err)
	}

	req := dto.LoadRoomsRequest{}
	if err = json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: failed to decode room seed: %w", model.ErrInvalidRoom, err)
	}

	return svc.Load(ctx, req)
}
