package location

//go:generate go run go.uber.org/mock/mockgen -source=./location.go -destination=./mocks/location_mock.go -package=mocks

import (
	"context"
	"fmt"
	"os"
	"sync"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/s3"

	"github.com/rs/zerolog/log"
)

// Store reads and writes catalog documents addressed either by a local path or by an
// s3://bucket/key url.
type Store interface {
	Read(ctx context.Context, location string) ([]byte, error)
	Write(ctx context.Context, location, contentType string, data []byte) error
}

type storeImpl struct {
	connect func() (s3.S3, error)

	once   sync.Once
	client s3.S3
	err    error
}

// New connects to s3 on the first s3 url, so a deployment that only uses local files never
// loads AWS credentials.
func New(cfg *config.Config, ot otel.Otel) Store {
	return &storeImpl{connect: func() (s3.S3, error) { return s3.New(cfg, ot) }}
}

func NewWithS3(client s3.S3) Store {
	return &storeImpl{connect: func() (s3.S3, error) { return client, nil }}
}

func (s *storeImpl) objects() (s3.S3, error) {
	s.once.Do(func() {
		s.client, s.err = s.connect()
	})

	return s.client, s.err
}

func (s *storeImpl) Read(ctx context.Context, location string) ([]byte, error) {
	if !s3.IsURL(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", location, err)
		}

		return data, nil
	}

	bucket, key, err := s3.ParseURL(location)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	client, err := s.objects()
	if err != nil {
		log.Error().Err(err).Str("location", location).Msg("failed to connect to object storage")

		return nil, err
	}

	return client.GetObject(ctx, bucket, key) //nolint:wrapcheck
}

func (s *storeImpl) Write(ctx context.Context, location, contentType string, data []byte) error {
	if !s3.IsURL(location) {
		if err := os.WriteFile(location, data, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("failed to write %s: %w", location, err)
		}

		return nil
	}

	bucket, key, err := s3.ParseURL(location)
	if err != nil {
		return err //nolint:wrapcheck
	}

	client, err := s.objects()
	if err != nil {
		log.Error().Err(err).Str("location", location).Msg("failed to connect to object storage")

		return err
	}

	return client.PutObject(ctx, bucket, key, contentType, data) //nolint:wrapcheck
}
