package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/room/model"
	gDto "lodge/shared/dto"
	gRepo "lodge/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	// List returns rooms with at least minBeds beds ordered by number.
	List(ctx context.Context, minBeds int) ([]model.Room, error)
	// Get returns the zero Room when number is unknown.
	Get(ctx context.Context, number int) (model.Room, error)
	Count(ctx context.Context) (int, error)
	// Upsert writes the whole batch or nothing.
	Upsert(ctx context.Context, rooms []model.Room) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

// Provide picks the catalog backend for the configured store driver.
func Provide(cfg *config.Config, db *postgres.Connection, otel otel.Otel) Room {
	if cfg.Admission.StoreDriver == config.StoreDriverMemory {
		return NewMemory()
	}

	return New(db, otel)
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldNumber, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) List(ctx context.Context, minBeds int) ([]model.Room, error) {
	filter := gDto.And(gDto.Filter{
		Field:    model.FieldBedCount,
		Value:    minBeds,
		Operator: gDto.FilterOperatorGreaterEq,
		Table:    model.TableName,
	})
	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldNumber, SortDir: gDto.SortDirAsc}

	return r.Repository.GetAll(ctx, params, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) Get(ctx context.Context, number int) (model.Room, error) {
	return r.Repository.Get(ctx, gDto.And(gDto.Filter{ //nolint:wrapcheck
		Field:    model.FieldNumber,
		Value:    number,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}))
}

func (r *repositoryImpl) Count(ctx context.Context) (int, error) {
	return r.Repository.Count(ctx, gDto.FilterGroup{}) //nolint:wrapcheck
}

func (r *repositoryImpl) Upsert(ctx context.Context, rooms []model.Room) error {
	return gRepo.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { //nolint:wrapcheck
		for _, room := range rooms {
			if err := r.Repository.UpsertTx(ctx, tx, room, model.FieldNumber); err != nil {
				return err //nolint:wrapcheck
			}
		}

		return nil
	})
}
