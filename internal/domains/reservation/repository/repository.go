package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/reservation/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	gRepo "lodge/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const dateRangeConstraint = "reservations_date_range_check"

// SortableFields are the columns a history listing may be ordered by.
var SortableFields = []string{model.FieldStartDate, model.FieldEndDate, constant.FieldCreatedAt}

// Reservation is the only writer of reservation rows. Callers serialize writes per room;
// the postgres exclusion constraint backs that up.
type Reservation interface {
	// ActiveFor reads from the primary so a check under the room lock sees every committed booking.
	ActiveFor(ctx context.Context, roomNumber int) ([]model.Reservation, error)
	// Get returns the zero Reservation when id is unknown.
	Get(ctx context.Context, id string) (model.Reservation, error)
	List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) ([]model.Reservation, int, error)
	Insert(ctx context.Context, reservation model.Reservation) error
	// Cancel persists the status change of an already cancelled reservation.
	Cancel(ctx context.Context, reservation model.Reservation) error
	// Replace cancels previous and inserts next atomically.
	Replace(ctx context.Context, previous, next model.Reservation) error
	Clear(ctx context.Context) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

// Provide picks the reservation backend for the configured store driver.
func Provide(cfg *config.Config, db *postgres.Connection, otel otel.Otel) Reservation {
	if cfg.Admission.StoreDriver == config.StoreDriverMemory {
		return NewMemory()
	}

	return New(db, otel)
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func byRoom(roomNumber int, includeCancelled bool) gDto.FilterGroup {
	filters := []any{gDto.Filter{
		Field:    model.FieldRoomNumber,
		Value:    roomNumber,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}}

	if !includeCancelled {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    model.StatusActive,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return gDto.And(filters...)
}

func byID(id string) gDto.FilterGroup {
	return gDto.And(gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName})
}

func (r *repositoryImpl) ActiveFor(ctx context.Context, roomNumber int) ([]model.Reservation, error) {
	params := gDto.QueryParams{SortBy: model.FieldStartDate, SortDir: gDto.SortDirAsc}

	reservations, err := r.Repository.Primary().GetAll(ctx, params, byRoom(roomNumber, false))
	if err != nil {
		return nil, translate(err)
	}

	return reservations, nil
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Reservation, error) {
	reservation, err := r.Repository.Primary().Get(ctx, byID(id))
	if err != nil {
		return reservation, translate(err)
	}

	return reservation, nil
}

func (r *repositoryImpl) List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) ([]model.Reservation, int, error) {
	filter := byRoom(roomNumber, includeCancelled)
	params = params.SortedBy(SortableFields, model.FieldStartDate, gDto.SortDirAsc)

	total, err := r.Repository.Count(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}

	reservations, err := r.Repository.GetAll(ctx, params, filter)
	if err != nil {
		return nil, 0, translate(err)
	}

	return reservations, total, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, reservation model.Reservation) error {
	return translate(r.Repository.Insert(ctx, reservation))
}

func cancelFields(reservation model.Reservation) map[string]any {
	return map[string]any{
		model.FieldStatus:        reservation.Status,
		model.FieldCancelledAt:   reservation.CancelledAt,
		constant.FieldModifiedAt: reservation.ModifiedAt,
		constant.FieldModifiedBy: reservation.ModifiedBy,
	}
}

func (r *repositoryImpl) Cancel(ctx context.Context, reservation model.Reservation) error {
	return translate(r.Repository.Update(ctx, cancelFields(reservation), byID(reservation.ID)))
}

func (r *repositoryImpl) Replace(ctx context.Context, previous, next model.Reservation) error {
	return translate(gRepo.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.Repository.UpdateTx(ctx, tx, cancelFields(previous), byID(previous.ID)); err != nil {
			return err //nolint:wrapcheck
		}

		return r.Repository.InsertTx(ctx, tx, next) //nolint:wrapcheck
	}))
}

func (r *repositoryImpl) Clear(ctx context.Context) error {
	return translate(r.Repository.DeleteAll(ctx))
}

// translate maps constraint violations onto admission errors and everything else onto
// ErrStorage, keeping the driver error in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constant.PqErrorCodeExclusionViolation:
			return fmt.Errorf("%w: %w", model.ErrRoomUnavailable, err)
		case constant.PqErrorCodeFkViolation:
			return fmt.Errorf("%w: %w", model.ErrRoomNotFound, err)
		case constant.PqErrorCodeCheckViolation:
			if pqErr.Constraint == dateRangeConstraint {
				return fmt.Errorf("%w: %w", model.ErrInvalidDateRange, err)
			}
		}
	}

	return fmt.Errorf("%w: %w", model.ErrStorage, err)
}
