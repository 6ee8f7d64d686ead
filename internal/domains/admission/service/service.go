package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lodge/infras/otel"
	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/reservation/store"
	roomModel "lodge/internal/domains/room/model"
	roomService "lodge/internal/domains/room/service"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// availabilityWorkers bounds the concurrent IsFree checks of one FindAvailableRooms call.
const availabilityWorkers = 8

// Admission composes the room catalog with the reservation store. It keeps no reservation
// state of its own and every error it returns carries an HTTP status via failure.
type Admission interface {
	ListRooms(ctx context.Context, minBeds int) ([]roomModel.Room, error)
	GetRoom(ctx context.Context, number int) (roomModel.Room, error)
	// FindAvailableRooms is a snapshot. A room it reports may be taken before Reserve runs.
	FindAvailableRooms(ctx context.Context, minBeds int, start, end time.Time) ([]roomModel.Room, error)
	Reserve(ctx context.Context, req dto.ReserveRequest) (model.Reservation, error)
	CancelReservation(ctx context.Context, roomNumber int, id string) (bool, error)
	Rebook(ctx context.Context, roomNumber int, id string, req dto.ReserveRequest) (model.Reservation, error)
	ListActive(ctx context.Context, roomNumber int) ([]model.Reservation, error)
	IsFree(ctx context.Context, roomNumber int, start, end time.Time) (bool, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) ([]model.Reservation, int, error)
	Clear(ctx context.Context) error
}

type serviceImpl struct {
	rooms roomService.Room
	store store.Store
	otel  otel.Otel
}

func New(rooms roomService.Room, store store.Store, otel otel.Otel) Admission {
	return &serviceImpl{
		rooms: rooms,
		store: store,
		otel:  otel,
	}
}

// translate attaches the HTTP status of a domain error kind.
func translate(err error) error {
	var fail *failure.Failure

	switch {
	case err == nil:
		return nil
	case errors.As(err, &fail):
		return err
	case errors.Is(err, model.ErrInvalidDateRange), errors.Is(err, model.ErrInvalidPartySize):
		return failure.BadRequest(err)
	case errors.Is(err, model.ErrCapacityExceeded):
		return failure.Wrap(http.StatusUnprocessableEntity, err)
	case errors.Is(err, model.ErrRoomUnavailable):
		return failure.Wrap(http.StatusConflict, err)
	case errors.Is(err, model.ErrRoomNotFound), errors.Is(err, model.ErrReservationNotFound):
		return failure.Wrap(http.StatusNotFound, err)
	case errors.Is(err, model.ErrStorage), errors.Is(err, roomModel.ErrStorageUnavailable):
		return failure.ServiceUnavailable(err)
	default:
		return failure.InternalError(err)
	}
}

func (s *serviceImpl) ListRooms(ctx context.Context, minBeds int) (res []roomModel.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.rooms.RoomsWithCapacityAtLeast(ctx, minBeds)
	if err != nil {
		return nil, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) GetRoom(ctx context.Context, number int) (res roomModel.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetRoom")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.rooms.Get(ctx, number)
	if err != nil {
		return res, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) FindAvailableRooms(ctx context.Context, minBeds int, start, end time.Time) (res []roomModel.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FindAvailableRooms")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = model.ValidateRange(start, end); err != nil {
		return nil, translate(err)
	}

	candidates, err := s.rooms.RoomsWithCapacityAtLeast(ctx, minBeds)
	if err != nil {
		log.Error().Err(err).Int("min_beds", minBeds).Msg("failed to list candidate rooms")

		return nil, translate(err)
	}

	free := make([]bool, len(candidates))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(availabilityWorkers)

	for i, room := range candidates {
		group.Go(func() error {
			ok, err := s.store.IsFree(gctx, room.Number, start, end)
			if err != nil {
				return fmt.Errorf("failed to check room %d: %w", room.Number, err)
			}

			free[i] = ok

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to check room availability")

		return nil, translate(err)
	}

	res = make([]roomModel.Room, 0, len(candidates))

	for i, room := range candidates {
		if free[i] {
			res = append(res, room)
		}
	}

	return res, nil
}

// admit runs the checks that need no reservation state: the requested range and party,
// then the target room's existence and capacity.
func (s *serviceImpl) admit(ctx context.Context, req dto.ReserveRequest) (start, end time.Time, err error) {
	if start, end, err = req.Range(); err != nil {
		return start, end, err
	}

	if err = model.ValidateRange(start, end); err != nil {
		return start, end, err
	}

	if err = model.ValidatePartySize(req.PartySize); err != nil {
		return start, end, err
	}

	room, err := s.rooms.Get(ctx, req.RoomNumber)
	if err != nil {
		return start, end, err
	}

	if !room.Fits(req.PartySize) {
		return start, end, fmt.Errorf("%w: room %d has %d beds, party of %d",
			model.ErrCapacityExceeded, room.Number, room.BedCount, req.PartySize)
	}

	return start, end, nil
}

func (s *serviceImpl) Reserve(ctx context.Context, req dto.ReserveRequest) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reserve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := s.admit(ctx, req)
	if err != nil {
		log.Warn().Err(err).Int("room", req.RoomNumber).Msg("reservation refused")

		return res, translate(err)
	}

	res, err = s.store.Book(ctx, req.RoomNumber, req.Guest(), req.PartySize, start, end)
	if err != nil {
		log.Error().Err(err).Int("room", req.RoomNumber).Msg("failed to book room")

		return res, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) CancelReservation(ctx context.Context, roomNumber int, id string) (cancelled bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CancelReservation")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cancelled, err = s.store.Cancel(ctx, roomNumber, id)
	if err != nil {
		log.Error().Err(err).Int("room", roomNumber).Str("reservation", id).Msg("failed to cancel reservation")

		return false, translate(err)
	}

	return cancelled, nil
}

func (s *serviceImpl) Rebook(ctx context.Context, roomNumber int, id string, req dto.ReserveRequest) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Rebook")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end, err := s.admit(ctx, req)
	if err != nil {
		log.Warn().Err(err).Int("room", req.RoomNumber).Msg("rebooking refused")

		return res, translate(err)
	}

	res, err = s.store.Rebook(ctx, roomNumber, id, req.RoomNumber, req.Guest(), req.PartySize, start, end)
	if err != nil {
		log.Error().Err(err).Int("room", roomNumber).Str("reservation", id).Msg("failed to rebook reservation")

		return res, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) ListActive(ctx context.Context, roomNumber int) (res []model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListActive")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.store.ActiveReservationsFor(ctx, roomNumber)
	if err != nil {
		log.Error().Err(err).Int("room", roomNumber).Msg("failed to list active reservations")

		return nil, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) IsFree(ctx context.Context, roomNumber int, start, end time.Time) (free bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IsFree")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = model.ValidateRange(start, end); err != nil {
		return false, translate(err)
	}

	if _, err = s.rooms.Get(ctx, roomNumber); err != nil {
		return false, translate(err)
	}

	free, err = s.store.IsFree(ctx, roomNumber, start, end)
	if err != nil {
		log.Error().Err(err).Int("room", roomNumber).Msg("failed to check availability")

		return false, translate(err)
	}

	return free, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.store.Get(ctx, id)
	if err != nil {
		return res, translate(err)
	}

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) (res []model.Reservation, total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, total, err = s.store.List(ctx, roomNumber, includeCancelled, params)
	if err != nil {
		log.Error().Err(err).Int("room", roomNumber).Msg("failed to list reservations")

		return nil, 0, translate(err)
	}

	return res, total, nil
}

func (s *serviceImpl) Clear(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Clear")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear reservations")

		return translate(err)
	}

	return nil
}
