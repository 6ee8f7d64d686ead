package store

//go:generate go run go.uber.org/mock/mockgen -source=./store.go -destination=../mocks/store_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/reservation/event"
	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/repository"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/lock"
	"lodge/shared/logger"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store owns the reservation set. Every insert goes through Book or Rebook, which run the
// overlap check and the write under the room lock.
type Store interface {
	ActiveReservationsFor(ctx context.Context, roomNumber int) ([]model.Reservation, error)
	IsFree(ctx context.Context, roomNumber int, start, end time.Time) (bool, error)
	Book(ctx context.Context, roomNumber int, guest model.Guest, partySize int, start, end time.Time) (model.Reservation, error)
	// Cancel reports false for an unknown, foreign or already cancelled reservation.
	Cancel(ctx context.Context, roomNumber int, id string) (bool, error)
	// Rebook cancels id in roomNumber and books newRoom as one step. Either both happen or neither.
	Rebook(ctx context.Context, roomNumber int, id string, newRoom int, guest model.Guest, partySize int, start, end time.Time) (model.Reservation, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) ([]model.Reservation, int, error)
	// Clear drops every reservation. Administrative and test use only.
	Clear(ctx context.Context) error
}

type storeImpl struct {
	repo           repository.Reservation
	locker         lock.Locker
	events         event.Publisher
	otel           otel.Otel
	storageTimeout time.Duration
	lockTimeout    time.Duration
}

func New(repo repository.Reservation, locker lock.Locker, events event.Publisher, cfg *config.Config, otel otel.Otel) Store {
	return &storeImpl{
		repo:           repo,
		locker:         locker,
		events:         events,
		otel:           otel,
		storageTimeout: shared.Millis(cfg.Admission.StorageTimeoutMs, constant.DefaultStorageTimeout),
		lockTimeout:    shared.Millis(cfg.Admission.LockTimeoutMs, constant.DefaultLockTimeout),
	}
}

// RoomKey is the lock key of a room. Zero padding keeps the lexical order of keys equal
// to the numeric order of rooms.
func RoomKey(roomNumber int) string {
	return fmt.Sprintf("room:%010d", roomNumber)
}

func (s *storeImpl) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storageTimeout)
}

func (s *storeImpl) lockRooms(ctx context.Context, rooms ...int) (release lock.Release, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".Acquire")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	keys := make([]string, len(rooms))
	for i, room := range rooms {
		keys[i] = RoomKey(room)
	}

	c, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	release, err = lock.AcquireAll(c, s.locker, keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	return release, nil
}

func (s *storeImpl) activeFor(ctx context.Context, roomNumber int) ([]model.Reservation, error) {
	c, cancel := s.bounded(ctx)
	defer cancel()

	active, err := s.repo.ActiveFor(c, roomNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read reservations of room %d: %w", roomNumber, err)
	}

	return active, nil
}

// find loads id and reports whether it is an active reservation of roomNumber.
func (s *storeImpl) find(ctx context.Context, roomNumber int, id string) (model.Reservation, bool, error) {
	if uuid.Validate(id) != nil {
		return model.Reservation{}, false, nil
	}

	c, cancel := s.bounded(ctx)
	defer cancel()

	reservation, err := s.repo.Get(c, id)
	if err != nil {
		return reservation, false, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}

	return reservation, reservation.RoomNumber == roomNumber && reservation.IsActive(), nil
}

func (s *storeImpl) ActiveReservationsFor(ctx context.Context, roomNumber int) (res []model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ActiveReservationsFor")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.activeFor(ctx, roomNumber)
}

func (s *storeImpl) IsFree(ctx context.Context, roomNumber int, start, end time.Time) (free bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IsFree")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = model.ValidateRange(start, end); err != nil {
		return false, err
	}

	release, err := s.lockRooms(ctx, roomNumber)
	if err != nil {
		return false, err
	}
	defer release()

	active, err := s.activeFor(ctx, roomNumber)
	if err != nil {
		return false, err
	}

	_, conflict := model.FirstConflict(active, start, end, "")

	return !conflict, nil
}

func (s *storeImpl) Book(ctx context.Context, roomNumber int, guest model.Guest, partySize int, start, end time.Time) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Book")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	roomLog := logger.Admission(roomNumber)

	reservation := model.New(roomNumber, guest, partySize, start, end, user)
	if err = reservation.Validate(); err != nil {
		return res, err
	}

	release, err := s.lockRooms(ctx, roomNumber)
	if err != nil {
		roomLog.Error().Err(err).Msg("failed to lock room for booking")

		return res, err
	}
	defer release()

	active, err := s.activeFor(ctx, roomNumber)
	if err != nil {
		roomLog.Error().Err(err).Msg("failed to check room availability")

		return res, err
	}

	if existing, found := model.FirstConflict(active, reservation.StartDate, reservation.EndDate, ""); found {
		roomLog.Info().Str("conflict", existing.ID).Msg("booking rejected, dates overlap")

		return res, fmt.Errorf("%w: room %d overlaps reservation %s", model.ErrRoomUnavailable, roomNumber, existing.ID)
	}

	if err = reservation.Activate(); err != nil {
		return res, err
	}

	c, cancel := s.bounded(ctx)
	defer cancel()

	if err = s.repo.Insert(c, reservation); err != nil {
		roomLog.Error().Err(err).Msg("failed to insert reservation")

		return res, fmt.Errorf("failed to insert reservation: %w", err)
	}

	release()

	roomLog.Info().Str("reservation", reservation.ID).Msg("reservation booked")
	s.events.PublishAsync(ctx, event.New(event.TypeBooked, reservation))

	return reservation, nil
}

func (s *storeImpl) Cancel(ctx context.Context, roomNumber int, id string) (cancelled bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	roomLog := logger.Admission(roomNumber)

	release, err := s.lockRooms(ctx, roomNumber)
	if err != nil {
		return false, err
	}
	defer release()

	reservation, found, err := s.find(ctx, roomNumber, id)
	if err != nil || !found {
		return false, err
	}

	if err = reservation.Cancel(timezone.Now(), user); err != nil {
		return false, err
	}

	c, cancel := s.bounded(ctx)
	defer cancel()

	if err = s.repo.Cancel(c, reservation); err != nil {
		roomLog.Error().Err(err).Str("reservation", id).Msg("failed to cancel reservation")

		return false, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	release()

	roomLog.Info().Str("reservation", id).Msg("reservation cancelled")
	s.events.PublishAsync(ctx, event.New(event.TypeCancelled, reservation))

	return true, nil
}

func (s *storeImpl) Rebook(ctx context.Context, roomNumber int, id string, newRoom int, guest model.Guest, partySize int, start, end time.Time) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Rebook")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	roomLog := logger.Admission(newRoom)

	next := model.New(newRoom, guest, partySize, start, end, user)
	if err = next.Validate(); err != nil {
		return res, err
	}

	release, err := s.lockRooms(ctx, roomNumber, newRoom)
	if err != nil {
		return res, err
	}
	defer release()

	previous, found, err := s.find(ctx, roomNumber, id)
	if err != nil {
		return res, err
	}

	if !found {
		return res, fmt.Errorf("%w: %s in room %d", model.ErrReservationNotFound, id, roomNumber)
	}

	active, err := s.activeFor(ctx, newRoom)
	if err != nil {
		return res, err
	}

	if existing, conflict := model.FirstConflict(active, next.StartDate, next.EndDate, previous.ID); conflict {
		roomLog.Info().Str("conflict", existing.ID).Msg("rebooking rejected, dates overlap")

		return res, fmt.Errorf("%w: room %d overlaps reservation %s", model.ErrRoomUnavailable, newRoom, existing.ID)
	}

	if err = previous.Cancel(timezone.Now(), user); err != nil {
		return res, err
	}

	if err = next.Activate(); err != nil {
		return res, err
	}

	c, cancel := s.bounded(ctx)
	defer cancel()

	if err = s.repo.Replace(c, previous, next); err != nil {
		roomLog.Error().Err(err).Str("previous", previous.ID).Msg("failed to rebook reservation")

		return res, fmt.Errorf("failed to rebook reservation: %w", err)
	}

	release()

	roomLog.Info().Str("previous", previous.ID).Str("reservation", next.ID).Msg("reservation rebooked")
	s.events.PublishAsync(ctx, event.New(event.TypeCancelled, previous), event.New(event.TypeBooked, next))

	return next, nil
}

func (s *storeImpl) Get(ctx context.Context, id string) (res model.Reservation, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if uuid.Validate(id) != nil {
		return res, fmt.Errorf("%w: %s", model.ErrReservationNotFound, id)
	}

	c, cancel := s.bounded(ctx)
	defer cancel()

	res, err = s.repo.Get(c, id)
	if err != nil {
		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if res.ID == constant.Empty {
		return res, fmt.Errorf("%w: %s", model.ErrReservationNotFound, id)
	}

	return res, nil
}

func (s *storeImpl) List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) (res []model.Reservation, total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	c, cancel := s.bounded(ctx)
	defer cancel()

	res, total, err = s.repo.List(c, roomNumber, includeCancelled, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	return res, total, nil
}

func (s *storeImpl) Clear(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Clear")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	c, cancel := s.bounded(ctx)
	defer cancel()

	if err = s.repo.Clear(c); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}

	log.Warn().Msg("all reservations cleared")

	return nil
}
