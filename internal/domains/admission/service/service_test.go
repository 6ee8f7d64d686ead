package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"lodge/config"
	otelMocks "lodge/infras/otel/mocks"
	"lodge/internal/domains/admission/service"
	"lodge/internal/domains/reservation/event"
	reservationMocks "lodge/internal/domains/reservation/mocks"
	"lodge/internal/domains/reservation/model"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/reservation/repository"
	"lodge/internal/domains/reservation/store"
	roomMocks "lodge/internal/domains/room/mocks"
	roomModel "lodge/internal/domains/room/model"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan15 = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan20 = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
)

var catalog = []roomModel.Room{
	{Number: 101, BedCount: 1},
	{Number: 102, BedCount: 2},
	{Number: 103, BedCount: 4},
}

func reserveRequest(room, party int, start, end string) dto.ReserveRequest {
	return dto.ReserveRequest{
		RoomNumber: room,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		PartySize:  party,
		StartDate:  start,
		EndDate:    end,
	}
}

func roomsAtLeast(n int) []roomModel.Room {
	rooms := []roomModel.Room{}

	for _, room := range catalog {
		if room.BedCount >= max(n, 1) {
			rooms = append(rooms, room)
		}
	}

	return rooms
}

func roomByNumber(_ context.Context, number int) (roomModel.Room, error) {
	for _, room := range catalog {
		if room.Number == number {
			return room, nil
		}
	}

	return roomModel.Room{}, fmt.Errorf("%w: %d", roomModel.ErrRoomNotFound, number)
}

type discard struct{}

func (discard) Publish(context.Context, ...event.Event) error { return nil }

func (discard) PublishAsync(context.Context, ...event.Event) {}

func TestReserve(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.ReserveRequest
		mock     func(rooms *roomMocks.MockRoomService, store *reservationMocks.MockStore)
		wantCode int
		wantErr  error
	}{
		{
			name: "booked",
			req:  reserveRequest(102, 2, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, store *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 102).DoAndReturn(roomByNumber)
				store.EXPECT().
					Book(gomock.Any(), 102, model.Guest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, 2, jan10, jan15).
					Return(model.Reservation{ID: "r-1", RoomNumber: 102, Status: model.StatusActive}, nil)
			},
		},
		{
			name:     "inverted range fails before any lookup",
			req:      reserveRequest(102, 2, "2024-01-15", "2024-01-10"),
			mock:     func(*roomMocks.MockRoomService, *reservationMocks.MockStore) {},
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrInvalidDateRange,
		},
		{
			name:     "unparseable date",
			req:      reserveRequest(102, 2, "10/01/2024", "2024-01-15"),
			mock:     func(*roomMocks.MockRoomService, *reservationMocks.MockStore) {},
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrInvalidDateRange,
		},
		{
			name:     "empty party",
			req:      reserveRequest(102, 0, "2024-01-10", "2024-01-15"),
			mock:     func(*roomMocks.MockRoomService, *reservationMocks.MockStore) {},
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrInvalidPartySize,
		},
		{
			name: "party larger than room",
			req:  reserveRequest(101, 2, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, _ *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 101).DoAndReturn(roomByNumber)
			},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  model.ErrCapacityExceeded,
		},
		{
			name: "unknown room",
			req:  reserveRequest(999, 1, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, _ *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 999).DoAndReturn(roomByNumber)
			},
			wantCode: http.StatusNotFound,
			wantErr:  model.ErrRoomNotFound,
		},
		{
			name: "catalog unavailable",
			req:  reserveRequest(102, 1, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, _ *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 102).Return(roomModel.Room{}, fmt.Errorf("%w: timeout", roomModel.ErrStorageUnavailable))
			},
			wantCode: http.StatusServiceUnavailable,
			wantErr:  roomModel.ErrStorageUnavailable,
		},
		{
			name: "room taken",
			req:  reserveRequest(102, 1, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, store *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 102).DoAndReturn(roomByNumber)
				store.EXPECT().Book(gomock.Any(), 102, gomock.Any(), 1, jan10, jan15).
					Return(model.Reservation{}, fmt.Errorf("%w: overlaps r-0", model.ErrRoomUnavailable))
			},
			wantCode: http.StatusConflict,
			wantErr:  model.ErrRoomUnavailable,
		},
		{
			name: "storage error",
			req:  reserveRequest(102, 1, "2024-01-10", "2024-01-15"),
			mock: func(rooms *roomMocks.MockRoomService, store *reservationMocks.MockStore) {
				rooms.EXPECT().Get(gomock.Any(), 102).DoAndReturn(roomByNumber)
				store.EXPECT().Book(gomock.Any(), 102, gomock.Any(), 1, jan10, jan15).
					Return(model.Reservation{}, fmt.Errorf("%w: %w", model.ErrStorage, context.DeadlineExceeded))
			},
			wantCode: http.StatusServiceUnavailable,
			wantErr:  model.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			rooms := roomMocks.NewMockRoomService(ctrl)
			reservations := reservationMocks.NewMockStore(ctrl)

			tt.mock(rooms, reservations)

			svc := service.New(rooms, reservations, otelMocks.NewOtel())
			res, err := svc.Reserve(context.Background(), tt.req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "r-1", res.ID)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestFindAvailableRooms(t *testing.T) {
	t.Run("filters busy rooms", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rooms := roomMocks.NewMockRoomService(ctrl)
		reservations := reservationMocks.NewMockStore(ctrl)

		rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), 2).Return(roomsAtLeast(2), nil)
		reservations.EXPECT().IsFree(gomock.Any(), 102, jan10, jan15).Return(false, nil)
		reservations.EXPECT().IsFree(gomock.Any(), 103, jan10, jan15).Return(true, nil)

		svc := service.New(rooms, reservations, otelMocks.NewOtel())

		res, err := svc.FindAvailableRooms(context.Background(), 2, jan10, jan15)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, 103, res[0].Number)
	})

	t.Run("invalid range", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := service.New(roomMocks.NewMockRoomService(ctrl), reservationMocks.NewMockStore(ctrl), otelMocks.NewOtel())

		_, err := svc.FindAvailableRooms(context.Background(), 1, jan15, jan15)
		require.ErrorIs(t, err, model.ErrInvalidDateRange)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rooms := roomMocks.NewMockRoomService(ctrl)
		reservations := reservationMocks.NewMockStore(ctrl)

		rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), 4).Return(roomsAtLeast(4), nil)
		reservations.EXPECT().IsFree(gomock.Any(), 103, jan10, jan15).Return(false, fmt.Errorf("%w: lock timeout", model.ErrStorage))

		svc := service.New(rooms, reservations, otelMocks.NewOtel())

		_, err := svc.FindAvailableRooms(context.Background(), 4, jan10, jan15)
		require.ErrorIs(t, err, model.ErrStorage)
		assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
	})

	t.Run("catalog failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		rooms := roomMocks.NewMockRoomService(ctrl)

		rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), 1).Return(nil, roomModel.ErrStorageUnavailable)

		svc := service.New(rooms, reservationMocks.NewMockStore(ctrl), otelMocks.NewOtel())

		_, err := svc.FindAvailableRooms(context.Background(), 1, jan10, jan15)
		assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
	})
}

func TestCancelReservation(t *testing.T) {
	ctrl := gomock.NewController(t)
	reservations := reservationMocks.NewMockStore(ctrl)
	svc := service.New(roomMocks.NewMockRoomService(ctrl), reservations, otelMocks.NewOtel())

	reservations.EXPECT().Cancel(gomock.Any(), 101, "known").Return(true, nil)
	reservations.EXPECT().Cancel(gomock.Any(), 101, "unknown").Return(false, nil)
	reservations.EXPECT().Cancel(gomock.Any(), 101, "broken").Return(false, model.ErrStorage)

	cancelled, err := svc.CancelReservation(context.Background(), 101, "known")
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = svc.CancelReservation(context.Background(), 101, "unknown")
	require.NoError(t, err)
	assert.False(t, cancelled)

	_, err = svc.CancelReservation(context.Background(), 101, "broken")
	assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
}

func TestRebook_ChecksTargetCapacity(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := roomMocks.NewMockRoomService(ctrl)
	reservations := reservationMocks.NewMockStore(ctrl)
	svc := service.New(rooms, reservations, otelMocks.NewOtel())

	rooms.EXPECT().Get(gomock.Any(), 101).DoAndReturn(roomByNumber)

	_, err := svc.Rebook(context.Background(), 103, "r-1", reserveRequest(101, 3, "2024-01-10", "2024-01-15"))
	require.ErrorIs(t, err, model.ErrCapacityExceeded)

	rooms.EXPECT().Get(gomock.Any(), 103).DoAndReturn(roomByNumber)
	reservations.EXPECT().Rebook(gomock.Any(), 101, "r-1", 103, gomock.Any(), 3, jan15, jan20).
		Return(model.Reservation{ID: "r-2", RoomNumber: 103}, nil)

	res, err := svc.Rebook(context.Background(), 101, "r-1", reserveRequest(103, 3, "2024-01-15", "2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, "r-2", res.ID)

	rooms.EXPECT().Get(gomock.Any(), 103).DoAndReturn(roomByNumber)
	reservations.EXPECT().Rebook(gomock.Any(), 101, "gone", 103, gomock.Any(), 3, jan15, jan20).
		Return(model.Reservation{}, model.ErrReservationNotFound)

	_, err = svc.Rebook(context.Background(), 101, "gone", reserveRequest(103, 3, "2024-01-15", "2024-01-20"))
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestIsFree(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := roomMocks.NewMockRoomService(ctrl)
	reservations := reservationMocks.NewMockStore(ctrl)
	svc := service.New(rooms, reservations, otelMocks.NewOtel())

	rooms.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(roomByNumber).Times(2)
	reservations.EXPECT().IsFree(gomock.Any(), 101, jan10, jan15).Return(true, nil)

	free, err := svc.IsFree(context.Background(), 101, jan10, jan15)
	require.NoError(t, err)
	assert.True(t, free)

	_, err = svc.IsFree(context.Background(), 999, jan10, jan15)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	_, err = svc.IsFree(context.Background(), 101, jan15, jan10)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	reservations := reservationMocks.NewMockStore(ctrl)
	svc := service.New(roomMocks.NewMockRoomService(ctrl), reservations, otelMocks.NewOtel())
	ctx := context.Background()

	reservations.EXPECT().ActiveReservationsFor(gomock.Any(), 101).Return([]model.Reservation{{ID: "r-1"}}, nil)
	reservations.EXPECT().Get(gomock.Any(), "missing").Return(model.Reservation{}, model.ErrReservationNotFound)
	reservations.EXPECT().List(gomock.Any(), 101, true, gDto.QueryParams{Page: 1, Limit: 5}).Return([]model.Reservation{{ID: "r-1"}}, 1, nil)
	reservations.EXPECT().Clear(gomock.Any()).Return(errors.New("boom"))

	active, err := svc.ListActive(ctx, 101)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	list, total, err := svc.List(ctx, 101, true, gDto.QueryParams{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)

	err = svc.Clear(ctx)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}

// TestAdmission_Scenario runs the catalog mock against the real store on the memory
// repository.
func TestAdmission_Scenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := roomMocks.NewMockRoomService(ctrl)
	rooms.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(roomByNumber).AnyTimes()
	rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n int) ([]roomModel.Room, error) { return roomsAtLeast(n), nil }).
		AnyTimes()

	reservations := store.New(repository.NewMemory(), lock.NewLocal(), discard{}, &config.Config{}, otelMocks.NewOtel())
	svc := service.New(rooms, reservations, otelMocks.NewOtel())
	ctx := context.Background()

	available, err := svc.FindAvailableRooms(ctx, 2, jan10, jan15)
	require.NoError(t, err)
	assert.Equal(t, []int{102, 103}, numbers(available))

	booked, err := svc.Reserve(ctx, reserveRequest(102, 2, "2024-01-10", "2024-01-15"))
	require.NoError(t, err)

	available, err = svc.FindAvailableRooms(ctx, 2, jan10, jan15)
	require.NoError(t, err)
	assert.Equal(t, []int{103}, numbers(available))

	_, err = svc.Reserve(ctx, reserveRequest(103, 5, "2024-01-10", "2024-01-15"))
	require.ErrorIs(t, err, model.ErrCapacityExceeded)

	active, err := svc.ListActive(ctx, 103)
	require.NoError(t, err)
	assert.Empty(t, active, "refused reservation left nothing behind")

	cancelled, err := svc.CancelReservation(ctx, 102, booked.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	available, err = svc.FindAvailableRooms(ctx, 2, jan10, jan15)
	require.NoError(t, err)
	assert.Equal(t, []int{102, 103}, numbers(available))
}

func numbers(rooms []roomModel.Room) []int {
	res := make([]int, len(rooms))
	for i, room := range rooms {
		res[i] = room.Number
	}

	return res
}

func TestRooms(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := roomMocks.NewMockRoomService(ctrl)
	svc := service.New(rooms, reservationMocks.NewMockStore(ctrl), otelMocks.NewOtel())
	ctx := context.Background()

	rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), 2).Return(roomsAtLeast(2), nil)
	rooms.EXPECT().RoomsWithCapacityAtLeast(gomock.Any(), 1).Return(nil, roomModel.ErrStorageUnavailable)
	rooms.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(roomByNumber).Times(2)

	list, err := svc.ListRooms(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{102, 103}, numbers(list))

	_, err = svc.ListRooms(ctx, 1)
	assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))

	room, err := svc.GetRoom(ctx, 103)
	require.NoError(t, err)
	assert.Equal(t, 4, room.BedCount)

	_, err = svc.GetRoom(ctx, 999)
	require.ErrorIs(t, err, roomModel.ErrRoomNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
