package room_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	otelMocks "lodge/infras/otel/mocks"
	"lodge/internal/domains/admission/mocks"
	reservationModel "lodge/internal/domains/reservation/model"
	reservationDto "lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/handlers/room"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/timezone"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockAdmission, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	admission := mocks.NewMockAdmission(ctrl)
	handler := room.New(admission, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return admission, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var payload response.Data[T]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.NotNil(t, payload.Data)

	return *payload.Data
}

func day(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := timezone.ParseDate(value)
	require.NoError(t, err)

	return parsed
}

func TestGetRooms(t *testing.T) {
	t.Run("defaults to one bed", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().ListRooms(gomock.Any(), 1).Return([]model.Room{{Number: 101, BedCount: 1}, {Number: 102, BedCount: 2}}, nil)

		recorder := serve(router, http.MethodGet, "/rooms", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		res := decode[dto.GetRoomsResponse](t, recorder)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, 101, res.Rooms[0].Number)
	})

	t.Run("min_beds filter", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().ListRooms(gomock.Any(), 3).Return([]model.Room{}, nil)

		recorder := serve(router, http.MethodGet, "/rooms?min_beds=3", "")

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("invalid min_beds", func(t *testing.T) {
		_, router := setup(t)

		recorder := serve(router, http.MethodGet, "/rooms?min_beds=many", "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("internal errors are masked", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().ListRooms(gomock.Any(), 1).Return(nil, failure.InternalError(errors.New("dsn leaked")))

		recorder := serve(router, http.MethodGet, "/rooms", "")

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "dsn leaked")
	})
}

func TestGetAvailableRooms(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		mock     func(admission *mocks.MockAdmission)
		wantCode int
	}{
		{
			name:  "free rooms",
			query: "?min_beds=2&start=2024-01-10&end=2024-01-12",
			mock: func(admission *mocks.MockAdmission) {
				admission.EXPECT().
					FindAvailableRooms(gomock.Any(), 2, day(t, "2024-01-10"), day(t, "2024-01-12")).
					Return([]model.Room{{Number: 102, BedCount: 2}}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "missing end",
			query:    "?start=2024-01-10",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not a date",
			query:    "?start=2024-01-10&end=tomorrow",
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "inverted range reported by the engine",
			query: "?start=2024-01-12&end=2024-01-10",
			mock: func(admission *mocks.MockAdmission) {
				admission.EXPECT().
					FindAvailableRooms(gomock.Any(), 1, gomock.Any(), gomock.Any()).
					Return(nil, failure.BadRequest(reservationModel.ErrInvalidDateRange))
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admission, router := setup(t)
			if tt.mock != nil {
				tt.mock(admission)
			}

			recorder := serve(router, http.MethodGet, "/rooms/available"+tt.query, "")

			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}

func TestGetRoom(t *testing.T) {
	admission, router := setup(t)
	admission.EXPECT().GetRoom(gomock.Any(), 103).Return(model.Room{Number: 103, BedCount: 4, BedType: "queen"}, nil)
	admission.EXPECT().GetRoom(gomock.Any(), 999).Return(model.Room{}, failure.Wrap(http.StatusNotFound, model.ErrRoomNotFound))

	recorder := serve(router, http.MethodGet, "/rooms/103", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "queen", decode[dto.RoomResponse](t, recorder).BedType)

	recorder = serve(router, http.MethodGet, "/rooms/999", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = serve(router, http.MethodGet, "/rooms/abc", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = serve(router, http.MethodGet, "/rooms/0", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetAvailability(t *testing.T) {
	admission, router := setup(t)
	admission.EXPECT().IsFree(gomock.Any(), 101, day(t, "2024-01-10"), day(t, "2024-01-11")).Return(false, nil)

	recorder := serve(router, http.MethodGet, "/rooms/101/availability?start=2024-01-10&end=2024-01-11", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, reservationDto.AvailabilityResponse{
		RoomNumber: 101,
		StartDate:  "2024-01-10",
		EndDate:    "2024-01-11",
		Free:       false,
	}, decode[reservationDto.AvailabilityResponse](t, recorder))
}

func TestGetReservations(t *testing.T) {
	held := reservationModel.Reservation{
		ID:         "r-1",
		RoomNumber: 101,
		PartySize:  1,
		StartDate:  day(t, "2024-01-10"),
		EndDate:    day(t, "2024-01-12"),
		Status:     reservationModel.StatusActive,
	}

	t.Run("active only by default", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().ListActive(gomock.Any(), 101).Return([]reservationModel.Reservation{held}, nil)

		recorder := serve(router, http.MethodGet, "/rooms/101/reservations", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		res := decode[reservationDto.GetReservationsResponse](t, recorder)
		assert.Equal(t, 1, res.TotalData)
		assert.Zero(t, res.TotalPage)
		assert.Equal(t, "r-1", res.Reservations[0].ID)
		assert.Equal(t, "2024-01-12", res.Reservations[0].EndDate)
	})

	t.Run("history is paginated", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().
			List(gomock.Any(), 101, true, gomock.AssignableToTypeOf(gDto.QueryParams{})).
			DoAndReturn(func(_ any, _ int, _ bool, params gDto.QueryParams) ([]reservationModel.Reservation, int, error) {
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, 1, params.Limit)

				return []reservationModel.Reservation{held}, 3, nil
			})

		recorder := serve(router, http.MethodGet, "/rooms/101/reservations?include_cancelled=true&page=2&limit=1", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		res := decode[reservationDto.GetReservationsResponse](t, recorder)
		assert.Equal(t, 3, res.TotalData)
		assert.Equal(t, 3, res.TotalPage)
	})
}

func TestRebook(t *testing.T) {
	body := `{"room_number":102,"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com",` +
		`"party_size":2,"start_date":"2024-02-01","end_date":"2024-02-03"}`

	t.Run("moved", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().
			Rebook(gomock.Any(), 101, "r-1", gomock.AssignableToTypeOf(reservationDto.ReserveRequest{})).
			DoAndReturn(func(_ any, _ int, _ string, req reservationDto.ReserveRequest) (reservationModel.Reservation, error) {
				assert.Equal(t, 102, req.RoomNumber)

				return reservationModel.Reservation{ID: "r-1", RoomNumber: 102, Status: reservationModel.StatusActive}, nil
			})

		recorder := serve(router, http.MethodPut, "/rooms/101/reservations/r-1", body)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 102, decode[reservationDto.ReservationResponse](t, recorder).RoomNumber)
	})

	t.Run("target taken", func(t *testing.T) {
		admission, router := setup(t)
		admission.EXPECT().
			Rebook(gomock.Any(), 101, "r-1", gomock.Any()).
			Return(reservationModel.Reservation{}, failure.Wrap(http.StatusConflict, reservationModel.ErrRoomUnavailable))

		recorder := serve(router, http.MethodPut, "/rooms/101/reservations/r-1", body)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, router := setup(t)

		recorder := serve(router, http.MethodPut, "/rooms/101/reservations/r-1", `{"room_number":102}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCancelReservation(t *testing.T) {
	admission, router := setup(t)
	gomock.InOrder(
		admission.EXPECT().CancelReservation(gomock.Any(), 101, "r-1").Return(true, nil),
		admission.EXPECT().CancelReservation(gomock.Any(), 101, "r-1").Return(false, nil),
	)

	recorder := serve(router, http.MethodDelete, "/rooms/101/reservations/r-1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, decode[reservationDto.CancelResponse](t, recorder).Cancelled)

	recorder = serve(router, http.MethodDelete, "/rooms/101/reservations/r-1", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.False(t, decode[reservationDto.CancelResponse](t, recorder).Cancelled)
}
