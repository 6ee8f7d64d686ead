package room

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/admission/service"
	reservationDto "lodge/internal/domains/reservation/model/dto"
	"lodge/internal/domains/room/model/dto"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const queryIncludeCancelled = "include_cancelled"

type Handler struct {
	service service.Admission
	otel    otel.Otel
}

func New(service service.Admission, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/available", handler.GetAvailableRooms)
		routerGroup.Get("/{number}", handler.GetRoom)
		routerGroup.Get("/{number}/availability", handler.GetAvailability)
		routerGroup.Get("/{number}/reservations", handler.GetReservations)
		routerGroup.Put("/{number}/reservations/{id}", handler.Rebook)
		routerGroup.Delete("/{number}/reservations/{id}", handler.CancelReservation)
	})
}

func roomNumber(request *http.Request) (int, error) {
	number, err := shared.ConvertStringToInt(chi.URLParam(request, constant.RequestParamRoomNumber))
	if err != nil || number < 1 {
		return 0, failure.BadRequestFromString("invalid room number")
	}

	return number, nil
}

func minBeds(request *http.Request) (int, error) {
	value := request.URL.Query().Get(constant.RequestParamMinBeds)
	if value == constant.Empty {
		return 1, nil
	}

	beds, err := shared.ConvertStringToInt(value)
	if err != nil {
		return 0, failure.BadRequestFromString("invalid min_beds parameter")
	}

	return beds, nil
}

func dateRange(request *http.Request) (reservationDto.AvailabilityResponse, error) {
	query := request.URL.Query()
	availability := reservationDto.AvailabilityResponse{
		StartDate: query.Get(constant.RequestParamStart),
		EndDate:   query.Get(constant.RequestParamEnd),
	}

	if err := validator.ValidateVar(availability.StartDate, "required,date"); err != nil {
		return availability, err //nolint:wrapcheck
	}

	if err := validator.ValidateVar(availability.EndDate, "required,date"); err != nil {
		return availability, err //nolint:wrapcheck
	}

	return availability, nil
}

// GetRooms lists the catalog.
// @Summary List rooms
// @Description List catalog rooms ordered by number, optionally with at least min_beds beds.
// @Tags Room
// @Produce json
// @Param min_beds query integer false "Minimum bed count"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	beds, err := minBeds(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	rooms, err := handler.service.ListRooms(ctx, beds)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list rooms")

		response.WithError(writer, err)

		return
	}

	res := dto.GetRoomsResponse{}
	res.FromModels(rooms)

	response.WithJSON(writer, http.StatusOK, res)
}

// GetAvailableRooms finds rooms free for a date range.
// @Summary Find available rooms
// @Description Rooms with at least min_beds beds and no active reservation overlapping [start, end). The result is a snapshot; booking re-checks.
// @Tags Room
// @Produce json
// @Param min_beds query integer false "Minimum bed count"
// @Param start query string true "First night (YYYY-MM-DD)"
// @Param end query string true "Departure day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetRoomsResponse]
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableRooms(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableRooms")
	defer scope.End()

	beds, err := minBeds(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	dates, err := dateRange(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	start, end, err := reservationDto.ParseRange(dates.StartDate, dates.EndDate)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, failure.BadRequest(err))

		return
	}

	rooms, err := handler.service.FindAvailableRooms(ctx, beds, start, end)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to find available rooms")

		response.WithError(writer, err)

		return
	}

	res := dto.GetRoomsResponse{}
	res.FromModels(rooms)

	response.WithJSON(writer, http.StatusOK, res)
}

// GetRoom returns one catalog room.
// @Summary Get room
// @Tags Room
// @Produce json
// @Param number path integer true "Room number"
// @Success 200 {object} response.Data[dto.RoomResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/{number} [get]
// @Security BearerAuth
func (handler *Handler) GetRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoom")
	defer scope.End()

	number, err := roomNumber(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	room, err := handler.service.GetRoom(ctx, number)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res := dto.RoomResponse{}
	res.FromModel(room)

	response.WithJSON(writer, http.StatusOK, res)
}

// GetAvailability reports whether a room is free for a date range.
// @Summary Room availability
// @Tags Room
// @Produce json
// @Param number path integer true "Room number"
// @Param start query string true "First night (YYYY-MM-DD)"
// @Param end query string true "Departure day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[reservationDto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/{number}/availability [get]
// @Security BearerAuth
func (handler *Handler) GetAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	number, err := roomNumber(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res, err := dateRange(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	start, end, err := reservationDto.ParseRange(res.StartDate, res.EndDate)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, failure.BadRequest(err))

		return
	}

	res.RoomNumber = number

	res.Free, err = handler.service.IsFree(ctx, number, start, end)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int("room", number).Msg("failed to check availability")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetReservations lists reservations of a room.
// @Summary List room reservations
// @Description Active reservations by default. With include_cancelled=true the full paginated history is returned.
// @Tags Reservation
// @Produce json
// @Param number path integer true "Room number"
// @Param include_cancelled query boolean false "Include cancelled reservations"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[reservationDto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/{number}/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	number, err := roomNumber(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res := reservationDto.GetReservationsResponse{}

	includeCancelled := shared.ConvertStringToBool(request.URL.Query().Get(queryIncludeCancelled))
	if includeCancelled == nil || !*includeCancelled {
		active, err := handler.service.ListActive(ctx, number)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		res.FromModels(active, len(active), 0)
		response.WithJSON(writer, http.StatusOK, res)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	history, total, err := handler.service.List(ctx, number, true, queryParams)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res.FromModels(history, total, queryParams.Limit)
	response.WithJSON(writer, http.StatusOK, res)
}

// Rebook moves a reservation to new dates or another room in one step.
// @Summary Rebook reservation
// @Description Cancels the reservation and books the request in its place. Either both happen or neither.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param number path integer true "Current room number"
// @Param id path string true "Reservation ID"
// @Param request body reservationDto.ReserveRequest true "New reservation"
// @Success 200 {object} response.Data[reservationDto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/{number}/reservations/{id} [put]
// @Security BearerAuth
func (handler *Handler) Rebook(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Rebook")
	defer scope.End()

	number, err := roomNumber(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	req := reservationDto.ReserveRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.Rebook(ctx, number, chi.URLParam(request, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res := reservationDto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusOK, res)
}

// CancelReservation cancels an active reservation.
// @Summary Cancel reservation
// @Description Reports cancelled=false for an unknown or already cancelled reservation.
// @Tags Reservation
// @Produce json
// @Param number path integer true "Room number"
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[reservationDto.CancelResponse]
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/rooms/{number}/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) CancelReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	number, err := roomNumber(request)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	id := chi.URLParam(request, constant.RequestParamID)

	cancelled, err := handler.service.CancelReservation(ctx, number, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservation", id).Msg("failed to cancel reservation")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, reservationDto.CancelResponse{Cancelled: cancelled})
}
