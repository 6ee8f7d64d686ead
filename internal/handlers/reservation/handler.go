package reservation

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/admission/service"
	"lodge/internal/domains/reservation/model/dto"
	"lodge/shared/constant"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

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
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.Reserve)
		routerGroup.Delete("/", handler.Clear)
		routerGroup.Get("/{id}", handler.GetReservation)
	})
}

// Reserve books a room.
// @Summary Reserve a room
// @Description Books the room for [start_date, end_date) when the party fits and no active reservation overlaps. A 409 means the room was taken; query availability again.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.ReserveRequest true "Reservation"
// @Success 201 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) Reserve(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Reserve")
	defer scope.End()

	req := dto.ReserveRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.Reserve(ctx, req)
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Reservation " + reservation.ID + " booked by user " + user)

	res := dto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetReservation returns one reservation, active or cancelled.
// @Summary Get reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservation")
	defer scope.End()

	reservation, err := handler.service.Get(ctx, chi.URLParam(request, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	res := dto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusOK, res)
}

// Clear drops every reservation.
// @Summary Clear reservations
// @Description Administrative reset. Removes all reservations, cancelled ones included.
// @Tags Reservation
// @Produce json
// @Success 200 {object} response.Message
// @Failure 503 {object} response.Error
// @Router /v1/reservations [delete]
// @Security BearerAuth
func (handler *Handler) Clear(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Clear")
	defer scope.End()

	if err := handler.service.Clear(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear reservations")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	log.Warn().Str("user", user).Msg("reservations cleared over http")

	response.WithMessage(writer, http.StatusOK, "Reservations cleared")
}
