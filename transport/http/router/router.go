package router

import (
	"net/http"

	"lodge/internal/handlers/reservation"
	"lodge/internal/handlers/room"
	"lodge/shared/constant"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const apiVersion = "/v1"

type DomainHandlers struct {
	Room        room.Handler
	Reservation reservation.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

// SetupRoutes mounts the versioned API. Unknown routes answer in the same JSON envelope
// as handler errors.
func (r *Router) SetupRoutes(router chi.Router) {
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		response.WithMessage(writer, http.StatusNotFound, constant.ResponseErrorRouteNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		response.WithMessage(writer, http.StatusMethodNotAllowed, constant.ResponseErrorMethodNotAllowed)
	})

	router.Route(apiVersion, func(routerGroup chi.Router) {
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
