//go:build wireinject
// +build wireinject

package di

import (
	"lodge/config"
	"lodge/infras/jwt"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/infras/redis"
	"lodge/permissions"
	"lodge/shared/cache"
	"lodge/shared/location"
	"lodge/shared/lock"
	"lodge/transport/http"
	"lodge/transport/http/middleware"
	"lodge/transport/http/router"

	admissionService "lodge/internal/domains/admission/service"
	"lodge/internal/domains/reservation/event"
	reservationRepository "lodge/internal/domains/reservation/repository"
	"lodge/internal/domains/reservation/store"
	roomRepository "lodge/internal/domains/room/repository"
	roomService "lodge/internal/domains/room/service"
	reservationHandler "lodge/internal/handlers/reservation"
	roomHandler "lodge/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.Provide,
	redis.New,
	kafka.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.New,
	location.New,
)

var roomDomain = wire.NewSet(
	roomRepository.Provide,
	roomService.Provide,
)

var reservationDomain = wire.NewSet(
	reservationRepository.Provide,
	event.NewPublisher,
	store.New,
)

var domains = wire.NewSet(
	roomDomain,
	reservationDomain,
	admissionService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	reservationHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, func(), error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil, nil
}

func InitializeAdmission() (*Admission, func(), error) {
	wire.Build(
		config.Get,
		postgres.New,
		otel.Provide,
		redis.New,
		kafka.New,
		sharedHelpers,
		domains,
		wire.Struct(new(Admission), "*"),
	)

	return &Admission{}, nil, nil
}
