package di

import (
	"lodge/config"
	"lodge/infras/kafka"
	admissionService "lodge/internal/domains/admission/service"
	roomService "lodge/internal/domains/room/service"
	"lodge/shared/location"
)

// Admission is the engine without a transport, as used by lodgectl.
type Admission struct {
	Config    *config.Config
	Rooms     roomService.Room
	Admission admissionService.Admission
	Events    kafka.Client
	Locations location.Store
}
