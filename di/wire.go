//go:build wireinject
// +build wireinject

package di

import (
	"busline/config"
	"busline/infras/jwt"
	"busline/infras/kafka"
	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/infras/redis"
	"busline/infras/s3"
	"busline/permissions"
	"busline/shared/cache"
	"busline/transport/http"
	"busline/transport/http/middleware"
	"busline/transport/http/router"

	adminRepository "busline/internal/domains/admin/repository"
	adminService "busline/internal/domains/admin/service"
	authService "busline/internal/domains/auth/service"
	bookingEvent "busline/internal/domains/booking/event"
	bookingRepository "busline/internal/domains/booking/repository"
	bookingService "busline/internal/domains/booking/service"
	busRepository "busline/internal/domains/bus/repository"
	busService "busline/internal/domains/bus/service"
	driverRepository "busline/internal/domains/driver/repository"
	driverService "busline/internal/domains/driver/service"
	passengerRepository "busline/internal/domains/passenger/repository"
	passengerService "busline/internal/domains/passenger/service"
	routeRepository "busline/internal/domains/route/repository"
	routeService "busline/internal/domains/route/service"
	scheduleRepository "busline/internal/domains/schedule/repository"
	scheduleService "busline/internal/domains/schedule/service"

	adminHandler "busline/internal/handlers/admin"
	authHandler "busline/internal/handlers/auth"
	bookingHandler "busline/internal/handlers/booking"
	busHandler "busline/internal/handlers/bus"
	driverHandler "busline/internal/handlers/driver"
	passengerHandler "busline/internal/handlers/passenger"
	routeHandler "busline/internal/handlers/route"
	scheduleHandler "busline/internal/handlers/schedule"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var adminDomain = wire.NewSet(
	adminRepository.New,
	adminService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var fleetDomain = wire.NewSet(
	busRepository.New,
	busService.New,
	routeRepository.New,
	routeService.New,
	driverRepository.New,
	driverService.New,
	passengerRepository.New,
	passengerService.New,
)

var bookingDomain = wire.NewSet(
	scheduleRepository.New,
	scheduleService.New,
	bookingRepository.New,
	bookingEvent.New,
	bookingService.New,
)

var domains = wire.NewSet(
	adminDomain,
	authDomain,
	fleetDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	adminHandler.New,
	busHandler.New,
	routeHandler.New,
	driverHandler.New,
	passengerHandler.New,
	scheduleHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
