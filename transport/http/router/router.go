package router

import (
	"busline/internal/handlers/admin"
	"busline/internal/handlers/auth"
	"busline/internal/handlers/booking"
	"busline/internal/handlers/bus"
	"busline/internal/handlers/driver"
	"busline/internal/handlers/passenger"
	"busline/internal/handlers/route"
	"busline/internal/handlers/schedule"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth      auth.Handler
	Admin     admin.Handler
	Bus       bus.Handler
	Route     route.Handler
	Driver    driver.Handler
	Passenger passenger.Handler
	Schedule  schedule.Handler
	Booking   booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Auth.Router(router)
	r.DomainHandlers.Admin.Router(router)
	r.DomainHandlers.Bus.Router(router)
	r.DomainHandlers.Route.Router(router)
	r.DomainHandlers.Driver.Router(router)
	r.DomainHandlers.Passenger.Router(router)
	r.DomainHandlers.Schedule.Router(router)
	r.DomainHandlers.Booking.Router(router)
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
