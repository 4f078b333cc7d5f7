package passenger

import (
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/passenger/model/dto"
	"busline/internal/domains/passenger/service"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramEmail = "email"

type Handler struct {
	service service.Passenger
	otel    otel.Otel
}

func New(service service.Passenger, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/passengers", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPassengers)
		routerGroup.Post("/", handler.CreatePassenger)
		routerGroup.Get("/email/{email}", handler.GetPassengerByEmail)
		routerGroup.Get("/check-email/{email}", handler.CheckEmail)
		routerGroup.Get("/{id}", handler.GetPassengerByID)
		routerGroup.Put("/{id}", handler.UpdatePassenger)
		routerGroup.Delete("/{id}", handler.DeletePassenger)
	})
}

// CreatePassenger registers a passenger.
// @Summary Create a passenger
// @Tags Passenger
// @Accept json
// @Produce json
// @Param request body dto.CreatePassengerRequest true "Passenger details"
// @Success 201 {object} dto.PassengerResponse
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Email or phone number already exists"
// @Failure 500 {object} response.Error
// @Router /passengers [post]
// @Security BearerAuth
func (handler *Handler) CreatePassenger(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePassenger")
	defer scope.End()

	var req dto.CreatePassengerRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	passenger, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create passenger")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, passenger)
}

// GetPassengers lists passengers.
// @Summary List passengers
// @Tags Passenger
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.PassengerResponse
// @Failure 500 {object} response.Error
// @Router /passengers [get]
// @Security BearerAuth
func (handler *Handler) GetPassengers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPassengers")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	passengers, err := handler.service.GetAll(ctx, queryParams, gDto.FilterGroup{})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get passengers")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, passengers)
}

// GetPassengerByID returns one passenger.
// @Summary Get a passenger by ID
// @Tags Passenger
// @Produce json
// @Param id path string true "Passenger ID"
// @Success 200 {object} dto.PassengerResponse
// @Failure 404 "Passenger not found"
// @Failure 500 {object} response.Error
// @Router /passengers/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPassengerByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPassengerByID")
	defer scope.End()

	passenger, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, passenger)
}

// GetPassengerByEmail returns the passenger registered with an email.
// @Summary Get a passenger by email
// @Tags Passenger
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} dto.PassengerResponse
// @Failure 404 "Passenger not found"
// @Failure 500 {object} response.Error
// @Router /passengers/email/{email} [get]
// @Security BearerAuth
func (handler *Handler) GetPassengerByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPassengerByEmail")
	defer scope.End()

	passenger, err := handler.service.GetByEmail(ctx, chi.URLParam(r, paramEmail))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, passenger)
}

// CheckEmail reports whether an email is already registered.
// @Summary Check passenger email
// @Tags Passenger
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} dto.EmailExistsResponse
// @Failure 500 {object} response.Error
// @Router /passengers/check-email/{email} [get]
// @Security BearerAuth
func (handler *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckEmail")
	defer scope.End()

	exist, err := handler.service.EmailExists(ctx, chi.URLParam(r, paramEmail))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check passenger email")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.EmailExistsResponse{Exists: exist})
}

// UpdatePassenger updates a passenger.
// @Summary Update a passenger
// @Tags Passenger
// @Accept json
// @Produce json
// @Param id path string true "Passenger ID"
// @Param request body dto.UpdatePassengerRequest true "Fields to change"
// @Success 200 {object} dto.PassengerResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Passenger not found"
// @Failure 409 {object} response.Error "Email or phone number already exists"
// @Failure 500 {object} response.Error
// @Router /passengers/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdatePassenger(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePassenger")
	defer scope.End()

	var req dto.UpdatePassengerRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	passenger, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update passenger")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, passenger)
}

// DeletePassenger removes a passenger.
// @Summary Delete a passenger
// @Tags Passenger
// @Param id path string true "Passenger ID"
// @Success 204
// @Failure 404 "Passenger not found"
// @Failure 409 {object} response.Error "Passenger still has bookings"
// @Failure 500 {object} response.Error
// @Router /passengers/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePassenger(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePassenger")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete passenger")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}
