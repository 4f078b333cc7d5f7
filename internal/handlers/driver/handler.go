package driver

import (
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/driver/model"
	"busline/internal/domains/driver/model/dto"
	"busline/internal/domains/driver/service"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	paramLicenseNumber = "licenseNumber"
	paramBusID         = "busId"
)

type Handler struct {
	service service.Driver
	otel    otel.Otel
}

func New(service service.Driver, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/drivers", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetDrivers)
		routerGroup.Post("/", handler.CreateDriver)
		routerGroup.Get("/available", handler.GetAvailableDrivers)
		routerGroup.Get("/license/{licenseNumber}", handler.GetDriverByLicense)
		routerGroup.Get("/{id}", handler.GetDriverByID)
		routerGroup.Put("/{id}", handler.UpdateDriver)
		routerGroup.Delete("/{id}", handler.DeleteDriver)
		routerGroup.Patch("/{id}/availability", handler.UpdateDriverAvailability)
		routerGroup.Post("/{id}/assign-bus/{busId}", handler.AssignBus)
		routerGroup.Post("/{id}/remove-bus", handler.RemoveBus)
	})
}

// CreateDriver registers a driver.
// @Summary Create a driver
// @Tags Driver
// @Accept json
// @Produce json
// @Param request body dto.CreateDriverRequest true "Driver details"
// @Success 201 {object} dto.DriverResponse
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "License number or email already exists"
// @Failure 500 {object} response.Error
// @Router /drivers [post]
// @Security BearerAuth
func (handler *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateDriver")
	defer scope.End()

	var req dto.CreateDriverRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	driver, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create driver")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, driver)
}

// GetDrivers lists drivers.
// @Summary List drivers
// @Tags Driver
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.DriverResponse
// @Failure 500 {object} response.Error
// @Router /drivers [get]
// @Security BearerAuth
func (handler *Handler) GetDrivers(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetDrivers", gDto.FilterGroup{})
}

// GetAvailableDrivers lists drivers marked available.
// @Summary List available drivers
// @Tags Driver
// @Produce json
// @Success 200 {array} dto.DriverResponse
// @Failure 500 {object} response.Error
// @Router /drivers/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableDrivers(w http.ResponseWriter, r *http.Request) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	handler.list(w, r, ".GetAvailableDrivers", filter)
}

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, filter gDto.FilterGroup) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+name)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	drivers, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get drivers")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, drivers)
}

// GetDriverByID returns one driver.
// @Summary Get a driver by ID
// @Tags Driver
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 "Driver not found"
// @Failure 500 {object} response.Error
// @Router /drivers/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetDriverByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDriverByID")
	defer scope.End()

	driver, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// GetDriverByLicense returns the driver holding a license number.
// @Summary Get a driver by license number
// @Tags Driver
// @Produce json
// @Param licenseNumber path string true "License number"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 "Driver not found"
// @Failure 500 {object} response.Error
// @Router /drivers/license/{licenseNumber} [get]
// @Security BearerAuth
func (handler *Handler) GetDriverByLicense(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDriverByLicense")
	defer scope.End()

	driver, err := handler.service.GetByLicense(ctx, chi.URLParam(r, paramLicenseNumber))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// UpdateDriver updates a driver.
// @Summary Update a driver
// @Tags Driver
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param request body dto.UpdateDriverRequest true "Fields to change"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Driver not found"
// @Failure 409 {object} response.Error "License number or email already exists"
// @Failure 500 {object} response.Error
// @Router /drivers/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateDriver")
	defer scope.End()

	var req dto.UpdateDriverRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	driver, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update driver")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// UpdateDriverAvailability toggles driver availability.
// @Summary Update driver availability
// @Tags Driver
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param request body dto.UpdateAvailabilityRequest true "Availability"
// @Success 200 {object} dto.DriverResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Driver not found"
// @Failure 500 {object} response.Error
// @Router /drivers/{id}/availability [patch]
// @Security BearerAuth
func (handler *Handler) UpdateDriverAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateDriverAvailability")
	defer scope.End()

	var req dto.UpdateAvailabilityRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	driver, err := handler.service.UpdateAvailability(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update driver availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// AssignBus assigns a bus to a driver.
// @Summary Assign a bus to a driver
// @Tags Driver
// @Produce json
// @Param id path string true "Driver ID"
// @Param busId path string true "Bus ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 "Driver or bus not found"
// @Failure 409 {object} response.Error "Bus already has a driver"
// @Failure 500 {object} response.Error
// @Router /drivers/{id}/assign-bus/{busId} [post]
// @Security BearerAuth
func (handler *Handler) AssignBus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignBus")
	defer scope.End()

	driverID := chi.URLParam(r, constant.RequestParamID)
	busID := chi.URLParam(r, paramBusID)

	driver, err := handler.service.AssignBus(ctx, driverID, busID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("driverId", driverID).Str("busId", busID).Msg("failed to assign bus")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// RemoveBus clears the driver's bus assignment.
// @Summary Remove a driver's bus
// @Tags Driver
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} dto.DriverResponse
// @Failure 404 "Driver not found"
// @Failure 500 {object} response.Error
// @Router /drivers/{id}/remove-bus [post]
// @Security BearerAuth
func (handler *Handler) RemoveBus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemoveBus")
	defer scope.End()

	driver, err := handler.service.RemoveBus(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove bus from driver")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, driver)
}

// DeleteDriver removes a driver.
// @Summary Delete a driver
// @Tags Driver
// @Param id path string true "Driver ID"
// @Success 204
// @Failure 404 "Driver not found"
// @Failure 409 {object} response.Error "Driver is still referenced by schedules"
// @Failure 500 {object} response.Error
// @Router /drivers/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteDriver")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete driver")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}
