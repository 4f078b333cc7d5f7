package bus

import (
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/bus/model"
	"busline/internal/domains/bus/model/dto"
	"busline/internal/domains/bus/service"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	paramBusNumber = "busNumber"
	paramBusType   = "busType"
	paramLocation  = "location"
	formImage      = "image"
)

type Handler struct {
	service service.Bus
	otel    otel.Otel
}

func New(service service.Bus, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/buses", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetBuses)
		routerGroup.Post("/", handler.CreateBus)
		routerGroup.Get("/available", handler.GetAvailableBuses)
		routerGroup.Get("/number/{busNumber}", handler.GetBusByNumber)
		routerGroup.Get("/type/{busType}", handler.GetBusesByType)
		routerGroup.Get("/location/{location}", handler.GetBusesByLocation)
		routerGroup.Get("/{id}", handler.GetBusByID)
		routerGroup.Put("/{id}", handler.UpdateBus)
		routerGroup.Delete("/{id}", handler.DeleteBus)
		routerGroup.Patch("/{id}/availability", handler.UpdateBusAvailability)
		routerGroup.Put("/{id}/image", handler.UpdateBusImage)
	})
}

// CreateBus registers a new bus.
// @Summary Create a bus
// @Description Create a bus. Available seats start equal to total seats.
// @Tags Bus
// @Accept json
// @Produce json
// @Param request body dto.CreateBusRequest true "Bus details"
// @Success 201 {object} dto.BusResponse
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Bus number already exists"
// @Failure 500 {object} response.Error
// @Router /buses [post]
// @Security BearerAuth
func (handler *Handler) CreateBus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBus")
	defer scope.End()

	var req dto.CreateBusRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	bus, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create bus")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Bus created " + bus.ID)

	response.WithJSON(w, http.StatusCreated, bus)
}

// GetBuses lists buses.
// @Summary List buses
// @Tags Bus
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.BusResponse
// @Failure 500 {object} response.Error
// @Router /buses [get]
// @Security BearerAuth
func (handler *Handler) GetBuses(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBuses", gDto.FilterGroup{})
}

// GetAvailableBuses lists buses in service with unsold seats.
// @Summary List available buses
// @Tags Bus
// @Produce json
// @Success 200 {array} dto.BusResponse
// @Failure 500 {object} response.Error
// @Router /buses/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableBuses(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableBuses")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	buses, err := handler.service.GetAvailable(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available buses")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, buses)
}

// GetBusesByType lists buses of one type.
// @Summary List buses by type
// @Tags Bus
// @Produce json
// @Param busType path string true "Bus type"
// @Success 200 {array} dto.BusResponse
// @Failure 500 {object} response.Error
// @Router /buses/type/{busType} [get]
// @Security BearerAuth
func (handler *Handler) GetBusesByType(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBusesByType", shared.FilterByID(chi.URLParam(r, paramBusType), model.FieldBusType, model.TableName))
}

// GetBusesByLocation lists buses currently at a location.
// @Summary List buses by current location
// @Tags Bus
// @Produce json
// @Param location path string true "Current location"
// @Success 200 {array} dto.BusResponse
// @Failure 500 {object} response.Error
// @Router /buses/location/{location} [get]
// @Security BearerAuth
func (handler *Handler) GetBusesByLocation(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBusesByLocation", shared.FilterByID(chi.URLParam(r, paramLocation), model.FieldCurrentLocation, model.TableName))
}

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, filter gDto.FilterGroup) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+name)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	buses, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get buses")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, buses)
}

// GetBusByID returns one bus.
// @Summary Get a bus by ID
// @Tags Bus
// @Produce json
// @Param id path string true "Bus ID"
// @Success 200 {object} dto.BusResponse
// @Failure 404 "Bus not found"
// @Failure 500 {object} response.Error
// @Router /buses/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBusByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBusByID")
	defer scope.End()

	bus, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bus by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bus)
}

// GetBusByNumber returns the bus with the given registration number.
// @Summary Get a bus by number
// @Tags Bus
// @Produce json
// @Param busNumber path string true "Bus number"
// @Success 200 {object} dto.BusResponse
// @Failure 404 "Bus not found"
// @Failure 500 {object} response.Error
// @Router /buses/number/{busNumber} [get]
// @Security BearerAuth
func (handler *Handler) GetBusByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBusByNumber")
	defer scope.End()

	bus, err := handler.service.GetByNumber(ctx, chi.URLParam(r, paramBusNumber))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bus by number")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bus)
}

// UpdateBus updates a bus. A new total seat count shifts available seats by the same difference.
// @Summary Update a bus
// @Tags Bus
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param request body dto.UpdateBusRequest true "Fields to change"
// @Success 200 {object} dto.BusResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Bus not found"
// @Failure 409 {object} response.Error "Bus number already exists"
// @Failure 500 {object} response.Error
// @Router /buses/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateBus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBus")
	defer scope.End()

	var req dto.UpdateBusRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	bus, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update bus")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bus)
}

// UpdateBusAvailability toggles whether a bus is in service.
// @Summary Update bus availability
// @Tags Bus
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param request body dto.UpdateAvailabilityRequest true "Availability"
// @Success 200 {object} dto.BusResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Bus not found"
// @Failure 500 {object} response.Error
// @Router /buses/{id}/availability [patch]
// @Security BearerAuth
func (handler *Handler) UpdateBusAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBusAvailability")
	defer scope.End()

	var req dto.UpdateAvailabilityRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	bus, err := handler.service.UpdateAvailability(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update bus availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bus)
}

// UpdateBusImage replaces the bus picture.
// @Summary Upload a bus image
// @Tags Bus
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Bus ID"
// @Param image formData file true "PNG or JPEG, at most 1 MB"
// @Success 200 {object} dto.BusResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Bus not found"
// @Failure 500 {object} response.Error
// @Router /buses/{id}/image [put]
// @Security BearerAuth
func (handler *Handler) UpdateBusImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBusImage")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.UpdateImageRequest{}

	file, fileHeader, err := r.FormFile(formImage)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	bus, err := handler.service.UpdateImage(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update bus image")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bus)
}

// DeleteBus removes a bus.
// @Summary Delete a bus
// @Tags Bus
// @Param id path string true "Bus ID"
// @Success 204
// @Failure 404 "Bus not found"
// @Failure 409 {object} response.Error "Bus is still referenced"
// @Failure 500 {object} response.Error
// @Router /buses/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBus")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete bus")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}
