package schedule

import (
	"fmt"
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/schedule/model"
	"busline/internal/domains/schedule/model/dto"
	"busline/internal/domains/schedule/service"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/timezone"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	paramBusID         = "busId"
	paramRouteID       = "routeId"
	paramDriverID      = "driverId"
	paramStatus        = "status"
	queryDepartureTime = "departureTime"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetSchedules)
		routerGroup.Post("/", handler.CreateSchedule)
		routerGroup.Get("/available", handler.GetAvailableSchedules)
		routerGroup.Get("/upcoming", handler.GetUpcomingSchedules)
		routerGroup.Get("/bus/{busId}", handler.GetSchedulesByBus)
		routerGroup.Get("/route/{routeId}", handler.GetSchedulesByRoute)
		routerGroup.Get("/driver/{driverId}", handler.GetSchedulesByDriver)
		routerGroup.Get("/status/{status}", handler.GetSchedulesByStatus)
		routerGroup.Get("/{id}", handler.GetScheduleByID)
		routerGroup.Put("/{id}", handler.UpdateSchedule)
		routerGroup.Delete("/{id}", handler.DeleteSchedule)
		routerGroup.Patch("/{id}/status", handler.UpdateScheduleStatus)
	})
}

// CreateSchedule plans a trip.
// @Summary Create a schedule
// @Description Fare is route distance times the bus fare per km. Available seats start at the bus total.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateScheduleRequest true "Schedule details"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Bus, route or driver not found"
// @Failure 500 {object} response.Error
// @Router /schedules [post]
// @Security BearerAuth
func (handler *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSchedule")
	defer scope.End()

	var req dto.CreateScheduleRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	schedule, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, schedule)
}

// GetSchedules lists schedules.
// @Summary List schedules
// @Tags Schedule
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.ScheduleResponse
// @Failure 500 {object} response.Error
// @Router /schedules [get]
// @Security BearerAuth
func (handler *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetSchedules", gDto.FilterGroup{})
}

// @Summary List schedules by bus
// @Tags Schedule
// @Produce json
// @Param busId path string true "Bus ID"
// @Success 200 {array} dto.ScheduleResponse
// @Router /schedules/bus/{busId} [get]
// @Security BearerAuth
func (handler *Handler) GetSchedulesByBus(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetSchedulesByBus", shared.FilterByID(chi.URLParam(r, paramBusID), model.FieldBusID, model.TableName))
}

// @Summary List schedules by route
// @Tags Schedule
// @Produce json
// @Param routeId path string true "Route ID"
// @Success 200 {array} dto.ScheduleResponse
// @Router /schedules/route/{routeId} [get]
// @Security BearerAuth
func (handler *Handler) GetSchedulesByRoute(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetSchedulesByRoute", shared.FilterByID(chi.URLParam(r, paramRouteID), model.FieldRouteID, model.TableName))
}

// @Summary List schedules by driver
// @Tags Schedule
// @Produce json
// @Param driverId path string true "Driver ID"
// @Success 200 {array} dto.ScheduleResponse
// @Router /schedules/driver/{driverId} [get]
// @Security BearerAuth
func (handler *Handler) GetSchedulesByDriver(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetSchedulesByDriver", shared.FilterByID(chi.URLParam(r, paramDriverID), model.FieldDriverID, model.TableName))
}

// GetSchedulesByStatus lists schedules in one lifecycle state.
// @Summary List schedules by status
// @Tags Schedule
// @Produce json
// @Param status path string true "Status" Enums(SCHEDULED, DEPARTED, ARRIVED, CANCELLED)
// @Success 200 {array} dto.ScheduleResponse
// @Failure 400 {object} response.Error
// @Router /schedules/status/{status} [get]
// @Security BearerAuth
func (handler *Handler) GetSchedulesByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.Status(chi.URLParam(r, paramStatus))
	if !status.Valid() {
		response.WithError(w, failure.BadRequestFromString(fmt.Sprintf("unsupported schedule status %q", status)))

		return
	}

	handler.list(w, r, ".GetSchedulesByStatus", shared.FilterByID(string(status), model.FieldStatus, model.TableName))
}

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, filter gDto.FilterGroup) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+name)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	schedules, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedules")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetAvailableSchedules searches bookable trips.
// @Summary Search available schedules
// @Tags Schedule
// @Produce json
// @Param source query string true "Source"
// @Param destination query string true "Destination"
// @Param departureTime query string false "Earliest departure (RFC3339 or 2006-01-02T15:04:05), defaults to now"
// @Success 200 {array} dto.ScheduleResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /schedules/available [get]
// @Security BearerAuth
func (handler *Handler) GetAvailableSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailableSchedules")
	defer scope.End()

	query, err := parseAvailableQuery(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	schedules, err := handler.service.GetAvailable(ctx, queryParams, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get available schedules")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetUpcomingSchedules lists future trips that still have seats.
// @Summary List upcoming schedules
// @Tags Schedule
// @Produce json
// @Success 200 {array} dto.ScheduleResponse
// @Failure 500 {object} response.Error
// @Router /schedules/upcoming [get]
// @Security BearerAuth
func (handler *Handler) GetUpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUpcomingSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	schedules, err := handler.service.GetUpcoming(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get upcoming schedules")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetScheduleByID returns one schedule.
// @Summary Get a schedule by ID
// @Tags Schedule
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 "Schedule not found"
// @Failure 500 {object} response.Error
// @Router /schedules/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetScheduleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleByID")
	defer scope.End()

	schedule, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedule)
}

// UpdateSchedule updates a schedule.
// @Summary Update a schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body dto.UpdateScheduleRequest true "Fields to change"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Schedule, bus, route or driver not found"
// @Failure 500 {object} response.Error
// @Router /schedules/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSchedule")
	defer scope.End()

	var req dto.UpdateScheduleRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	schedule, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedule)
}

// UpdateScheduleStatus moves a schedule to another lifecycle state.
// @Summary Update schedule status
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Schedule not found"
// @Failure 500 {object} response.Error
// @Router /schedules/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateScheduleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateScheduleStatus")
	defer scope.End()

	var req dto.UpdateStatusRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	schedule, err := handler.service.UpdateStatus(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update schedule status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule removes a schedule.
// @Summary Delete a schedule
// @Tags Schedule
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 "Schedule not found"
// @Failure 409 {object} response.Error "Schedule still has bookings"
// @Failure 500 {object} response.Error
// @Router /schedules/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSchedule")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete schedule")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}

func parseAvailableQuery(r *http.Request) (dto.AvailableScheduleQuery, error) {
	values := r.URL.Query()
	query := dto.AvailableScheduleQuery{
		Source:        values.Get(model.FieldRouteSource),
		Destination:   values.Get(model.FieldRouteDestination),
		DepartureTime: timezone.Now(),
	}

	if query.Source == constant.Empty || query.Destination == constant.Empty {
		return query, failure.BadRequestFromString("source and destination are required") // nolint:wrapcheck
	}

	raw := values.Get(queryDepartureTime)
	if raw == constant.Empty {
		return query, nil
	}

	departure, err := timezone.ParseTimestamp(raw)
	if err != nil {
		return query, failure.BadRequestFromString("departureTime: " + timezone.ErrInvalidTimestamp.Error()) // nolint:wrapcheck
	}

	query.DepartureTime = departure

	return query, nil
}
