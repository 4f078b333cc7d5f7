package route

import (
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/route/model"
	"busline/internal/domains/route/model/dto"
	"busline/internal/domains/route/service"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Route
	otel    otel.Otel
}

func New(service service.Route, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/routes", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRoutes)
		routerGroup.Post("/", handler.CreateRoute)
		routerGroup.Get("/search", handler.SearchRoute)
		routerGroup.Get("/sources", handler.GetSources)
		routerGroup.Get("/destinations", handler.GetDestinations)
		routerGroup.Get("/source/{source}", handler.GetRoutesBySource)
		routerGroup.Get("/destination/{destination}", handler.GetRoutesByDestination)
		routerGroup.Get("/{id}", handler.GetRouteByID)
		routerGroup.Put("/{id}", handler.UpdateRoute)
		routerGroup.Delete("/{id}", handler.DeleteRoute)
	})
}

// CreateRoute registers a route between two stops.
// @Summary Create a route
// @Tags Route
// @Accept json
// @Produce json
// @Param request body dto.CreateRouteRequest true "Route details"
// @Success 201 {object} dto.RouteResponse
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Route already exists"
// @Failure 500 {object} response.Error
// @Router /routes [post]
// @Security BearerAuth
func (handler *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoute")
	defer scope.End()

	var req dto.CreateRouteRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	route, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create route")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, route)
}

// GetRoutes lists routes.
// @Summary List routes
// @Tags Route
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.RouteResponse
// @Failure 500 {object} response.Error
// @Router /routes [get]
// @Security BearerAuth
func (handler *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetRoutes", gDto.FilterGroup{})
}

// GetRoutesBySource lists routes leaving from source.
// @Summary List routes by source
// @Tags Route
// @Produce json
// @Param source path string true "Source"
// @Success 200 {array} dto.RouteResponse
// @Failure 500 {object} response.Error
// @Router /routes/source/{source} [get]
// @Security BearerAuth
func (handler *Handler) GetRoutesBySource(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetRoutesBySource", shared.FilterByID(chi.URLParam(r, model.FieldSource), model.FieldSource, model.TableName))
}

// GetRoutesByDestination lists routes arriving at destination.
// @Summary List routes by destination
// @Tags Route
// @Produce json
// @Param destination path string true "Destination"
// @Success 200 {array} dto.RouteResponse
// @Failure 500 {object} response.Error
// @Router /routes/destination/{destination} [get]
// @Security BearerAuth
func (handler *Handler) GetRoutesByDestination(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetRoutesByDestination", shared.FilterByID(chi.URLParam(r, model.FieldDestination), model.FieldDestination, model.TableName))
}

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, filter gDto.FilterGroup) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+name)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	routes, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get routes")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, routes)
}

// SearchRoute finds the route between two stops.
// @Summary Search a route
// @Tags Route
// @Produce json
// @Param source query string true "Source"
// @Param destination query string true "Destination"
// @Success 200 {object} dto.RouteResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Route not found"
// @Failure 500 {object} response.Error
// @Router /routes/search [get]
// @Security BearerAuth
func (handler *Handler) SearchRoute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchRoute")
	defer scope.End()

	source := r.URL.Query().Get(model.FieldSource)
	destination := r.URL.Query().Get(model.FieldDestination)

	if source == constant.Empty || destination == constant.Empty {
		response.WithError(w, failure.BadRequestFromString("source and destination are required"))

		return
	}

	route, err := handler.service.Search(ctx, source, destination)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search route")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, route)
}

// GetSources lists every distinct source.
// @Summary List unique sources
// @Tags Route
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} response.Error
// @Router /routes/sources [get]
// @Security BearerAuth
func (handler *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSources")
	defer scope.End()

	sources, err := handler.service.Sources(ctx)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, sources)
}

// GetDestinations lists every distinct destination.
// @Summary List unique destinations
// @Tags Route
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} response.Error
// @Router /routes/destinations [get]
// @Security BearerAuth
func (handler *Handler) GetDestinations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDestinations")
	defer scope.End()

	destinations, err := handler.service.Destinations(ctx)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, destinations)
}

// GetRouteByID returns one route.
// @Summary Get a route by ID
// @Tags Route
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} dto.RouteResponse
// @Failure 404 "Route not found"
// @Failure 500 {object} response.Error
// @Router /routes/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRouteByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRouteByID")
	defer scope.End()

	route, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get route by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, route)
}

// UpdateRoute updates a route.
// @Summary Update a route
// @Tags Route
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param request body dto.UpdateRouteRequest true "Fields to change"
// @Success 200 {object} dto.RouteResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Route not found"
// @Failure 409 {object} response.Error "Route already exists"
// @Failure 500 {object} response.Error
// @Router /routes/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoute")
	defer scope.End()

	var req dto.UpdateRouteRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	route, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update route")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, route)
}

// DeleteRoute removes a route.
// @Summary Delete a route
// @Tags Route
// @Param id path string true "Route ID"
// @Success 204
// @Failure 404 "Route not found"
// @Failure 409 {object} response.Error "Route is still used by schedules"
// @Failure 500 {object} response.Error
// @Router /routes/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoute")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete route")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}
