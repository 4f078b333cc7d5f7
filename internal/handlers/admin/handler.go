package admin

import (
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/admin/model/dto"
	"busline/internal/domains/admin/service"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/validator"
	"busline/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramUsername = "username"

type Handler struct {
	service service.Admin
	otel    otel.Otel
}

func New(service service.Admin, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admins", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAdmins)
		routerGroup.Post("/", handler.CreateAdmin)
		routerGroup.Get("/username/{username}", handler.GetAdminByUsername)
		routerGroup.Get("/{id}", handler.GetAdminByID)
		routerGroup.Put("/{id}", handler.UpdateAdmin)
		routerGroup.Delete("/{id}", handler.DeleteAdmin)
	})
}

// CreateAdmin adds an admin account.
// @Summary Create an admin
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateAdminRequest true "Admin details"
// @Success 201 {object} dto.AdminResponse
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Username or email already exists"
// @Failure 500 {object} response.Error
// @Router /admins [post]
// @Security BearerAuth
func (handler *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAdmin")
	defer scope.End()

	var req dto.CreateAdminRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	admin, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create admin")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, admin)
}

// @Summary List admins
// @Tags Admin
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.AdminResponse
// @Failure 500 {object} response.Error
// @Router /admins [get]
// @Security BearerAuth
func (handler *Handler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAdmins")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	admins, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get admins")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, admins)
}

// @Summary Get an admin by ID
// @Tags Admin
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} dto.AdminResponse
// @Failure 404 "Admin not found"
// @Router /admins/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAdminByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAdminByID")
	defer scope.End()

	admin, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, admin)
}

// @Summary Get an admin by username
// @Tags Admin
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.AdminResponse
// @Failure 404 "Admin not found"
// @Router /admins/username/{username} [get]
// @Security BearerAuth
func (handler *Handler) GetAdminByUsername(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAdminByUsername")
	defer scope.End()

	admin, err := handler.service.GetByUsername(ctx, chi.URLParam(r, paramUsername))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, admin)
}

// UpdateAdmin changes email, full name or password.
// @Summary Update an admin
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param request body dto.UpdateAdminRequest true "Fields to change"
// @Success 200 {object} dto.AdminResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Admin not found"
// @Failure 409 {object} response.Error "Email already exists"
// @Router /admins/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAdmin")
	defer scope.End()

	var req dto.UpdateAdminRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	admin, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update admin")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, admin)
}

// @Summary Delete an admin
// @Tags Admin
// @Param id path string true "Admin ID"
// @Success 204
// @Failure 404 "Admin not found"
// @Router /admins/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAdmin")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete admin")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}
