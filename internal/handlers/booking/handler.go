package booking

import (
	"fmt"
	"net/http"

	"busline/infras/otel"
	"busline/internal/domains/booking/model"
	"busline/internal/domains/booking/model/dto"
	"busline/internal/domains/booking/service"
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
	paramBookingNumber = "bookingNumber"
	paramPassengerID   = "passengerId"
	paramScheduleID    = "scheduleId"
	paramStatus        = "status"
	queryStart         = "start"
	queryEnd           = "end"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/number/{bookingNumber}", handler.GetBookingByNumber)
		routerGroup.Get("/passenger/{passengerId}", handler.GetBookingsByPassenger)
		routerGroup.Get("/schedule/{scheduleId}", handler.GetBookingsBySchedule)
		routerGroup.Get("/schedule/{scheduleId}/confirmed-count", handler.GetConfirmedCount)
		routerGroup.Get("/status/{status}", handler.GetBookingsByStatus)
		routerGroup.Get("/payment-status/{status}", handler.GetBookingsByPaymentStatus)
		routerGroup.Get("/date-range", handler.GetBookingsByDateRange)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Put("/{id}", handler.UpdateBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Patch("/{id}/payment-status", handler.UpdatePaymentStatus)
	})
}

// CreateBooking reserves seats on a schedule.
// @Summary Create a booking
// @Description Seats are taken from the schedule in the same transaction that stores the booking.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Passenger or schedule not found"
// @Failure 409 {object} response.Error "Not enough seats or schedule closed"
// @Failure 500 {object} response.Error
// @Router /bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	var req dto.CreateBookingRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("booking " + booking.BookingNumber + " created")

	response.WithJSON(w, http.StatusCreated, booking)
}

// GetBookings lists bookings.
// @Summary List bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {array} dto.BookingResponse
// @Failure 500 {object} response.Error
// @Router /bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBookings", gDto.FilterGroup{})
}

// @Summary List bookings of a passenger
// @Tags Booking
// @Produce json
// @Param passengerId path string true "Passenger ID"
// @Success 200 {array} dto.BookingResponse
// @Router /bookings/passenger/{passengerId} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByPassenger(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBookingsByPassenger",
		shared.FilterByID(chi.URLParam(r, paramPassengerID), model.FieldPassengerID, model.TableName))
}

// @Summary List bookings on a schedule
// @Tags Booking
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {array} dto.BookingResponse
// @Router /bookings/schedule/{scheduleId} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsBySchedule(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, ".GetBookingsBySchedule",
		shared.FilterByID(chi.URLParam(r, paramScheduleID), model.FieldScheduleID, model.TableName))
}

// GetBookingsByStatus lists bookings in one booking state.
// @Summary List bookings by status
// @Tags Booking
// @Produce json
// @Param status path string true "Booking status" Enums(CONFIRMED, CANCELLED)
// @Success 200 {array} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Router /bookings/status/{status} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.Status(chi.URLParam(r, paramStatus))
	if !status.Valid() {
		response.WithError(w, failure.BadRequestFromString(fmt.Sprintf("unsupported booking status %q", status)))

		return
	}

	handler.list(w, r, ".GetBookingsByStatus", shared.FilterByID(string(status), model.FieldBookingStatus, model.TableName))
}

// @Summary List bookings by payment status
// @Tags Booking
// @Produce json
// @Param status path string true "Payment status" Enums(PENDING, PAID, FAILED, REFUNDED)
// @Success 200 {array} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Router /bookings/payment-status/{status} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByPaymentStatus(w http.ResponseWriter, r *http.Request) {
	status := model.PaymentStatus(chi.URLParam(r, paramStatus))
	if !status.Valid() {
		response.WithError(w, failure.BadRequestFromString(fmt.Sprintf("unsupported payment status %q", status)))

		return
	}

	handler.list(w, r, ".GetBookingsByPaymentStatus", shared.FilterByID(string(status), model.FieldPaymentStatus, model.TableName))
}

func (handler *Handler) list(w http.ResponseWriter, r *http.Request, name string, filter gDto.FilterGroup) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+name)
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	bookings, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingsByDateRange lists bookings made inside a window.
// @Summary List bookings by booking date
// @Tags Booking
// @Produce json
// @Param start query string true "Window start (RFC3339)"
// @Param end query string true "Window end (RFC3339)"
// @Success 200 {array} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /bookings/date-range [get]
// @Security BearerAuth
func (handler *Handler) GetBookingsByDateRange(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingsByDateRange")
	defer scope.End()

	query, err := parseDateRange(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, false)

	bookings, err := handler.service.GetByDateRange(ctx, queryParams, query)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings by date range")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetConfirmedCount counts confirmed bookings on a schedule.
// @Summary Count confirmed bookings on a schedule
// @Tags Booking
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} dto.ConfirmedCountResponse
// @Failure 500 {object} response.Error
// @Router /bookings/schedule/{scheduleId}/confirmed-count [get]
// @Security BearerAuth
func (handler *Handler) GetConfirmedCount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetConfirmedCount")
	defer scope.End()

	scheduleID := chi.URLParam(r, paramScheduleID)

	count, err := handler.service.ConfirmedCount(ctx, scheduleID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to count confirmed bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.ConfirmedCountResponse{ScheduleID: scheduleID, Count: count})
}

// GetBookingByID returns one booking.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 "Booking not found"
// @Failure 500 {object} response.Error
// @Router /bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	booking, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// @Summary Get a booking by booking number
// @Tags Booking
// @Produce json
// @Param bookingNumber path string true "Booking number"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 "Booking not found"
// @Router /bookings/number/{bookingNumber} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByNumber")
	defer scope.End()

	booking, err := handler.service.GetByNumber(ctx, chi.URLParam(r, paramBookingNumber))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// UpdateBooking changes seat count, seat numbers, payment or booking status.
// @Summary Update a booking
// @Description Growing a booking takes the difference from the schedule. Setting bookingStatus to CANCELLED releases the seats.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Booking not found"
// @Failure 409 {object} response.Error "Not enough seats or invalid transition"
// @Failure 500 {object} response.Error
// @Router /bookings/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	var req dto.UpdateBookingRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// @Summary Update payment status
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdatePaymentStatusRequest true "Payment status"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} response.Error
// @Failure 404 "Booking not found"
// @Router /bookings/{id}/payment-status [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePaymentStatus")
	defer scope.End()

	var req dto.UpdatePaymentStatusRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	booking, err := handler.service.UpdatePaymentStatus(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update payment status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// CancelBooking cancels a confirmed booking and releases its seats.
// @Summary Cancel a booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 "Booking not found"
// @Failure 409 {object} response.Error "Booking is already cancelled"
// @Failure 500 {object} response.Error
// @Router /bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	booking, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// DeleteBooking removes a booking. A confirmed booking gives its seats back.
// @Summary Delete a booking
// @Tags Booking
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 "Booking not found"
// @Failure 500 {object} response.Error
// @Router /bookings/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	response.WithNoContent(w, http.StatusNoContent)
}

func parseDateRange(r *http.Request) (dto.DateRangeQuery, error) {
	values := r.URL.Query()

	start, err := timezone.ParseTimestamp(values.Get(queryStart))
	if err != nil {
		return dto.DateRangeQuery{}, failure.BadRequestFromString("start: " + timezone.ErrInvalidTimestamp.Error()) // nolint:wrapcheck
	}

	end, err := timezone.ParseTimestamp(values.Get(queryEnd))
	if err != nil {
		return dto.DateRangeQuery{}, failure.BadRequestFromString("end: " + timezone.ErrInvalidTimestamp.Error()) // nolint:wrapcheck
	}

	return dto.DateRangeQuery{Start: start, End: end}, nil
}
