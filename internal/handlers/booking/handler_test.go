package booking_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "busline/infras/otel/mocks"
	"busline/internal/domains/booking/model"
	"busline/internal/domains/booking/model/dto"
	serviceMocks "busline/internal/domains/booking/service/mocks"
	"busline/internal/handlers/booking"
	gDto "busline/shared/dto"
	"busline/shared/failure"
)

const (
	passengerID = "6f1c1f5e-2b7a-4c1e-9d40-0d5b8a3c1a11"
	scheduleID  = "0b6c0f0e-8d0a-4a55-9a3e-5c8e7f4d2b22"
)

func newRouter(t *testing.T) (http.Handler, *serviceMocks.MockBooking) {
	t.Helper()

	svc := serviceMocks.NewMockBooking(gomock.NewController(t))
	handler := booking.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestCreateBooking(t *testing.T) {
	body := `{"passengerId":"` + passengerID + `","scheduleId":"` + scheduleID + `","numberOfSeats":3}`

	t.Run("created", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			Create(gomock.Any(), dto.CreateBookingRequest{PassengerID: passengerID, ScheduleID: scheduleID, NumberOfSeats: 3}).
			Return(dto.BookingResponse{ID: "booking-1", NumberOfSeats: 3, TotalAmount: 1500, BookingStatus: model.StatusConfirmed}, nil)

		rec := do(router, http.MethodPost, "/bookings", body)

		require.Equal(t, http.StatusCreated, rec.Code)

		var res dto.BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 1500.0, res.TotalAmount)
	})

	t.Run("sold out", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(dto.BookingResponse{}, failure.CapacityExceeded("not enough seats available on schedule"))

		rec := do(router, http.MethodPost, "/bookings", body)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"not enough seats available on schedule","code":"CAPACITY_EXCEEDED"}`, rec.Body.String())
	})

	t.Run("zero seats never reach the service", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := do(router, http.MethodPost, "/bookings",
			`{"passengerId":"`+passengerID+`","scheduleId":"`+scheduleID+`","numberOfSeats":0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetBookingByID_NotFoundHasEmptyBody(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Get(gomock.Any(), "missing").Return(dto.BookingResponse{}, failure.NotFound("booking not found"))

	rec := do(router, http.MethodGet, "/bookings/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Cancel(gomock.Any(), "booking-1").
		Return(dto.BookingResponse{}, failure.InvalidState("booking is already cancelled"))

	rec := do(router, http.MethodPost, "/bookings/booking-1/cancel", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_STATE")
}

func TestGetBookingsByStatus(t *testing.T) {
	t.Run("known status filters", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.AssignableToTypeOf(gDto.FilterGroup{})).
			Return([]dto.BookingResponse{{ID: "booking-1"}}, nil)

		rec := do(router, http.MethodGet, "/bookings/status/CONFIRMED", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := do(router, http.MethodGet, "/bookings/status/PENDING", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetBookingsByDateRange(t *testing.T) {
	t.Run("parses the window", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().
			GetByDateRange(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ gDto.QueryParams, query dto.DateRangeQuery) ([]dto.BookingResponse, error) {
				assert.Equal(t, 2025, query.Start.Year())
				assert.True(t, query.End.After(query.Start))

				return []dto.BookingResponse{}, nil
			})

		rec := do(router, http.MethodGet, "/bookings/date-range?start=2025-01-01T00:00:00Z&end=2025-01-31T23:59:59Z", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing end", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := do(router, http.MethodGet, "/bookings/date-range?start=2025-01-01T00:00:00Z", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetConfirmedCount(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().ConfirmedCount(gomock.Any(), scheduleID).Return(4, nil)

	rec := do(router, http.MethodGet, "/bookings/schedule/"+scheduleID+"/confirmed-count", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scheduleId":"`+scheduleID+`","count":4}`, rec.Body.String())
}
