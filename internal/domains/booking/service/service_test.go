package service_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"busline/config"
	otelMocks "busline/infras/otel/mocks"
	"busline/infras/postgres"
	pgMocks "busline/infras/postgres/mocks"
	"busline/internal/domains/booking/event"
	bookingMocks "busline/internal/domains/booking/mocks"
	"busline/internal/domains/booking/model"
	"busline/internal/domains/booking/model/dto"
	"busline/internal/domains/booking/service"
	busMocks "busline/internal/domains/bus/mocks"
	passengerMocks "busline/internal/domains/passenger/mocks"
	scheduleMocks "busline/internal/domains/schedule/mocks"
	scheduleModel "busline/internal/domains/schedule/model"
	"busline/shared/constant"
	"busline/shared/failure"
)

type fixture struct {
	repo          *bookingMocks.MockBooking
	scheduleRepo  *scheduleMocks.MockSchedule
	busRepo       *busMocks.MockBus
	passengerRepo *passengerMocks.MockPassenger
	transactor    *pgMocks.MockTransactor
	publisher     *bookingMocks.MockPublisher
	svc           service.Booking
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:          bookingMocks.NewMockBooking(ctrl),
		scheduleRepo:  scheduleMocks.NewMockSchedule(ctrl),
		busRepo:       busMocks.NewMockBus(ctrl),
		passengerRepo: passengerMocks.NewMockPassenger(ctrl),
		transactor:    pgMocks.NewMockTransactor(ctrl),
		publisher:     bookingMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.App.Booking.TxTimeoutSeconds = 5

	f.svc = service.New(f.repo, f.scheduleRepo, f.busRepo, f.passengerRepo, f.transactor, f.publisher, cfg, otelMocks.NewOtel())

	return f
}

// runInline executes the transaction body without a database.
func runInline(ctx context.Context, fn postgres.TxFunc) error {
	return fn(ctx, &sqlx.Tx{})
}

func userCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUsername, "admin")
}

// delhiAgra is a 200 km trip on a 40 seat bus at 2.5 per km.
func delhiAgra(available int) scheduleModel.Schedule {
	return scheduleModel.Schedule{
		ID:             "schedule-1",
		BusID:          "bus-1",
		RouteID:        "route-1",
		Fare:           500,
		AvailableSeats: available,
		Status:         scheduleModel.StatusScheduled,
	}
}

func confirmed(seats int) model.Booking {
	return model.Booking{
		ID:            "booking-1",
		BookingNumber: "BMS1700000000000ABCDEF",
		PassengerID:   "passenger-1",
		ScheduleID:    "schedule-1",
		NumberOfSeats: seats,
		TotalAmount:   model.TotalAmount(500, seats),
		PaymentStatus: model.PaymentPending,
		BookingStatus: model.StatusConfirmed,
	}
}

func TestBookingModel(t *testing.T) {
	assert.Equal(t, 1500.0, model.TotalAmount(500, 3))
	assert.Equal(t, 100.05, model.TotalAmount(33.35, 3))
	assert.Equal(t, 0.3, model.TotalAmount(0.1, 3))

	number := model.GenerateBookingNumber(timeAt(1700000000000))
	assert.Regexp(t, `^BMS1700000000000[0-9A-F]{6}$`, number)
	assert.NotEqual(t, number, model.GenerateBookingNumber(timeAt(1700000000000)))

	assert.True(t, model.StatusConfirmed.Valid())
	assert.False(t, model.Status("PENDING").Valid())
	assert.True(t, model.PaymentRefunded.Valid())
	assert.False(t, model.PaymentStatus("CONFIRMED").Valid())
}

func TestBookingService_Create(t *testing.T) {
	req := dto.CreateBookingRequest{
		PassengerID:   "passenger-1",
		ScheduleID:    "schedule-1",
		NumberOfSeats: 3,
		SeatNumbers:   "A1,A2,A3",
	}

	t.Run("reserves seats and prices the booking", func(t *testing.T) {
		f := newFixture(t)

		f.passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		gomock.InOrder(
			f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(40), nil),
			f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
					assert.Equal(t, 1500.0, booking.TotalAmount)
					assert.Equal(t, model.StatusConfirmed, booking.BookingStatus)
					assert.Equal(t, model.PaymentPending, booking.PaymentStatus)
					assert.Equal(t, "admin", booking.CreatedBy)

					return nil
				}),
			f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", -3).Return(nil),
			f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", -3).Return(nil),
		)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCreated, gomock.Any())

		res, err := f.svc.Create(userCtx(), req)

		require.NoError(t, err)
		assert.Equal(t, 1500.0, res.TotalAmount)
		assert.Equal(t, 3, res.NumberOfSeats)
		assert.Regexp(t, `^BMS\d+`, res.BookingNumber)
	})

	t.Run("more seats than available leaves everything untouched", func(t *testing.T) {
		f := newFixture(t)
		tooMany := req
		tooMany.NumberOfSeats = 41

		f.passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(40), nil)
		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(userCtx(), tooMany)

		assert.True(t, failure.IsKind(err, failure.KindCapacityExceeded))
		assert.Contains(t, err.Error(), "available 40, requested 41")
	})

	t.Run("unknown passenger never opens a transaction", func(t *testing.T) {
		f := newFixture(t)

		f.passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(userCtx(), req)

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("unknown schedule", func(t *testing.T) {
		f := newFixture(t)

		f.passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(scheduleModel.Schedule{}, nil)

		_, err := f.svc.Create(userCtx(), req)

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("departed schedule is closed", func(t *testing.T) {
		f := newFixture(t)
		departed := delhiAgra(40)
		departed.Status = scheduleModel.StatusDeparted

		f.passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(departed, nil)
		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(userCtx(), req)

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})
}

func TestBookingService_Cancel(t *testing.T) {
	t.Run("restores seats on schedule and bus", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		gomock.InOrder(
			f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(37), nil),
			f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(3), nil),
			f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
			f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", 3).Return(nil),
			f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", 3).Return(nil),
		)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCancelled, gomock.Any())

		res, err := f.svc.Cancel(userCtx(), "booking-1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.BookingStatus)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(3)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Cancel(userCtx(), "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("cancelled by someone else while waiting for the lock", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(3)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(37), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Cancel(userCtx(), "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

		_, err := f.svc.Cancel(userCtx(), "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestBookingService_Update(t *testing.T) {
	seats := func(n int) *int { return &n }

	t.Run("growing a booking takes the difference from the schedule", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(37), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", -2).Return(nil)
		f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", -2).Return(nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ any) error {
				assert.Equal(t, 5, fields[model.FieldNumberOfSeats])
				assert.Equal(t, 2500.0, fields[model.FieldTotalAmount])

				return nil
			})
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(5), nil)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeUpdated, gomock.Any())

		res, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(5)}, "booking-1")

		require.NoError(t, err)
		assert.Equal(t, 5, res.NumberOfSeats)
	})

	t.Run("growing past capacity", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(1), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(5)}, "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindCapacityExceeded))
	})

	t.Run("shrinking a booking gives the difference back", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(5), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		gomock.InOrder(
			f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(35), nil),
			f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(5), nil),
			f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", 3).Return(nil),
			f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", 3).Return(nil),
			f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ any) error {
					assert.Equal(t, 2, fields[model.FieldNumberOfSeats])
					assert.Equal(t, 1000.0, fields[model.FieldTotalAmount])
					assert.NotContains(t, fields, model.FieldBookingStatus)

					return nil
				}),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(2), nil),
		)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeUpdated, gomock.Any())

		res, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(2)}, "booking-1")

		require.NoError(t, err)
		assert.Equal(t, 2, res.NumberOfSeats)
		assert.Equal(t, 1000.0, res.TotalAmount)
	})

	t.Run("resizing a cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(3)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(40), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(1)}, "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("resizing while cancelling", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(37), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{
			NumberOfSeats: seats(1),
			BookingStatus: model.StatusCancelled,
		}, "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("reconfirming a cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(3)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(40), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(cancelled, nil)

		_, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{BookingStatus: model.StatusConfirmed}, "booking-1")

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
	})

	t.Run("cancelling through update releases seats", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(3)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(37), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(3), nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", 3).Return(nil)
		f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", 3).Return(nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeCancelled, gomock.Any())

		res, err := f.svc.Update(userCtx(), dto.UpdateBookingRequest{BookingStatus: model.StatusCancelled}, "booking-1")

		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.BookingStatus)
	})
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("confirmed booking gives its seats back", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(2), nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(38), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(confirmed(2), nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "schedule-1", 2).Return(nil)
		f.busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), "bus-1", 2).Return(nil)
		f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeDeleted, gomock.Any())

		require.NoError(t, f.svc.Delete(userCtx(), "booking-1"))
	})

	t.Run("cancelled booking leaves counters alone", func(t *testing.T) {
		f := newFixture(t)
		cancelled := confirmed(2)
		cancelled.BookingStatus = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(delhiAgra(40), nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(cancelled, nil)
		f.scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), event.TypeDeleted, gomock.Any())

		require.NoError(t, f.svc.Delete(userCtx(), "booking-1"))
	})
}

func TestBookingService_GetByDateRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByDateRange(context.Background(), gDtoQuery(), dto.DateRangeQuery{
		Start: timeAt(1700000000000),
		End:   timeAt(1600000000000),
	})

	assert.True(t, failure.IsKind(err, failure.KindBadRequest))
}
