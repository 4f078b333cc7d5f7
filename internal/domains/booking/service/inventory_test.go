package service_test

import (
	"context"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"busline/config"
	otelMocks "busline/infras/otel/mocks"
	"busline/infras/postgres"
	bookingMocks "busline/internal/domains/booking/mocks"
	"busline/internal/domains/booking/model"
	"busline/internal/domains/booking/model/dto"
	"busline/internal/domains/booking/service"
	busMocks "busline/internal/domains/bus/mocks"
	passengerMocks "busline/internal/domains/passenger/mocks"
	scheduleMocks "busline/internal/domains/schedule/mocks"
	scheduleModel "busline/internal/domains/schedule/model"
	gDto "busline/shared/dto"
	"busline/shared/failure"
)

func timeAt(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}

func gDtoQuery() gDto.QueryParams {
	return gDto.QueryParams{}
}

// inventory keeps one schedule, its bus counter and the bookings in memory. Its transactor
// holds a mutex for the whole transaction, standing in for the schedule row lock, and
// restores the snapshot when the body fails.
type inventory struct {
	mu       sync.Mutex
	schedule scheduleModel.Schedule
	busSeats int
	bookings map[string]model.Booking
}

func (inv *inventory) WithinTransaction(ctx context.Context, fn postgres.TxFunc) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	schedule, busSeats, bookings := inv.schedule, inv.busSeats, maps.Clone(inv.bookings)

	if err := fn(ctx, &sqlx.Tx{}); err != nil {
		inv.schedule, inv.busSeats, inv.bookings = schedule, busSeats, bookings

		return err
	}

	return nil
}

func (inv *inventory) snapshot() (int, int, int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	confirmedSeats := 0

	for _, booking := range inv.bookings {
		if booking.IsConfirmed() {
			confirmedSeats += booking.NumberOfSeats
		}
	}

	return inv.schedule.AvailableSeats, inv.busSeats, confirmedSeats
}

func newInventoryService(t *testing.T, capacity int) (*inventory, service.Booking) {
	t.Helper()

	ctrl := gomock.NewController(t)
	inv := &inventory{
		schedule: delhiAgra(capacity),
		busSeats: capacity,
		bookings: map[string]model.Booking{},
	}

	repo := bookingMocks.NewMockBooking(ctrl)
	scheduleRepo := scheduleMocks.NewMockSchedule(ctrl)
	busRepo := busMocks.NewMockBus(ctrl)
	passengerRepo := passengerMocks.NewMockPassenger(ctrl)
	publisher := bookingMocks.NewMockPublisher(ctrl)

	passengerRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	scheduleRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ gDto.FilterGroup, _ ...string) (scheduleModel.Schedule, error) {
			return inv.schedule, nil
		}).AnyTimes()
	scheduleRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ string, delta int) error {
			if inv.schedule.AvailableSeats+delta < 0 {
				return failure.CapacityExceeded("not enough seats available on schedule")
			}

			inv.schedule.AvailableSeats += delta

			return nil
		}).AnyTimes()
	busRepo.EXPECT().AdjustAvailableSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, _ string, delta int) error {
			inv.busSeats = min(capacity, max(0, inv.busSeats+delta))

			return nil
		}).AnyTimes()

	repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
			inv.bookings[booking.ID] = booking

			return nil
		}).AnyTimes()
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
			inv.mu.Lock()
			defer inv.mu.Unlock()

			return inv.bookings[bookingID(filter)], nil
		}).AnyTimes()
	repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
			return inv.bookings[bookingID(filter)], nil
		}).AnyTimes()
	repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, filter gDto.FilterGroup) error {
			booking := inv.bookings[bookingID(filter)]
			if status, ok := fields[model.FieldBookingStatus].(model.Status); ok {
				booking.BookingStatus = status
			}

			if seats, ok := fields[model.FieldNumberOfSeats].(int); ok {
				booking.NumberOfSeats = seats
			}

			if amount, ok := fields[model.FieldTotalAmount].(float64); ok {
				booking.TotalAmount = amount
			}

			inv.bookings[booking.ID] = booking

			return nil
		}).AnyTimes()

	cfg := &config.Config{}

	return inv, service.New(repo, scheduleRepo, busRepo, passengerRepo, inv, publisher, cfg, otelMocks.NewOtel())
}

func bookingID(filter gDto.FilterGroup) string {
	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(string)

	return id
}

func TestInventory_CreateThenCancelRestoresSeats(t *testing.T) {
	inv, svc := newInventoryService(t, 40)

	booking, err := svc.Create(userCtx(), dto.CreateBookingRequest{
		PassengerID:   "passenger-1",
		ScheduleID:    "schedule-1",
		NumberOfSeats: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, booking.TotalAmount)

	scheduleSeats, busSeats, _ := inv.snapshot()
	assert.Equal(t, 37, scheduleSeats)
	assert.Equal(t, 37, busSeats)

	_, err = svc.Cancel(userCtx(), booking.ID)
	require.NoError(t, err)

	scheduleSeats, busSeats, _ = inv.snapshot()
	assert.Equal(t, 40, scheduleSeats)
	assert.Equal(t, 40, busSeats)

	_, err = svc.Cancel(userCtx(), booking.ID)
	assert.True(t, failure.IsKind(err, failure.KindInvalidState))

	scheduleSeats, _, _ = inv.snapshot()
	assert.Equal(t, 40, scheduleSeats)
}

func TestInventory_ConcurrentBookingsNeverOversell(t *testing.T) {
	const (
		capacity = 40
		requests = 64
	)

	inv, svc := newInventoryService(t, capacity)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for range requests {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Create(userCtx(), dto.CreateBookingRequest{
				PassengerID:   "passenger-1",
				ScheduleID:    "schedule-1",
				NumberOfSeats: 1,
			})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case failure.IsKind(err, failure.KindCapacityExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, requests-capacity, rejected)

	scheduleSeats, busSeats, confirmedSeats := inv.snapshot()
	assert.Equal(t, 0, scheduleSeats)
	assert.Equal(t, 0, busSeats)
	assert.Equal(t, capacity, confirmedSeats)
	assert.Equal(t, capacity, scheduleSeats+confirmedSeats)
}

func TestInventory_FailedBookingRollsBack(t *testing.T) {
	inv, svc := newInventoryService(t, 2)

	_, err := svc.Create(userCtx(), dto.CreateBookingRequest{PassengerID: "passenger-1", ScheduleID: "schedule-1", NumberOfSeats: 3})
	assert.True(t, failure.IsKind(err, failure.KindCapacityExceeded))

	scheduleSeats, busSeats, confirmedSeats := inv.snapshot()
	assert.Equal(t, 2, scheduleSeats)
	assert.Equal(t, 2, busSeats)
	assert.Zero(t, confirmedSeats)
}

func TestInventory_ResizeKeepsSeatsBalanced(t *testing.T) {
	const capacity = 40

	inv, svc := newInventoryService(t, capacity)
	seats := func(n int) *int { return &n }

	booking, err := svc.Create(userCtx(), dto.CreateBookingRequest{PassengerID: "passenger-1", ScheduleID: "schedule-1", NumberOfSeats: 5})
	require.NoError(t, err)

	shrunk, err := svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(2)}, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, shrunk.NumberOfSeats)
	assert.Equal(t, 1000.0, shrunk.TotalAmount)

	scheduleSeats, busSeats, confirmedSeats := inv.snapshot()
	assert.Equal(t, 38, scheduleSeats)
	assert.Equal(t, 38, busSeats)
	assert.Equal(t, capacity, scheduleSeats+confirmedSeats)

	grown, err := svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(4)}, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, grown.TotalAmount)

	scheduleSeats, _, confirmedSeats = inv.snapshot()
	assert.Equal(t, 36, scheduleSeats)
	assert.Equal(t, capacity, scheduleSeats+confirmedSeats)

	_, err = svc.Cancel(userCtx(), booking.ID)
	require.NoError(t, err)

	_, err = svc.Update(userCtx(), dto.UpdateBookingRequest{NumberOfSeats: seats(1)}, booking.ID)
	assert.True(t, failure.IsKind(err, failure.KindInvalidState))

	scheduleSeats, busSeats, confirmedSeats = inv.snapshot()
	assert.Equal(t, capacity, scheduleSeats)
	assert.Equal(t, capacity, busSeats)
	assert.Zero(t, confirmedSeats)
}
