package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "busline/infras/otel/mocks"
	"busline/infras/postgres"
	pgMocks "busline/infras/postgres/mocks"
	busMocks "busline/internal/domains/bus/mocks"
	busModel "busline/internal/domains/bus/model"
	driverMocks "busline/internal/domains/driver/mocks"
	routeMocks "busline/internal/domains/route/mocks"
	routeModel "busline/internal/domains/route/model"
	scheduleMocks "busline/internal/domains/schedule/mocks"
	"busline/internal/domains/schedule/model"
	"busline/internal/domains/schedule/model/dto"
	"busline/internal/domains/schedule/service"
	gDto "busline/shared/dto"
	"busline/shared/failure"
)

type fixture struct {
	repo       *scheduleMocks.MockSchedule
	busRepo    *busMocks.MockBus
	routeRepo  *routeMocks.MockRoute
	driverRepo *driverMocks.MockDriver
	transactor *pgMocks.MockTransactor
	svc        service.Schedule
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := fixture{
		repo:       scheduleMocks.NewMockSchedule(ctrl),
		busRepo:    busMocks.NewMockBus(ctrl),
		routeRepo:  routeMocks.NewMockRoute(ctrl),
		driverRepo: driverMocks.NewMockDriver(ctrl),
		transactor: pgMocks.NewMockTransactor(ctrl),
	}
	f.svc = service.New(f.repo, f.busRepo, f.routeRepo, f.driverRepo, f.transactor, otelMocks.NewOtel())

	return f
}

func runInline(ctx context.Context, fn postgres.TxFunc) error {
	return fn(ctx, &sqlx.Tx{})
}

var (
	delhiAgra = routeModel.Route{ID: "route-1", Source: "Delhi", Destination: "Agra", Distance: 200}
	volvo     = busModel.Bus{ID: "bus-1", BusNumber: "DL-01", TotalSeats: 40, AvailableSeats: 40, FarePerKm: 2.5}
	departure = time.Date(2030, 1, 10, 8, 0, 0, 0, time.UTC)
)

func TestCalculateFare(t *testing.T) {
	assert.Equal(t, 500.0, model.CalculateFare(200, 2.5))
	assert.Equal(t, 33.33, model.CalculateFare(10, 3.333))
}

func TestScheduleService_Create(t *testing.T) {
	req := dto.CreateScheduleRequest{
		BusID:         volvo.ID,
		RouteID:       delhiAgra.ID,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(4 * time.Hour),
	}

	t.Run("fare and seats derive from bus and route", func(t *testing.T) {
		f := newFixture(t)
		f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(volvo, nil)
		f.routeRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(delhiAgra, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, schedule model.Schedule) error {
				assert.Equal(t, 500.0, schedule.Fare)
				assert.Equal(t, 40, schedule.AvailableSeats)
				assert.Equal(t, model.StatusScheduled, schedule.Status)
				assert.Nil(t, schedule.DriverID)

				return nil
			})

		res, err := f.svc.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 500.0, res.Fare)
		assert.Equal(t, "Delhi", res.Source)
		assert.Equal(t, "DL-01", res.BusNumber)
	})

	t.Run("unknown bus", func(t *testing.T) {
		f := newFixture(t)
		f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(busModel.Bus{}, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(context.Background(), req)

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("unknown driver", func(t *testing.T) {
		f := newFixture(t)
		withDriver := req
		withDriver.DriverID = "driver-1"

		f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(volvo, nil)
		f.routeRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(delhiAgra, nil)
		f.driverRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(context.Background(), withDriver)

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
		assert.Equal(t, "driver not found", err.Error())
	})
}

func TestScheduleService_Update(t *testing.T) {
	current := model.Schedule{
		ID:             "schedule-1",
		BusID:          volvo.ID,
		RouteID:        delhiAgra.ID,
		DepartureTime:  departure,
		ArrivalTime:    departure.Add(4 * time.Hour),
		Fare:           500,
		AvailableSeats: 37,
		Status:         model.StatusScheduled,
	}

	t.Run("changing the route reprices without touching seats", func(t *testing.T) {
		f := newFixture(t)
		jaipur := routeModel.Route{ID: "route-2", Source: "Delhi", Destination: "Jaipur", Distance: 280}

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(volvo, nil),
			f.routeRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(jaipur, nil),
			f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, 700.0, fields[model.FieldFare])
					assert.NotContains(t, fields, model.FieldAvailableSeats)

					return nil
				}),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
		)

		_, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{RouteID: jaipur.ID}, current.ID)

		require.NoError(t, err)
	})

	minibus := busModel.Bus{ID: "bus-2", BusNumber: "DL-02", TotalSeats: 10, AvailableSeats: 10, FarePerKm: 2}
	unsold := current
	unsold.AvailableSeats = volvo.TotalSeats

	t.Run("changing the bus reopens the new bus seats", func(t *testing.T) {
		f := newFixture(t)
		swapped := unsold
		swapped.BusID, swapped.AvailableSeats, swapped.Fare = minibus.ID, minibus.TotalSeats, 400

		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(unsold, nil),
			f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibus, nil),
			f.routeRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(delhiAgra, nil),
			f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(unsold, nil),
			f.repo.EXPECT().CountConfirmedBookingsTx(gomock.Any(), gomock.Any(), unsold.ID).Return(0, nil),
			f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, minibus.TotalSeats, fields[model.FieldAvailableSeats])
					assert.Equal(t, 400.0, fields[model.FieldFare])

					return nil
				}),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(swapped, nil),
		)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		res, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{BusID: minibus.ID}, unsold.ID)

		require.NoError(t, err)
		assert.Equal(t, minibus.TotalSeats, res.AvailableSeats)
		assert.LessOrEqual(t, res.AvailableSeats, minibus.TotalSeats)
	})

	t.Run("changing the bus with confirmed bookings", func(t *testing.T) {
		f := newFixture(t)

		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.busRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(minibus, nil)
		f.routeRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(delhiAgra, nil)
		f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)
		f.repo.EXPECT().CountConfirmedBookingsTx(gomock.Any(), gomock.Any(), current.ID).Return(1, nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{BusID: minibus.ID}, current.ID)

		assert.True(t, failure.IsKind(err, failure.KindInvalidState))
		assert.Equal(t, "cannot change the bus of a schedule with confirmed bookings", err.Error())
	})

	t.Run("time change keeps fare", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil).Times(2)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.NotContains(t, fields, model.FieldFare)

				return nil
			})

		_, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{ArrivalTime: departure.Add(5 * time.Hour)}, current.ID)

		require.NoError(t, err)
	})

	t.Run("arrival before departure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

		_, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{ArrivalTime: departure.Add(-time.Hour)}, current.ID)

		assert.True(t, failure.IsKind(err, failure.KindBadRequest))
	})

	t.Run("clear driver", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil).Times(2)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				value, ok := fields[model.FieldDriverID]
				assert.True(t, ok)
				assert.Nil(t, value)

				return nil
			})

		_, err := f.svc.Update(context.Background(), dto.UpdateScheduleRequest{ClearDriver: true}, current.ID)

		require.NoError(t, err)
	})
}

func TestScheduleService_GetUpcoming(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Schedule, error) {
			where, _ := filter.GetWhereClause()
			assert.Contains(t, where, "schedules.departure_time >= :departure_time")
			assert.Contains(t, where, "schedules.available_seats >= :available_seats")

			return []model.Schedule{{ID: "schedule-1"}}, nil
		})

	res, err := f.svc.GetUpcoming(context.Background(), gDto.QueryParams{})

	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestScheduleService_Delete(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	err := f.svc.Delete(context.Background(), "schedule-1")

	assert.True(t, failure.IsKind(err, failure.KindNotFound))
}
