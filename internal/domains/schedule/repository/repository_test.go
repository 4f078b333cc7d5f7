package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otelMocks "busline/infras/otel/mocks"
	"busline/infras/postgres"
	"busline/internal/domains/schedule/model"
	"busline/internal/domains/schedule/repository"
	"busline/shared"
	"busline/shared/failure"
)

func newRepository(t *testing.T) (repository.Schedule, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	db := sqlx.NewDb(sqlDB, "postgres")

	return repository.New(&postgres.Connection{Read: db, Write: db}, otelMocks.NewOtel()), db, mock
}

func begin(t *testing.T, db *sqlx.DB) *sqlx.Tx {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err)

	return tx
}

func TestScheduleRepository_AdjustAvailableSeatsTx(t *testing.T) {
	t.Run("moves the counter", func(t *testing.T) {
		repo, db, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE schedules\s+SET available_seats = available_seats \+ \$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustAvailableSeatsTx(context.Background(), begin(t, db), "schedule-1", -3)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses to go below zero", func(t *testing.T) {
		repo, db, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`available_seats \+ \$\d+ >= 0`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AdjustAvailableSeatsTx(context.Background(), begin(t, db), "schedule-1", -41)

		assert.True(t, failure.IsKind(err, failure.KindCapacityExceeded))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScheduleRepository_GetForUpdateTx(t *testing.T) {
	repo, db, mock := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`FROM schedules JOIN buses ON buses.id = schedules.bus_id JOIN routes ON routes.id = schedules.route_id .* FOR UPDATE OF schedules`).
		ExpectQuery().
		WithArgs("schedule-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "available_seats"}).AddRow("schedule-1", 37))

	schedule, err := repo.GetForUpdateTx(context.Background(), begin(t, db), shared.FilterByID("schedule-1", model.FieldID, model.TableName))

	require.NoError(t, err)
	assert.Equal(t, "schedule-1", schedule.ID)
	assert.Equal(t, 37, schedule.AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_CountConfirmedBookingsTx(t *testing.T) {
	repo, db, mock := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(bookings.id\) FROM bookings\s+WHERE bookings.schedule_id = \$1 AND bookings.booking_status = 'CONFIRMED'`).
		WithArgs("schedule-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountConfirmedBookingsTx(context.Background(), begin(t, db), "schedule-1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
