package postgres_test

import (
	"context"
	"errors"
	"testing"

	"busline/infras/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func TestTransactor_WithinTransaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		transactor := postgres.NewTransactorWithDB(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE schedules").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := transactor.WithinTransaction(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE schedules SET available_seats = available_seats - 1")

			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		transactor := postgres.NewTransactorWithDB(db)
		errBoom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := transactor.WithinTransaction(context.Background(), func(_ context.Context, _ *sqlx.Tx) error {
			return errBoom
		})

		require.ErrorIs(t, err, errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports commit failures", func(t *testing.T) {
		db, mock := newMockDB(t)
		transactor := postgres.NewTransactorWithDB(db)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

		err := transactor.WithinTransaction(context.Background(), func(_ context.Context, _ *sqlx.Tx) error {
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure never calls the function", func(t *testing.T) {
		db, mock := newMockDB(t)
		transactor := postgres.NewTransactorWithDB(db)

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err := transactor.WithinTransaction(context.Background(), func(_ context.Context, _ *sqlx.Tx) error {
			called = true

			return nil
		})

		require.Error(t, err)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db, mock := newMockDB(t)
		transactor := postgres.NewTransactorWithDB(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = transactor.WithinTransaction(context.Background(), func(_ context.Context, _ *sqlx.Tx) error {
				panic("unexpected")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
