package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/internal/domains/schedule/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/logger"
	gRepo "busline/shared/repository"
	"busline/shared/timezone"

	"github.com/jmoiron/sqlx"
)

const (
	queryAdjustAvailableSeats = `UPDATE schedules
	SET available_seats = available_seats + :delta,
		modified_at = :modified_at
	WHERE id = :id AND available_seats + :delta >= 0`

	queryCountConfirmedBookings = `SELECT COUNT(bookings.id) FROM bookings
	WHERE bookings.schedule_id = $1 AND bookings.booking_status = 'CONFIRMED'`
)

type Schedule interface {
	Insert(ctx context.Context, model model.Schedule) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Schedule, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Schedule, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Schedule, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// AdjustAvailableSeatsTx adds delta to available_seats. A change that would drive the
	// counter below zero touches no row and returns a capacity failure.
	AdjustAvailableSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) error
	// CountConfirmedBookingsTx counts the seat-holding bookings of a schedule inside the caller's lock.
	CountConfirmedBookingsTx(ctx context.Context, sqltx *sqlx.Tx, id string) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Schedule]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Schedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Schedule](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) AdjustAvailableSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".schedule.AdjustAvailableSeatsTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryAdjustAvailableSeats)

	result, err := sqltx.NamedExecContext(ctx, queryAdjustAvailableSeats, map[string]any{
		model.FieldID:            id,
		"delta":                  delta,
		constant.FieldModifiedAt: timezone.Now(),
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to adjust schedule available seats: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to read affected schedules: %w", err)
	}

	if affected == 0 {
		return failure.CapacityExceeded("not enough seats available on schedule") // nolint:wrapcheck
	}

	return nil
}

func (r *repositoryImpl) CountConfirmedBookingsTx(ctx context.Context, sqltx *sqlx.Tx, id string) (count int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".schedule.CountConfirmedBookingsTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryCountConfirmedBookings)

	if err = sqltx.GetContext(ctx, &count, queryCountConfirmedBookings, id); err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}

	return count, nil
}
