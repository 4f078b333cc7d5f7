package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/internal/domains/bus/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/logger"
	gRepo "busline/shared/repository"
	"busline/shared/timezone"

	"github.com/jmoiron/sqlx"
)

const (
	queryAdjustAvailableSeats = `UPDATE buses
		SET available_seats = LEAST(total_seats, GREATEST(0, available_seats + :delta)),
			modified_at = :modified_at
		WHERE id = :id`

	queryResizeSeats = `UPDATE buses
		SET available_seats = LEAST(:total_seats, GREATEST(0, available_seats + :total_seats - total_seats)),
			total_seats = :total_seats,
			modified_at = :modified_at,
			modified_by = :modified_by
		WHERE id = :id`
)

type Bus interface {
	Insert(ctx context.Context, model model.Bus) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Bus, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Bus, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// ResizeSeatsTx sets total_seats and shifts available_seats by the same difference, clamped to [0, total].
	ResizeSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, totalSeats int, user string) error
	// AdjustAvailableSeatsTx adds delta to available_seats, clamped to [0, total_seats].
	AdjustAvailableSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Bus]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Bus {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Bus](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) ResizeSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, totalSeats int, user string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".bus.ResizeSeatsTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryResizeSeats)

	_, err = sqltx.NamedExecContext(ctx, queryResizeSeats, map[string]any{
		model.FieldID:            id,
		model.FieldTotalSeats:    totalSeats,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to resize bus seats: %w", err)
	}

	return nil
}

func (r *repositoryImpl) AdjustAvailableSeatsTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".bus.AdjustAvailableSeatsTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryAdjustAvailableSeats)

	_, err = sqltx.NamedExecContext(ctx, queryAdjustAvailableSeats, map[string]any{
		model.FieldID:            id,
		"delta":                  delta,
		constant.FieldModifiedAt: timezone.Now(),
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to adjust bus available seats: %w", err)
	}

	return nil
}
