package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/internal/domains/route/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/logger"
	gRepo "busline/shared/repository"
)

var errUnknownColumn = errors.New("column is not distinct-selectable")

type Route interface {
	Insert(ctx context.Context, model model.Route) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Route, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Route, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// Distinct returns the sorted set of values of source or destination.
	Distinct(ctx context.Context, column string) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Route]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Route {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Route](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Distinct(ctx context.Context, column string) (res []string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".route.Distinct")
	defer scope.End()
	defer scope.TraceIfError(err)

	if column != model.FieldSource && column != model.FieldDestination {
		return nil, fmt.Errorf("%w: %s", errUnknownColumn, column)
	}

	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s ORDER BY %[1]s", column, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	res = []string{}
	if err = r.db.Read.SelectContext(ctx, &res, query); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to select distinct %s: %w", column, err)
	}

	return res, nil
}
