package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/internal/domains/driver/model"
	gDto "busline/shared/dto"
	gRepo "busline/shared/repository"
)

type Driver interface {
	Insert(ctx context.Context, model model.Driver) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Driver, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Driver, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Driver]
}

func New(db *postgres.Connection, otel otel.Otel) Driver {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Driver](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
