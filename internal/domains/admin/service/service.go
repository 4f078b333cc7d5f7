package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"busline/config"
	"busline/infras/otel"
	"busline/internal/domains/admin/model"
	"busline/internal/domains/admin/model/dto"
	"busline/internal/domains/admin/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/password"
	gRepo "busline/shared/repository"

	"github.com/rs/zerolog/log"
)

const (
	errAdminNotFound  = "admin not found"
	errUsernameExists = "username already exists"
	errEmailExists    = "email already exists"
)

type Admin interface {
	Create(ctx context.Context, req dto.CreateAdminRequest) (dto.AdminResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams) ([]dto.AdminResponse, error)
	Get(ctx context.Context, id string) (dto.AdminResponse, error)
	GetByUsername(ctx context.Context, username string) (dto.AdminResponse, error)
	Update(ctx context.Context, req dto.UpdateAdminRequest, id string) (dto.AdminResponse, error)
	Delete(ctx context.Context, id string) error
	// Seed inserts the configured bootstrap admin unless its username or email is taken.
	Seed(ctx context.Context) error
}

type serviceImpl struct {
	repo repository.Admin
	cfg  *config.Config
	otel otel.Otel
}

func New(repo repository.Admin, cfg *config.Config, otel otel.Otel) Admin {
	return &serviceImpl{
		repo: repo,
		cfg:  cfg,
		otel: otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAdminRequest) (res dto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, ok := ctx.Value(constant.ContextKeyUsername).(string)
	if !ok {
		user = constant.ContextGuest
	}

	if err = s.ensureUnique(ctx, model.FieldUsername, req.Username, errUsernameExists, constant.Empty); err != nil {
		return res, err
	}

	if err = s.ensureUnique(ctx, model.FieldEmail, req.Email, errEmailExists, constant.Empty); err != nil {
		return res, err
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return res, err
	}

	admin := req.ToModel(user, hashedPassword)

	if err = s.repo.Insert(ctx, admin); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(errUsernameExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create admin")

		return res, fmt.Errorf("failed to create admin: %w", err)
	}

	res.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res []dto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	admins, err := s.repo.GetAll(ctx, params, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get admins")

		return nil, fmt.Errorf("failed to get admins: %w", err)
	}

	return dto.FromModels(admins), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (dto.AdminResponse, error) {
	return s.getBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByUsername(ctx context.Context, username string) (dto.AdminResponse, error) {
	return s.getBy(ctx, shared.FilterByID(username, model.FieldUsername, model.TableName))
}

func (s *serviceImpl) getBy(ctx context.Context, filter gDto.FilterGroup) (res dto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	admin, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateAdminRequest, id string) (res dto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateAdminRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if _, err = s.find(ctx, filter); err != nil {
		return res, err
	}

	if req.Email != constant.Empty {
		if err = s.ensureUnique(ctx, model.FieldEmail, req.Email, errEmailExists, id); err != nil {
			return res, err
		}
	}

	fields := shared.TransformFields(req, user)

	if req.Password != constant.Empty {
		hashedPassword, err := hashPassword(req.Password)
		if err != nil {
			return res, err
		}

		fields[model.FieldPassword] = hashedPassword
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(errEmailExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update admin")

		return res, fmt.Errorf("failed to update admin: %w", err)
	}

	admin, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check admin existence")

		return fmt.Errorf("failed to check admin existence: %w", err)
	}

	if !exist {
		return failure.NotFound(errAdminNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete admin")

		return fmt.Errorf("failed to delete admin: %w", err)
	}

	return nil
}

func (s *serviceImpl) Seed(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Seed")
	defer scope.End()
	defer scope.TraceIfError(err)

	seed := s.cfg.App.SeedAdmin
	if !seed.Enable {
		return nil
	}

	exist, err := s.repo.Exist(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{Field: model.FieldUsername, Value: seed.Username, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldEmail, Value: seed.Email, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check seed admin")

		return fmt.Errorf("failed to check seed admin: %w", err)
	}

	if exist {
		log.Debug().Str("username", seed.Username).Msg("seed admin already present")

		return nil
	}

	hashedPassword, err := hashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	req := dto.CreateAdminRequest{Username: seed.Username, Email: seed.Email, FullName: seed.FullName}

	if err = s.repo.Insert(ctx, req.ToModel(constant.ContextSystem, hashedPassword)); err != nil {
		log.Error().Err(err).Msg("failed to insert seed admin")

		return fmt.Errorf("failed to insert seed admin: %w", err)
	}

	log.Info().Str("username", seed.Username).Msg("seed admin created")

	return nil
}

func (s *serviceImpl) ensureUnique(ctx context.Context, field, value, msg, excludeID string) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, Value: value, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	if excludeID != constant.Empty {
		filter.Filters = append(filter.Filters,
			gDto.Filter{Field: model.FieldID, Value: excludeID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName})
	}

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check admin uniqueness")

		return fmt.Errorf("failed to check admin uniqueness: %w", err)
	}

	if exist {
		return failure.Conflict(msg) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, filter gDto.FilterGroup) (model.Admin, error) {
	admin, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get admin")

		return admin, fmt.Errorf("failed to get admin: %w", err)
	}

	if admin.ID == constant.Empty {
		return admin, failure.NotFound(errAdminNotFound) // nolint:wrapcheck
	}

	return admin, nil
}

// hashPassword turns input the caller can fix into a bad request.
func hashPassword(secret string) (string, error) {
	hashed, err := password.Hash(secret)
	if err == nil {
		return hashed, nil
	}

	if errors.Is(err, password.ErrEmptyPassword) || errors.Is(err, password.ErrPasswordTooLong) {
		return "", failure.BadRequest(err) // nolint:wrapcheck
	}

	log.Error().Err(err).Msg("failed to hash password")

	return "", fmt.Errorf("failed to hash password: %w", err)
}
