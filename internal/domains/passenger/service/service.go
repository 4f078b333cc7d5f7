package service

import (
	"context"
	"fmt"

	"busline/infras/otel"
	"busline/internal/domains/passenger/model"
	"busline/internal/domains/passenger/model/dto"
	"busline/internal/domains/passenger/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	gRepo "busline/shared/repository"

	"github.com/rs/zerolog/log"
)

const errPassengerNotFound = "passenger not found"

type Passenger interface {
	Create(ctx context.Context, req dto.CreatePassengerRequest) (dto.PassengerResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.PassengerResponse, error)
	Get(ctx context.Context, id string) (dto.PassengerResponse, error)
	GetByEmail(ctx context.Context, email string) (dto.PassengerResponse, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, req dto.UpdatePassengerRequest, id string) (dto.PassengerResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo repository.Passenger
	otel otel.Otel
}

func New(repo repository.Passenger, otel otel.Otel) Passenger {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePassengerRequest) (res dto.PassengerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	if err = s.ensureUnique(ctx, model.FieldEmail, "email", req.Email, constant.Empty); err != nil {
		return res, err
	}

	if err = s.ensureUnique(ctx, model.FieldPhoneNumber, "phone number", req.PhoneNumber, constant.Empty); err != nil {
		return res, err
	}

	passenger := req.ToModel(user)

	if err = s.repo.Insert(ctx, passenger); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict("passenger email or phone number already exists") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create passenger")

		return res, fmt.Errorf("failed to create passenger: %w", err)
	}

	res.FromModel(passenger)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.PassengerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	passengers, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get passengers")

		return nil, fmt.Errorf("failed to get passengers: %w", err)
	}

	return dto.FromModels(passengers), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (dto.PassengerResponse, error) {
	return s.getBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByEmail(ctx context.Context, email string) (dto.PassengerResponse, error) {
	return s.getBy(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName))
}

func (s *serviceImpl) getBy(ctx context.Context, filter gDto.FilterGroup) (res dto.PassengerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	passenger, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get passenger")

		return res, fmt.Errorf("failed to get passenger: %w", err)
	}

	if passenger.ID == constant.Empty {
		return res, failure.NotFound(errPassengerNotFound) // nolint:wrapcheck
	}

	res.FromModel(passenger)

	return res, nil
}

func (s *serviceImpl) EmailExists(ctx context.Context, email string) (exist bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.EmailExists")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err = s.repo.Exist(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check passenger email")

		return false, fmt.Errorf("failed to check passenger email: %w", err)
	}

	return exist, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePassengerRequest, id string) (res dto.PassengerResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check passenger existence")

		return res, fmt.Errorf("failed to get passenger: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound(errPassengerNotFound) // nolint:wrapcheck
	}

	if req.Email != constant.Empty && req.Email != current.Email {
		if err = s.ensureUnique(ctx, model.FieldEmail, "email", req.Email, current.ID); err != nil {
			return res, err
		}
	}

	if req.PhoneNumber != constant.Empty && req.PhoneNumber != current.PhoneNumber {
		if err = s.ensureUnique(ctx, model.FieldPhoneNumber, "phone number", req.PhoneNumber, current.ID); err != nil {
			return res, err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict("passenger email or phone number already exists") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update passenger")

		return res, fmt.Errorf("failed to update passenger: %w", err)
	}

	return s.getBy(ctx, filter)
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".passenger.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if passenger exists")

		return fmt.Errorf("failed to check if passenger exists: %w", err)
	}

	if !exist {
		return failure.NotFound(errPassengerNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if gRepo.IsForeignKeyViolation(err) {
			return failure.Conflict("passenger still has bookings") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete passenger")

		return fmt.Errorf("failed to delete passenger: %w", err)
	}

	return nil
}

func (s *serviceImpl) ensureUnique(ctx context.Context, field, label, value, excludeID string) error {
	filter := shared.FilterByID(value, field, model.TableName)
	if excludeID != constant.Empty {
		filter.Operator = gDto.FilterGroupOperatorAnd
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldID,
			Value:    excludeID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    model.TableName,
		})
	}

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("field", field).Msg("failed to check passenger uniqueness")

		return fmt.Errorf("failed to check passenger %s: %w", label, err)
	}

	if exist {
		return failure.Conflict(fmt.Sprintf("passenger with %s %s already exists", label, value)) // nolint:wrapcheck
	}

	return nil
}
