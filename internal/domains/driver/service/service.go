package service

import (
	"context"
	"fmt"
	"strings"

	"busline/infras/otel"
	busModel "busline/internal/domains/bus/model"
	busRepository "busline/internal/domains/bus/repository"
	"busline/internal/domains/driver/model"
	"busline/internal/domains/driver/model/dto"
	"busline/internal/domains/driver/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	gRepo "busline/shared/repository"
	"busline/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	errDriverNotFound = "driver not found"
	errBusNotFound    = "bus not found"
	errBusTaken       = "bus is already assigned to another driver"
	errDriverInUse    = "driver is still referenced by schedules"
)

type Driver interface {
	Create(ctx context.Context, req dto.CreateDriverRequest) (dto.DriverResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.DriverResponse, error)
	Get(ctx context.Context, id string) (dto.DriverResponse, error)
	GetByLicense(ctx context.Context, licenseNumber string) (dto.DriverResponse, error)
	Update(ctx context.Context, req dto.UpdateDriverRequest, id string) (dto.DriverResponse, error)
	UpdateAvailability(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (dto.DriverResponse, error)
	AssignBus(ctx context.Context, driverID, busID string) (dto.DriverResponse, error)
	RemoveBus(ctx context.Context, driverID string) (dto.DriverResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo    repository.Driver
	busRepo busRepository.Bus
	otel    otel.Otel
}

func New(repo repository.Driver, busRepo busRepository.Bus, otel otel.Otel) Driver {
	return &serviceImpl{
		repo:    repo,
		busRepo: busRepo,
		otel:    otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateDriverRequest) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	if err = s.ensureUnique(ctx, model.FieldLicenseNumber, req.LicenseNumber, constant.Empty); err != nil {
		return res, err
	}

	if err = s.ensureUnique(ctx, model.FieldEmail, req.Email, constant.Empty); err != nil {
		return res, err
	}

	driver, err := req.ToModel(user)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, driver); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict("driver license number or email already exists") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create driver")

		return res, fmt.Errorf("failed to create driver: %w", err)
	}

	res.FromModel(driver)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	drivers, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get drivers")

		return nil, fmt.Errorf("failed to get drivers: %w", err)
	}

	return dto.FromModels(drivers), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (dto.DriverResponse, error) {
	return s.getBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByLicense(ctx context.Context, licenseNumber string) (dto.DriverResponse, error) {
	return s.getBy(ctx, shared.FilterByID(licenseNumber, model.FieldLicenseNumber, model.TableName))
}

func (s *serviceImpl) getBy(ctx context.Context, filter gDto.FilterGroup) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	driver, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(driver)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateDriverRequest, id string) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	if req.LicenseNumber != constant.Empty && req.LicenseNumber != current.LicenseNumber {
		if err = s.ensureUnique(ctx, model.FieldLicenseNumber, req.LicenseNumber, current.ID); err != nil {
			return res, err
		}
	}

	if req.Email != constant.Empty && req.Email != current.Email {
		if err = s.ensureUnique(ctx, model.FieldEmail, req.Email, current.ID); err != nil {
			return res, err
		}
	}

	return s.update(ctx, shared.TransformFields(req, user), filter)
}

func (s *serviceImpl) UpdateAvailability(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.UpdateAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if _, err = s.find(ctx, filter); err != nil {
		return res, err
	}

	return s.update(ctx, shared.TransformFields(req, user), filter)
}

// AssignBus links a bus to the driver. The bus must not be driven by anyone else.
func (s *serviceImpl) AssignBus(ctx context.Context, driverID, busID string) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.AssignBus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(driverID, model.FieldID, model.TableName)

	if _, err = s.find(ctx, filter); err != nil {
		return res, err
	}

	busExist, err := s.busRepo.Exist(ctx, shared.FilterByID(busID, busModel.FieldID, busModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus existence")

		return res, fmt.Errorf("failed to check bus existence: %w", err)
	}

	if !busExist {
		return res, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	taken, err := s.repo.Exist(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldAssignedBusID, Value: busID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldID, Value: driverID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus assignment")

		return res, fmt.Errorf("failed to check bus assignment: %w", err)
	}

	if taken {
		return res, failure.Conflict(errBusTaken) // nolint:wrapcheck
	}

	return s.update(ctx, map[string]any{
		model.FieldAssignedBusID: busID,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}, filter)
}

func (s *serviceImpl) RemoveBus(ctx context.Context, driverID string) (res dto.DriverResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.RemoveBus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(driverID, model.FieldID, model.TableName)

	if _, err = s.find(ctx, filter); err != nil {
		return res, err
	}

	return s.update(ctx, map[string]any{
		model.FieldAssignedBusID: nil,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}, filter)
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".driver.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if driver exists")

		return fmt.Errorf("failed to check if driver exists: %w", err)
	}

	if !exist {
		return failure.NotFound(errDriverNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if gRepo.IsForeignKeyViolation(err) {
			return failure.Conflict(errDriverInUse) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete driver")

		return fmt.Errorf("failed to delete driver: %w", err)
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, filter gDto.FilterGroup) (model.Driver, error) {
	driver, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get driver")

		return driver, fmt.Errorf("failed to get driver: %w", err)
	}

	if driver.ID == constant.Empty {
		return driver, failure.NotFound(errDriverNotFound) // nolint:wrapcheck
	}

	return driver, nil
}

func (s *serviceImpl) update(ctx context.Context, fields map[string]any, filter gDto.FilterGroup) (res dto.DriverResponse, err error) {
	if err = s.repo.Update(ctx, fields, filter); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict("driver license number, email or bus assignment already exists") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update driver")

		return res, fmt.Errorf("failed to update driver: %w", err)
	}

	driver, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(driver)

	return res, nil
}

func (s *serviceImpl) ensureUnique(ctx context.Context, field, value, excludeID string) error {
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
		log.Error().Err(err).Str("field", field).Msg("failed to check driver uniqueness")

		return fmt.Errorf("failed to check driver %s: %w", field, err)
	}

	if exist {
		return failure.Conflict(fmt.Sprintf("driver with %s %s already exists", strings.ReplaceAll(field, "_", " "), value)) // nolint:wrapcheck
	}

	return nil
}
