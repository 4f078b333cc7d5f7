package service

import (
	"context"
	"fmt"
	"path/filepath"

	"busline/config"
	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/infras/s3"
	"busline/internal/domains/bus/model"
	"busline/internal/domains/bus/model/dto"
	"busline/internal/domains/bus/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	gRepo "busline/shared/repository"
	"busline/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errBusNotFound      = "bus not found"
	errBusNumberExists  = "bus number already exists"
	errBusStillAssigned = "bus is still referenced by schedules or drivers"
)

type Bus interface {
	Create(ctx context.Context, req dto.CreateBusRequest) (dto.BusResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.BusResponse, error)
	GetAvailable(ctx context.Context, params gDto.QueryParams) ([]dto.BusResponse, error)
	Get(ctx context.Context, id string) (dto.BusResponse, error)
	GetByNumber(ctx context.Context, busNumber string) (dto.BusResponse, error)
	Update(ctx context.Context, req dto.UpdateBusRequest, id string) (dto.BusResponse, error)
	UpdateAvailability(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (dto.BusResponse, error)
	UpdateImage(ctx context.Context, req dto.UpdateImageRequest, id string) (dto.BusResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo       repository.Bus
	transactor postgres.Transactor
	cfg        *config.Config
	otel       otel.Otel
	s3         s3.S3
}

func New(repo repository.Bus, transactor postgres.Transactor, cfg *config.Config, otel otel.Otel, s3 s3.S3) Bus {
	return &serviceImpl{
		repo:       repo,
		transactor: transactor,
		cfg:        cfg,
		otel:       otel,
		s3:         s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBusRequest) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	if err = s.ensureUniqueNumber(ctx, req.BusNumber, constant.Empty); err != nil {
		return res, err
	}

	bus := req.ToModel(user)

	if err = s.repo.Insert(ctx, bus); err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(errBusNumberExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create bus")

		return res, fmt.Errorf("failed to create bus: %w", err)
	}

	res.FromModel(bus)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	buses, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get buses")

		return nil, fmt.Errorf("failed to get buses: %w", err)
	}

	return dto.FromModels(buses), nil
}

// GetAvailable lists buses that are in service and still have unsold seats.
func (s *serviceImpl) GetAvailable(ctx context.Context, params gDto.QueryParams) ([]dto.BusResponse, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldAvailableSeats, Value: 1, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		},
	}

	return s.GetAll(ctx, params, filter)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.getBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByNumber(ctx context.Context, busNumber string) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.GetByNumber")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.getBy(ctx, shared.FilterByID(busNumber, model.FieldBusNumber, model.TableName))
}

func (s *serviceImpl) getBy(ctx context.Context, filter gDto.FilterGroup) (res dto.BusResponse, err error) {
	bus, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bus")

		return res, fmt.Errorf("failed to get bus: %w", err)
	}

	if bus.ID == constant.Empty {
		return res, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	res.FromModel(bus)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBusRequest, id string) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus existence")

		return res, fmt.Errorf("failed to get bus: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	if req.BusNumber != constant.Empty && req.BusNumber != current.BusNumber {
		if err = s.ensureUniqueNumber(ctx, req.BusNumber, current.ID); err != nil {
			return res, err
		}
	}

	updatedFields := shared.TransformFields(req, user)

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, updatedFields, filter); err != nil {
			return err
		}

		if req.TotalSeats != nil && *req.TotalSeats != current.TotalSeats {
			return s.repo.ResizeSeatsTx(ctx, tx, current.ID, *req.TotalSeats, user)
		}

		return nil
	})
	if err != nil {
		if gRepo.IsUniqueViolation(err) {
			return res, failure.Conflict(errBusNumberExists) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update bus")

		return res, fmt.Errorf("failed to update bus: %w", err)
	}

	return s.getBy(ctx, filter)
}

func (s *serviceImpl) UpdateAvailability(ctx context.Context, req dto.UpdateAvailabilityRequest, id string) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.UpdateAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus existence")

		return res, fmt.Errorf("failed to check bus existence: %w", err)
	}

	if !exist {
		return res, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Msg("failed to update bus availability")

		return res, fmt.Errorf("failed to update bus availability: %w", err)
	}

	return s.getBy(ctx, filter)
}

func (s *serviceImpl) UpdateImage(ctx context.Context, req dto.UpdateImageRequest, id string) (res dto.BusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.UpdateImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	bucketName := s.cfg.External.S3.BucketName

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus existence")

		return res, fmt.Errorf("failed to get bus: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	filename := uuid.NewString() + filepath.Ext(req.Image.Filename)

	url, err := s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload bus image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	now := timezone.Now()
	updatedFields := map[string]any{
		model.FieldImage:         url,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update bus image")

		// the new object is orphaned if the row was not updated
		_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, filename)

		return res, fmt.Errorf("failed to update bus image: %w", err)
	}

	if current.Image != constant.Empty {
		if oldObjectName := s.s3.GetObjectNameFromURL(bucketName, current.Image); oldObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, constant.Empty, oldObjectName)
		}
	}

	current.Image = url
	current.ModifiedAt = now
	current.ModifiedBy = user
	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".bus.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter, model.FieldID, model.FieldImage)
	if err != nil {
		log.Error().Err(err).Msg("failed to check bus existence")

		return fmt.Errorf("failed to get bus: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if gRepo.IsForeignKeyViolation(err) {
			return failure.Conflict(errBusStillAssigned) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete bus")

		return fmt.Errorf("failed to delete bus: %w", err)
	}

	if current.Image != constant.Empty {
		bucketName := s.cfg.External.S3.BucketName
		if objectName := s.s3.GetObjectNameFromURL(bucketName, current.Image); objectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, constant.Empty, objectName)
		}
	}

	return nil
}

func (s *serviceImpl) ensureUniqueNumber(ctx context.Context, busNumber, excludeID string) error {
	filter := shared.FilterByID(busNumber, model.FieldBusNumber, model.TableName)
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
		log.Error().Err(err).Msg("failed to check bus number")

		return fmt.Errorf("failed to check bus number: %w", err)
	}

	if exist {
		return failure.Conflict(errBusNumberExists) // nolint:wrapcheck
	}

	return nil
}
