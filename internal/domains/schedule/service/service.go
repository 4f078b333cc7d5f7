package service

import (
	"context"
	"fmt"
	"time"

	"busline/infras/otel"
	"busline/infras/postgres"
	busModel "busline/internal/domains/bus/model"
	busRepository "busline/internal/domains/bus/repository"
	driverModel "busline/internal/domains/driver/model"
	driverRepository "busline/internal/domains/driver/repository"
	routeModel "busline/internal/domains/route/model"
	routeRepository "busline/internal/domains/route/repository"
	"busline/internal/domains/schedule/model"
	"busline/internal/domains/schedule/model/dto"
	"busline/internal/domains/schedule/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	gRepo "busline/shared/repository"
	"busline/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errScheduleNotFound = "schedule not found"
	errBusNotFound      = "bus not found"
	errRouteNotFound    = "route not found"
	errDriverNotFound   = "driver not found"
	errScheduleInUse    = "schedule still has bookings"
	errArrivalOrder     = "arrival time must be after departure time"
	errBusSwapBooked    = "cannot change the bus of a schedule with confirmed bookings"
)

type Schedule interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest) (dto.ScheduleResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.ScheduleResponse, error)
	GetAvailable(ctx context.Context, params gDto.QueryParams, query dto.AvailableScheduleQuery) ([]dto.ScheduleResponse, error)
	GetUpcoming(ctx context.Context, params gDto.QueryParams) ([]dto.ScheduleResponse, error)
	Get(ctx context.Context, id string) (dto.ScheduleResponse, error)
	Update(ctx context.Context, req dto.UpdateScheduleRequest, id string) (dto.ScheduleResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo       repository.Schedule
	busRepo    busRepository.Bus
	routeRepo  routeRepository.Route
	driverRepo driverRepository.Driver
	transactor postgres.Transactor
	otel       otel.Otel
}

func New(
	repo repository.Schedule,
	busRepo busRepository.Bus,
	routeRepo routeRepository.Route,
	driverRepo driverRepository.Driver,
	transactor postgres.Transactor,
	otel otel.Otel,
) Schedule {
	return &serviceImpl{
		repo:       repo,
		busRepo:    busRepo,
		routeRepo:  routeRepo,
		driverRepo: driverRepo,
		transactor: transactor,
		otel:       otel,
	}
}

// Create prices the trip from the route distance and bus rate and opens every seat of the bus.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateScheduleRequest) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	bus, err := s.findBus(ctx, req.BusID)
	if err != nil {
		return res, err
	}

	route, err := s.findRoute(ctx, req.RouteID)
	if err != nil {
		return res, err
	}

	if req.DriverID != constant.Empty {
		if err = s.ensureDriver(ctx, req.DriverID); err != nil {
			return res, err
		}
	}

	schedule := req.ToModel(user)
	schedule.Fare = model.CalculateFare(route.Distance, bus.FarePerKm)
	schedule.AvailableSeats = bus.TotalSeats

	if err = s.repo.Insert(ctx, schedule); err != nil {
		log.Error().Err(err).Msg("failed to create schedule")

		return res, fmt.Errorf("failed to create schedule: %w", err)
	}

	schedule.BusNumber = bus.BusNumber
	schedule.RouteSource = route.Source
	schedule.RouteDestination = route.Destination

	res.FromModel(schedule)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedules, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedules")

		return nil, fmt.Errorf("failed to get schedules: %w", err)
	}

	return dto.FromModels(schedules), nil
}

// GetAvailable lists bookable trips between two stops leaving at or after the given time.
func (s *serviceImpl) GetAvailable(ctx context.Context, params gDto.QueryParams, query dto.AvailableScheduleQuery) ([]dto.ScheduleResponse, error) {
	filter := bookableFilter(query.DepartureTime)
	filter.Filters = append(filter.Filters,
		gDto.Filter{Field: model.FieldRouteSource, Value: query.Source, Operator: gDto.FilterOperatorEq, Table: model.JoinTableRoutes},
		gDto.Filter{Field: model.FieldRouteDestination, Value: query.Destination, Operator: gDto.FilterOperatorEq, Table: model.JoinTableRoutes},
	)

	return s.GetAll(ctx, params, filter)
}

func (s *serviceImpl) GetUpcoming(ctx context.Context, params gDto.QueryParams) ([]dto.ScheduleResponse, error) {
	return s.GetAll(ctx, params, bookableFilter(timezone.Now()))
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedule, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(schedule)

	return res, nil
}

// Update re-prices the trip whenever the bus or route changes. A route or time change leaves
// available seats as booked; a bus change goes through swapBus.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateScheduleRequest, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	departure, arrival := current.DepartureTime, current.ArrivalTime
	if !req.DepartureTime.IsZero() {
		departure = req.DepartureTime
	}

	if !req.ArrivalTime.IsZero() {
		arrival = req.ArrivalTime
	}

	if !arrival.After(departure) {
		return res, failure.BadRequestFromString(errArrivalOrder) // nolint:wrapcheck
	}

	busChanged := req.BusID != constant.Empty && req.BusID != current.BusID
	routeChanged := req.RouteID != constant.Empty && req.RouteID != current.RouteID

	fields := shared.TransformFields(req, user)
	newTotalSeats := 0

	if busChanged || routeChanged {
		busID, routeID := current.BusID, current.RouteID
		if busChanged {
			busID = req.BusID
		}

		if routeChanged {
			routeID = req.RouteID
		}

		bus, err := s.findBus(ctx, busID)
		if err != nil {
			return res, err
		}

		route, err := s.findRoute(ctx, routeID)
		if err != nil {
			return res, err
		}

		fields[model.FieldFare] = model.CalculateFare(route.Distance, bus.FarePerKm)
		newTotalSeats = bus.TotalSeats
	}

	if req.DriverID != constant.Empty {
		if err = s.ensureDriver(ctx, req.DriverID); err != nil {
			return res, err
		}
	} else if req.ClearDriver {
		fields[model.FieldDriverID] = nil
	}

	if busChanged {
		return s.swapBus(ctx, fields, current.ID, newTotalSeats)
	}

	return s.update(ctx, fields, current.ID)
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	return s.update(ctx, shared.TransformFields(req, user), current.ID)
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if schedule exists")

		return fmt.Errorf("failed to check if schedule exists: %w", err)
	}

	if !exist {
		return failure.NotFound(errScheduleNotFound) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if gRepo.IsForeignKeyViolation(err) {
			return failure.Conflict(errScheduleInUse) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete schedule")

		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Schedule, error) {
	schedule, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return schedule, fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return schedule, failure.NotFound(errScheduleNotFound) // nolint:wrapcheck
	}

	return schedule, nil
}

func (s *serviceImpl) update(ctx context.Context, fields map[string]any, id string) (res dto.ScheduleResponse, err error) {
	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update schedule")

		return res, fmt.Errorf("failed to update schedule: %w", err)
	}

	schedule, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(schedule)

	return res, nil
}

// swapBus moves a schedule onto another bus and reopens every seat of that bus. Sold seats
// are charged against the old bus, so the swap is refused while any booking holds them.
func (s *serviceImpl) swapBus(ctx context.Context, fields map[string]any, id string, totalSeats int) (res dto.ScheduleResponse, err error) {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		schedule, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock schedule: %w", err)
		}

		if schedule.ID == constant.Empty {
			return failure.NotFound(errScheduleNotFound) // nolint:wrapcheck
		}

		confirmed, err := s.repo.CountConfirmedBookingsTx(ctx, tx, schedule.ID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if confirmed > 0 {
			return failure.InvalidState(errBusSwapBooked) // nolint:wrapcheck
		}

		fields[model.FieldAvailableSeats] = totalSeats

		return s.repo.UpdateTx(ctx, tx, fields, filter) //nolint:wrapcheck
	})
	if err != nil {
		if failure.GetKind(err) != failure.KindInternal {
			return res, err
		}

		log.Error().Err(err).Msg("failed to change schedule bus")

		return res, fmt.Errorf("failed to change schedule bus: %w", err)
	}

	schedule, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(schedule)

	return res, nil
}

func (s *serviceImpl) findBus(ctx context.Context, id string) (busModel.Bus, error) {
	bus, err := s.busRepo.Get(ctx, shared.FilterByID(id, busModel.FieldID, busModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get bus")

		return bus, fmt.Errorf("failed to get bus: %w", err)
	}

	if bus.ID == constant.Empty {
		return bus, failure.NotFound(errBusNotFound) // nolint:wrapcheck
	}

	return bus, nil
}

func (s *serviceImpl) findRoute(ctx context.Context, id string) (routeModel.Route, error) {
	route, err := s.routeRepo.Get(ctx, shared.FilterByID(id, routeModel.FieldID, routeModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get route")

		return route, fmt.Errorf("failed to get route: %w", err)
	}

	if route.ID == constant.Empty {
		return route, failure.NotFound(errRouteNotFound) // nolint:wrapcheck
	}

	return route, nil
}

func (s *serviceImpl) ensureDriver(ctx context.Context, id string) error {
	exist, err := s.driverRepo.Exist(ctx, shared.FilterByID(id, driverModel.FieldID, driverModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check driver existence")

		return fmt.Errorf("failed to check driver existence: %w", err)
	}

	if !exist {
		return failure.NotFound(errDriverNotFound) // nolint:wrapcheck
	}

	return nil
}

// bookableFilter matches scheduled trips with at least one open seat departing at or after from.
func bookableFilter(from time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusScheduled, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldDepartureTime, Value: from, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldAvailableSeats, Value: 1, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		},
	}
}
