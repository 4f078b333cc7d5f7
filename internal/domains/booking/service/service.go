package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"busline/config"
	"busline/infras/otel"
	"busline/infras/postgres"
	"busline/internal/domains/booking/event"
	"busline/internal/domains/booking/model"
	"busline/internal/domains/booking/model/dto"
	"busline/internal/domains/booking/repository"
	busRepository "busline/internal/domains/bus/repository"
	passengerModel "busline/internal/domains/passenger/model"
	passengerRepository "busline/internal/domains/passenger/repository"
	scheduleModel "busline/internal/domains/schedule/model"
	scheduleRepository "busline/internal/domains/schedule/repository"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	errBookingNotFound   = "booking not found"
	errPassengerNotFound = "passenger not found"
	errScheduleNotFound  = "schedule not found"
	errScheduleClosed    = "schedule is not open for booking"
	errAlreadyCancelled  = "booking is already cancelled"
	errReconfirm         = "a cancelled booking cannot be confirmed again, create a new booking"
	errResizeCancelled   = "seat count of a cancelled booking cannot change"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]dto.BookingResponse, error)
	GetByDateRange(ctx context.Context, params gDto.QueryParams, query dto.DateRangeQuery) ([]dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetByNumber(ctx context.Context, bookingNumber string) (dto.BookingResponse, error)
	ConfirmedCount(ctx context.Context, scheduleID string) (int, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (dto.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, req dto.UpdatePaymentStatusRequest, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo          repository.Booking
	scheduleRepo  scheduleRepository.Schedule
	busRepo       busRepository.Bus
	passengerRepo passengerRepository.Passenger
	transactor    postgres.Transactor
	publisher     event.Publisher
	cfg           *config.Config
	otel          otel.Otel
}

func New(
	repo repository.Booking,
	scheduleRepo scheduleRepository.Schedule,
	busRepo busRepository.Bus,
	passengerRepo passengerRepository.Passenger,
	transactor postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:          repo,
		scheduleRepo:  scheduleRepo,
		busRepo:       busRepo,
		passengerRepo: passengerRepo,
		transactor:    transactor,
		publisher:     publisher,
		cfg:           cfg,
		otel:          otel,
	}
}

// Create reserves seats on a schedule. The schedule row stays locked from the capacity check
// until the booking and both seat counters are written.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)

	exist, err := s.passengerRepo.Exist(ctx, shared.FilterByID(req.PassengerID, passengerModel.FieldID, passengerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check passenger existence")

		return res, fmt.Errorf("failed to check passenger existence: %w", err)
	}

	if !exist {
		return res, failure.NotFound(errPassengerNotFound) // nolint:wrapcheck
	}

	var booking model.Booking

	err = s.withinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		schedule, err := s.lockSchedule(ctx, tx, req.ScheduleID)
		if err != nil {
			return err
		}

		if schedule.Status != scheduleModel.StatusScheduled {
			return failure.InvalidState(errScheduleClosed) // nolint:wrapcheck
		}

		if schedule.AvailableSeats < req.NumberOfSeats {
			return failure.CapacityExceeded(fmt.Sprintf( // nolint:wrapcheck
				"not enough seats available: available %d, requested %d", schedule.AvailableSeats, req.NumberOfSeats))
		}

		booking = req.ToModel(user, schedule.Fare)

		if err = s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Msg("failed to insert booking")

			return fmt.Errorf("failed to insert booking: %w", err)
		}

		return s.moveSeats(ctx, tx, schedule, -req.NumberOfSeats)
	})
	if err != nil {
		return res, err
	}

	log.Info().
		Str("bookingNumber", booking.BookingNumber).
		Str("scheduleId", booking.ScheduleID).
		Int("seats", booking.NumberOfSeats).
		Msg("booking confirmed")

	s.publisher.Publish(ctx, event.TypeCreated, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	return dto.FromModels(bookings), nil
}

func (s *serviceImpl) GetByDateRange(ctx context.Context, params gDto.QueryParams, query dto.DateRangeQuery) ([]dto.BookingResponse, error) {
	if query.End.Before(query.Start) {
		return nil, failure.BadRequestFromString("end must not be before start") // nolint:wrapcheck
	}

	return s.GetAll(ctx, params, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{ArgName: "start", Field: model.FieldBookingDate, Value: query.Start, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
			gDto.Filter{ArgName: "end", Field: model.FieldBookingDate, Value: query.End, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
		},
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (dto.BookingResponse, error) {
	return s.getBy(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
}

func (s *serviceImpl) GetByNumber(ctx context.Context, bookingNumber string) (dto.BookingResponse, error) {
	return s.getBy(ctx, shared.FilterByID(bookingNumber, model.FieldBookingNumber, model.TableName))
}

func (s *serviceImpl) getBy(ctx context.Context, filter gDto.FilterGroup) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

// ConfirmedCount counts confirmed bookings, not seats, on a schedule.
func (s *serviceImpl) ConfirmedCount(ctx context.Context, scheduleID string) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ConfirmedCount")
	defer scope.End()
	defer scope.TraceIfError(err)

	count, err = s.repo.Count(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldScheduleID, Value: scheduleID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldBookingStatus, Value: model.StatusConfirmed, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to count confirmed bookings")

		return 0, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}

	return count, nil
}

// Update applies a seat count change as a delta against the schedule, cancels when asked to,
// and refuses to bring a cancelled booking back.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	cancelled := false

	err = s.withinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		schedule, err := s.lockSchedule(ctx, tx, current.ScheduleID)
		if err != nil {
			return err
		}

		booking, err := s.lockBooking(ctx, tx, filter)
		if err != nil {
			return err
		}

		if req.BookingStatus == model.StatusConfirmed && !booking.IsConfirmed() {
			return failure.InvalidState(errReconfirm) // nolint:wrapcheck
		}

		cancelling := req.BookingStatus == model.StatusCancelled && booking.IsConfirmed()
		resizing := req.NumberOfSeats != nil && *req.NumberOfSeats != booking.NumberOfSeats

		fields := map[string]any{
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}

		if resizing {
			if cancelling || !booking.IsConfirmed() {
				return failure.InvalidState(errResizeCancelled) // nolint:wrapcheck
			}

			delta := *req.NumberOfSeats - booking.NumberOfSeats
			if delta > schedule.AvailableSeats {
				return failure.CapacityExceeded(fmt.Sprintf( // nolint:wrapcheck
					"not enough seats available: available %d, requested %d more", schedule.AvailableSeats, delta))
			}

			if err = s.moveSeats(ctx, tx, schedule, -delta); err != nil {
				return err
			}

			fields[model.FieldNumberOfSeats] = *req.NumberOfSeats
			fields[model.FieldTotalAmount] = model.TotalAmount(schedule.Fare, *req.NumberOfSeats)
		}

		if cancelling {
			if err = s.moveSeats(ctx, tx, schedule, booking.NumberOfSeats); err != nil {
				return err
			}

			fields[model.FieldBookingStatus] = model.StatusCancelled
			cancelled = true
		}

		if req.SeatNumbers != nil {
			fields[model.FieldSeatNumbers] = *req.SeatNumbers
		}

		if req.PaymentStatus != constant.Empty {
			fields[model.FieldPaymentStatus] = req.PaymentStatus
		}

		if err = s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			log.Error().Err(err).Msg("failed to update booking")

			return fmt.Errorf("failed to update booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	updated, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	eventType := event.TypeUpdated
	if cancelled {
		eventType = event.TypeCancelled
	}

	s.publisher.Publish(ctx, eventType, updated)

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) UpdatePaymentStatus(ctx context.Context, req dto.UpdatePaymentStatusRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.UpdatePaymentStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	if _, err = s.find(ctx, filter); err != nil {
		return res, err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Msg("failed to update payment status")

		return res, fmt.Errorf("failed to update payment status: %w", err)
	}

	booking, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	s.publisher.Publish(ctx, event.TypeUpdated, booking)

	res.FromModel(booking)

	return res, nil
}

// Cancel releases the booking's seats back to the schedule and bus.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.find(ctx, filter)
	if err != nil {
		return res, err
	}

	if !current.IsConfirmed() {
		return res, failure.InvalidState(errAlreadyCancelled) // nolint:wrapcheck
	}

	var booking model.Booking

	err = s.withinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		schedule, err := s.lockSchedule(ctx, tx, current.ScheduleID)
		if err != nil {
			return err
		}

		booking, err = s.lockBooking(ctx, tx, filter)
		if err != nil {
			return err
		}

		if !booking.IsConfirmed() {
			return failure.InvalidState(errAlreadyCancelled) // nolint:wrapcheck
		}

		now := timezone.Now()

		err = s.repo.UpdateTx(ctx, tx, map[string]any{
			model.FieldBookingStatus: model.StatusCancelled,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: user,
		}, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to cancel booking")

			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		booking.BookingStatus = model.StatusCancelled
		booking.ModifiedAt = now
		booking.ModifiedBy = user

		return s.moveSeats(ctx, tx, schedule, booking.NumberOfSeats)
	})
	if err != nil {
		return res, err
	}

	log.Info().Str("bookingNumber", booking.BookingNumber).Int("seats", booking.NumberOfSeats).Msg("booking cancelled")

	s.publisher.Publish(ctx, event.TypeCancelled, booking)

	res.FromModel(booking)

	return res, nil
}

// Delete removes the booking row. A confirmed booking gives its seats back first.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.find(ctx, filter)
	if err != nil {
		return err
	}

	var booking model.Booking

	err = s.withinTransaction(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		schedule, err := s.lockSchedule(ctx, tx, current.ScheduleID)
		if err != nil {
			return err
		}

		booking, err = s.lockBooking(ctx, tx, filter)
		if err != nil {
			return err
		}

		if booking.IsConfirmed() {
			if err = s.moveSeats(ctx, tx, schedule, booking.NumberOfSeats); err != nil {
				return err
			}
		}

		if err = s.repo.DeleteTx(ctx, tx, filter); err != nil {
			log.Error().Err(err).Msg("failed to delete booking")

			return fmt.Errorf("failed to delete booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, event.TypeDeleted, booking)

	return nil
}

func (s *serviceImpl) withinTransaction(ctx context.Context, fn postgres.TxFunc) error {
	if timeout := s.cfg.App.Booking.TxTimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	return s.transactor.WithinTransaction(ctx, fn) //nolint:wrapcheck
}

func (s *serviceImpl) lockSchedule(ctx context.Context, tx *sqlx.Tx, id string) (scheduleModel.Schedule, error) {
	schedule, err := s.scheduleRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(id, scheduleModel.FieldID, scheduleModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to lock schedule")

		return schedule, fmt.Errorf("failed to lock schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return schedule, failure.NotFound(errScheduleNotFound) // nolint:wrapcheck
	}

	return schedule, nil
}

func (s *serviceImpl) lockBooking(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to lock booking")

		return booking, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(errBookingNotFound) // nolint:wrapcheck
	}

	return booking, nil
}

// moveSeats applies delta to the schedule counter and the bus aggregate in the same transaction.
func (s *serviceImpl) moveSeats(ctx context.Context, tx *sqlx.Tx, schedule scheduleModel.Schedule, delta int) error {
	if delta == 0 {
		return nil
	}

	if err := s.scheduleRepo.AdjustAvailableSeatsTx(ctx, tx, schedule.ID, delta); err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.busRepo.AdjustAvailableSeatsTx(ctx, tx, schedule.BusID, delta); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(errBookingNotFound) // nolint:wrapcheck
	}

	return booking, nil
}
