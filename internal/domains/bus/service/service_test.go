package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"busline/config"
	otelMocks "busline/infras/otel/mocks"
	"busline/infras/postgres"
	pgMocks "busline/infras/postgres/mocks"
	s3Mocks "busline/infras/s3/mocks"
	busMocks "busline/internal/domains/bus/mocks"
	"busline/internal/domains/bus/model"
	"busline/internal/domains/bus/model/dto"
	"busline/internal/domains/bus/service"
	"busline/shared/constant"
	"busline/shared/failure"
)

type fixture struct {
	repo       *busMocks.MockBus
	transactor *pgMocks.MockTransactor
	s3         *s3Mocks.MockS3
	svc        service.Bus
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:       busMocks.NewMockBus(ctrl),
		transactor: pgMocks.NewMockTransactor(ctrl),
		s3:         s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.External.S3.BucketName = "busline"

	f.svc = service.New(f.repo, f.transactor, cfg, otelMocks.NewOtel(), f.s3)

	return f
}

// runInline executes the transaction body without a database.
func runInline(ctx context.Context, fn postgres.TxFunc) error {
	return fn(ctx, &sqlx.Tx{})
}

func userCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUsername, "admin")
}

func TestBusService_Create(t *testing.T) {
	req := dto.CreateBusRequest{
		BusNumber:       "KA-01-1234",
		BusType:         "AC",
		TotalSeats:      40,
		FarePerKm:       2.5,
		CurrentLocation: "Delhi",
	}

	t.Run("duplicate bus number is a conflict and nothing is inserted", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Create(userCtx(), req)

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("unique violation from the database is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		_, err := f.svc.Create(userCtx(), req)

		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("new bus starts with every seat available", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, bus model.Bus) error {
				assert.Equal(t, 40, bus.AvailableSeats)
				assert.True(t, bus.IsAvailable)
				assert.Equal(t, "admin", bus.CreatedBy)

				return nil
			})

		res, err := f.svc.Create(userCtx(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, 40, res.AvailableSeats)
	})
}

func TestBusService_Get(t *testing.T) {
	t.Run("missing bus is not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Bus{}, nil)

		_, err := f.svc.Get(context.Background(), "missing")

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Bus{}, errors.New("boom"))

		_, err := f.svc.Get(context.Background(), "id")

		require.Error(t, err)
		assert.Equal(t, failure.KindInternal, failure.GetKind(err))
	})
}

func TestBusService_Update(t *testing.T) {
	current := model.Bus{ID: "bus-1", BusNumber: "KA-01", TotalSeats: 40, AvailableSeats: 30}

	t.Run("total seats change resizes inside the transaction", func(t *testing.T) {
		f := newFixture(t)
		seats := 50

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
				Return(model.Bus{ID: "bus-1", BusNumber: "KA-01", TotalSeats: 50, AvailableSeats: 40}, nil),
		)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().ResizeSeatsTx(gomock.Any(), gomock.Any(), "bus-1", 50, "admin").Return(nil)

		res, err := f.svc.Update(userCtx(), dto.UpdateBusRequest{TotalSeats: &seats}, "bus-1")

		require.NoError(t, err)
		assert.Equal(t, 40, res.AvailableSeats)
	})

	t.Run("unchanged total seats does not resize", func(t *testing.T) {
		f := newFixture(t)
		seats := 40

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil).Times(2)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().ResizeSeatsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(userCtx(), dto.UpdateBusRequest{TotalSeats: &seats}, "bus-1")

		require.NoError(t, err)
	})

	t.Run("renaming onto an existing number is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.transactor.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Update(userCtx(), dto.UpdateBusRequest{BusNumber: "KA-02"}, "bus-1")

		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("missing bus is not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Bus{}, nil)

		_, err := f.svc.Update(userCtx(), dto.UpdateBusRequest{BusType: "AC"}, "missing")

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})
}

func TestBusService_Delete(t *testing.T) {
	t.Run("bus referenced by schedules is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.Bus{ID: "bus-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := f.svc.Delete(context.Background(), "bus-1")

		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("image is removed with the bus", func(t *testing.T) {
		f := newFixture(t)
		image := "https://cdn.example.com/bus/old.png"

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.Bus{ID: "bus-1", Image: image}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		f.s3.EXPECT().GetObjectNameFromURL("busline", image).Return("bus/old.png")
		f.s3.EXPECT().DeleteFile(gomock.Any(), "busline", "", "bus/old.png").Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), "bus-1"))
	})
}
