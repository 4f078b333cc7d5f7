package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"busline/config"
	otelMocks "busline/infras/otel/mocks"
	adminMocks "busline/internal/domains/admin/mocks"
	"busline/internal/domains/admin/model"
	"busline/internal/domains/admin/model/dto"
	"busline/internal/domains/admin/service"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/password"
)

func newService(t *testing.T, cfg *config.Config) (*adminMocks.MockAdmin, service.Admin) {
	t.Helper()

	repo := adminMocks.NewMockAdmin(gomock.NewController(t))

	return repo, service.New(repo, cfg, otelMocks.NewOtel())
}

func TestAdminService_Create(t *testing.T) {
	req := dto.CreateAdminRequest{
		Username: "operator",
		Email:    "operator@busline.io",
		Password: "s3cretpass",
		FullName: "Route Operator",
	}

	t.Run("hashes the password and assigns the admin role", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, admin model.Admin) error {
				assert.NotEqual(t, req.Password, admin.Password)
				require.NoError(t, password.Verify(req.Password, admin.Password))
				assert.Equal(t, constant.RoleAdmin, admin.Role)
				assert.Equal(t, constant.ContextGuest, admin.CreatedBy)

				return nil
			})

		res, err := svc.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "operator", res.Username)
		assert.Equal(t, constant.RoleAdmin, res.Role)
	})

	t.Run("password over the bcrypt byte limit", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})
		wide := req
		wide.Password = strings.Repeat("п", 40)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Create(context.Background(), wide)

		assert.True(t, failure.IsKind(err, failure.KindBadRequest))
		assert.Contains(t, err.Error(), password.ErrPasswordTooLong.Error())
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Create(context.Background(), req)

		assert.True(t, failure.IsKind(err, failure.KindConflict))
		assert.Equal(t, "username already exists", err.Error())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})

		gomock.InOrder(
			repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil),
			repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil),
		)

		_, err := svc.Create(context.Background(), req)

		assert.True(t, failure.IsKind(err, failure.KindConflict))
		assert.Equal(t, "email already exists", err.Error())
	})
}

func TestAdminService_Update(t *testing.T) {
	current := model.Admin{ID: "admin-1", Username: "operator", Email: "operator@busline.io", Password: "old-hash"}

	t.Run("empty request", func(t *testing.T) {
		_, svc := newService(t, &config.Config{})

		_, err := svc.Update(context.Background(), dto.UpdateAdminRequest{}, current.ID)

		assert.True(t, failure.IsKind(err, failure.KindBadRequest))
	})

	t.Run("password is rehashed and never stored raw", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil).Times(2)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				hashed, ok := fields[model.FieldPassword].(string)
				require.True(t, ok)
				require.NoError(t, password.Verify("n3wpassword", hashed))
				assert.Equal(t, "New Name", fields[model.FieldFullName])
				assert.NotContains(t, fields, model.FieldEmail)

				return nil
			})

		_, err := svc.Update(context.Background(), dto.UpdateAdminRequest{FullName: "New Name", Password: "n3wpassword"}, current.ID)

		require.NoError(t, err)
	})

	t.Run("email taken by another admin", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
				where, _ := filter.GetWhereClause()
				assert.Contains(t, where, "admins.id != :id")

				return true, nil
			})

		_, err := svc.Update(context.Background(), dto.UpdateAdminRequest{Email: "taken@busline.io"}, current.ID)

		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})
}

func TestAdminService_GetByUsername_NotFound(t *testing.T) {
	repo, svc := newService(t, &config.Config{})
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Admin{}, nil)

	_, err := svc.GetByUsername(context.Background(), "ghost")

	assert.True(t, failure.IsKind(err, failure.KindNotFound))
}

func TestAdminService_Seed(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.SeedAdmin.Enable = true
	cfg.App.SeedAdmin.Username = "root"
	cfg.App.SeedAdmin.Email = "root@busline.io"
	cfg.App.SeedAdmin.Password = "rootpassword"
	cfg.App.SeedAdmin.FullName = "Root Admin"

	t.Run("disabled", func(t *testing.T) {
		repo, svc := newService(t, &config.Config{})
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Times(0)

		require.NoError(t, svc.Seed(context.Background()))
	})

	t.Run("inserts once", func(t *testing.T) {
		repo, svc := newService(t, cfg)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
				where, _ := filter.GetWhereClause()
				assert.Equal(t, "(admins.username = :username OR admins.email = :email)", where)

				return false, nil
			})
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, admin model.Admin) error {
				assert.Equal(t, "root", admin.Username)
				assert.Equal(t, constant.ContextSystem, admin.CreatedBy)

				return nil
			})

		require.NoError(t, svc.Seed(context.Background()))
	})

	t.Run("already present", func(t *testing.T) {
		repo, svc := newService(t, cfg)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

		require.NoError(t, svc.Seed(context.Background()))
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo, svc := newService(t, cfg)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("connection refused"))

		assert.Error(t, svc.Seed(context.Background()))
	})
}
