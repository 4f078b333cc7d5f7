package service

import (
	"context"
	"errors"
	"fmt"

	"busline/infras/jwt"
	"busline/infras/otel"
	adminModel "busline/internal/domains/admin/model"
	adminDto "busline/internal/domains/admin/model/dto"
	adminRepo "busline/internal/domains/admin/repository"
	adminService "busline/internal/domains/admin/service"
	"busline/internal/domains/auth/model/dto"
	"busline/shared"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	"busline/shared/failure"
	"busline/shared/password"
	"busline/shared/timezone"

	"github.com/rs/zerolog/log"
)

const errInvalidCredentials = "invalid username or password"

type Auth interface {
	Register(ctx context.Context, req adminDto.CreateAdminRequest) (dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	// Validate never fails. Any problem with the header or token yields Valid false.
	Validate(ctx context.Context, authHeader string) dto.ValidateResponse
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
}

type serviceImpl struct {
	adminRepo    adminRepo.Admin
	adminService adminService.Admin
	otel         otel.Otel
	jwtService   jwt.JWT
}

func New(adminRepo adminRepo.Admin, adminService adminService.Admin, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		adminRepo:    adminRepo,
		adminService: adminService,
		otel:         otel,
		jwtService:   jwt,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req adminDto.CreateAdminRequest) (res dto.RegisterResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer scope.TraceIfError(err)

	admin, err := s.adminService.Create(ctx, req)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.Message = dto.MessageRegistered
	res.Admin = admin

	return res, nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	admin, err := s.adminRepo.Get(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{Field: adminModel.FieldUsername, Value: req.Username, Operator: gDto.FilterOperatorEq, Table: adminModel.TableName},
			gDto.Filter{Field: adminModel.FieldEmail, Value: req.Username, Operator: gDto.FilterOperatorEq, Table: adminModel.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get admin")

		return res, fmt.Errorf("failed to get admin: %w", err)
	}

	if admin.ID == constant.Empty {
		log.Warn().Str("username", req.Username).Msg("login attempt with unknown username")

		return res, failure.InvalidState(errInvalidCredentials) // nolint:wrapcheck
	}

	if err = password.Verify(req.Password, admin.Password); err != nil {
		if !errors.Is(err, password.ErrInvalidPassword) {
			log.Error().Err(err).Str("username", req.Username).Msg("stored password digest is unusable")

			return res, fmt.Errorf("failed to verify password: %w", err)
		}

		log.Warn().Str("username", req.Username).Msg("login attempt with wrong password")

		return res, failure.InvalidState(errInvalidCredentials) // nolint:wrapcheck
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, jwt.Subject{
		AdminID:  admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		Role:     admin.Role,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := timezone.Now()
	lastLogin := dto.UpdateLastLoginRequest{LastLogin: now}

	err = s.adminRepo.Update(ctx, shared.TransformFields(lastLogin, admin.Username),
		shared.FilterByID(admin.ID, adminModel.FieldID, adminModel.TableName))
	if err != nil {
		log.Warn().Err(err).Str("adminId", admin.ID).Msg("failed to update last login")
	} else {
		admin.LastLogin = &now
	}

	res.Message = dto.MessageLoginSuccessful
	res.FromTokenPair(tokenPair)
	res.Admin.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) Validate(ctx context.Context, authHeader string) (res dto.ValidateResponse) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Validate")
	defer scope.End()

	token, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return res
	}

	claims, err := s.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
	if err != nil {
		log.Debug().Err(err).Msg("token rejected")

		return res
	}

	admin, err := s.adminService.GetByUsername(ctx, claims.Username)
	if err != nil {
		log.Debug().Err(err).Str("username", claims.Username).Msg("token subject not found")

		return res
	}

	res.Valid = true
	res.Admin = &admin

	return res
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") // nolint:wrapcheck
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}
