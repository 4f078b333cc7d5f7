package dto

import (
	"time"

	"busline/infras/jwt"
	adminDto "busline/internal/domains/admin/model/dto"
)

const (
	MessageLoginSuccessful = "Login successful"
	MessageRegistered      = "Admin registered successfully"
)

// LoginRequest accepts either the username or the email in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"lastLogin" validate:"required"`
}

type LoginResponse struct {
	Message      string                 `json:"message"`
	Token        string                 `json:"token"`
	RefreshToken string                 `json:"refreshToken"`
	ExpiresIn    int64                  `json:"expiresIn"`
	Admin        adminDto.AdminResponse `json:"admin"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.Token = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RegisterResponse struct {
	Message string                 `json:"message"`
	Admin   adminDto.AdminResponse `json:"admin"`
}

type ValidateResponse struct {
	Valid bool                    `json:"valid"`
	Admin *adminDto.AdminResponse `json:"admin,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshTokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (r *RefreshTokenResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	r.Token = tokenPair.AccessToken
	r.RefreshToken = tokenPair.RefreshToken
	r.ExpiresIn = tokenPair.ExpiresIn
}
