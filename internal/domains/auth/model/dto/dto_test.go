package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/infras/jwt"
	"busline/internal/domains/auth/model/dto"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		ExpiresIn:    3600,
	}

	response := dto.LoginResponse{Message: dto.MessageLoginSuccessful}
	response.FromTokenPair(tokenPair)

	raw, err := json.Marshal(response)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "test-access-token", body["token"])
	assert.Equal(t, "test-refresh-token", body["refreshToken"])
	assert.InDelta(t, 3600, body["expiresIn"], 0)
	assert.Contains(t, body, "admin")
}

func TestValidateResponse_InvalidOmitsAdmin(t *testing.T) {
	raw, err := json.Marshal(dto.ValidateResponse{Valid: false})

	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":false}`, string(raw))
}
