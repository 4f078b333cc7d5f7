package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"busline/config"
	jwtMocks "busline/infras/jwt/mocks"
	otelMocks "busline/infras/otel/mocks"
	"busline/permissions"
	cacheMocks "busline/shared/cache/mocks"
	"busline/shared/constant"
	"busline/transport/http/middleware"
	"busline/transport/http/router"
)

func newServer(t *testing.T) *HTTP {
	t.Helper()

	ctrl := gomock.NewController(t)
	cfg := &config.Config{}
	otel := otelMocks.NewOtel()

	return New(
		cfg,
		router.New(router.DomainHandlers{}),
		middleware.NewAppMiddleware(otel, cfg, cacheMocks.NewMockRedisCache(ctrl)),
		middleware.NewAuthRoleMiddleware(jwtMocks.NewMockJWT(ctrl), otel, permissions.Get(), cfg),
		nil,
		nil,
	)
}

func TestHealth(t *testing.T) {
	server := newServer(t)

	probe := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, constant.HealthPath, nil))

		return rec
	}

	rec := probe()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(constant.RequestHeaderRequestID))

	server.setState(ServerStateInGracePeriod)

	rec = probe()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), constant.ResponseErrorPrepareShutdown)
}

func TestProtectedRouteNeedsToken(t *testing.T) {
	server := newServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
