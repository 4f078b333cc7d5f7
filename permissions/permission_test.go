package permissions_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/permissions"
	"busline/shared/constant"
)

func TestGet_EmbeddedPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.True(t, data.FindPermissions("/api/auth/login", http.MethodPost).Skip)
	assert.True(t, data.FindPermissions("/api/auth/validate", http.MethodGet).Skip)
	assert.False(t, data.FindPermissions("/api/bookings/{id}", http.MethodDelete).Skip)
}

func TestFindPermissions_FallsBackToDefault(t *testing.T) {
	data := permissions.PermissionData{DefaultPermissions: []string{constant.RoleAdmin}}

	permission := data.FindPermissions("/api/schedules/", http.MethodPost)

	assert.False(t, permission.Skip)
	assert.Equal(t, []string{constant.RoleAdmin}, permission.Permissions)
}
