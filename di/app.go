package di

import (
	adminService "busline/internal/domains/admin/service"
	"busline/transport/http"
)

// App is what the entrypoints need: the HTTP server and the admin service used for startup seeding.
type App struct {
	HTTP  *http.HTTP
	Admin adminService.Admin
}
