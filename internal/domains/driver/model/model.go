package model

import (
	"time"

	"busline/shared/model"
)

const (
	TableName  = "drivers"
	EntityName = "driver"

	FieldID              = "id"
	FieldName            = "name"
	FieldLicenseNumber   = "license_number"
	FieldContactNumber   = "contact_number"
	FieldEmail           = "email"
	FieldAddress         = "address"
	FieldDateOfBirth     = "date_of_birth"
	FieldExperienceYears = "experience_years"
	FieldIsAvailable     = "is_available"
	FieldAssignedBusID   = "assigned_bus_id"
)

// Driver.AssignedBusID is nil when no bus is assigned. A bus has at most one driver.
type Driver struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	LicenseNumber   string    `db:"license_number"`
	ContactNumber   string    `db:"contact_number"`
	Email           string    `db:"email"`
	Address         string    `db:"address"`
	DateOfBirth     time.Time `db:"date_of_birth"`
	ExperienceYears int       `db:"experience_years"`
	IsAvailable     bool      `db:"is_available"`
	AssignedBusID   *string   `db:"assigned_bus_id"`
	model.Metadata
}
