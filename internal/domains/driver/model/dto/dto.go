package dto

import (
	"fmt"

	"busline/internal/domains/driver/model"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type CreateDriverRequest struct {
	Name            string `json:"name"            validate:"required,max=100"`
	LicenseNumber   string `json:"licenseNumber"   validate:"required,max=50"`
	ContactNumber   string `json:"contactNumber"   validate:"required,max=20"`
	Email           string `json:"email"           validate:"required,email"`
	Address         string `json:"address"         validate:"omitempty,max=255"`
	DateOfBirth     string `json:"dateOfBirth"     validate:"required,datetime=2006-01-02"`
	ExperienceYears int    `json:"experienceYears" validate:"gte=0"`
	IsAvailable     *bool  `json:"isAvailable"     validate:"omitempty"`
}

func (c *CreateDriverRequest) ToModel(user string) (model.Driver, error) {
	dateOfBirth, err := timezone.Parse(DateLayout, c.DateOfBirth)
	if err != nil {
		return model.Driver{}, fmt.Errorf("invalid date of birth: %w", err)
	}

	isAvailable := true
	if c.IsAvailable != nil {
		isAvailable = *c.IsAvailable
	}

	now := timezone.Now()

	return model.Driver{
		ID:              uuid.NewString(),
		Name:            c.Name,
		LicenseNumber:   c.LicenseNumber,
		ContactNumber:   c.ContactNumber,
		Email:           c.Email,
		Address:         c.Address,
		DateOfBirth:     dateOfBirth,
		ExperienceYears: c.ExperienceYears,
		IsAvailable:     isAvailable,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateDriverRequest struct {
	Name            string `db:"name"             json:"name"            validate:"omitempty,max=100"`
	LicenseNumber   string `db:"license_number"   json:"licenseNumber"   validate:"omitempty,max=50"`
	ContactNumber   string `db:"contact_number"   json:"contactNumber"   validate:"omitempty,max=20"`
	Email           string `db:"email"            json:"email"           validate:"omitempty,email"`
	Address         string `db:"address"          json:"address"         validate:"omitempty,max=255"`
	DateOfBirth     string `db:"date_of_birth"    json:"dateOfBirth"     validate:"omitempty,datetime=2006-01-02"`
	ExperienceYears *int   `db:"experience_years" json:"experienceYears" validate:"omitempty,gte=0"`
	IsAvailable     *bool  `db:"is_available"     json:"isAvailable"     validate:"omitempty"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `db:"is_available" json:"isAvailable" validate:"required"`
}

type DriverResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LicenseNumber   string  `json:"licenseNumber"`
	ContactNumber   string  `json:"contactNumber"`
	Email           string  `json:"email"`
	Address         string  `json:"address,omitempty"`
	DateOfBirth     string  `json:"dateOfBirth"`
	ExperienceYears int     `json:"experienceYears"`
	IsAvailable     bool    `json:"isAvailable"`
	AssignedBusID   *string `json:"assignedBusId"`
	gDto.Metadata
}

func (d *DriverResponse) FromModel(model model.Driver) {
	d.ID = model.ID
	d.Name = model.Name
	d.LicenseNumber = model.LicenseNumber
	d.ContactNumber = model.ContactNumber
	d.Email = model.Email
	d.Address = model.Address
	d.DateOfBirth = model.DateOfBirth.Format(DateLayout)
	d.ExperienceYears = model.ExperienceYears
	d.IsAvailable = model.IsAvailable
	d.AssignedBusID = model.AssignedBusID
	d.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Driver) []DriverResponse {
	res := make([]DriverResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
