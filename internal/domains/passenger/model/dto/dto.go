package dto

import (
	"busline/internal/domains/passenger/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreatePassengerRequest struct {
	FirstName   string `json:"firstName"   validate:"required,max=100"`
	LastName    string `json:"lastName"    validate:"required,max=100"`
	Email       string `json:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Address     string `json:"address"     validate:"omitempty,max=255"`
}

// ToModel stamps the registration date with the current time.
func (c *CreatePassengerRequest) ToModel(user string) model.Passenger {
	now := timezone.Now()

	return model.Passenger{
		ID:               uuid.NewString(),
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		PhoneNumber:      c.PhoneNumber,
		Address:          c.Address,
		RegistrationDate: now,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdatePassengerRequest struct {
	FirstName   string  `db:"first_name"   json:"firstName"   validate:"omitempty,max=100"`
	LastName    string  `db:"last_name"    json:"lastName"    validate:"omitempty,max=100"`
	Email       string  `db:"email"        json:"email"       validate:"omitempty,email"`
	PhoneNumber string  `db:"phone_number" json:"phoneNumber" validate:"omitempty,max=20"`
	Address     *string `db:"address"      json:"address"     validate:"omitempty,max=255"`
}

type PassengerResponse struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	Address          string `json:"address,omitempty"`
	RegistrationDate string `json:"registrationDate"`
	gDto.Metadata
}

func (p *PassengerResponse) FromModel(model model.Passenger) {
	p.ID = model.ID
	p.FirstName = model.FirstName
	p.LastName = model.LastName
	p.Email = model.Email
	p.PhoneNumber = model.PhoneNumber
	p.Address = model.Address
	p.RegistrationDate = timezone.Format(model.RegistrationDate, constant.DateFormat)
	p.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Passenger) []PassengerResponse {
	res := make([]PassengerResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}
