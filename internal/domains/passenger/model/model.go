package model

import (
	"time"

	"busline/shared/model"
)

const (
	TableName  = "passengers"
	EntityName = "passenger"

	FieldID               = "id"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldEmail            = "email"
	FieldPhoneNumber      = "phone_number"
	FieldAddress          = "address"
	FieldRegistrationDate = "registration_date"
)

type Passenger struct {
	ID               string    `db:"id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Email            string    `db:"email"`
	PhoneNumber      string    `db:"phone_number"`
	Address          string    `db:"address"`
	RegistrationDate time.Time `db:"registration_date"`
	model.Metadata
}
