package dto

import (
	"mime/multipart"

	"busline/internal/domains/bus/model"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreateBusRequest struct {
	BusNumber       string  `json:"busNumber"       validate:"required,max=50"`
	BusType         string  `json:"busType"         validate:"required,max=50"`
	TotalSeats      int     `json:"totalSeats"      validate:"required,gt=0"`
	FarePerKm       float64 `json:"farePerKm"       validate:"gte=0"`
	IsAvailable     *bool   `json:"isAvailable"     validate:"omitempty"`
	CurrentLocation string  `json:"currentLocation" validate:"required,max=100"`
}

// ToModel starts a new bus with every seat available.
func (c *CreateBusRequest) ToModel(user string) model.Bus {
	isAvailable := true
	if c.IsAvailable != nil {
		isAvailable = *c.IsAvailable
	}

	now := timezone.Now()

	return model.Bus{
		ID:              uuid.NewString(),
		BusNumber:       c.BusNumber,
		BusType:         c.BusType,
		TotalSeats:      c.TotalSeats,
		AvailableSeats:  c.TotalSeats,
		FarePerKm:       c.FarePerKm,
		IsAvailable:     isAvailable,
		CurrentLocation: c.CurrentLocation,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateBusRequest carries only the fields to change. TotalSeats is applied separately
// so available seats can shift with it.
type UpdateBusRequest struct {
	BusNumber       string   `db:"bus_number"       json:"busNumber"       validate:"omitempty,max=50"`
	BusType         string   `db:"bus_type"         json:"busType"         validate:"omitempty,max=50"`
	TotalSeats      *int     `json:"totalSeats"     validate:"omitempty,gt=0"`
	FarePerKm       *float64 `db:"fare_per_km"      json:"farePerKm"       validate:"omitempty,gte=0"`
	IsAvailable     *bool    `db:"is_available"     json:"isAvailable"     validate:"omitempty"`
	CurrentLocation string   `db:"current_location" json:"currentLocation" validate:"omitempty,max=100"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `db:"is_available" json:"isAvailable" validate:"required"`
}

type UpdateImageRequest struct {
	Image     *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

type BusResponse struct {
	ID              string  `json:"id"`
	BusNumber       string  `json:"busNumber"`
	BusType         string  `json:"busType"`
	TotalSeats      int     `json:"totalSeats"`
	AvailableSeats  int     `json:"availableSeats"`
	FarePerKm       float64 `json:"farePerKm"`
	IsAvailable     bool    `json:"isAvailable"`
	CurrentLocation string  `json:"currentLocation"`
	Image           string  `json:"image,omitempty"`
	gDto.Metadata
}

func (b *BusResponse) FromModel(model model.Bus) {
	b.ID = model.ID
	b.BusNumber = model.BusNumber
	b.BusType = model.BusType
	b.TotalSeats = model.TotalSeats
	b.AvailableSeats = model.AvailableSeats
	b.FarePerKm = model.FarePerKm
	b.IsAvailable = model.IsAvailable
	b.CurrentLocation = model.CurrentLocation
	b.Image = model.Image
	b.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Bus) []BusResponse {
	res := make([]BusResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
