package model

import "busline/shared/model"

const (
	TableName  = "buses"
	EntityName = "bus"

	FieldID              = "id"
	FieldBusNumber       = "bus_number"
	FieldBusType         = "bus_type"
	FieldTotalSeats      = "total_seats"
	FieldAvailableSeats  = "available_seats"
	FieldFarePerKm       = "fare_per_km"
	FieldIsAvailable     = "is_available"
	FieldCurrentLocation = "current_location"
	FieldImage           = "image"
)

// Bus.AvailableSeats is an aggregate sell-down counter kept within [0, TotalSeats].
type Bus struct {
	ID              string  `db:"id"`
	BusNumber       string  `db:"bus_number"`
	BusType         string  `db:"bus_type"`
	TotalSeats      int     `db:"total_seats"`
	AvailableSeats  int     `db:"available_seats"`
	FarePerKm       float64 `db:"fare_per_km"`
	IsAvailable     bool    `db:"is_available"`
	CurrentLocation string  `db:"current_location"`
	Image           string  `db:"image"`
	model.Metadata
}
