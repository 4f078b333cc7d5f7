package dto

import (
	"time"

	"busline/internal/domains/schedule/model"
	"busline/shared/constant"
	gDto "busline/shared/dto"
	gModel "busline/shared/model"
	"busline/shared/timezone"

	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	BusID         string       `json:"busId"         validate:"required,uuid"`
	RouteID       string       `json:"routeId"       validate:"required,uuid"`
	DriverID      string       `json:"driverId"      validate:"omitempty,uuid"`
	DepartureTime time.Time    `json:"departureTime" validate:"required"`
	ArrivalTime   time.Time    `json:"arrivalTime"   validate:"required,gtfield=DepartureTime"`
	Status        model.Status `json:"status"        validate:"omitempty,enum"`
}

// ToModel leaves fare and available seats to the caller, which derives them from the bus and route.
func (c *CreateScheduleRequest) ToModel(user string) model.Schedule {
	now := timezone.Now()

	status := c.Status
	if status == constant.Empty {
		status = model.StatusScheduled
	}

	var driverID *string
	if c.DriverID != constant.Empty {
		driverID = &c.DriverID
	}

	return model.Schedule{
		ID:            uuid.NewString(),
		BusID:         c.BusID,
		RouteID:       c.RouteID,
		DriverID:      driverID,
		DepartureTime: c.DepartureTime,
		ArrivalTime:   c.ArrivalTime,
		Status:        status,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateScheduleRequest struct {
	BusID         string       `db:"bus_id"         json:"busId"         validate:"omitempty,uuid"`
	RouteID       string       `db:"route_id"       json:"routeId"       validate:"omitempty,uuid"`
	DriverID      string       `db:"driver_id"      json:"driverId"      validate:"omitempty,uuid"`
	DepartureTime time.Time    `db:"departure_time" json:"departureTime"`
	ArrivalTime   time.Time    `db:"arrival_time"   json:"arrivalTime"`
	Status        model.Status `db:"status"         json:"status"        validate:"omitempty,enum"`
	// ClearDriver unassigns the driver. Ignored when DriverID is set.
	ClearDriver bool `json:"clearDriver"`
}

type UpdateStatusRequest struct {
	Status model.Status `db:"status" json:"status" validate:"required,enum"`
}

type AvailableScheduleQuery struct {
	Source        string
	Destination   string
	DepartureTime time.Time
}

type ScheduleResponse struct {
	ID             string       `json:"id"`
	BusID          string       `json:"busId"`
	BusNumber      string       `json:"busNumber"`
	RouteID        string       `json:"routeId"`
	Source         string       `json:"source"`
	Destination    string       `json:"destination"`
	DriverID       *string      `json:"driverId"`
	DepartureTime  string       `json:"departureTime"`
	ArrivalTime    string       `json:"arrivalTime"`
	Fare           float64      `json:"fare"`
	AvailableSeats int          `json:"availableSeats"`
	Status         model.Status `json:"status"`
	gDto.Metadata
}

func (s *ScheduleResponse) FromModel(model model.Schedule) {
	s.ID = model.ID
	s.BusID = model.BusID
	s.BusNumber = model.BusNumber
	s.RouteID = model.RouteID
	s.Source = model.RouteSource
	s.Destination = model.RouteDestination
	s.DriverID = model.DriverID
	s.DepartureTime = timezone.Format(model.DepartureTime, constant.DateFormat)
	s.ArrivalTime = timezone.Format(model.ArrivalTime, constant.DateFormat)
	s.Fare = model.Fare
	s.AvailableSeats = model.AvailableSeats
	s.Status = model.Status
	s.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Schedule) []ScheduleResponse {
	res := make([]ScheduleResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
