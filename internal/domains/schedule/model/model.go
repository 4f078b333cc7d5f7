package model

import (
	"fmt"
	"math"
	"time"

	"busline/shared/model"
)

const (
	TableName  = "schedules"
	EntityName = "schedule"

	FieldID               = "id"
	FieldBusID            = "bus_id"
	FieldRouteID          = "route_id"
	FieldDriverID         = "driver_id"
	FieldDepartureTime    = "departure_time"
	FieldArrivalTime      = "arrival_time"
	FieldFare             = "fare"
	FieldAvailableSeats   = "available_seats"
	FieldStatus           = "status"
	FieldRouteSource      = "source"
	FieldRouteDestination = "destination"

	JoinTableRoutes = "routes"
	JoinTableBuses  = "buses"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusDeparted  Status = "DEPARTED"
	StatusArrived   Status = "ARRIVED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusDeparted, StatusArrived, StatusCancelled:
		return true
	default:
		return false
	}
}

// Schedule.AvailableSeats is the authoritative per-trip counter. It is seeded from the bus
// total at creation and only moves through bookings.
type Schedule struct {
	ID               string    `db:"id"`
	BusID            string    `db:"bus_id"`
	RouteID          string    `db:"route_id"`
	DriverID         *string   `db:"driver_id"`
	DepartureTime    time.Time `db:"departure_time"`
	ArrivalTime      time.Time `db:"arrival_time"`
	Fare             float64   `db:"fare"`
	AvailableSeats   int       `db:"available_seats"`
	Status           Status    `db:"status"`
	BusNumber        string    `column:"bus_number"  db:"bus_number"        table:"buses"`
	RouteSource      string    `column:"source"      db:"route_source"      table:"routes"`
	RouteDestination string    `column:"destination" db:"route_destination" table:"routes"`
	model.Metadata
}

func (Schedule) GetJoinQuery() string {
	return fmt.Sprintf(
		"JOIN %[2]s ON %[2]s.id = %[1]s.bus_id JOIN %[3]s ON %[3]s.id = %[1]s.route_id",
		TableName, JoinTableBuses, JoinTableRoutes,
	)
}

// CalculateFare prices a trip as distance times the bus rate, rounded to cents.
func CalculateFare(distance, farePerKm float64) float64 {
	return math.Round(distance*farePerKm*100) / 100
}
