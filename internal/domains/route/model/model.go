package model

import "busline/shared/model"

const (
	TableName  = "routes"
	EntityName = "route"

	FieldID                  = "id"
	FieldSource              = "source"
	FieldDestination         = "destination"
	FieldDistance            = "distance"
	FieldEstimatedTravelTime = "estimated_travel_time"
	FieldDescription         = "description"
)

// Route.Distance is in kilometres and EstimatedTravelTime in minutes.
type Route struct {
	ID                  string  `db:"id"`
	Source              string  `db:"source"`
	Destination         string  `db:"destination"`
	Distance            float64 `db:"distance"`
	EstimatedTravelTime int     `db:"estimated_travel_time"`
	Description         string  `db:"description"`
	model.Metadata
}
